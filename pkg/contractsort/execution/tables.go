package execution

// Category groups execution-signature patterns for reporting.
type Category struct {
	Name     string   `yaml:"name"`
	Patterns []string `yaml:"patterns"`
}

// Tables is the data that drives detection. All matching is case-insensitive.
type Tables struct {
	// SectionKeywords locate the regions worth searching (first pass).
	SectionKeywords []string `yaml:"section_keywords"`
	// Categories are the fine patterns run inside those regions (second pass).
	Categories []Category `yaml:"categories"`
	// HighConfidence phrases force high confidence when any evidence contains one.
	HighConfidence []string `yaml:"high_confidence"`
	// Keywords feed the draft/supporting/final scores reported in Analysis.
	Keywords KeywordTables `yaml:"keywords"`
}

// KeywordSet holds filename and content keywords for one status.
type KeywordSet struct {
	Filename []string `yaml:"filename"`
	Content  []string `yaml:"content"`
}

// KeywordTables are the status keyword lists.
type KeywordTables struct {
	Draft      KeywordSet `yaml:"draft"`
	Supporting KeywordSet `yaml:"supporting"`
	Final      KeywordSet `yaml:"final"`
}

// DefaultTables returns the built-in detection tables.
func DefaultTables() Tables {
	return Tables{
		SectionKeywords: []string{
			"signature", "signed", "execute", "executed", "witness", "notary",
			"by:", "date:", "title:", "name:", "signatory", "authorized",
			"signature page", "execution page", "signature block",
			"in witness whereof", "parties hereby", "duly executed",
			"docusign", "adobe sign", "hellosign", "esign", "e-sign",
			"digitally signed", "electronically signed",
			"parties have executed", "binding agreement executed",
		},
		Categories: []Category{
			{Name: "digital_signature", Patterns: []string{
				`digitally\s+signed\s+by\s+[a-z\s\.]+`,
				`electronic(?:ally)?\s+signed\s+by\s+[a-z\s\.]+`,
				`/s/\s*[a-z\s\.]+`,
				`signature:\s*[a-z\s\.]+`,
				`signed\s+by:\s*[a-z\s\.]+`,
				`e-?signature:\s*[a-z\s\.]+`,
			}},
			{Name: "execution_language", Patterns: []string{
				`executed\s+(?:on\s+)?(?:this\s+)?\d{1,2}(?:st|nd|rd|th)?\s+day\s+of\s+[a-z]+`,
				`executed\s+on\s+\d{1,2}[/-]\d{1,2}[/-]\d{4}`,
				`signed\s+(?:on\s+)?(?:this\s+)?\d{1,2}(?:st|nd|rd|th)?\s+day\s+of\s+[a-z]+`,
				`signed\s+on\s+\d{1,2}[/-]\d{1,2}[/-]\d{4}`,
				`executed\s+(?:as\s+of\s+)?[a-z]+\s+\d{1,2},?\s+\d{4}`,
				`signed\s+(?:as\s+of\s+)?[a-z]+\s+\d{1,2},?\s+\d{4}`,
				`executed\s+and\s+delivered\s+on`,
				`date\s+of\s+execution:\s*\d`,
			}},
			{Name: "legal_execution", Patterns: []string{
				`in\s+witness\s+whereof`,
				`have\s+executed\s+this\s+agreement`,
				`duly\s+executed\s+and\s+delivered`,
				`executed\s+in\s+duplicate`,
				`executed\s+in\s+counterparts`,
				`parties\s+have\s+executed\s+this`,
				`binding\s+agreement\s+executed`,
			}},
			{Name: "witness_notary", Patterns: []string{
				`witness(?:ed)?\s+by\s*:?\s*[a-z\s\.]*`,
				`in\s+the\s+presence\s+of\s*:?\s*[a-z\s\.]*`,
				`notarized\s+by`,
				`notary\s+public`,
				`attested\s+by`,
			}},
			{Name: "signature_blocks", Patterns: []string{
				`by:\s*[_\-\s]*\s*name:\s*[a-z\s\.]+\s*title:`,
				`name:\s*[a-z\s\.]+\s*title:\s*[a-z\s\.]+\s*date:`,
				`print\s+name:\s*[a-z\s\.]+`,
				`title:\s*[a-z\s\.]+\s*signature:`,
				`authorized\s+representative:\s*[a-z\s\.]+`,
				`company\s+representative:\s*[a-z\s\.]+`,
				`signature\s+of\s+[a-z\s\.]+`,
				`authorized\s+signature\s*:?\s*[a-z\s\.]*`,
				`signature\s+page`,
				`signature\s+block`,
				`signatory\s*:?\s*[a-z\s\.]+`,
				`_+\s*signature`,
				`signature\s*_+`,
				`x\s*_+\s*(?:date|signature)`,
				`by:\s*_+\s*date:\s*_+`,
				`signature\s+line`,
				`please\s+sign\s+here`,
			}},
			{Name: "esignature_platform", Patterns: []string{
				`docusign\s+envelope\s+id`,
				`adobe\s+e?sign`,
				`hellosign`,
				`signnow`,
				`pandadoc`,
				`echosign`,
				`rightsignature`,
				`signrequest`,
				`signable`,
				`eversign`,
				`signeasily`,
				`onespan\s+sign`,
				`signed\s+on\s+(?:iphone|android|mobile)`,
				`sent\s+from\s+docusign`,
			}},
			{Name: "execution_terminology", Patterns: []string{
				`e-signed\s+document`,
				`digitally\s+executed`,
				`electronically\s+executed`,
				`this\s+agreement\s+(?:is\s+)?(?:fully\s+)?executed`,
				`parties\s+hereby\s+execute`,
				`executed\s+copy`,
				`original\s+signature`,
				`wet\s+signature`,
				`ink\s+signature`,
			}},
		},
		HighConfidence: []string{
			"in witness whereof",
			"executed in duplicate",
			"docusign envelope",
			"digitally signed by",
		},
		Keywords: KeywordTables{
			Draft: KeywordSet{
				Filename: []string{
					"draft", "dft", "temp", "temporary", "working", "wip", "review",
					"preliminary", "version", "v1", "v2", "v3", "revision", "rev",
					"redline", "markup", "comments", "tracked", "changes", "edit",
				},
				Content: []string{
					"draft agreement", "preliminary version", "for review only",
					"subject to revision", "not final", "working draft",
					"confidential draft", "review copy", "draft contract",
					"pending signature", "awaiting execution", "unsigned",
				},
			},
			Supporting: KeywordSet{
				Filename: []string{
					"exhibit", "exh", "appendix", "schedule", "attachment", "annex",
					"rider", "supplement", "addendum", "enclosure", "tab", "sow",
					"statement", "work", "order", "invoice", "receipt", "quote",
					"proposal", "estimate", "specification", "spec", "requirements",
				},
				Content: []string{
					"exhibit", "appendix", "schedule", "attachment", "statement of work",
					"work order", "purchase order", "invoice", "receipt", "quotation",
				},
			},
			Final: KeywordSet{
				Filename: []string{
					"final", "executed", "signed", "fully", "complete", "master",
					"agreement", "contract", "msa", "nda", "license",
				},
				Content: []string{
					"fully executed", "signed agreement", "executed contract",
					"final version", "master service agreement", "binding agreement",
				},
			},
		},
	}
}
