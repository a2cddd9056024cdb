package model

import "strings"

// RetentionCategory governs how long a document class is kept before destruction review.
type RetentionCategory string

const (
	RetentionLongTerm       RetentionCategory = "long_term"
	RetentionIndefinite     RetentionCategory = "indefinite"
	RetentionShortTerm      RetentionCategory = "short_term"
	RetentionTiedToParent   RetentionCategory = "tied_to_parent"
	RetentionReviewRequired RetentionCategory = "review_required"
)

// DeriveRetention maps a document type tag and the presence of an expiration
// date to a retention category. The tag is taken as a string because the
// table also covers AGREEMENT and INVOICE, which are not classifier outputs.
func DeriveRetention(docType string, hasExpiration bool) RetentionCategory {
	switch strings.ToUpper(strings.TrimSpace(docType)) {
	case "MSA", "CONTRACT", "AGREEMENT":
		if hasExpiration {
			return RetentionLongTerm
		}
		return RetentionIndefinite
	case "NDA", "LICENSE":
		return RetentionIndefinite
	case "PO", "INVOICE":
		return RetentionShortTerm
	case "AMD":
		return RetentionTiedToParent
	default:
		return RetentionReviewRequired
	}
}
