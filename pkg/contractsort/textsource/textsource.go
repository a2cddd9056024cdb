// Package textsource turns a document path into a bounded plain-text excerpt.
//
// Extraction is best effort. Binary formats such as PDF or DOCX are read
// from a text sidecar produced by an external OCR or conversion step
// ("contract.pdf.txt" or "contract.txt" beside "contract.pdf").
package textsource

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/cognicore/contractsort/pkg/contractsort/internalerr"
)

// DefaultMaxChars bounds every excerpt.
const DefaultMaxChars = 50000

// Extractor yields plain text for a path. It never fails; any problem
// produces an empty string.
type Extractor interface {
	Extract(path string) string
}

// Source is the file-backed Extractor.
type Source struct {
	maxChars int
	logger   *zap.Logger
}

// Option configures a Source.
type Option func(*Source)

// WithLogger attaches a logger for extraction failures.
func WithLogger(l *zap.Logger) Option {
	return func(s *Source) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Source bounded to maxChars runes (<= 0 selects DefaultMaxChars).
func New(maxChars int, opts ...Option) *Source {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	s := &Source{maxChars: maxChars, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Extract returns up to maxChars runes of text for path.
func (s *Source) Extract(path string) string {
	text, err := s.Read(path)
	if err != nil {
		s.logger.Warn("text extraction failed", zap.String("path", path), zap.Error(err))
		return ""
	}
	return text
}

// Read is Extract with the failure reported. Unsupported formats without a
// sidecar return ErrExtraction.
func (s *Source) Read(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".txt", ".text", ".md":
		return s.readPlain(path)
	case ".html", ".htm":
		return s.readHTML(path)
	}

	if side, ok := Sidecar(path); ok {
		return s.readPlain(side)
	}
	return "", fmt.Errorf("%w: no text available for %s", internalerr.ErrExtraction, filepath.Base(path))
}

func sidecars(path string) []string {
	base := strings.TrimSuffix(path, filepath.Ext(path))
	return []string{path + ".txt", base + ".txt"}
}

// documentExts are formats whose text may live in a sidecar.
var documentExts = []string{".pdf", ".docx", ".doc", ".html", ".htm"}

// Sidecar returns the text sidecar of a document, if one exists.
func Sidecar(path string) (string, bool) {
	if strings.EqualFold(filepath.Ext(path), ".txt") {
		return "", false
	}
	for _, side := range sidecars(path) {
		if _, err := os.Stat(side); err == nil {
			return side, true
		}
	}
	return "", false
}

// IsSidecar reports whether a .txt file is the text sidecar of a document
// beside it rather than a document of its own.
func IsSidecar(path string) bool {
	if !strings.EqualFold(filepath.Ext(path), ".txt") {
		return false
	}
	owner := strings.TrimSuffix(path, filepath.Ext(path))
	if ext := strings.ToLower(filepath.Ext(owner)); ext != "" {
		for _, d := range documentExts {
			if ext == d {
				_, err := os.Stat(owner)
				return err == nil
			}
		}
	}
	for _, d := range documentExts {
		if _, err := os.Stat(owner + d); err == nil {
			return true
		}
	}
	return false
}

func (s *Source) readPlain(path string) (string, error) {
	data, err := s.readBounded(path)
	if err != nil {
		return "", err
	}
	return truncate(strings.ToValidUTF8(string(data), ""), s.maxChars), nil
}

func (s *Source) readHTML(path string) (string, error) {
	data, err := s.readBounded(path)
	if err != nil {
		return "", err
	}
	return truncate(htmlText(data), s.maxChars), nil
}

// readBounded reads at most four bytes per allowed rune.
func (s *Source) readBounded(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, int64(s.maxChars)*4))
	if err != nil {
		return nil, err
	}
	return data, nil
}

// htmlText flattens an HTML document to text, one block per line, skipping
// script and style content.
func htmlText(data []byte) string {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return string(data)
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				if buf.Len() > 0 {
					buf.WriteByte('\n')
				}
				buf.WriteString(t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return buf.String()
}

func truncate(s string, maxChars int) string {
	n := 0
	for i := range s {
		if n == maxChars {
			return s[:i]
		}
		n++
	}
	return s
}

// IsExtraction reports whether err is an extraction failure.
func IsExtraction(err error) bool {
	return errors.Is(err, internalerr.ErrExtraction)
}
