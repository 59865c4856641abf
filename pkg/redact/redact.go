// Package redact masks sensitive values in transcripts before they are stored
// or sent to a language model.
package redact

import (
	"regexp"
	"strings"
)

type pattern struct {
	name string
	re   *regexp.Regexp
}

// Keyword-anchored and specific shapes run before the loose phone pattern.
var patterns = []pattern{
	{"email", regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)},
	{"api_key", regexp.MustCompile(`[Aa][Pp][Ii][_-]?[Kk][Ee][Yy][:\s=]+[\w\-]{20,}`)},
	{"password", regexp.MustCompile(`[Pp]assword[:\s=]+[\w\-!@#$%^&*()]{6,}`)},
	{"token", regexp.MustCompile(`[Tt]oken[:\s=]+[\w\-]{20,}`)},
	{"credit_card", regexp.MustCompile(`\b\d{4}[-.\s]?\d{4}[-.\s]?\d{4}[-.\s]?\d{4}\b`)},
	{"ssn", regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)},
	{"ip_address", regexp.MustCompile(`\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`)},
	{"phone", regexp.MustCompile(`(\+?\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)},
}

// Result is the redacted text and how many values of each type were masked
type Result struct {
	Text   string
	Counts map[string]int
}

// Redacted reports whether anything was masked
func (r Result) Redacted() bool {
	return len(r.Counts) > 0
}

// Redact replaces every match with [REDACTED_<TYPE>]
func Redact(text string) Result {
	res := Result{Text: text, Counts: map[string]int{}}
	for _, p := range patterns {
		matches := p.re.FindAllStringIndex(res.Text, -1)
		if len(matches) == 0 {
			continue
		}
		res.Counts[p.name] += len(matches)
		res.Text = p.re.ReplaceAllLiteralString(res.Text, placeholder(p.name))
	}
	return res
}

// Contains reports whether text has anything Redact would mask
func Contains(text string) bool {
	for _, p := range patterns {
		if p.re.MatchString(text) {
			return true
		}
	}
	return false
}

func placeholder(name string) string {
	return "[REDACTED_" + strings.ToUpper(name) + "]"
}
