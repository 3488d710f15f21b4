package speech

import (
	"regexp"
	"strings"
)

// Regex patterns for stripping constructs that read badly aloud. Model output
// is markdown-flavored; none of that formatting should reach the synthesizer.
const (
	codeFencePattern  = "(?s)```.*?```"
	inlineCodePattern = "`[^`\n]*`"
	urlPattern        = `https?://\S+`
	headingPattern    = `(?m)^#{1,6}\s+`
	bulletPattern     = `(?m)^\s*[-*+]\s+`
	whitespacePattern = `\s+`
)

// urlSpoken replaces links; reading a raw URL character by character is worse
// than acknowledging one exists.
const urlSpoken = "a link"

// emphasis markers are deleted outright, keeping the text between them.
var emphasisReplacer = strings.NewReplacer(
	"**", "",
	"__", "",
	"*", "",
	"~~", "",
)

// Cleaner normalizes generated text before synthesis. Patterns are compiled
// once and reused across turns.
type Cleaner struct {
	codeFence  *regexp.Regexp
	inlineCode *regexp.Regexp
	url        *regexp.Regexp
	heading    *regexp.Regexp
	bullet     *regexp.Regexp
	whitespace *regexp.Regexp
}

// NewCleaner creates a cleaner with all patterns precompiled.
func NewCleaner() *Cleaner {
	return &Cleaner{
		codeFence:  regexp.MustCompile(codeFencePattern),
		inlineCode: regexp.MustCompile(inlineCodePattern),
		url:        regexp.MustCompile(urlPattern),
		heading:    regexp.MustCompile(headingPattern),
		bullet:     regexp.MustCompile(bulletPattern),
		whitespace: regexp.MustCompile(whitespacePattern),
	}
}

// Clean returns text suitable for speaking: code blocks dropped, URLs
// replaced with a spoken placeholder, markdown markers stripped, and all
// whitespace collapsed to single spaces. The result may be empty when the
// input had no speakable content.
func (c *Cleaner) Clean(text string) string {
	cleaned := c.codeFence.ReplaceAllString(text, " ")
	cleaned = c.inlineCode.ReplaceAllString(cleaned, " ")
	cleaned = c.url.ReplaceAllString(cleaned, urlSpoken)
	cleaned = c.heading.ReplaceAllString(cleaned, "")
	cleaned = c.bullet.ReplaceAllString(cleaned, "")
	cleaned = emphasisReplacer.Replace(cleaned)
	cleaned = c.whitespace.ReplaceAllString(cleaned, " ")

	return strings.TrimSpace(cleaned)
}
