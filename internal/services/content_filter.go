package services

import (
	"regexp"
	"unicode"
)

// BannedWords is the default blocklist applied to submission text.
var BannedWords = []string{
	"fuck", "fucking", "fucker", "shit", "shitty", "bullshit",
	"ass", "asshole", "bastard", "bitch", "cunt",
	"retard", "retarded",
	"porn", "porno", "nude", "nudes",
	"spam", "scam", "scammer", "phishing", "malware",
}

// ContentFilter pre-screens user-supplied text before a submission row is
// created. Patterns are compiled once at construction; the filter is
// read-only afterwards and safe for concurrent use.
type ContentFilter struct {
	bannedWords  []*regexp.Regexp
	urlPattern   *regexp.Regexp
	emailPattern *regexp.Regexp
	phonePattern *regexp.Regexp
	allCaps      *regexp.Regexp
}

func NewContentFilter() *ContentFilter {
	f := &ContentFilter{
		urlPattern:   regexp.MustCompile(`(?i)(https?://\S+|www\.\S+\.\S+)`),
		emailPattern: regexp.MustCompile(`(?i)\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`),
		phonePattern: regexp.MustCompile(`\d{3}[-.\s]?\d{3}[-.\s]?\d{4}|\(\d{3}\)\s*\d{3}[-.\s]?\d{4}`),
		allCaps:      regexp.MustCompile(`[A-Z]{5,}`),
	}
	f.bannedWords = make([]*regexp.Regexp, 0, len(BannedWords))
	for _, word := range BannedWords {
		f.bannedWords = append(f.bannedWords, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(word)+`\b`))
	}
	return f
}

// Check returns false and a machine-readable reason when the text violates
// the content rules. Empty text passes.
func (f *ContentFilter) Check(text string) (bool, string) {
	if text == "" {
		return true, ""
	}
	for _, re := range f.bannedWords {
		if re.MatchString(text) {
			return false, "inappropriate_language"
		}
	}
	if f.urlPattern.MatchString(text) {
		return false, "url_not_allowed"
	}
	if f.emailPattern.MatchString(text) || f.phonePattern.MatchString(text) {
		return false, "contact_info_not_allowed"
	}
	if hasRepeatedRun(text, 4) {
		return false, "spam_detected"
	}
	if len(f.allCaps.FindAllString(text, -1)) > 2 {
		return false, "excessive_caps"
	}
	return true, ""
}

// hasRepeatedRun reports whether text contains n or more identical letters
// or sentence punctuation in a row, case-insensitively. Digits and other
// symbols do not count, so prices and dividers pass.
func hasRepeatedRun(text string, n int) bool {
	var prev rune
	run := 0
	for _, r := range text {
		r = unicode.ToLower(r)
		if !unicode.IsLetter(r) && r != '!' && r != '?' && r != '.' {
			prev, run = 0, 0
			continue
		}
		if r == prev {
			run++
		} else {
			prev, run = r, 1
		}
		if run >= n {
			return true
		}
	}
	return false
}

var rejectionMessages = map[string]string{
	"inappropriate_language":   "The text contains inappropriate language.",
	"url_not_allowed":          "URLs and web links are not allowed.",
	"contact_info_not_allowed": "Contact information is not allowed.",
	"spam_detected":            "The text appears to be spam.",
	"excessive_caps":           "Please avoid excessive capital letters.",
}

func (f *ContentFilter) RejectionMessage(reason string) string {
	if msg, ok := rejectionMessages[reason]; ok {
		return msg
	}
	return "The text does not meet the content guidelines."
}
