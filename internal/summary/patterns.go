package summary

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Tunables for the extraction heuristics. Everything the heuristics match on
// lives in this file so the patterns can change without touching the
// strategy code in extract.go.
const (
	// HeartbeatToken is the acknowledgment a sub-agent emits on idle polls.
	HeartbeatToken = "HEARTBEAT_OK"

	// MaxChars bounds the summary content before the truncation marker.
	MaxChars = 2000
	// TruncationMarker is appended after the first MaxChars characters.
	TruncationMarker = "\n\n... (truncated)"

	// minFindingsChars is the length a findings body must exceed.
	minFindingsChars = 5
	// minSubstantiveChars is the shortest message treated as a result.
	minSubstantiveChars = 20
)

// AcknowledgmentPrefixes lists the openings of messages that only acknowledge
// an instruction. Matching is case-insensitive and anchored at the start.
var AcknowledgmentPrefixes = []string{
	"Understood",
	"Okay",
	"OK",
	"Thanks",
	"Acknowledged",
	"Copy",
	"Will do",
	"I'll",
	"I will",
	"HEARTBEAT",
}

var (
	thinkingTagPattern  = regexp.MustCompile(`(?is)<thinking>.*?</thinking>`)
	thinkingBoldPattern = regexp.MustCompile(`(?is)\*\*Thinking:\*\*.*?(?:\n\n|\*\*)`)
	heartbeatPattern    = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(HeartbeatToken))
	findingsPattern     = regexp.MustCompile(`(?im)^##?\s*findings?:?\s*\n`)
	acknowledgmentRegex = compileAcknowledgment(AcknowledgmentPrefixes)
)

func compileAcknowledgment(prefixes []string) *regexp.Regexp {
	quoted := make([]string, len(prefixes))
	for i, p := range prefixes {
		quoted[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile(`(?i)^(?:` + strings.Join(quoted, "|") + `)`)
}

// Clean strips reasoning blocks and heartbeat tokens from an assistant
// message and trims the result.
func Clean(text string) string {
	text = thinkingTagPattern.ReplaceAllString(text, "")
	text = thinkingBoldPattern.ReplaceAllString(text, "")
	text = heartbeatPattern.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// IsAcknowledgment reports whether cleaned text opens like a bare
// acknowledgment ("Okay, I'll get started").
func IsAcknowledgment(cleaned string) bool {
	return acknowledgmentRegex.MatchString(cleaned)
}

// HasHeartbeat reports whether a heartbeat token survived cleaning.
func HasHeartbeat(cleaned string) bool {
	return strings.Contains(cleaned, HeartbeatToken)
}

// IsSubstantive reports whether cleaned text is long enough and free of
// acknowledgment or heartbeat noise to stand as a result.
func IsSubstantive(cleaned string) bool {
	return !IsAcknowledgment(cleaned) &&
		charCount(cleaned) >= minSubstantiveChars &&
		!HasHeartbeat(cleaned)
}

// FindingsBody returns the text following the first "Findings" heading
// ("# Findings", "## Finding:", ...) that starts a line.
func FindingsBody(cleaned string) (string, bool) {
	loc := findingsPattern.FindStringIndex(cleaned)
	if loc == nil {
		return "", false
	}
	return strings.TrimSpace(cleaned[loc[1]:]), true
}

// Truncate cuts text to MaxChars characters and appends TruncationMarker.
// Text within the limit is returned unchanged.
func Truncate(text string) (string, bool) {
	if charCount(text) <= MaxChars {
		return text, false
	}
	runes := []rune(text)
	return string(runes[:MaxChars]) + TruncationMarker, true
}

func charCount(s string) int {
	return utf8.RuneCountInString(s)
}
