// Package summary distills a sub-agent transcript into a short,
// human-readable result for task review.
//
// Extraction is a best-effort heuristic. Three strategies are tried in order,
// each scanning assistant messages from the most recent backwards:
//
//  1. an explicit "## Findings" section,
//  2. the last message that is not an acknowledgment or heartbeat,
//  3. the last message, whatever it says.
package summary

import (
	"strings"

	"github.com/missioncontrol/mcagent/internal/models"
)

// Strategy names the heuristic that produced a summary.
type Strategy string

const (
	StrategyFindings        Strategy = "findings"
	StrategyLastSubstantive Strategy = "last_substantive"
	StrategyFallback        Strategy = "fallback"
)

// Result is an extracted summary.
type Result struct {
	Text      string
	Strategy  Strategy
	Truncated bool
}

// Extract returns the best summary it can find in entries. ok is false when
// the transcript has no assistant messages or every candidate cleans down to
// nothing.
func Extract(entries []models.TranscriptEntry) (res Result, ok bool) {
	messages := AssistantMessages(entries)
	if len(messages) == 0 {
		return Result{}, false
	}

	cleaned := make([]string, len(messages))
	for i, m := range messages {
		cleaned[i] = Clean(m)
	}

	for i := len(cleaned) - 1; i >= 0; i-- {
		body, found := FindingsBody(cleaned[i])
		if found && charCount(body) > minFindingsChars {
			return newResult(body, StrategyFindings), true
		}
	}

	for i := len(cleaned) - 1; i >= 0; i-- {
		if IsSubstantive(cleaned[i]) {
			return newResult(cleaned[i], StrategyLastSubstantive), true
		}
	}

	if last := cleaned[len(cleaned)-1]; last != "" {
		return newResult(last, StrategyFallback), true
	}
	return Result{}, false
}

// AssistantMessages flattens every assistant message with non-blank content,
// in transcript order.
func AssistantMessages(entries []models.TranscriptEntry) []string {
	var messages []string
	for _, e := range entries {
		if !e.IsAssistantMessage() {
			continue
		}
		text := e.Message.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		messages = append(messages, text)
	}
	return messages
}

func newResult(text string, strategy Strategy) Result {
	text, truncated := Truncate(text)
	return Result{Text: text, Strategy: strategy, Truncated: truncated}
}
