package models

import (
	"encoding/json"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// Entry types and roles found in sub-agent transcripts.
const (
	EntryTypeMessage = "message"

	RoleUser      = "user"
	RoleAssistant = "assistant"

	PartTypeText     = "text"
	PartTypeThinking = "thinking"
)

// TranscriptEntry is one line of a sub-agent transcript. Only entries of type
// "message" carry a Message; all other entry types are ignored.
type TranscriptEntry struct {
	Type    string             `json:"type"`
	Message *TranscriptMessage `json:"message,omitempty"`
}

// TranscriptMessage is a single conversational turn. Content is either a JSON
// string or an array of typed parts, so it is kept raw until read.
type TranscriptMessage struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content,omitempty"`
}

// ContentPart is one element of multi-part message content.
type ContentPart struct {
	Type string `mapstructure:"type"`
	Text string `mapstructure:"text"`
}

// IsProse reports whether the part carries prose or reasoning text.
func (p ContentPart) IsProse() bool {
	return p.Type == PartTypeText || p.Type == PartTypeThinking
}

// IsAssistantMessage reports whether the entry is an assistant-authored message.
func (e TranscriptEntry) IsAssistantMessage() bool {
	return e.Type == EntryTypeMessage && e.Message != nil && e.Message.Role == RoleAssistant
}

// Text flattens the message content. String content is returned verbatim;
// for array content only prose parts are kept, joined by a blank line in
// their original order. Any other shape yields "".
func (m *TranscriptMessage) Text() string {
	if m == nil || len(m.Content) == 0 {
		return ""
	}

	var raw any
	if err := json.Unmarshal(m.Content, &raw); err != nil {
		return ""
	}

	switch v := raw.(type) {
	case string:
		return v
	case []any:
		parts := ParseContentParts(v)
		texts := make([]string, 0, len(parts))
		for _, p := range parts {
			if p.IsProse() {
				texts = append(texts, p.Text)
			}
		}
		return strings.Join(texts, "\n\n")
	default:
		return ""
	}
}

// ParseContentParts decodes loosely typed content parts. Elements that are not
// objects are dropped rather than failing the whole message.
func ParseContentParts(items []any) []ContentPart {
	parts := make([]ContentPart, 0, len(items))
	for _, item := range items {
		var p ContentPart
		if err := mapstructure.Decode(item, &p); err != nil {
			continue
		}
		parts = append(parts, p)
	}
	return parts
}
