package llm

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// ReplyKind tags how a model reply was interpreted.
type ReplyKind int

const (
	// ReplyText is a free-text reply.
	ReplyText ReplyKind = iota
	// ReplyJSON is a reply that parsed as JSON.
	ReplyJSON
	// ReplyUnparseable is a reply that should have been JSON but was not.
	ReplyUnparseable
)

func (k ReplyKind) String() (s string) {
	switch k {
	case ReplyJSON:
		s = "json"
	case ReplyUnparseable:
		s = "unparseable"
	default:
		s = "text"
	}
	return s
}

// ErrNotJSON is returned when decoding a reply that holds no JSON.
var ErrNotJSON = errors.New("reply is not JSON")

// Reply is a model answer. JSON is set only for ReplyJSON; Text always holds
// the raw answer.
type Reply struct {
	Kind ReplyKind
	Text string
	JSON json.RawMessage
}

// ParseReply interprets raw model output for the requested format. JSON
// replies are tried as-is after removing code fences, then by the first
// embedded object or array.
func ParseReply(raw string, format Format) (reply Reply) {
	reply = Reply{Kind: ReplyText, Text: raw}

	if format != FormatJSON {
		reply.Text = strings.TrimSpace(raw)
		return reply
	}

	cleaned := strings.TrimSpace(stripMarkdownCodeFences(raw))
	if json.Valid([]byte(cleaned)) {
		reply.Kind = ReplyJSON
		reply.JSON = json.RawMessage(cleaned)
		return reply
	}

	if embedded, ok := embeddedJSON(cleaned); ok {
		reply.Kind = ReplyJSON
		reply.JSON = json.RawMessage(embedded)
		return reply
	}

	reply.Kind = ReplyUnparseable
	return reply
}

// Decode unmarshals a JSON reply into v.
func (r Reply) Decode(v any) (err error) {
	if r.Kind != ReplyJSON {
		err = ErrNotJSON
		return err
	}

	err = json.Unmarshal(r.JSON, v)
	if err != nil {
		err = errors.Wrapf(err, "failed to decode reply: %s", r.Text)
		return err
	}

	return err
}

// Payload returns the reply as it should be sent to API clients: decoded JSON
// when available, otherwise the raw text.
func (r Reply) Payload() (payload any) {
	if r.Kind == ReplyJSON {
		payload = r.JSON
		return payload
	}
	payload = r.Text
	return payload
}

// stripMarkdownCodeFences removes a surrounding ``` or ```json fence.
func stripMarkdownCodeFences(text string) (cleaned string) {
	cleaned = strings.TrimSpace(text)

	if !strings.HasPrefix(cleaned, "```") {
		return cleaned
	}

	// Drop the opening fence line, including any language tag.
	newline := strings.IndexByte(cleaned, '\n')
	if newline == -1 {
		cleaned = strings.Trim(cleaned, "`")
		return cleaned
	}
	cleaned = cleaned[newline+1:]

	cleaned = strings.TrimRight(cleaned, " \r\n")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimRight(cleaned, " \r\n")

	return cleaned
}

// embeddedJSON finds the first {...} or [...] span that is valid JSON.
func embeddedJSON(text string) (found string, ok bool) {
	start := strings.IndexAny(text, "{[")
	if start == -1 {
		return found, ok
	}

	closer := byte('}')
	if text[start] == '[' {
		closer = ']'
	}

	end := strings.LastIndexByte(text, closer)
	if end <= start {
		return found, ok
	}

	candidate := text[start : end+1]
	if json.Valid([]byte(candidate)) {
		found = candidate
		ok = true
	}

	return found, ok
}
