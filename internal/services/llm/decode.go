package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// DecodeReply decodes a model reply into target. Vision models often wrap the
// object in a ```json fence or surround it with prose, so after a direct
// attempt fails the outermost object or array is cut out and decoded instead.
func DecodeReply(content string, target any) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return errors.New("empty payload")
	}
	err := json.Unmarshal([]byte(content), target)
	if err == nil {
		return nil
	}
	payload := extractPayload(content)
	if payload == "" || payload == content {
		return fmt.Errorf("%w (payload: %s)", err, snippet(content))
	}
	if err := json.Unmarshal([]byte(payload), target); err != nil {
		return fmt.Errorf("%w (extracted payload: %s)", err, snippet(payload))
	}
	return nil
}

func extractPayload(content string) string {
	if rest, ok := strings.CutPrefix(content, "```"); ok {
		rest = strings.TrimLeft(rest, " \t\r\n")
		if len(rest) >= 4 && strings.EqualFold(rest[:4], "json") {
			rest = rest[4:]
		}
		if end := strings.LastIndex(rest, "```"); end >= 0 {
			rest = rest[:end]
		}
		content = strings.TrimSpace(rest)
	}
	if content == "" || content[0] == '{' || content[0] == '[' {
		return content
	}
	for _, delims := range []string{"{}", "[]"} {
		start := strings.IndexByte(content, delims[0])
		end := strings.LastIndexByte(content, delims[1])
		if start >= 0 && end > start {
			return strings.TrimSpace(content[start : end+1])
		}
	}
	return content
}

// snippet flattens whitespace and truncates content for error messages.
func snippet(content string) string {
	flat := strings.Join(strings.Fields(content), " ")
	if flat == "" {
		return "<empty>"
	}
	if runes := []rune(flat); len(runes) > 160 {
		return string(runes[:160]) + "..."
	}
	return flat
}
