package logs

import (
	"encoding/json"
	"strings"

	"condish/internal/logging"
)

// Filter selects log lines. Empty fields match everything.
type Filter struct {
	SessionID string
	RoomID    string
	EventType string
	// MinLevel is one of debug, info, warn, error.
	MinLevel string
}

var levelRank = map[string]int{"debug": 0, "info": 1, "warn": 2, "warning": 2, "error": 3}

// Match reports whether line passes f. JSON lines are decoded; console lines
// are matched on their key=value pairs and level column.
func (f Filter) Match(line string) bool {
	if f == (Filter{}) {
		return true
	}
	fields, level, console := parse(line)
	if f.MinLevel != "" {
		want, ok := levelRank[strings.ToLower(f.MinLevel)]
		got, known := levelRank[level]
		if ok && known && got < want {
			return false
		}
	}
	if f.SessionID != "" {
		// The console format prints only a short session prefix.
		if console && !strings.Contains(line, "Session "+shortID(f.SessionID)) {
			return false
		}
		if !console && fields[logging.FieldSessionID] != f.SessionID {
			return false
		}
	}
	if f.RoomID != "" && fields[logging.FieldRoomID] != f.RoomID {
		return false
	}
	if f.EventType != "" && fields[logging.FieldEventType] != f.EventType {
		return false
	}
	return true
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func parse(line string) (fields map[string]string, level string, console bool) {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "{") {
		var raw map[string]any
		if err := json.Unmarshal([]byte(trimmed), &raw); err == nil {
			fields = make(map[string]string, len(raw))
			for k, v := range raw {
				if s, ok := v.(string); ok {
					fields[k] = s
				}
			}
			return fields, strings.ToLower(fields["level"]), false
		}
	}

	// date time LEVEL [component] ... key=value
	fields = make(map[string]string)
	for i, token := range strings.Fields(trimmed) {
		if i == 2 {
			level = strings.ToLower(token)
		}
		key, value, ok := strings.Cut(token, "=")
		if ok {
			fields[key] = strings.Trim(value, `"`)
		}
	}
	return fields, level, true
}
