package refactor

import (
	"encoding/json"
	"strings"
)

// frameRecords attempts to interpret the accumulated buffer as a
// newline-delimited set of JSON records. Empty lines are discarded. The
// buffer only frames once every remaining line parses as JSON; until then
// nothing is consumed, which tolerates a record arriving split across any
// number of underlying reads. The function is pure: it depends only on the
// accumulated text, not on the transport that produced it.
func frameRecords(buffer string) (records []json.RawMessage, rest string) {
	var parsed []json.RawMessage
	for _, line := range strings.Split(buffer, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !json.Valid([]byte(line)) {
			return nil, buffer
		}
		parsed = append(parsed, json.RawMessage(line))
	}
	if len(parsed) == 0 {
		return nil, buffer
	}
	return parsed, ""
}

// containsModuleNotFound checks a raw traceback for the missing-module
// exception marker.
func containsModuleNotFound(traceback string) bool {
	return strings.Contains(traceback, moduleNotFoundType)
}
