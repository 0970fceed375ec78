// internal/handlerid/parser.go
package handlerid

import (
	"fmt"
	"regexp"
	"strings"
)

// segmentRegex validates a single segment of a handler reference.
var segmentRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Parse creates an ID by parsing its canonical string representation.
func Parse(raw string) (ID, error) {
	if raw == "" {
		return ID{}, fmt.Errorf("handler reference cannot be empty")
	}

	parts := strings.Split(raw, ".")
	if len(parts) != 2 {
		return ID{}, fmt.Errorf("handler reference %q must have exactly two segments, got %d", raw, len(parts))
	}

	for _, segment := range parts {
		if !segmentRegex.MatchString(segment) {
			return ID{}, fmt.Errorf("handler reference %q: invalid segment %q", raw, segment)
		}
	}

	return ID{Module: parts[0], Handler: parts[1]}, nil
}

// MustParse is Parse for references known good at authoring time.
func MustParse(raw string) ID {
	id, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return id
}

// Valid reports whether raw is a well-formed handler reference.
func Valid(raw string) bool {
	_, err := Parse(raw)
	return err == nil
}
