package properties

import "fmt"

// ParseError reports a line that is neither blank, a comment, nor key=value.
type ParseError struct {
	Path string
	Line int
	Text string
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %s: %q", e.Path, e.Line, e.Msg, e.Text)
}

// MissingKeyError is returned when a required key is not present.
type MissingKeyError struct {
	Path string
	Key  string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("%s: missing required key %q", e.Path, e.Key)
}
