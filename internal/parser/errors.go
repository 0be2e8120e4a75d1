package parser

import "errors"

// Parse failure kinds. Match them with errors.Is.
var (
	ErrEmptyInput        = errors.New("empty input")
	ErrNoChapters        = errors.New("no valid chapters found")
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// ParseError reports a manuscript that could not be turned into a novel.
type ParseError struct {
	// Name is the manuscript file name, if known.
	Name string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Name == "" {
		return "parse: " + e.Err.Error()
	}
	return "parse " + e.Name + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }
