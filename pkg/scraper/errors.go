package scraper

import "fmt"

// ParseError reports a selector or document that could not be parsed. With
// the built-in selectors it only happens if the constants are edited.
type ParseError struct {
	Selector string
	Err      error
}

func (e *ParseError) Error() string {
	if e.Selector == "" {
		return fmt.Sprintf("parse document: %v", e.Err)
	}
	return fmt.Sprintf("parse selector %q: %v", e.Selector, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
