package xps

import "fmt"

// SerializationError reports why a document could not be packaged.
type SerializationError struct {
	Page int    // 1-indexed page, 0 for document-level failures
	Op   string // e.g. "resolve image", "load font", "validate package"
	Err  error
}

func (e *SerializationError) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("xps: page %d: %s: %v", e.Page, e.Op, e.Err)
	}
	return fmt.Sprintf("xps: %s: %v", e.Op, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }
