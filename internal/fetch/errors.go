// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import "fmt"

// The three failure classes of a run. Each is fatal: a run aborts on the
// first one and the process exits non-zero. errors.As distinguishes them
// so callers and the history store can record the failure class.

// FetchError reports a transport failure or a non-success HTTP status from
// the arXiv API.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string { return fmt.Sprintf("fetching %s: %v", e.URL, e.Err) }
func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports a response body that is not a well-formed Atom feed.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parsing arXiv response: %v", e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }

// IOError reports a failure writing the snapshot artifact.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string { return fmt.Sprintf("writing %s: %v", e.Path, e.Err) }
func (e *IOError) Unwrap() error { return e.Err }
