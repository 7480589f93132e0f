// Package catalog maps local forms and provenance records to and from the
// JSON catalog document exchanged between publishing and consuming sites.
//
// A list document looks like
//
//	{"data": [item, ...], "links": {"self": url}}
//
// and a single form is either wrapped as {"data": item, "links": {...}} or an
// inline item. An item is {"id", "type", "attributes", "links": {"self"}}.
package catalog

import (
	"errors"
	"fmt"
)

// Resource types
const (
	TypeWebform         = "webform"
	TypeImportedWebform = "imported_webform"
)

var (
	// ErrSerialization is returned when asked to encode a value outside the
	// supported set. It always indicates a programming error.
	ErrSerialization = errors.New("cannot serialize value")

	// ErrParse classifies every decode failure
	ErrParse = errors.New("invalid catalog document")
)

// ParseError describes why a fetched document was rejected
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrParse, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrParse, e.Reason)
}

// Is makes errors.Is(err, ErrParse) hold for every ParseError
func (*ParseError) Is(target error) bool {
	return target == ErrParse
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func parseError(reason string, err error) error {
	return &ParseError{Reason: reason, Err: err}
}

// Links holds the canonical URL of a document or item
type Links struct {
	Self string `json:"self,omitempty"`
}

// Resource is a single catalog item
type Resource struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Attributes any    `json:"attributes"`
	Links      *Links `json:"links,omitempty"`
}

// Document is a top-level catalog document. Data is a *Resource or a []*Resource.
type Document struct {
	Data  any    `json:"data"`
	Links *Links `json:"links,omitempty"`
}

// FormAttributes is the allowlisted attribute set of a published form
type FormAttributes struct {
	UUID        string `json:"uuid"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`

	// Elements is the decoded elements document, or the raw text when it is not valid YAML
	Elements any `json:"elements"`
}

// ImportedAttributes describes a provenance record
type ImportedAttributes struct {
	SourceURL string `json:"sourceUrl"`
	Source    string `json:"source"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}
