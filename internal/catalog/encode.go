package catalog

import (
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"

	"github.com/stacklok/formsync-server/internal/forms"
	"github.com/stacklok/formsync-server/internal/provenance"
)

// Paths under the base URL used for links.self
const (
	CatalogPath = "/jsonapi/webforms"
	FormsPath   = "/webforms"
)

// Encoder builds catalog documents for local forms and provenance records
type Encoder struct {
	baseURL string
}

// NewEncoder returns an encoder that builds absolute links under baseURL
func NewEncoder(baseURL string) *Encoder {
	return &Encoder{baseURL: strings.TrimRight(baseURL, "/")}
}

// IndexURL is the URL of the published forms list
func (e *Encoder) IndexURL() string {
	return e.baseURL + CatalogPath
}

// FormURL is the canonical retrieval URL of a published form
func (e *Encoder) FormURL(id string) string {
	return e.IndexURL() + "/" + url.PathEscape(id)
}

// ImportedURL is the URL of a form's provenance record
func (e *Encoder) ImportedURL(id string) string {
	return e.baseURL + FormsPath + "/" + url.PathEscape(id) + "/imported"
}

// Encode serializes a *forms.Form, a *provenance.Record, or a homogeneous
// slice of either. Single values are wrapped in a data envelope; list items
// are inlined. Any other value yields ErrSerialization.
func (e *Encoder) Encode(v any) (*Document, error) {
	switch t := v.(type) {
	case *forms.Form, *provenance.Record:
		res, err := e.EncodeInline(t)
		if err != nil {
			return nil, err
		}
		links := res.Links
		res.Links = nil
		return &Document{Data: res, Links: links}, nil
	case []*forms.Form:
		return encodeList(e, t)
	case []*provenance.Record:
		return encodeList(e, t)
	case []any:
		return e.encodeAnyList(t)
	default:
		return nil, fmt.Errorf("%w: %T", ErrSerialization, v)
	}
}

// EncodeInline serializes a single form or record as a bare item carrying its own links
func (e *Encoder) EncodeInline(v any) (*Resource, error) {
	switch t := v.(type) {
	case *forms.Form:
		if t == nil {
			return nil, fmt.Errorf("%w: nil form", ErrSerialization)
		}
		return e.encodeForm(t), nil
	case *provenance.Record:
		if t == nil {
			return nil, fmt.Errorf("%w: nil provenance record", ErrSerialization)
		}
		return e.encodeRecord(t), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrSerialization, v)
	}
}

func encodeList[T any](e *Encoder, items []T) (*Document, error) {
	data := make([]*Resource, 0, len(items))
	for _, item := range items {
		res, err := e.EncodeInline(item)
		if err != nil {
			return nil, err
		}
		data = append(data, res)
	}
	return &Document{Data: data}, nil
}

func (e *Encoder) encodeAnyList(items []any) (*Document, error) {
	if len(items) == 0 {
		return &Document{Data: []*Resource{}}, nil
	}
	first := fmt.Sprintf("%T", items[0])
	for _, item := range items[1:] {
		if got := fmt.Sprintf("%T", item); got != first {
			return nil, fmt.Errorf("%w: mixed list of %s and %s", ErrSerialization, first, got)
		}
	}
	return encodeList(e, items)
}

func (e *Encoder) encodeForm(f *forms.Form) *Resource {
	attrs := FormAttributes{
		UUID:        html.UnescapeString(f.UUID),
		Title:       html.UnescapeString(f.Title),
		Description: html.UnescapeString(f.Description),
		Category:    html.UnescapeString(f.Category),
	}

	text := html.UnescapeString(f.Elements)
	if elements, err := decodeElements(text); err == nil {
		attrs.Elements = elements
	} else {
		attrs.Elements = text
	}

	return &Resource{
		ID:         f.ID,
		Type:       TypeWebform,
		Attributes: attrs,
		Links:      &Links{Self: e.FormURL(f.ID)},
	}
}

func (e *Encoder) encodeRecord(r *provenance.Record) *Resource {
	return &Resource{
		ID:   r.LocalFormID,
		Type: TypeImportedWebform,
		Attributes: ImportedAttributes{
			SourceURL: r.SourceURL,
			Source:    r.RawSource,
			CreatedAt: r.CreatedAt.Format(time.RFC3339),
			UpdatedAt: r.UpdatedAt.Format(time.RFC3339),
		},
		Links: &Links{Self: e.ImportedURL(r.LocalFormID)},
	}
}
