package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/tidwall/gjson"
)

// itemSchema is the minimum an item must satisfy to be imported or listed
const itemSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["id", "attributes"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "type": {"type": "string"},
    "attributes": {"type": "object"},
    "links": {
      "type": "object",
      "properties": {"self": {"type": "string"}}
    }
  }
}`

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(itemSchema))
		if err != nil {
			compileErr = err
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("item.json", doc); err != nil {
			compileErr = err
			return
		}
		compiledSchema, compileErr = c.Compile("item.json")
	})
	return compiledSchema, compileErr
}

// RemoteForm is a single form parsed from a fetched document
type RemoteForm struct {
	RemoteID string

	// SourceURL is the item's links.self, falling back to the document's
	// links.self and then to the URL it was fetched from
	SourceURL string

	Attributes map[string]any

	// Raw is the fetched document, verbatim
	Raw string

	elementsRaw string
}

// HasElements reports whether the document carried an elements attribute
func (f *RemoteForm) HasElements() bool {
	return f.elementsRaw != ""
}

// ElementsYAML returns the elements document as YAML text, keeping key order
func (f *RemoteForm) ElementsYAML() (string, error) {
	if f.elementsRaw == "" {
		return "", nil
	}
	return elementsToYAML(f.elementsRaw)
}

// Entry is one item of a remote catalog listing
type Entry struct {
	ID         string
	Type       string
	SourceURL  string
	Attributes map[string]any

	raw json.RawMessage
}

// MarshalJSON emits the item as it was received
func (e Entry) MarshalJSON() ([]byte, error) {
	if len(e.raw) > 0 {
		return e.raw, nil
	}
	var links *Links
	if e.SourceURL != "" {
		links = &Links{Self: e.SourceURL}
	}
	return json.Marshal(Resource{ID: e.ID, Type: e.Type, Attributes: e.Attributes, Links: links})
}

// UnmarshalJSON parses a single listing item
func (e *Entry) UnmarshalJSON(data []byte) error {
	entry, err := decodeEntry(gjson.ParseBytes(data))
	if err != nil {
		return err
	}
	*e = *entry
	return nil
}

// DecodeForm parses a single-form document fetched from fetchedURL. The item
// may be wrapped in a data envelope or inline.
func DecodeForm(body []byte, fetchedURL string) (*RemoteForm, error) {
	doc, err := decodeDocument(body)
	if err != nil {
		return nil, err
	}

	item, itemPath := doc, ""
	if data, ok := doc["data"]; ok {
		m, ok := data.(map[string]any)
		if !ok {
			return nil, parseError("data must be a single item", nil)
		}
		item, itemPath = m, "data."
	}

	if err := validateItem(item); err != nil {
		return nil, err
	}

	form := &RemoteForm{
		RemoteID:   item["id"].(string),
		SourceURL:  firstNonEmpty(selfLink(item), selfLink(doc), fetchedURL),
		Attributes: convertNumbers(item["attributes"]).(map[string]any),
		Raw:        string(body),
	}
	if elements := gjson.GetBytes(body, itemPath+"attributes.elements"); elements.Exists() {
		form.elementsRaw = elements.Raw
	}
	return form, nil
}

// DecodeList parses a catalog list document. Any invalid item rejects the
// whole document.
func DecodeList(body []byte) ([]Entry, error) {
	doc, err := decodeDocument(body)
	if err != nil {
		return nil, err
	}

	data, ok := doc["data"]
	if !ok {
		return nil, parseError("missing data", nil)
	}
	if _, ok := data.([]any); !ok {
		return nil, parseError("data must be a list", nil)
	}

	items := orderedItems(gjson.GetBytes(body, "data"))
	entries := make([]Entry, 0, len(items))
	for i, item := range items {
		entry, err := decodeEntry(item)
		if err != nil {
			return nil, parseError(fmt.Sprintf("data[%d]", i), err)
		}
		entries = append(entries, *entry)
	}
	return entries, nil
}

func decodeEntry(item gjson.Result) (*Entry, error) {
	v, err := decodeValue([]byte(item.Raw))
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, parseError("item must be an object", nil)
	}
	if err := validateItem(m); err != nil {
		return nil, err
	}

	typ, _ := m["type"].(string)
	return &Entry{
		ID:         m["id"].(string),
		Type:       typ,
		SourceURL:  selfLink(m),
		Attributes: convertNumbers(m["attributes"]).(map[string]any),
		raw:        json.RawMessage(item.Raw),
	}, nil
}

func decodeDocument(body []byte) (map[string]any, error) {
	v, err := decodeValue(body)
	if err != nil {
		return nil, err
	}
	doc, ok := v.(map[string]any)
	if !ok {
		return nil, parseError("document must be an object", nil)
	}
	return doc, nil
}

func decodeValue(body []byte) (any, error) {
	if !gjson.ValidBytes(body) {
		return nil, parseError("malformed JSON", nil)
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, parseError("malformed JSON", err)
	}
	return Normalize(v), nil
}

func validateItem(item map[string]any) error {
	sch, err := schema()
	if err != nil {
		return fmt.Errorf("failed to compile item schema: %w", err)
	}
	if err := sch.Validate(item); err != nil {
		return parseError("item does not match the catalog item shape", err)
	}
	return nil
}

// orderedItems returns the elements of a list, or of an object that the list
// rule turns into one, in index order
func orderedItems(r gjson.Result) []gjson.Result {
	if r.IsArray() {
		return r.Array()
	}
	type indexed struct {
		i int
		v gjson.Result
	}
	var items []indexed
	r.ForEach(func(k, v gjson.Result) bool {
		i, _ := strconv.Atoi(k.String())
		items = append(items, indexed{i: i, v: v})
		return true
	})
	slices.SortFunc(items, func(a, b indexed) int { return a.i - b.i })

	out := make([]gjson.Result, len(items))
	for i, it := range items {
		out[i] = it.v
	}
	return out
}

func selfLink(m map[string]any) string {
	links, _ := m["links"].(map[string]any)
	self, _ := links["self"].(string)
	return self
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
