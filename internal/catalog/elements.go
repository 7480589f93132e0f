package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// orderedObject is a JSON object that keeps its key order when marshalled.
// Form elements are rendered in document order, so maps are not good enough.
type orderedObject []orderedField

type orderedField struct {
	Key   string
	Value any
}

func (o orderedObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// decodeElements turns stored YAML elements into an ordered JSON-ready value.
// Empty text decodes to nil.
func decodeElements(text string) (any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, err
	}
	v, err := nodeToValue(&doc)
	if err != nil {
		return nil, err
	}
	// Reject values encoding/json cannot represent, such as .nan
	if _, err := json.Marshal(v); err != nil {
		return nil, err
	}
	return v, nil
}

func nodeToValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case 0:
		// yaml.Unmarshal leaves the node zero for empty input
		return nil, nil
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return nodeToValue(n.Content[0])
	case yaml.AliasNode:
		return nodeToValue(n.Alias)
	case yaml.SequenceNode:
		list := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := nodeToValue(c)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	case yaml.MappingNode:
		obj := make(orderedObject, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := nodeToValue(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			obj = append(obj, orderedField{Key: n.Content[i].Value, Value: v})
		}
		return orderedToList(obj), nil
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported YAML node kind %d", n.Kind)
	}
}

// orderedToList applies the list rule to an ordered object
func orderedToList(obj orderedObject) any {
	keys := make([]string, len(obj))
	for i, f := range obj {
		keys[i] = f.Key
	}
	if !isDenseIndex(keys) {
		return obj
	}
	list := make([]any, len(obj))
	for _, f := range obj {
		i, _ := strconv.Atoi(f.Key)
		list[i] = f.Value
	}
	return list
}

// elementsToYAML transcodes a raw JSON elements document to the YAML text
// stored on a local form, keeping key order. JSON null yields empty text.
func elementsToYAML(raw string) (string, error) {
	r := gjson.Parse(raw)
	if r.Type == gjson.Null {
		return "", nil
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(jsonToNode(r)); err != nil {
		return "", fmt.Errorf("failed to encode elements as YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to encode elements as YAML: %w", err)
	}
	return buf.String(), nil
}

func jsonToNode(r gjson.Result) *yaml.Node {
	switch {
	case r.IsObject():
		type pair struct {
			key   string
			value gjson.Result
		}
		var pairs []pair
		r.ForEach(func(k, v gjson.Result) bool {
			pairs = append(pairs, pair{key: k.String(), value: v})
			return true
		})

		keys := make([]string, len(pairs))
		for i, p := range pairs {
			keys[i] = p.key
		}
		if isDenseIndex(keys) {
			slices.SortFunc(pairs, func(a, b pair) int {
				ai, _ := strconv.Atoi(a.key)
				bi, _ := strconv.Atoi(b.key)
				return ai - bi
			})
			seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
			for _, p := range pairs {
				seq.Content = append(seq.Content, jsonToNode(p.value))
			}
			return seq
		}

		m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, p := range pairs {
			m.Content = append(m.Content, stringNode(p.key), jsonToNode(p.value))
		}
		return m
	case r.IsArray():
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, v := range r.Array() {
			seq.Content = append(seq.Content, jsonToNode(v))
		}
		return seq
	}

	switch r.Type {
	case gjson.String:
		return stringNode(r.Str)
	case gjson.Number:
		tag := "!!int"
		if strings.ContainsAny(r.Raw, ".eE") {
			tag = "!!float"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: r.Raw}
	case gjson.True:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: "true"}
	case gjson.False:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: "false"}
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}

func stringNode(s string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
	if strings.Contains(s, "\n") {
		n.Style = yaml.LiteralStyle
	}
	return n
}
