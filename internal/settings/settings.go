// Package settings holds the runtime-editable sync settings: the remote
// catalog sources and how long their listing is cached.
//
// Raw values are validated by Resolve before they reach any other component.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"
	"time"
)

// Setting keys
const (
	KeySources    = "sources"
	KeySourcesTTL = "sources_ttl"
)

// ErrInvalidConfiguration is returned for unknown keys and mistyped values
var ErrInvalidConfiguration = errors.New("invalid configuration")

//go:generate mockgen -destination=mocks/mock_store.go -package=mocks -source=settings.go Store

// Settings is the validated settings value
type Settings struct {
	// Sources are catalog list URLs, queried in order
	Sources []string `json:"sources" yaml:"sources"`

	// SourcesTTL is the listing cache lifetime in seconds. Zero or less disables caching.
	SourcesTTL int `json:"sources_ttl" yaml:"sources_ttl"`
}

// Store persists settings
type Store interface {
	Get(ctx context.Context) (Settings, error)
	Save(ctx context.Context, s Settings) error
}

// Defaults returns the settings used when nothing has been saved
func Defaults() Settings {
	return Settings{Sources: []string{}, SourcesTTL: 0}
}

// TTL returns SourcesTTL as a duration
func (s Settings) TTL() time.Duration {
	return time.Duration(s.SourcesTTL) * time.Second
}

// ToMap returns the settings keyed by setting name
func (s Settings) ToMap() map[string]any {
	return map[string]any{
		KeySources:    slices.Clone(s.Sources),
		KeySourcesTTL: s.SourcesTTL,
	}
}

// Resolve validates raw settings and fills in defaults for missing keys.
// Unknown keys and wrongly typed values are rejected.
func Resolve(raw map[string]any) (Settings, error) {
	out := Defaults()

	var unknown []string
	for k := range raw {
		if k != KeySources && k != KeySourcesTTL {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return Settings{}, fmt.Errorf("%w: unknown option(s) %s", ErrInvalidConfiguration, strings.Join(unknown, ", "))
	}

	if v, ok := raw[KeySources]; ok {
		sources, err := stringList(v)
		if err != nil {
			return Settings{}, fmt.Errorf("%w: %s: %w", ErrInvalidConfiguration, KeySources, err)
		}
		out.Sources = sources
	}

	if v, ok := raw[KeySourcesTTL]; ok {
		ttl, err := integer(v)
		if err != nil {
			return Settings{}, fmt.Errorf("%w: %s: %w", ErrInvalidConfiguration, KeySourcesTTL, err)
		}
		out.SourcesTTL = ttl
	}

	return out, nil
}

func stringList(v any) ([]string, error) {
	switch t := v.(type) {
	case []string:
		return slices.Clone(t), nil
	case []any:
		out := make([]string, 0, len(t))
		for i, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("item %d must be a string, got %T", i, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected a list of strings, got %T", v)
	}
}

func integer(v any) (int, error) {
	switch t := v.(type) {
	case int:
		return t, nil
	case int32:
		return int(t), nil
	case int64:
		return int(t), nil
	case float64:
		if t != math.Trunc(t) || math.IsInf(t, 0) || t > math.MaxInt32 || t < math.MinInt32 {
			return 0, fmt.Errorf("expected an integer, got %v", t)
		}
		return int(t), nil
	case json.Number:
		i, err := t.Int64()
		if err != nil {
			return 0, fmt.Errorf("expected an integer, got %s", t)
		}
		return int(i), nil
	default:
		return 0, fmt.Errorf("expected an integer, got %T", v)
	}
}
