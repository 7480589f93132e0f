// Package forms defines the local form model and the storage collaborators
// that persist it.
package forms

import (
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxIDLength is the maximum length of a local form identifier
const MaxIDLength = 32

// Update intervals, in seconds, accepted for SyncSettings.UpdateInterval.
const (
	IntervalManual  = 0
	IntervalHourly  = 60 * 60
	IntervalDaily   = 24 * IntervalHourly
	IntervalWeekly  = 7 * IntervalDaily
	IntervalMonthly = 30 * IntervalDaily
)

var (
	// ErrNotFound is returned when no form exists with the requested id
	ErrNotFound = errors.New("form not found")

	// ErrInvalidField is returned by Set for protected fields or mistyped values
	ErrInvalidField = errors.New("invalid form field")
)

// Attribute names with a dedicated field on Form
const (
	FieldID          = "id"
	FieldUUID        = "uuid"
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldCategory    = "category"
	FieldElements    = "elements"
)

// SyncSettings are the per-form sync options edited by site administrators
type SyncSettings struct {
	// Publish exposes the form in the local catalog
	Publish bool `json:"publish"`

	// UpdateInterval is how often, in seconds, a remote-managed form is
	// re-imported. Zero means manual updates only.
	UpdateInterval int `json:"updateInterval"`
}

// Form is a locally materialized form definition
type Form struct {
	ID          string
	UUID        string
	Title       string
	Description string
	Category    string

	// Elements is the YAML text describing the form fields
	Elements string

	Settings map[string]any

	// Extra holds attributes without a dedicated field
	Extra map[string]any

	Sync SyncSettings

	CreatedAt time.Time
	UpdatedAt time.Time

	isNew bool
}

// New returns an unsaved form with a fresh UUID and default settings
func New(id string) *Form {
	return &Form{
		ID:       id,
		UUID:     uuid.NewString(),
		Settings: DefaultSettings(),
		Extra:    map[string]any{},
		isNew:    true,
	}
}

// DefaultSettings returns the settings a freshly created form starts with
func DefaultSettings() map[string]any {
	return map[string]any{
		"status":            "open",
		"confirmation_type": "page",
		"form_submit_once":  false,
	}
}

// IsNew reports whether the form has never been saved
func (f *Form) IsNew() bool {
	return f.isNew
}

// Set assigns a single attribute. id and uuid cannot be changed this way.
// Attributes without a dedicated field are kept in Extra.
func (f *Form) Set(field string, value any) error {
	switch field {
	case FieldID, FieldUUID:
		return fmt.Errorf("%w: %s is read-only", ErrInvalidField, field)
	case FieldTitle, FieldDescription, FieldCategory, FieldElements:
		s, err := stringValue(field, value)
		if err != nil {
			return err
		}
		switch field {
		case FieldTitle:
			f.Title = s
		case FieldDescription:
			f.Description = s
		case FieldCategory:
			f.Category = s
		case FieldElements:
			f.Elements = s
		}
	default:
		if f.Extra == nil {
			f.Extra = map[string]any{}
		}
		f.Extra[field] = value
	}
	return nil
}

func stringValue(field string, value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		return "", fmt.Errorf("%w: %s must be a string, got %T", ErrInvalidField, field, value)
	}
}

// Clone returns a deep enough copy for storage isolation
func (f *Form) Clone() *Form {
	c := *f
	c.Settings = maps.Clone(f.Settings)
	c.Extra = maps.Clone(f.Extra)
	return &c
}

// ValidUpdateInterval reports whether seconds is one of the supported intervals
func ValidUpdateInterval(seconds int) bool {
	switch seconds {
	case IntervalManual, IntervalHourly, IntervalDaily, IntervalWeekly, IntervalMonthly:
		return true
	}
	return false
}

// ValidateID checks a local identifier: letters, digits, '_' and '-' only,
// at most MaxIDLength long.
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: id must not be empty", ErrInvalidField)
	}
	if len(id) > MaxIDLength {
		return fmt.Errorf("%w: id %q exceeds %d characters", ErrInvalidField, id, MaxIDLength)
	}
	for _, r := range id {
		if !validIDRune(r) {
			return fmt.Errorf("%w: id %q contains invalid character %q", ErrInvalidField, id, r)
		}
	}
	return nil
}

// SanitizeID maps id onto the identifier alphabet, replacing every other
// character with '_'. Length is not enforced.
func SanitizeID(id string) string {
	return strings.Map(func(r rune) rune {
		if validIDRune(r) {
			return r
		}
		return '_'
	}, id)
}

func validIDRune(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_' || r == '-'
}
