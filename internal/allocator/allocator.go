// Package allocator decides the local identifier of an imported form.
//
// The result is stable across repeated imports of the same source URL and
// never collides with an unrelated local form.
package allocator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/stacklok/formsync-server/internal/forms"
	"github.com/stacklok/formsync-server/internal/provenance"
)

const (
	syncSuffix  = "_sync"
	suffixWidth = 2
	maxSuffixes = 100
)

// ErrIDAllocationExhausted is returned when every candidate identifier is taken
var ErrIDAllocationExhausted = errors.New("cannot generate import id")

// Allocator resolves local identifiers against form storage and provenance
type Allocator struct {
	forms       forms.Storage
	provenance  provenance.Store
	claimUnused bool
	maxLength   int
}

// Option configures an Allocator
type Option func(*Allocator)

// WithClaimUnmanaged lets the bare remote id be reused when the local form
// holding it has no provenance record at all. Off by default: such a form was
// authored locally and gets suffixed around like any other collision.
func WithClaimUnmanaged(claim bool) Option {
	return func(a *Allocator) {
		a.claimUnused = claim
	}
}

// WithMaxLength overrides forms.MaxIDLength
func WithMaxLength(n int) Option {
	return func(a *Allocator) {
		a.maxLength = n
	}
}

// New returns an Allocator reading from the given stores. It never writes.
func New(storage forms.Storage, store provenance.Store, opts ...Option) *Allocator {
	a := &Allocator{
		forms:      storage,
		provenance: store,
		maxLength:  forms.MaxIDLength,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ResolveLocalID returns the local identifier to use for remoteID imported from sourceURL.
//
// remoteID is first passed through forms.SanitizeID. The bare id is used when
// it is free or already linked to sourceURL.
// Otherwise remoteID+"_sync" is tried, then remoteID_00 through remoteID_99,
// each truncated to the maximum identifier length.
func (a *Allocator) ResolveLocalID(ctx context.Context, remoteID, sourceURL string) (string, error) {
	if remoteID == "" {
		return "", fmt.Errorf("remote id must not be empty")
	}
	remoteID = forms.SanitizeID(remoteID)

	available, err := a.bareIDAvailable(ctx, remoteID, sourceURL)
	if err != nil {
		return "", err
	}
	if available && len(remoteID) <= a.maxLength {
		return remoteID, nil
	}

	candidate := truncate(remoteID+syncSuffix, a.maxLength)
	taken, err := forms.Exists(ctx, a.forms, candidate)
	if err != nil {
		return "", err
	}
	if !taken {
		return candidate, nil
	}

	base := truncate(remoteID, a.maxLength-suffixWidth-1)
	for i := 0; i < maxSuffixes; i++ {
		candidate = fmt.Sprintf("%s_%0*d", base, suffixWidth, i)
		taken, err := forms.Exists(ctx, a.forms, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}

	slog.WarnContext(ctx, "Identifier space exhausted", "remote_id", remoteID, "source_url", sourceURL)
	return "", fmt.Errorf("%w: %s", ErrIDAllocationExhausted, remoteID)
}

func (a *Allocator) bareIDAvailable(ctx context.Context, remoteID, sourceURL string) (bool, error) {
	exists, err := forms.Exists(ctx, a.forms, remoteID)
	if err != nil {
		return false, err
	}
	if !exists {
		return true, nil
	}

	rec, err := a.provenance.FindByLocalFormID(ctx, remoteID)
	switch {
	case errors.Is(err, provenance.ErrNotFound):
		return a.claimUnused, nil
	case err != nil:
		return false, err
	default:
		return rec.SourceURL == sourceURL, nil
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
