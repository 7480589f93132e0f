package forms

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

//go:generate mockgen -destination=mocks/mock_storage.go -package=mocks -source=storage.go Storage

// Storage persists local forms
type Storage interface {
	// Load returns the form with the given id, or ErrNotFound
	Load(ctx context.Context, id string) (*Form, error)

	// LoadAll returns every form ordered by id
	LoadAll(ctx context.Context) ([]*Form, error)

	// Save creates or fully updates a form. On return the form is no longer new
	// and carries its persisted timestamps.
	Save(ctx context.Context, f *Form) error

	// Delete removes a form, or returns ErrNotFound
	Delete(ctx context.Context, id string) error
}

// Exists reports whether a form with the given id is stored
func Exists(ctx context.Context, s Storage, id string) (bool, error) {
	_, err := s.Load(ctx, id)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// DeletionHook is notified after a form has been deleted
type DeletionHook func(ctx context.Context, id string) error

type hookedStorage struct {
	Storage
	hooks []DeletionHook
}

// WithDeletionHooks decorates s so that every successful Delete fires hooks in order
func WithDeletionHooks(s Storage, hooks ...DeletionHook) Storage {
	return &hookedStorage{Storage: s, hooks: hooks}
}

func (h *hookedStorage) Delete(ctx context.Context, id string) error {
	if err := h.Storage.Delete(ctx, id); err != nil {
		return err
	}

	var errs []error
	for _, hook := range h.hooks {
		if err := hook(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Form deletion hook failed", "form_id", id, "error", err)
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("form %s deleted but hooks failed: %w", id, errors.Join(errs...))
	}
	return nil
}
