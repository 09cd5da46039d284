// Package service implements the owner-scoped query operations over notes,
// tasks and the entities attached to them.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/nhle/notekeeper/internal/model"
	"github.com/nhle/notekeeper/internal/store"
)

var (
	// ErrValidation marks malformed input. No storage access has happened.
	ErrValidation = errors.New("validation error")

	// ErrNotFound marks a row that is absent or not visible to the caller.
	ErrNotFound = errors.New("not found")

	// ErrForbidden marks a row that exists but belongs to someone else.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict marks a write rejected by a uniqueness rule.
	ErrConflict = errors.New("conflict")

	// ErrStorageUnavailable marks a missing backing store or caller identity.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// Kind names the category of err for transports and logs.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrStorageUnavailable):
		return "unavailable"
	default:
		return "internal"
	}
}

// KindError returns the sentinel for a kind name produced by Kind, or nil
// when the name is unknown.
func KindError(kind string) error {
	switch kind {
	case "validation":
		return ErrValidation
	case "not_found":
		return ErrNotFound
	case "forbidden":
		return ErrForbidden
	case "conflict":
		return ErrConflict
	case "unavailable":
		return ErrStorageUnavailable
	}
	return nil
}

type userKey struct{}

// WithUser returns a context carrying the authenticated caller's user ID.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey{}, userID)
}

// UserFrom returns the caller's user ID, if any.
func UserFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userKey{}).(string)
	return id, ok && id != ""
}

// Service runs every operation on behalf of the caller found in the
// context.
type Service struct {
	store store.Store
	log   zerolog.Logger
}

// New creates a Service over st.
func New(st store.Store, log zerolog.Logger) *Service {
	return &Service{store: st, log: log}
}

// caller returns the authenticated user ID or ErrStorageUnavailable.
func (s *Service) caller(ctx context.Context) (string, error) {
	if s == nil || s.store == nil {
		return "", fmt.Errorf("%w: no backing store", ErrStorageUnavailable)
	}
	userID, ok := UserFrom(ctx)
	if !ok {
		return "", fmt.Errorf("%w: no caller identity", ErrStorageUnavailable)
	}
	return userID, nil
}

// storeErr maps store sentinels onto service sentinels.
func storeErr(op string, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, store.ErrConflict):
		return fmt.Errorf("%s: %w: %v", op, ErrConflict, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// ownedNote loads a note and checks it belongs to userID. A foreign note
// is reported as not found when hideForeign is set, forbidden otherwise.
func (s *Service) ownedNote(
	ctx context.Context,
	userID, noteID string,
	hideForeign bool,
) (*model.Note, error) {
	if noteID == "" {
		return nil, fmt.Errorf("%w: note id is required", ErrValidation)
	}
	note, err := s.store.GetNote(ctx, noteID)
	if err != nil {
		return nil, storeErr("loading note "+noteID, err)
	}
	if note.UserID != userID {
		if hideForeign {
			return nil, fmt.Errorf("note %s: %w", noteID, ErrNotFound)
		}
		return nil, fmt.Errorf("note %s: %w", noteID, ErrForbidden)
	}
	return note, nil
}

// ownedFolder loads a folder and checks it belongs to userID.
func (s *Service) ownedFolder(ctx context.Context, userID, folderID string) (*model.Folder, error) {
	folder, err := s.store.GetFolder(ctx, folderID)
	if err != nil {
		return nil, storeErr("loading folder "+folderID, err)
	}
	if folder.UserID != userID {
		return nil, fmt.Errorf("folder %s: %w", folderID, ErrForbidden)
	}
	return folder, nil
}

// checkFolderRef verifies an optional folder reference on a note.
func (s *Service) checkFolderRef(ctx context.Context, userID string, folderID *string) error {
	if folderID == nil {
		return nil
	}
	_, err := s.ownedFolder(ctx, userID, *folderID)
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%w: folder %s does not exist", ErrValidation, *folderID)
	}
	return err
}
