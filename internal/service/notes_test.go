package service_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/notekeeper/internal/model"
	"github.com/nhle/notekeeper/internal/service"
	"github.com/nhle/notekeeper/internal/store"
	"github.com/nhle/notekeeper/internal/testutil"
)

type fixture struct {
	store   *store.SQLStore
	svc     *service.Service
	alice   context.Context
	bob     context.Context
	aliceID string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	s := testutil.NewTestStore(t)
	alice := testutil.NewTestUser(t, s, "alice")
	bob := testutil.NewTestUser(t, s, "bob")
	return fixture{
		store:   s,
		svc:     service.New(s, zerolog.Nop()),
		alice:   service.WithUser(context.Background(), alice.ID),
		bob:     service.WithUser(context.Background(), bob.ID),
		aliceID: alice.ID,
	}
}

func (f fixture) note(t *testing.T, title string) *model.Note {
	t.Helper()
	n, err := f.svc.CreateNote(f.alice, service.CreateNoteInput{Title: title})
	require.NoError(t, err)
	return n
}

func TestCreateNoteRejectsEmptyTitleWithoutWriting(t *testing.T) {
	f := newFixture(t)

	for _, title := range []string{"", "   "} {
		_, err := f.svc.CreateNote(f.alice, service.CreateNoteInput{Title: title})
		assert.ErrorIs(t, err, service.ErrValidation)
	}

	count, err := f.store.CountNotes(context.Background(), f.aliceID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestCreateNoteRejectsUnknownType(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateNote(f.alice, service.CreateNoteInput{Title: "x", Type: "memo"})
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestOperationsRequireCaller(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ListNotes(context.Background())
	assert.ErrorIs(t, err, service.ErrStorageUnavailable)

	var nilSvc *service.Service
	_, err = nilSvc.ListNotes(f.alice)
	assert.ErrorIs(t, err, service.ErrStorageUnavailable)
}

func TestListNotesIsOwnerScoped(t *testing.T) {
	f := newFixture(t)

	mine := f.note(t, "mine")
	_, err := f.svc.CreateNote(f.bob, service.CreateNoteInput{Title: "theirs"})
	require.NoError(t, err)
	hidden := f.note(t, "hidden")
	_, err = f.svc.ArchiveNote(f.alice, hidden.ID)
	require.NoError(t, err)

	notes, err := f.svc.ListNotes(f.alice)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, mine.ID, notes[0].ID)

	archived, err := f.svc.ListArchivedNotes(f.alice)
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.Equal(t, hidden.ID, archived[0].ID)
}

func TestGetNoteOfAnotherUserIsNotFound(t *testing.T) {
	f := newFixture(t)
	n := f.note(t, "private")

	_, err := f.svc.GetNote(f.bob, n.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = f.svc.GetNote(f.alice, "missing")
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestUpdateNote(t *testing.T) {
	f := newFixture(t)
	n := f.note(t, "before")

	_, err := f.svc.UpdateNote(f.alice, service.UpdateNoteInput{
		ID:    n.ID,
		Patch: model.NotePatch{Title: model.Some("x")},
	})
	require.NoError(t, err)

	got, err := f.svc.GetNote(f.alice, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "x", got.Title)
	assert.True(t, got.UpdatedAt.After(n.UpdatedAt))
}

func TestUpdateNoteOwnership(t *testing.T) {
	f := newFixture(t)
	n := f.note(t, "mine")

	_, err := f.svc.UpdateNote(f.bob, service.UpdateNoteInput{
		ID: n.ID, Patch: model.NotePatch{Title: model.Some("hijack")},
	})
	assert.ErrorIs(t, err, service.ErrForbidden)

	_, err = f.svc.UpdateNote(f.alice, service.UpdateNoteInput{
		ID: "missing", Patch: model.NotePatch{Title: model.Some("x")},
	})
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = f.svc.PinNote(f.bob, n.ID, true)
	assert.ErrorIs(t, err, service.ErrForbidden)

	_, err = f.svc.ArchiveNote(f.bob, n.ID)
	assert.ErrorIs(t, err, service.ErrForbidden)
}

func TestUpdateNoteRejectsBlankTitle(t *testing.T) {
	f := newFixture(t)
	n := f.note(t, "keep")

	_, err := f.svc.UpdateNote(f.alice, service.UpdateNoteInput{
		ID: n.ID, Patch: model.NotePatch{Title: model.Some(" ")},
	})
	assert.ErrorIs(t, err, service.ErrValidation)

	got, err := f.svc.GetNote(f.alice, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "keep", got.Title)
}

func TestDeleteNote(t *testing.T) {
	f := newFixture(t)
	n := f.note(t, "gone")
	task, err := f.svc.CreateTask(f.alice, service.CreateTaskInput{NoteID: n.ID, Title: "t"})
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.DeleteNote(f.bob, n.ID), service.ErrNotFound)
	require.NoError(t, f.svc.DeleteNote(f.alice, n.ID))

	_, err = f.svc.GetNote(f.alice, n.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = f.store.GetTask(context.Background(), n.ID, task.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSearchNotes(t *testing.T) {
	f := newFixture(t)
	foobar := f.note(t, "Foobar")
	f.note(t, "baz")

	notes, err := f.svc.SearchNotes(f.alice, service.SearchNotesInput{Query: "foo"})
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, foobar.ID, notes[0].ID)

	notes, err = f.svc.SearchNotes(f.alice, service.SearchNotesInput{Query: "BAR", Tags: []string{"ignored"}})
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, foobar.ID, notes[0].ID)

	notes, err = f.svc.SearchNotes(f.bob, service.SearchNotesInput{Query: "Foo"})
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestSearchSkipsArchived(t *testing.T) {
	f := newFixture(t)
	n := f.note(t, "Foobar")
	_, err := f.svc.ArchiveNote(f.alice, n.ID)
	require.NoError(t, err)

	notes, err := f.svc.SearchNotes(f.alice, service.SearchNotesInput{Query: "Foo"})
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestArchiveKeepsNote(t *testing.T) {
	f := newFixture(t)
	n := f.note(t, "archive me")

	_, err := f.svc.ArchiveNote(f.alice, n.ID)
	require.NoError(t, err)

	notes, err := f.svc.ListNotes(f.alice)
	require.NoError(t, err)
	assert.Empty(t, notes)

	got, err := f.svc.GetNote(f.alice, n.ID)
	require.NoError(t, err)
	assert.True(t, got.IsArchived)

	_, err = f.svc.UnarchiveNote(f.alice, n.ID)
	require.NoError(t, err)
	notes, err = f.svc.ListNotes(f.alice)
	require.NoError(t, err)
	assert.Len(t, notes, 1)
}

func TestPinNote(t *testing.T) {
	f := newFixture(t)
	n := f.note(t, "pin")

	pinned, err := f.svc.PinNote(f.alice, n.ID, true)
	require.NoError(t, err)
	assert.True(t, pinned.IsPinned)

	unpinned, err := f.svc.PinNote(f.alice, n.ID, false)
	require.NoError(t, err)
	assert.False(t, unpinned.IsPinned)
}

func TestNoteFolderMustBelongToCaller(t *testing.T) {
	f := newFixture(t)
	theirs, err := f.svc.CreateFolder(f.bob, service.CreateFolderInput{Name: "Bob"})
	require.NoError(t, err)

	_, err = f.svc.CreateNote(f.alice, service.CreateNoteInput{Title: "n", FolderID: &theirs.ID})
	assert.ErrorIs(t, err, service.ErrForbidden)

	missing := "missing"
	_, err = f.svc.CreateNote(f.alice, service.CreateNoteInput{Title: "n", FolderID: &missing})
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestKind(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateNote(f.alice, service.CreateNoteInput{})
	assert.Equal(t, "validation", service.Kind(err))
	assert.ErrorIs(t, service.KindError("validation"), service.ErrValidation)
	assert.Nil(t, service.KindError("internal"))
	assert.Equal(t, "", service.Kind(nil))
}
