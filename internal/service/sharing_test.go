package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/notekeeper/internal/model"
	"github.com/nhle/notekeeper/internal/service"
)

func TestFolders(t *testing.T) {
	f := newFixture(t)

	work, err := f.svc.CreateFolder(f.alice, service.CreateFolderInput{Name: "Work"})
	require.NoError(t, err)
	_, err = f.svc.CreateFolder(f.alice, service.CreateFolderInput{Name: "Archive", ParentFolderID: &work.ID})
	require.NoError(t, err)

	_, err = f.svc.CreateFolder(f.alice, service.CreateFolderInput{Name: " "})
	assert.ErrorIs(t, err, service.ErrValidation)

	folders, err := f.svc.ListFolders(f.alice)
	require.NoError(t, err)
	require.Len(t, folders, 2)
	assert.Equal(t, "Archive", folders[0].Name)

	_, err = f.svc.RenameFolder(f.bob, work.ID, "Mine")
	assert.ErrorIs(t, err, service.ErrForbidden)

	renamed, err := f.svc.RenameFolder(f.alice, work.ID, "Job")
	require.NoError(t, err)
	assert.Equal(t, "Job", renamed.Name)

	assert.ErrorIs(t, f.svc.DeleteFolder(f.bob, work.ID), service.ErrForbidden)
	require.NoError(t, f.svc.DeleteFolder(f.alice, work.ID))

	folders, err = f.svc.ListFolders(f.alice)
	require.NoError(t, err)
	assert.Empty(t, folders)
}

func TestTags(t *testing.T) {
	f := newFixture(t)

	tag, err := f.svc.CreateTag(f.alice, service.CreateTagInput{Name: "urgent", Color: "#ff8800"})
	require.NoError(t, err)

	_, err = f.svc.CreateTag(f.alice, service.CreateTagInput{Name: "bad", Color: "orange"})
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = f.svc.CreateTag(f.alice, service.CreateTagInput{Name: "urgent"})
	assert.ErrorIs(t, err, service.ErrConflict)

	_, err = f.svc.UpdateTag(f.bob, tag.ID, service.CreateTagInput{Name: "x"})
	assert.ErrorIs(t, err, service.ErrForbidden)

	updated, err := f.svc.UpdateTag(f.alice, tag.ID, service.CreateTagInput{Name: "later", Color: "#00ff00"})
	require.NoError(t, err)
	assert.Equal(t, "later", updated.Name)

	require.NoError(t, f.svc.DeleteTag(f.alice, tag.ID))
	tags, err := f.svc.ListTags(f.alice)
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestAttachments(t *testing.T) {
	f := newFixture(t)
	n := f.note(t, "voice memo")
	seconds := 42

	a, err := f.svc.AddAttachment(f.alice, service.AddAttachmentInput{
		NoteID: n.ID, Type: model.AttachmentAudio, URL: "https://cdn.example.com/memo.m4a", Duration: &seconds,
	})
	require.NoError(t, err)

	_, err = f.svc.AddAttachment(f.alice, service.AddAttachmentInput{
		NoteID: n.ID, Type: "gif", URL: "https://cdn.example.com/x.gif",
	})
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = f.svc.ListAttachments(f.bob, n.ID)
	assert.ErrorIs(t, err, service.ErrForbidden)

	list, err := f.svc.ListAttachments(f.alice, n.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Duration)
	assert.Equal(t, 42, *list[0].Duration)

	require.NoError(t, f.svc.DeleteAttachment(f.alice, n.ID, a.ID))
	assert.ErrorIs(t, f.svc.DeleteAttachment(f.alice, n.ID, a.ID), service.ErrNotFound)
}

func TestCollaborators(t *testing.T) {
	f := newFixture(t)
	n := f.note(t, "shared")
	bob, err := f.svc.Me(f.bob)
	require.NoError(t, err)

	_, err = f.svc.AddCollaborator(f.alice, service.AddCollaboratorInput{NoteID: n.ID, UserID: f.aliceID})
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = f.svc.AddCollaborator(f.alice, service.AddCollaboratorInput{NoteID: n.ID, UserID: "ghost"})
	assert.ErrorIs(t, err, service.ErrValidation)

	c, err := f.svc.AddCollaborator(f.alice, service.AddCollaboratorInput{NoteID: n.ID, UserID: bob.ID})
	require.NoError(t, err)
	assert.Equal(t, model.PermissionView, c.Permission)

	_, err = f.svc.AddCollaborator(f.alice, service.AddCollaboratorInput{NoteID: n.ID, UserID: bob.ID})
	assert.ErrorIs(t, err, service.ErrConflict)

	list, err := f.svc.ListCollaborators(f.alice, n.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, f.svc.RemoveCollaborator(f.alice, n.ID, c.ID))
}

func TestEnsureUser(t *testing.T) {
	f := newFixture(t)

	u, err := f.svc.EnsureUser(f.alice, model.User{OpenID: "carol", Name: "Carol"})
	require.NoError(t, err)
	again, err := f.svc.EnsureUser(f.alice, model.User{OpenID: "carol"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.ID)
	assert.Equal(t, "Carol", again.Name)

	_, err = f.svc.EnsureUser(f.alice, model.User{})
	assert.ErrorIs(t, err, service.ErrValidation)
}
