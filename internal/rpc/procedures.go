package rpc

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nhle/notekeeper/internal/service"
)

// Request bodies for procedures that take only identifiers.
type (
	IDRequest struct {
		ID string `json:"id"`
	}

	NoteRequest struct {
		NoteID string `json:"note_id"`
	}

	NoteItemRequest struct {
		NoteID string `json:"note_id"`
		ID     string `json:"id"`
	}

	PinRequest struct {
		ID     string `json:"id"`
		Pinned bool   `json:"pinned"`
	}

	RenameFolderRequest struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}

	UpdateTagRequest struct {
		ID string `json:"id"`
		service.CreateTagInput
	}
)

// badRequestError marks a body that could not be decoded.
type badRequestError struct{ err error }

func (e *badRequestError) Error() string { return "decoding request: " + e.err.Error() }
func (e *badRequestError) Unwrap() error { return e.err }

// bind decodes the JSON body into T. An empty body yields the zero value.
func bind[T any](c *gin.Context) (T, error) {
	var in T
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return in, nil
	}
	if err := c.ShouldBindJSON(&in); err != nil && !errors.Is(err, io.EOF) {
		return in, &badRequestError{err: err}
	}
	return in, nil
}

type procedureFunc func(c *gin.Context) (any, error)

// procedure registers fn under name and writes its result in the envelope.
func (s *Server) procedure(g *gin.RouterGroup, name string, fn procedureFunc) {
	g.POST("/"+name, func(c *gin.Context) {
		out, err := fn(c)
		s.metrics.observeProcedure(name, err)

		var badReq *badRequestError
		switch {
		case err == nil:
			success(c, out)
		case errors.As(err, &badReq):
			abort(c, http.StatusBadRequest, CodeBadRequest, badReq.Error())
		default:
			if service.Kind(err) == "internal" {
				s.log.Error().Err(err).Str("procedure", name).Msg("procedure failed")
			} else {
				s.log.Debug().Err(err).Str("procedure", name).Msg("procedure rejected")
			}
			failure(c, err)
		}
	})
}

func (s *Server) registerProcedures(g *gin.RouterGroup) {
	svc := s.svc

	s.procedure(g, "auth.me", func(c *gin.Context) (any, error) {
		return svc.Me(c.Request.Context())
	})

	// notes
	s.procedure(g, "notes.list", func(c *gin.Context) (any, error) {
		return svc.ListNotes(c.Request.Context())
	})
	s.procedure(g, "notes.listArchived", func(c *gin.Context) (any, error) {
		return svc.ListArchivedNotes(c.Request.Context())
	})
	s.procedure(g, "notes.get", func(c *gin.Context) (any, error) {
		in, err := bind[IDRequest](c)
		if err != nil {
			return nil, err
		}
		return svc.GetNote(c.Request.Context(), in.ID)
	})
	s.procedure(g, "notes.create", func(c *gin.Context) (any, error) {
		in, err := bind[service.CreateNoteInput](c)
		if err != nil {
			return nil, err
		}
		return svc.CreateNote(c.Request.Context(), in)
	})
	s.procedure(g, "notes.update", func(c *gin.Context) (any, error) {
		in, err := bind[service.UpdateNoteInput](c)
		if err != nil {
			return nil, err
		}
		return svc.UpdateNote(c.Request.Context(), in)
	})
	s.procedure(g, "notes.delete", func(c *gin.Context) (any, error) {
		in, err := bind[IDRequest](c)
		if err != nil {
			return nil, err
		}
		return gin.H{"success": true}, svc.DeleteNote(c.Request.Context(), in.ID)
	})
	s.procedure(g, "notes.search", func(c *gin.Context) (any, error) {
		in, err := bind[service.SearchNotesInput](c)
		if err != nil {
			return nil, err
		}
		return svc.SearchNotes(c.Request.Context(), in)
	})
	s.procedure(g, "notes.archive", func(c *gin.Context) (any, error) {
		in, err := bind[IDRequest](c)
		if err != nil {
			return nil, err
		}
		return svc.ArchiveNote(c.Request.Context(), in.ID)
	})
	s.procedure(g, "notes.unarchive", func(c *gin.Context) (any, error) {
		in, err := bind[IDRequest](c)
		if err != nil {
			return nil, err
		}
		return svc.UnarchiveNote(c.Request.Context(), in.ID)
	})
	s.procedure(g, "notes.pin", func(c *gin.Context) (any, error) {
		in, err := bind[PinRequest](c)
		if err != nil {
			return nil, err
		}
		return svc.PinNote(c.Request.Context(), in.ID, in.Pinned)
	})

	// tasks
	s.procedure(g, "tasks.list", func(c *gin.Context) (any, error) {
		in, err := bind[NoteRequest](c)
		if err != nil {
			return nil, err
		}
		return svc.ListTasks(c.Request.Context(), in.NoteID)
	})
	s.procedure(g, "tasks.create", func(c *gin.Context) (any, error) {
		in, err := bind[service.CreateTaskInput](c)
		if err != nil {
			return nil, err
		}
		return svc.CreateTask(c.Request.Context(), in)
	})
	s.procedure(g, "tasks.update", func(c *gin.Context) (any, error) {
		in, err := bind[service.UpdateTaskInput](c)
		if err != nil {
			return nil, err
		}
		return svc.UpdateTask(c.Request.Context(), in)
	})
	s.procedure(g, "tasks.delete", func(c *gin.Context) (any, error) {
		in, err := bind[NoteItemRequest](c)
		if err != nil {
			return nil, err
		}
		return gin.H{"success": true}, svc.DeleteTask(c.Request.Context(), in.NoteID, in.ID)
	})
	s.procedure(g, "tasks.reorder", func(c *gin.Context) (any, error) {
		in, err := bind[service.ReorderTasksInput](c)
		if err != nil {
			return nil, err
		}
		return gin.H{"success": true}, svc.ReorderTasks(c.Request.Context(), in)
	})

	// folders and tags
	s.procedure(g, "folders.list", func(c *gin.Context) (any, error) {
		return svc.ListFolders(c.Request.Context())
	})
	s.procedure(g, "folders.create", func(c *gin.Context) (any, error) {
		in, err := bind[service.CreateFolderInput](c)
		if err != nil {
			return nil, err
		}
		return svc.CreateFolder(c.Request.Context(), in)
	})
	s.procedure(g, "folders.rename", func(c *gin.Context) (any, error) {
		in, err := bind[RenameFolderRequest](c)
		if err != nil {
			return nil, err
		}
		return svc.RenameFolder(c.Request.Context(), in.ID, in.Name)
	})
	s.procedure(g, "folders.delete", func(c *gin.Context) (any, error) {
		in, err := bind[IDRequest](c)
		if err != nil {
			return nil, err
		}
		return gin.H{"success": true}, svc.DeleteFolder(c.Request.Context(), in.ID)
	})
	s.procedure(g, "tags.list", func(c *gin.Context) (any, error) {
		return svc.ListTags(c.Request.Context())
	})
	s.procedure(g, "tags.create", func(c *gin.Context) (any, error) {
		in, err := bind[service.CreateTagInput](c)
		if err != nil {
			return nil, err
		}
		return svc.CreateTag(c.Request.Context(), in)
	})
	s.procedure(g, "tags.update", func(c *gin.Context) (any, error) {
		in, err := bind[UpdateTagRequest](c)
		if err != nil {
			return nil, err
		}
		return svc.UpdateTag(c.Request.Context(), in.ID, in.CreateTagInput)
	})
	s.procedure(g, "tags.delete", func(c *gin.Context) (any, error) {
		in, err := bind[IDRequest](c)
		if err != nil {
			return nil, err
		}
		return gin.H{"success": true}, svc.DeleteTag(c.Request.Context(), in.ID)
	})

	// attachments and collaborators
	s.procedure(g, "attachments.list", func(c *gin.Context) (any, error) {
		in, err := bind[NoteRequest](c)
		if err != nil {
			return nil, err
		}
		return svc.ListAttachments(c.Request.Context(), in.NoteID)
	})
	s.procedure(g, "attachments.add", func(c *gin.Context) (any, error) {
		in, err := bind[service.AddAttachmentInput](c)
		if err != nil {
			return nil, err
		}
		return svc.AddAttachment(c.Request.Context(), in)
	})
	s.procedure(g, "attachments.delete", func(c *gin.Context) (any, error) {
		in, err := bind[NoteItemRequest](c)
		if err != nil {
			return nil, err
		}
		return gin.H{"success": true}, svc.DeleteAttachment(c.Request.Context(), in.NoteID, in.ID)
	})
	s.procedure(g, "collaborators.list", func(c *gin.Context) (any, error) {
		in, err := bind[NoteRequest](c)
		if err != nil {
			return nil, err
		}
		return svc.ListCollaborators(c.Request.Context(), in.NoteID)
	})
	s.procedure(g, "collaborators.add", func(c *gin.Context) (any, error) {
		in, err := bind[service.AddCollaboratorInput](c)
		if err != nil {
			return nil, err
		}
		return svc.AddCollaborator(c.Request.Context(), in)
	})
	s.procedure(g, "collaborators.remove", func(c *gin.Context) (any, error) {
		in, err := bind[NoteItemRequest](c)
		if err != nil {
			return nil, err
		}
		return gin.H{"success": true}, svc.RemoveCollaborator(c.Request.Context(), in.NoteID, in.ID)
	})
}
