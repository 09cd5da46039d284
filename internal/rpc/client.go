package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/nhle/notekeeper/internal/model"
	"github.com/nhle/notekeeper/internal/service"
)

// ErrUnauthenticated is returned when the server rejects the bearer token.
var ErrUnauthenticated = errors.New("unauthenticated")

// Error is a failed procedure call. It unwraps to the matching service
// sentinel so callers can use errors.Is.
type Error struct {
	Procedure string
	Status    int
	Code      string
	Message   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (%d %s)", e.Procedure, e.Message, e.Status, e.Code)
}

func (e *Error) Unwrap() error {
	if e.Code == CodeUnauthenticated {
		return ErrUnauthenticated
	}
	return service.KindError(e.Code)
}

// Client calls procedures on a notes server with a bearer token. Failures
// are returned to the caller as they happen; the client never retries.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

// NewClient creates a client for the server at baseURL. A positive timeout
// bounds each call; zero leaves calls bounded only by their context.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SetToken replaces the bearer token used for subsequent calls. It is safe
// to call while other calls are in flight.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// call posts in to the named procedure and decodes the data field into out.
func (c *Client) call(ctx context.Context, procedure string, in, out interface{}) error {
	url := c.baseURL + "/rpc/" + procedure

	var payload []byte
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshaling %s request: %w", procedure, err)
		}
		payload = data
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if token := c.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", procedure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s response: %w", procedure, err)
	}

	var env Response
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("unexpected status %d on %s: %s", resp.StatusCode, procedure, string(body))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{
			Procedure: procedure,
			Status:    resp.StatusCode,
			Code:      env.Code,
			Message:   env.Error,
		}
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("unmarshaling %s response: %w", procedure, err)
	}
	return nil
}

// Me returns the authenticated user.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var u model.User
	if err := c.call(ctx, "auth.me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) ListNotes(ctx context.Context) ([]model.Note, error) {
	var notes []model.Note
	if err := c.call(ctx, "notes.list", nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (c *Client) ListArchivedNotes(ctx context.Context) ([]model.Note, error) {
	var notes []model.Note
	if err := c.call(ctx, "notes.listArchived", nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (c *Client) GetNote(ctx context.Context, id string) (*model.Note, error) {
	var n model.Note
	if err := c.call(ctx, "notes.get", IDRequest{ID: id}, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (c *Client) CreateNote(ctx context.Context, in service.CreateNoteInput) (*model.Note, error) {
	var n model.Note
	if err := c.call(ctx, "notes.create", in, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (c *Client) UpdateNote(ctx context.Context, in service.UpdateNoteInput) (*model.Note, error) {
	var n model.Note
	if err := c.call(ctx, "notes.update", in, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (c *Client) DeleteNote(ctx context.Context, id string) error {
	return c.call(ctx, "notes.delete", IDRequest{ID: id}, nil)
}

func (c *Client) SearchNotes(ctx context.Context, in service.SearchNotesInput) ([]model.Note, error) {
	var notes []model.Note
	if err := c.call(ctx, "notes.search", in, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (c *Client) ArchiveNote(ctx context.Context, id string) (*model.Note, error) {
	var n model.Note
	if err := c.call(ctx, "notes.archive", IDRequest{ID: id}, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (c *Client) UnarchiveNote(ctx context.Context, id string) (*model.Note, error) {
	var n model.Note
	if err := c.call(ctx, "notes.unarchive", IDRequest{ID: id}, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (c *Client) PinNote(ctx context.Context, id string, pinned bool) (*model.Note, error) {
	var n model.Note
	if err := c.call(ctx, "notes.pin", PinRequest{ID: id, Pinned: pinned}, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (c *Client) ListTasks(ctx context.Context, noteID string) ([]model.Task, error) {
	var tasks []model.Task
	if err := c.call(ctx, "tasks.list", NoteRequest{NoteID: noteID}, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) CreateTask(ctx context.Context, in service.CreateTaskInput) (*model.Task, error) {
	var t model.Task
	if err := c.call(ctx, "tasks.create", in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) UpdateTask(ctx context.Context, in service.UpdateTaskInput) (*model.Task, error) {
	var t model.Task
	if err := c.call(ctx, "tasks.update", in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) DeleteTask(ctx context.Context, noteID, id string) error {
	return c.call(ctx, "tasks.delete", NoteItemRequest{NoteID: noteID, ID: id}, nil)
}

func (c *Client) ReorderTasks(ctx context.Context, in service.ReorderTasksInput) error {
	return c.call(ctx, "tasks.reorder", in, nil)
}

func (c *Client) ListFolders(ctx context.Context) ([]model.Folder, error) {
	var folders []model.Folder
	if err := c.call(ctx, "folders.list", nil, &folders); err != nil {
		return nil, err
	}
	return folders, nil
}

func (c *Client) CreateFolder(ctx context.Context, in service.CreateFolderInput) (*model.Folder, error) {
	var f model.Folder
	if err := c.call(ctx, "folders.create", in, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (c *Client) RenameFolder(ctx context.Context, id, name string) (*model.Folder, error) {
	var f model.Folder
	if err := c.call(ctx, "folders.rename", RenameFolderRequest{ID: id, Name: name}, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (c *Client) DeleteFolder(ctx context.Context, id string) error {
	return c.call(ctx, "folders.delete", IDRequest{ID: id}, nil)
}

func (c *Client) ListTags(ctx context.Context) ([]model.Tag, error) {
	var tags []model.Tag
	if err := c.call(ctx, "tags.list", nil, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

func (c *Client) CreateTag(ctx context.Context, in service.CreateTagInput) (*model.Tag, error) {
	var t model.Tag
	if err := c.call(ctx, "tags.create", in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) UpdateTag(ctx context.Context, id string, in service.CreateTagInput) (*model.Tag, error) {
	var t model.Tag
	if err := c.call(ctx, "tags.update", UpdateTagRequest{ID: id, CreateTagInput: in}, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) DeleteTag(ctx context.Context, id string) error {
	return c.call(ctx, "tags.delete", IDRequest{ID: id}, nil)
}

func (c *Client) ListAttachments(ctx context.Context, noteID string) ([]model.Attachment, error) {
	var list []model.Attachment
	if err := c.call(ctx, "attachments.list", NoteRequest{NoteID: noteID}, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) AddAttachment(ctx context.Context, in service.AddAttachmentInput) (*model.Attachment, error) {
	var a model.Attachment
	if err := c.call(ctx, "attachments.add", in, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) DeleteAttachment(ctx context.Context, noteID, id string) error {
	return c.call(ctx, "attachments.delete", NoteItemRequest{NoteID: noteID, ID: id}, nil)
}

func (c *Client) ListCollaborators(ctx context.Context, noteID string) ([]model.Collaborator, error) {
	var list []model.Collaborator
	if err := c.call(ctx, "collaborators.list", NoteRequest{NoteID: noteID}, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) AddCollaborator(ctx context.Context, in service.AddCollaboratorInput) (*model.Collaborator, error) {
	var col model.Collaborator
	if err := c.call(ctx, "collaborators.add", in, &col); err != nil {
		return nil, err
	}
	return &col, nil
}

func (c *Client) RemoveCollaborator(ctx context.Context, noteID, id string) error {
	return c.call(ctx, "collaborators.remove", NoteItemRequest{NoteID: noteID, ID: id}, nil)
}
