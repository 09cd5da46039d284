package model

import "time"

// AttachmentType is the media kind of an attachment.
type AttachmentType string

const (
	AttachmentImage AttachmentType = "image"
	AttachmentAudio AttachmentType = "audio"
	AttachmentVideo AttachmentType = "video"
)

// Valid reports whether t is a known media kind.
func (t AttachmentType) Valid() bool {
	switch t {
	case AttachmentImage, AttachmentAudio, AttachmentVideo:
		return true
	}
	return false
}

// Attachment is a media file referenced by a note.
type Attachment struct {
	ID     string         `json:"id" db:"id"`
	NoteID string         `json:"note_id" db:"note_id"`
	Type   AttachmentType `json:"type" db:"type"`
	URL    string         `json:"url" db:"url"`

	// LocalPath is the on-device copy, when one exists.
	LocalPath *string `json:"local_path,omitempty" db:"local_path"`

	// Duration is in seconds, for audio and video.
	Duration *int `json:"duration,omitempty" db:"duration"`

	Transcription *string   `json:"transcription,omitempty" db:"transcription"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// Permission is a collaborator's access level on a note.
type Permission string

const (
	PermissionView  Permission = "view"
	PermissionEdit  Permission = "edit"
	PermissionAdmin Permission = "admin"
)

// Valid reports whether p is a known permission.
func (p Permission) Valid() bool {
	switch p {
	case PermissionView, PermissionEdit, PermissionAdmin:
		return true
	}
	return false
}

// Collaborator grants another user access to a note.
type Collaborator struct {
	ID         string     `json:"id" db:"id"`
	NoteID     string     `json:"note_id" db:"note_id"`
	UserID     string     `json:"user_id" db:"user_id"`
	Permission Permission `json:"permission" db:"permission"`
	AddedAt    time.Time  `json:"added_at" db:"added_at"`
}
