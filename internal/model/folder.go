package model

import "time"

// Folder groups notes. Folders nest through ParentFolderID; deleting a
// folder deletes its child folders and detaches its notes.
type Folder struct {
	ID             string    `json:"id" db:"id"`
	UserID         string    `json:"user_id" db:"user_id"`
	Name           string    `json:"name" db:"name"`
	ParentFolderID *string   `json:"parent_folder_id,omitempty" db:"parent_folder_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}
