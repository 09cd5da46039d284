// Package export writes notes as markdown files with YAML front matter.
package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nhle/notekeeper/internal/model"
)

// frontMatter is the metadata block written above the note body.
type frontMatter struct {
	ID        string    `yaml:"id"`
	Title     string    `yaml:"title"`
	Type      string    `yaml:"type"`
	Tags      []string  `yaml:"tags,omitempty"`
	Pinned    bool      `yaml:"pinned,omitempty"`
	Archived  bool      `yaml:"archived,omitempty"`
	CreatedAt time.Time `yaml:"created_at"`
	UpdatedAt time.Time `yaml:"updated_at"`
}

// Render returns the markdown document for n. Tasks, when present, are
// appended as a checklist after the note content.
func Render(n model.Note, tasks []model.Task) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("---\n")
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(frontMatter{
		ID:        n.ID,
		Title:     n.Title,
		Type:      string(n.Type),
		Tags:      n.Tags,
		Pinned:    n.IsPinned,
		Archived:  n.IsArchived,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}); err != nil {
		return nil, fmt.Errorf("encoding front matter: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("encoding front matter: %w", err)
	}
	buf.WriteString("---\n\n")

	if content := strings.TrimSpace(n.Content); content != "" {
		buf.WriteString(content)
		buf.WriteString("\n")
	}

	if len(tasks) > 0 {
		if buf.Len() > 0 {
			buf.WriteString("\n")
		}
		for _, t := range tasks {
			mark := " "
			if t.Completed {
				mark = "x"
			}
			indent := ""
			if t.ParentTaskID != nil {
				indent = "  "
			}
			fmt.Fprintf(&buf, "%s- [%s] %s\n", indent, mark, t.Title)
		}
	}

	return buf.Bytes(), nil
}

// Parse reads the front matter and body of a rendered note.
func Parse(data []byte) (model.Note, error) {
	parts := bytes.SplitN(data, []byte("---"), 3)
	if len(parts) < 3 || len(bytes.TrimSpace(parts[0])) != 0 {
		return model.Note{}, fmt.Errorf("invalid front matter format")
	}

	var fm frontMatter
	if err := yaml.Unmarshal(parts[1], &fm); err != nil {
		return model.Note{}, fmt.Errorf("parsing front matter: %w", err)
	}

	return model.Note{
		ID:         fm.ID,
		Title:      fm.Title,
		Type:       model.NoteType(fm.Type),
		Tags:       fm.Tags,
		IsPinned:   fm.Pinned,
		IsArchived: fm.Archived,
		CreatedAt:  fm.CreatedAt,
		UpdatedAt:  fm.UpdatedAt,
		Content:    string(bytes.TrimSpace(parts[2])),
	}, nil
}

// WriteFile renders n into dir and returns the written path.
func WriteFile(dir string, n model.Note, tasks []model.Task) (string, error) {
	data, err := Render(n, tasks)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}

	path := filepath.Join(dir, FileName(n))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

var unsafeChars = regexp.MustCompile(`[^a-z0-9]+`)

// FileName derives a stable file name from the note's title and ID.
func FileName(n model.Note) string {
	slug := strings.Trim(unsafeChars.ReplaceAllString(strings.ToLower(n.Title), "-"), "-")
	if len(slug) > 48 {
		slug = strings.TrimRight(slug[:48], "-")
	}
	id := n.ID
	if len(id) > 8 {
		id = id[:8]
	}
	if slug == "" {
		return id + ".md"
	}
	return slug + "-" + id + ".md"
}
