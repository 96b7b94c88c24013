package review

import (
	"strings"

	"github.com/google/uuid"

	"github.com/IonMich/instructor-pilot/internal/versions"
)

// CommentKind discriminates the two comment endpoints.
type CommentKind string

const (
	CommentText CommentKind = "text"
	CommentFile CommentKind = "file"
)

// CommentDraft is an unfiltered attach payload as received from the client.
type CommentDraft struct {
	Author string
	Text   string
	Files  []versions.FileUpload
}

// Filter drops blank text and zero-byte files and returns the resulting
// attach command. This runs before any network call: the backend's handling
// of empty payload fields is ambiguous, so they must never be sent.
func (d CommentDraft) Filter() versions.AttachCommand {
	cmd := versions.AttachCommand{
		Author: d.Author,
		Text:   strings.TrimSpace(d.Text),
	}

	for _, f := range d.Files {
		if len(f.Data) == 0 {
			continue
		}
		cmd.Files = append(cmd.Files, f)
	}

	return cmd
}

// CommentStore caches the server's comment sets for the session and applies
// optimistic deletes. It is reconciled against the server on the next full
// refresh; a delete that fails server-side stays pruned locally until then.
type CommentStore struct {
	texts map[uuid.UUID][]versions.TextComment
	files map[uuid.UUID][]versions.FileComment
}

// NewCommentStore creates a store seeded from a comment snapshot.
func NewCommentStore(sets *versions.CommentSets) *CommentStore {
	s := &CommentStore{
		texts: make(map[uuid.UUID][]versions.TextComment),
		files: make(map[uuid.UUID][]versions.FileComment),
	}
	s.Replace(sets)
	return s
}

// Replace swaps in a fresh comment snapshot.
func (s *CommentStore) Replace(sets *versions.CommentSets) {
	clear(s.texts)
	clear(s.files)

	if sets == nil {
		return
	}

	for id, texts := range sets.Texts {
		s.texts[id] = texts
	}
	for id, files := range sets.Files {
		s.files[id] = files
	}
}

// ForVersion returns the version's current comments. Both slices are nil
// when the version has none; absence is the rendering signal for hiding the
// old-comments section.
func (s *CommentStore) ForVersion(id uuid.UUID) ([]versions.TextComment, []versions.FileComment) {
	return s.texts[id], s.files[id]
}

// Prune optimistically removes one comment by id. Returns false when the id
// is already gone, which makes a duplicate delete a silent no-op.
func (s *CommentStore) Prune(kind CommentKind, id uuid.UUID) bool {
	switch kind {
	case CommentText:
		for versionID, texts := range s.texts {
			for i, c := range texts {
				if c.ID == id {
					s.texts[versionID] = append(texts[:i], texts[i+1:]...)
					return true
				}
			}
		}
	case CommentFile:
		for versionID, files := range s.files {
			for i, c := range files {
				if c.ID == id {
					s.files[versionID] = append(files[:i], files[i+1:]...)
					return true
				}
			}
		}
	}
	return false
}
