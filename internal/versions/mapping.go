package versions

import (
	"database/sql"

	"github.com/IonMich/instructor-pilot/pkg/query"
	"github.com/IonMich/instructor-pilot/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "versions", "v").
	Project("id", "ID").
	Project("assignment_id", "AssignmentID").
	Project("name", "Name").
	Project("version_image", "VersionImage").
	Project("created_at", "CreatedAt")

var defaultSort = query.SortField{
	Field: "Name",
}

var textProjection = query.
	NewProjectionMap("public", "version_text_comments", "t").
	Project("id", "ID").
	Project("version_id", "VersionID").
	Project("author", "Author").
	Project("text", "Text").
	Project("created_at", "CreatedAt").
	Join("public", "versions", "v", "INNER JOIN", "t.version_id = v.id")

var fileProjection = query.
	NewProjectionMap("public", "version_file_comments", "f").
	Project("id", "ID").
	Project("version_id", "VersionID").
	Project("author", "Author").
	Project("name", "Name").
	Project("storage_key", "StorageKey").
	Project("content_type", "ContentType").
	Project("size_bytes", "SizeBytes").
	Project("page_count", "PageCount").
	Project("created_at", "CreatedAt").
	Join("public", "versions", "v", "INNER JOIN", "f.version_id = v.id")

var commentSort = query.SortField{
	Field: "CreatedAt",
}

func scanVersion(s repository.Scanner) (Version, error) {
	var (
		v     Version
		image sql.NullString
	)

	err := s.Scan(
		&v.ID,
		&v.AssignmentID,
		&v.Name,
		&image,
		&v.CreatedAt,
	)
	if err != nil {
		return v, err
	}

	if image.Valid {
		img := image.String
		v.VersionImage = &img
	}

	return v, nil
}

func scanTextComment(s repository.Scanner) (TextComment, error) {
	var c TextComment
	err := s.Scan(
		&c.ID,
		&c.VersionID,
		&c.Author,
		&c.Text,
		&c.CreatedAt,
	)
	return c, err
}

func scanFileComment(s repository.Scanner) (FileComment, error) {
	var (
		c     FileComment
		pages sql.NullInt64
	)

	err := s.Scan(
		&c.ID,
		&c.VersionID,
		&c.Author,
		&c.Name,
		&c.StorageKey,
		&c.ContentType,
		&c.SizeBytes,
		&pages,
		&c.CreatedAt,
	)
	if err != nil {
		return c, err
	}

	if pages.Valid {
		p := int(pages.Int64)
		c.PageCount = &p
	}

	return c, nil
}
