package models

import "time"

// ProjectFile is one uploaded version of the project's design artifact.
// Version numbers per project start at 1, never repeat and never shrink,
// even after deletions.
type ProjectFile struct {
	ID        string `db:"id" json:"id"`
	ProjectID string `db:"project_id" json:"project_id"`
	FileName  string `db:"file_name" json:"file_name"`
	// FilePath is the artifact location relative to the upload storage root.
	// The record owns the artifact: deleting the record deletes the file.
	FilePath string `db:"file_path" json:"-"`
	FileType string `db:"file_type" json:"file_type"`
	Version  int    `db:"version" json:"version"`
	// IsLatest marks the current version. At most one file per project
	// carries it.
	IsLatest bool `db:"is_latest" json:"is_latest"`
	// IsDownloadable gates client retrieval, independent of recency.
	IsDownloadable bool      `db:"is_downloadable" json:"is_downloadable"`
	SizeBytes      int64     `db:"size_bytes" json:"size_bytes"`
	UploadedAt     time.Time `db:"uploaded_at" json:"uploaded_at"`
}
