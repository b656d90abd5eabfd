package model

import (
	"io"
	"time"
)

type Photo struct {
	ID         string    `json:"id"`
	MemoryID   string    `json:"-"`
	FilePath   string    `json:"-"`
	Filename   string    `json:"filename"`
	MimeType   string    `json:"mime_type"`
	SizeBytes  int64     `json:"size_bytes"`
	SortOrder  int       `json:"sort_order"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// PhotoUpload is one file of an upload batch as received from the client.
type PhotoUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}
