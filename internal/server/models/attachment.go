package models

import (
	"strings"
	"time"
)

// Attachment describes an uploaded media item. The binary itself lives in
// object storage under StorageKey.
type Attachment struct {
	ID         int64
	AuthorID   int64
	Title      string
	MimeType   string
	StorageKey string
	Width      int
	Height     int
	CreatedAt  time.Time
}

// IsImage reports whether the attachment has an image MIME type.
func (a *Attachment) IsImage() bool {
	return strings.HasPrefix(a.MimeType, "image/")
}

// AttachmentSize is a generated variant of an attachment for a named size.
type AttachmentSize struct {
	AttachmentID int64
	Name         string
	StorageKey   string
	Width        int
	Height       int
}

// NoAuthor as AttachmentQuery.AuthorID matches no attachment.
const NoAuthor int64 = -1

// AttachmentQuery narrows a media listing. Zero values mean "no filter".
type AttachmentQuery struct {
	AuthorID   int64
	MimePrefix string
	Search     string
	Limit      int
	Offset     int
}
