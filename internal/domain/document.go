package domain

import "time"

// Document is an uploaded statement. The bytes live in the blob store under
// BlobKey; the record itself is write-once.
type Document struct {
	ID         string    `json:"_id"`
	OwnerID    string    `json:"sub"`
	Filename   string    `json:"filename"`
	BlobKey    string    `json:"-"`
	Size       int64     `json:"size"`
	Checksum   uint32    `json:"checksum"`
	UploadedAt time.Time `json:"uploadDate"`
}
