package models

import "time"

// Photo is the metadata row of a finalized upload. StorageKey points at the
// object in the bucket; the bytes themselves never pass through the server.
type Photo struct {
	ID           string
	OwnerID      string
	StorageKey   string
	OriginalName string
	ContentType  string
	FileSize     int64
	Title        *string
	Description  *string
	Tags         []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PhotoPatch is a partial update. Nil fields keep their stored value.
type PhotoPatch struct {
	Title       *string
	Description *string
	Tags        *[]string
}

// Empty reports whether the patch changes nothing.
func (p PhotoPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Tags == nil
}
