// Package models holds the client-side view of API resources.
package models

import "time"

type User struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	IsActive  bool       `json:"isActive"`
	CreatedAt time.Time  `json:"createdAt"`
	LastLogin *time.Time `json:"lastLogin"`
}

type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthResult is returned by signup and login.
type AuthResult struct {
	User User `json:"user"`
	Tokens
}

type Photo struct {
	ID           string    `json:"id"`
	FileKey      string    `json:"fileKey"`
	OriginalName string    `json:"originalName"`
	ContentType  string    `json:"contentType"`
	FileSize     int64     `json:"fileSize"`
	Title        *string   `json:"title"`
	Description  *string   `json:"description"`
	Tags         []string  `json:"tags"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	Limit       int  `json:"limit"`
	TotalPages  int  `json:"totalPages"`
	TotalPhotos int  `json:"totalPhotos"`
	HasNext     bool `json:"hasNext"`
	HasPrev     bool `json:"hasPrev"`
}

type PhotoPage struct {
	Photos     []Photo    `json:"photos"`
	Pagination Pagination `json:"pagination"`
}

// UploadURL is a presigned PUT handed out by the server. Headers must be
// sent with the upload unchanged.
type UploadURL struct {
	UploadURL string            `json:"uploadUrl"`
	FileKey   string            `json:"fileKey"`
	ExpiresIn int64             `json:"expiresIn"`
	Headers   map[string]string `json:"headers"`
}

type ViewURL struct {
	URL       string `json:"url"`
	ExpiresIn int64  `json:"expiresIn"`
}

type FinalizeRequest struct {
	FileKey      string `json:"fileKey"`
	OriginalName string `json:"originalName"`
	ContentType  string `json:"contentType"`
	FileSize     int64  `json:"fileSize"`
}

// PhotoUpdate is a partial update; nil fields are left unchanged.
type PhotoUpdate struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
}

type Health struct {
	Status      string `json:"status"`
	Environment string `json:"environment"`
	Database    string `json:"database"`
	Storage     string `json:"storage"`
}

// Session is what the CLI remembers between runs.
type Session struct {
	Email string
	Tokens
}
