package httpapi

import (
	"time"

	"github.com/hynorvixx/backend/internal/server/models"
	"github.com/hynorvixx/backend/internal/server/services"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type uploadURLRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	FileSize    *int64 `json:"fileSize"`
}

type finalizeRequest struct {
	FileKey      string `json:"fileKey"`
	OriginalName string `json:"originalName"`
	ContentType  string `json:"contentType"`
	FileSize     int64  `json:"fileSize"`
}

type updatePhotoRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Tags        *[]string `json:"tags"`
}

type userResponse struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	IsActive  bool       `json:"isActive"`
	CreatedAt time.Time  `json:"createdAt"`
	LastLogin *time.Time `json:"lastLogin"`
}

func newUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		LastLogin: u.LastLogin,
	}
}

type authResponse struct {
	User         userResponse `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

type tokensResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type uploadURLResponse struct {
	UploadURL string            `json:"uploadUrl"`
	FileKey   string            `json:"fileKey"`
	ExpiresIn int64             `json:"expiresIn"`
	Headers   map[string]string `json:"headers,omitempty"`
}

type viewURLResponse struct {
	URL       string `json:"url"`
	ExpiresIn int64  `json:"expiresIn"`
}

type photoResponse struct {
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

func newPhotoResponse(p *models.Photo) photoResponse {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return photoResponse{
		ID:           p.ID,
		FileKey:      p.StorageKey,
		OriginalName: p.OriginalName,
		ContentType:  p.ContentType,
		FileSize:     p.FileSize,
		Title:        p.Title,
		Description:  p.Description,
		Tags:         tags,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

type photoEnvelope struct {
	Message string        `json:"message,omitempty"`
	Photo   photoResponse `json:"photo"`
}

type paginationResponse struct {
	CurrentPage int  `json:"currentPage"`
	Limit       int  `json:"limit"`
	TotalPages  int  `json:"totalPages"`
	TotalPhotos int  `json:"totalPhotos"`
	HasNext     bool `json:"hasNext"`
	HasPrev     bool `json:"hasPrev"`
}

type photoListResponse struct {
	Photos     []photoResponse    `json:"photos"`
	Pagination paginationResponse `json:"pagination"`
}

func newPhotoListResponse(page *services.PhotoPage) photoListResponse {
	out := photoListResponse{
		Photos: make([]photoResponse, 0, len(page.Photos)),
		Pagination: paginationResponse{
			CurrentPage: page.Pagination.CurrentPage,
			Limit:       page.Pagination.Limit,
			TotalPages:  page.Pagination.TotalPages,
			TotalPhotos: page.Pagination.TotalPhotos,
			HasNext:     page.Pagination.HasNext,
			HasPrev:     page.Pagination.HasPrev,
		},
	}
	for _, p := range page.Photos {
		out.Photos = append(out.Photos, newPhotoResponse(p))
	}
	return out
}

type deletedResponse struct {
	Message string `json:"message"`
	PhotoID string `json:"photoId"`
}
