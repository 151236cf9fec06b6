package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	apiName    = "Hynorvixx Backend API"
	apiVersion = "1.0.0"
)

type healthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Environment string    `json:"environment"`
	Database    string    `json:"database"`
	Storage     string    `json:"storage"`
}

func (s *Server) health(c *gin.Context) {
	resp := healthResponse{
		Status:      "OK",
		Timestamp:   s.now().UTC(),
		Environment: s.environment,
		Database:    "up",
		Storage:     "configured",
	}
	status := http.StatusOK

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if s.db == nil || s.db.PingContext(ctx) != nil {
		resp.Status = "DEGRADED"
		resp.Database = "down"
		status = http.StatusServiceUnavailable
	}
	if !s.photos.StorageAvailable() {
		resp.Storage = "not_configured"
	}

	c.JSON(status, resp)
}

type endpoint struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Description string `json:"description"`
	Auth        bool   `json:"auth"`
}

type endpointGroup struct {
	Base   string     `json:"base"`
	Routes []endpoint `json:"routes"`
}

type indexResponse struct {
	Message   string                   `json:"message"`
	Version   string                   `json:"version"`
	Endpoints map[string]endpointGroup `json:"endpoints"`
	User      *userResponse            `json:"user,omitempty"`
	Timestamp time.Time                `json:"timestamp"`
}

var endpoints = map[string]endpointGroup{
	"auth": {
		Base: "/api/auth",
		Routes: []endpoint{
			{http.MethodPost, "/api/auth/signup", "User registration", false},
			{http.MethodPost, "/api/auth/login", "User login", false},
			{http.MethodPost, "/api/auth/refresh", "Refresh access token", false},
			{http.MethodPost, "/api/auth/logout", "User logout", false},
		},
	},
	"photos": {
		Base: "/api/photos",
		Routes: []endpoint{
			{http.MethodPost, "/api/photos/upload-url", "Get presigned URL for upload", true},
			{http.MethodPost, "/api/photos", "Save uploaded photo metadata", true},
			{http.MethodGet, "/api/photos/view-url", "Get presigned URL for viewing", true},
			{http.MethodGet, "/api/photos", "List user photos", true},
			{http.MethodGet, "/api/photos/:id", "Get specific photo", true},
			{http.MethodPut, "/api/photos/:id", "Update photo metadata", true},
			{http.MethodDelete, "/api/photos/:id", "Delete photo", true},
		},
	},
}

func (s *Server) index(c *gin.Context) {
	resp := indexResponse{
		Message:   apiName,
		Version:   apiVersion,
		Endpoints: endpoints,
		Timestamp: s.now().UTC(),
	}
	if u := currentUser(c); u != nil {
		ur := newUserResponse(u)
		resp.User = &ur
	}
	c.JSON(http.StatusOK, resp)
}
