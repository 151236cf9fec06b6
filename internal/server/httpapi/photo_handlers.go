package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hynorvixx/backend/internal/common"
	"github.com/hynorvixx/backend/internal/server/models"
)

var errPhotoNotFound = common.WithMessage(common.ErrorNotFound, "Photo not found")

func (s *Server) uploadURL(c *gin.Context) {
	var req uploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, common.Validation("Invalid request body"))
		return
	}

	var size int64
	if req.FileSize != nil {
		size = *req.FileSize
	}

	intent, err := s.photos.RequestUpload(c.Request.Context(), currentUser(c).ID, req.Filename, req.ContentType, size)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, uploadURLResponse{
		UploadURL: intent.URL,
		FileKey:   intent.Key,
		ExpiresIn: int64(intent.ExpiresIn.Seconds()),
		Headers:   intent.Headers,
	})
}

func (s *Server) finalize(c *gin.Context) {
	var req finalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, common.Validation("Invalid request body"))
		return
	}

	photo, err := s.photos.Finalize(c.Request.Context(), currentUser(c).ID,
		req.FileKey, req.OriginalName, req.ContentType, req.FileSize)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, photoEnvelope{Message: "Photo saved successfully", Photo: newPhotoResponse(photo)})
}

func (s *Server) viewURL(c *gin.Context) {
	u, err := s.photos.ViewURL(c.Request.Context(), strings.TrimSpace(c.Query("key")), 0)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, viewURLResponse{URL: u.URL, ExpiresIn: int64(u.ExpiresIn.Seconds())})
}

func (s *Server) listPhotos(c *gin.Context) {
	page := queryInt(c, "page")
	limit := queryInt(c, "limit")

	res, err := s.photos.List(c.Request.Context(), currentUser(c).ID, page, limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newPhotoListResponse(res))
}

func (s *Server) getPhoto(c *gin.Context) {
	id, ok := photoID(c)
	if !ok {
		s.fail(c, errPhotoNotFound)
		return
	}

	photo, err := s.photos.Get(c.Request.Context(), currentUser(c).ID, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, photoEnvelope{Photo: newPhotoResponse(photo)})
}

func (s *Server) updatePhoto(c *gin.Context) {
	id, ok := photoID(c)
	if !ok {
		s.fail(c, errPhotoNotFound)
		return
	}

	var req updatePhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, common.Validation("Invalid request body"))
		return
	}

	photo, err := s.photos.Update(c.Request.Context(), currentUser(c).ID, id, models.PhotoPatch{
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, photoEnvelope{Message: "Photo updated successfully", Photo: newPhotoResponse(photo)})
}

func (s *Server) deletePhoto(c *gin.Context) {
	id, ok := photoID(c)
	if !ok {
		s.fail(c, errPhotoNotFound)
		return
	}

	if err := s.photos.Delete(c.Request.Context(), currentUser(c).ID, id); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, deletedResponse{Message: "Photo deleted successfully", PhotoID: id})
}

// photoID returns the :id path parameter if it is a UUID. Anything else is
// answered as a missing photo.
func photoID(c *gin.Context) (string, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return "", false
	}
	return id.String(), true
}

// queryInt parses a query parameter leniently: anything unparsable is 0 and
// left to the service defaults.
func queryInt(c *gin.Context, name string) int {
	n, err := strconv.Atoi(strings.TrimSpace(c.Query(name)))
	if err != nil {
		return 0
	}
	return n
}
