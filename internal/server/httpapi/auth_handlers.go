package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hynorvixx/backend/internal/common"
)

func (s *Server) signup(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, common.Validation("Invalid request body"))
		return
	}

	user, pair, err := s.auth.Signup(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, authResponse{
		User:         newUserResponse(user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (s *Server) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, common.Validation("Invalid request body"))
		return
	}

	user, pair, err := s.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, authResponse{
		User:         newUserResponse(user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (s *Server) refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, common.Validation("Refresh token is required"))
		return
	}

	pair, err := s.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrExpiredCredential):
			s.failWith(c, err, "Refresh token expired")
		case errors.Is(err, common.ErrInvalidCredentials):
			s.failWith(c, err, "Invalid refresh token")
		default:
			s.fail(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, tokensResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

// logout always succeeds; a missing or unreadable body is fine.
func (s *Server) logout(c *gin.Context) {
	var req refreshRequest
	_ = c.ShouldBindJSON(&req)

	s.auth.Logout(c.Request.Context(), req.RefreshToken)
	c.JSON(http.StatusOK, messageResponse{Message: "Logout successful"})
}
