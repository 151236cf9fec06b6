package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hynorvixx/backend/internal/client/models"
	"github.com/hynorvixx/backend/internal/common"
)

// HTTPClient is a typed client for the photo API. Authenticated calls take
// the access token explicitly; the client keeps no session state.
type HTTPClient struct {
	baseURL string
	hc      *http.Client
}

// NewHTTPClient returns a client rooted at baseURL, e.g.
// "http://localhost:3000/api".
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: timeout},
	}
}

// HTTP exposes the underlying client for direct object storage transfers.
func (c *HTTPClient) HTTP() *http.Client { return c.hc }

type errorEnvelope struct {
	Error struct {
		Message    string `json:"message"`
		StatusCode int    `json:"statusCode"`
	} `json:"error"`
}

func (c *HTTPClient) do(ctx context.Context, method, path, token string, in, out any) error {
	return c.doURL(ctx, method, c.baseURL+path, token, in, out)
}

func (c *HTTPClient) doURL(ctx context.Context, method, u, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: read response: %w", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var env errorEnvelope
		if json.Unmarshal(raw, &env) == nil {
			apiErr.Message = env.Error.Message
		}
		return apiErr
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (c *HTTPClient) Signup(ctx context.Context, email, password string) (*models.AuthResult, error) {
	var out models.AuthResult
	if err := c.do(ctx, http.MethodPost, "/auth/signup", "", credentials{email, password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*models.AuthResult, error) {
	var out models.AuthResult
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", credentials{email, password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Refresh(ctx context.Context, refreshToken string) (*models.Tokens, error) {
	var out models.Tokens
	if err := c.do(ctx, http.MethodPost, "/auth/refresh", "", refreshRequest{refreshToken}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Logout(ctx context.Context, refreshToken string) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", "", refreshRequest{refreshToken}, nil)
}

type uploadURLRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	FileSize    int64  `json:"fileSize"`
}

func (c *HTTPClient) RequestUploadURL(ctx context.Context, token, filename, contentType string, size int64) (*models.UploadURL, error) {
	var out models.UploadURL
	in := uploadURLRequest{Filename: filename, ContentType: contentType, FileSize: size}
	if err := c.do(ctx, http.MethodPost, "/photos/upload-url", token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type photoEnvelope struct {
	Photo models.Photo `json:"photo"`
}

func (c *HTTPClient) FinalizeUpload(ctx context.Context, token string, req models.FinalizeRequest) (*models.Photo, error) {
	var out photoEnvelope
	if err := c.do(ctx, http.MethodPost, "/photos", token, req, &out); err != nil {
		return nil, err
	}
	return &out.Photo, nil
}

func (c *HTTPClient) ListPhotos(ctx context.Context, token string, page, limit int) (*models.PhotoPage, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := "/photos"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out models.PhotoPage
	if err := c.do(ctx, http.MethodGet, path, token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) GetPhoto(ctx context.Context, token, id string) (*models.Photo, error) {
	var out photoEnvelope
	if err := c.do(ctx, http.MethodGet, "/photos/"+url.PathEscape(id), token, nil, &out); err != nil {
		return nil, err
	}
	return &out.Photo, nil
}

func (c *HTTPClient) UpdatePhoto(ctx context.Context, token, id string, upd models.PhotoUpdate) (*models.Photo, error) {
	var out photoEnvelope
	if err := c.do(ctx, http.MethodPut, "/photos/"+url.PathEscape(id), token, upd, &out); err != nil {
		return nil, err
	}
	return &out.Photo, nil
}

func (c *HTTPClient) DeletePhoto(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/photos/"+url.PathEscape(id), token, nil, nil)
}

func (c *HTTPClient) ViewURL(ctx context.Context, token, key string) (*models.ViewURL, error) {
	var out models.ViewURL
	path := "/photos/view-url?" + url.Values{"key": {key}}.Encode()
	if err := c.do(ctx, http.MethodGet, path, token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health calls /health, which lives at the server root rather than under
// the API prefix. A 503 means the database is down; the returned report says
// so and the error is kept.
func (c *HTTPClient) Health(ctx context.Context) (*models.Health, error) {
	root := strings.TrimSuffix(c.baseURL, "/api")
	var out models.Health
	err := c.doURL(ctx, http.MethodGet, root+"/health", "", nil, &out)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusServiceUnavailable {
		return &models.Health{Status: "DEGRADED", Database: "down"}, err
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}
