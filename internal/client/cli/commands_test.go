package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/hynorvixx/backend/internal/client/client"
	"github.com/hynorvixx/backend/internal/client/models"
	"github.com/hynorvixx/backend/internal/client/services"
	"github.com/hynorvixx/backend/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	email      string
	err        error
	restoreOK  bool
	restoreErr error
	passwords  []string
}

func (f *fakeSession) Signup(_ context.Context, email string, pw []byte) (*models.User, error) {
	return f.Login(context.Background(), email, pw)
}

func (f *fakeSession) Login(_ context.Context, email string, pw []byte) (*models.User, error) {
	f.passwords = append(f.passwords, string(pw))
	if f.err != nil {
		return nil, f.err
	}
	f.email = email
	return &models.User{ID: "u1", Email: email}, nil
}

func (f *fakeSession) Logout(context.Context) error { f.email = ""; return nil }

func (f *fakeSession) Restore(context.Context) (bool, error) {
	if f.restoreOK {
		f.email = "saved@b.co"
	}
	return f.restoreOK, f.restoreErr
}

func (f *fakeSession) LoggedIn() bool { return f.email != "" }
func (f *fakeSession) Email() string  { return f.email }

type fakePhotos struct {
	err      error
	uploaded []string
	listArgs [2]int
	page     *models.PhotoPage
	updates  []models.PhotoUpdate
	deleted  []string
}

func (f *fakePhotos) Upload(_ context.Context, path string) (*models.Photo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.uploaded = append(f.uploaded, path)
	return &models.Photo{ID: "p1", OriginalName: "cat.png"}, nil
}

func (f *fakePhotos) List(_ context.Context, page, limit int) (*models.PhotoPage, error) {
	f.listArgs = [2]int{page, limit}
	if f.err != nil {
		return nil, f.err
	}
	return f.page, nil
}

func (f *fakePhotos) Get(_ context.Context, id string) (*models.Photo, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Photo{ID: id, OriginalName: "cat.png", Tags: []string{"pets"}}, nil
}

func (f *fakePhotos) Update(_ context.Context, id string, upd models.PhotoUpdate) (*models.Photo, error) {
	f.updates = append(f.updates, upd)
	return &models.Photo{ID: id, Title: upd.Title}, nil
}

func (f *fakePhotos) Delete(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakePhotos) ViewURL(_ context.Context, id string) (*models.ViewURL, error) {
	return &models.ViewURL{URL: "https://s3.test/" + id, ExpiresIn: 3600}, nil
}

func newTestApp(input string) (*App, *fakeSession, *fakePhotos) {
	s := &fakeSession{}
	p := &fakePhotos{}
	return &App{
		session: s,
		photos:  p,
		logger:  logging.Discard(),
		reader:  bufio.NewReader(bytes.NewBufferString(input)),
		out:     &bytes.Buffer{},
	}, s, p
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	orig := readPassword
	readPassword = func(int) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { readPassword = orig })
}

func TestApp_LoginAndLogout(t *testing.T) {
	out := capturePrint(t)
	stubPassword(t, "secret1")
	app, s, _ := newTestApp("a@b.co\n")

	require.NoError(t, app.Login(context.Background()))
	assert.True(t, app.isLoggedIn())
	assert.Equal(t, "(a@b.co)", app.status())
	assert.Equal(t, []string{"secret1"}, s.passwords)
	assert.Contains(t, *out, "Logged in as a@b.co")

	require.NoError(t, app.Logout(context.Background()))
	assert.False(t, app.isLoggedIn())
	assert.Equal(t, "", app.status())
}

func TestApp_SignupFailure(t *testing.T) {
	capturePrint(t)
	stubPassword(t, "secret1")
	app, s, _ := newTestApp("a@b.co\n")
	s.err = &client.APIError{StatusCode: http.StatusBadRequest, Message: "User already exists"}

	err := app.Signup(context.Background())
	require.Error(t, err)
	assert.Equal(t, "User already exists", describe(err))
	assert.False(t, app.isLoggedIn())
}

func TestApp_Upload(t *testing.T) {
	out := capturePrint(t)
	app, _, p := newTestApp("")

	assert.ErrorIs(t, app.Upload(context.Background(), nil), errUsage)

	require.NoError(t, app.Upload(context.Background(), []string{"/tmp/cat.png"}))
	assert.Equal(t, []string{"/tmp/cat.png"}, p.uploaded)
	assert.Contains(t, *out, "Uploaded cat.png as p1")
}

func TestApp_List(t *testing.T) {
	out := capturePrint(t)
	app, _, p := newTestApp("")
	title := "Sunset"
	p.page = &models.PhotoPage{
		Photos: []models.Photo{
			{ID: "p1", OriginalName: "a.jpg", FileSize: 10, CreatedAt: time.Now()},
			{ID: "p2", OriginalName: "b.jpg", Title: &title},
		},
		Pagination: models.Pagination{CurrentPage: 2, TotalPages: 3, TotalPhotos: 12},
	}

	require.NoError(t, app.List(context.Background(), []string{"2", "5"}))
	assert.Equal(t, [2]int{2, 5}, p.listArgs)
	assert.Len(t, *out, 3)
	assert.Contains(t, (*out)[1], "Sunset")
	assert.Equal(t, "Page 2 of 3 (12 photos)", (*out)[2])

	require.NoError(t, app.List(context.Background(), nil))
	assert.Equal(t, [2]int{1, 20}, p.listArgs)

	assert.ErrorIs(t, app.List(context.Background(), []string{"x"}), errUsage)
	assert.ErrorIs(t, app.List(context.Background(), []string{"1", "y"}), errUsage)

	p.page = &models.PhotoPage{}
	require.NoError(t, app.List(context.Background(), nil))
	assert.Equal(t, "No photos", (*out)[len(*out)-1])
}

func TestApp_Edit(t *testing.T) {
	capturePrint(t)
	app, _, p := newTestApp("Sunset\n-\nbeach, summer\n")

	require.NoError(t, app.Edit(context.Background(), []string{"p1"}))
	require.Len(t, p.updates, 1)
	upd := p.updates[0]
	require.NotNil(t, upd.Title)
	assert.Equal(t, "Sunset", *upd.Title)
	require.NotNil(t, upd.Description)
	assert.Equal(t, "", *upd.Description)
	require.NotNil(t, upd.Tags)
	assert.Equal(t, []string{"beach", "summer"}, *upd.Tags)
}

func TestApp_EditNothing(t *testing.T) {
	out := capturePrint(t)
	app, _, p := newTestApp("\n\n\n")

	require.NoError(t, app.Edit(context.Background(), []string{"p1"}))
	assert.Empty(t, p.updates)
	assert.Contains(t, *out, "Nothing to change")
}

func TestApp_ShowDeleteView(t *testing.T) {
	out := capturePrint(t)
	app, _, p := newTestApp("")
	ctx := context.Background()

	require.NoError(t, app.Show(ctx, []string{"p1"}))
	assert.Contains(t, *out, "Tags:         pets")

	require.NoError(t, app.Delete(ctx, []string{"p1"}))
	assert.Equal(t, []string{"p1"}, p.deleted)

	require.NoError(t, app.View(ctx, []string{"p1"}))
	assert.Contains(t, *out, "https://s3.test/p1")
	assert.Contains(t, *out, "Link expires in 1h0m0s")

	for _, fn := range []func(context.Context, []string) error{app.Show, app.Delete, app.View, app.Edit} {
		assert.ErrorIs(t, fn(ctx, nil), errUsage)
	}
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "not logged in, use 'login' first", describe(services.ErrNotLoggedIn))
	assert.Equal(t, "server unavailable, try again later", describe(client.ErrUnavailable))
	assert.Equal(t, "Photo not found", describe(&client.APIError{StatusCode: 404, Message: "Photo not found"}))
	assert.Equal(t, "boom", describe(errors.New("boom")))
}

func TestApp_RunRestoresSession(t *testing.T) {
	out := capturePrint(t)
	app, s, _ := newTestApp("exit\n")
	s.restoreOK = true

	require.NoError(t, app.Run(context.Background()))
	assert.Contains(t, *out, "Logged in as saved@b.co")
	assert.Equal(t, "Bye!", (*out)[len(*out)-1])
}

func TestApp_RunRestoreFailureStillStarts(t *testing.T) {
	out := capturePrint(t)
	app, s, _ := newTestApp("")
	s.restoreErr = errors.New("disk")

	require.NoError(t, app.Run(context.Background()))
	assert.NotContains(t, *out, "Logged in as saved@b.co")
}
