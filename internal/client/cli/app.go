package cli

import (
	"bufio"
	"context"
	"database/sql"
	"io"
	"os"

	"github.com/hynorvixx/backend/internal/client/client"
	"github.com/hynorvixx/backend/internal/client/config"
	"github.com/hynorvixx/backend/internal/client/models"
	"github.com/hynorvixx/backend/internal/client/services"
	"github.com/hynorvixx/backend/internal/filex"
	"github.com/hynorvixx/backend/internal/logging"
)

// SessionService is the session surface the CLI drives.
type SessionService interface {
	Signup(ctx context.Context, email string, password []byte) (*models.User, error)
	Login(ctx context.Context, email string, password []byte) (*models.User, error)
	Logout(ctx context.Context) error
	Restore(ctx context.Context) (bool, error)
	LoggedIn() bool
	Email() string
}

// PhotoService is the photo surface the CLI drives.
type PhotoService interface {
	Upload(ctx context.Context, path string) (*models.Photo, error)
	List(ctx context.Context, page, limit int) (*models.PhotoPage, error)
	Get(ctx context.Context, id string) (*models.Photo, error)
	Update(ctx context.Context, id string, upd models.PhotoUpdate) (*models.Photo, error)
	Delete(ctx context.Context, id string) error
	ViewURL(ctx context.Context, id string) (*models.ViewURL, error)
}

type App struct {
	config  *config.Config
	session SessionService
	photos  PhotoService
	db      *sql.DB
	logger  logging.Logger
	reader  *bufio.Reader
	out     io.Writer
}

// NewApp opens the session database and wires the API client.
func NewApp(ctx context.Context, c *config.Config, l logging.Logger) (*App, error) {
	if err := filex.EnsureParentDir(c.SessionDBPath); err != nil {
		return nil, err
	}
	db, err := client.InitDatabase(ctx, c.SessionDBPath)
	if err != nil {
		l.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	api := client.NewHTTPClient(c.ServerURL, c.RequestTimeout)
	ss := services.NewSessionService(api, db)
	ps := services.NewPhotoService(api, ss)

	return &App{
		config:  c,
		session: ss,
		photos:  ps,
		db:      db,
		logger:  l.With("module", "cli"),
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}, nil
}

// Run restores a saved session and blocks in the REPL until exit.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	if ok, err := a.session.Restore(ctx); err != nil {
		a.logger.Warn(ctx, "session restore failed", "error", err)
	} else if ok {
		printlnFn("Logged in as", a.session.Email())
	}

	printlnFn("Welcome to the photo library CLI (type 'help' for commands)")
	runREPL(ctx, a, a.status, a.reader)
	return nil
}

func (a *App) Close() {
	if a.db != nil {
		_ = a.db.Close()
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.LoggedIn()
}

func (a *App) status() string {
	if email := a.session.Email(); email != "" {
		return "(" + email + ")"
	}
	return ""
}
