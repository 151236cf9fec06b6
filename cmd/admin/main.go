// Command admin runs administrative tasks against the photo backend database.
//
//	admin deactivate -id <user uuid> [-c config.json] [-d dsn]
//
// Only the database settings are needed; token secrets and storage
// credentials may be absent.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/hynorvixx/backend/internal/flagx"
	"github.com/hynorvixx/backend/internal/logging"
	"github.com/hynorvixx/backend/internal/server/config"
	"github.com/hynorvixx/backend/internal/server/repositories/repomanager"
	"github.com/hynorvixx/backend/internal/server/services"
)

const usage = "usage: admin deactivate -id <user uuid> [-c config.json] [-d dsn]"

// seams for tests
var (
	openPostgres   = repomanager.OpenPostgres
	newRepoManager = func() repomanager.RepositoryManager { return repomanager.NewPostgresRepositoryManager() }
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Print(err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	cmd, rest := flagx.Subcommand(args)
	if cmd != "deactivate" {
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}

	var userID string
	fs := flag.NewFlagSet("deactivate", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&userID, "id", "", "user id")
	if err := fs.Parse(flagx.FilterArgs(rest, []string{"-id"})); err != nil {
		return err
	}
	if userID == "" {
		return fmt.Errorf("missing -id\n%s", usage)
	}

	cfg, err := config.LoadConfig(rest)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return deactivate(ctx, cfg, userID, out)
}

func deactivate(ctx context.Context, cfg *config.Config, userID string, out io.Writer) error {
	if cfg.DatabaseDSN == "" {
		return errors.New("invalid config: database dsn is required")
	}

	db, err := openPostgres(ctx, cfg.DatabaseDSN, repomanager.PoolOptions{MaxOpenConns: 1, MaxIdleConns: 1})
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer db.Close()

	logger := logging.NewWithWriter(os.Stderr, cfg.LogLevel)
	svc := services.NewAuthService(db, newRepoManager(), nil, nil, logger)
	if err := svc.Deactivate(ctx, userID); err != nil {
		return fmt.Errorf("deactivate %s: %w", userID, err)
	}

	fmt.Fprintf(out, "user %s deactivated\n", userID)
	return nil
}
