package config

import (
	"flag"
	"io"

	"github.com/hynorvixx/backend/internal/flagx"
)

// parseFlags overlays selected fields from command-line flags.
//
//	-a string   HTTP listen address (e.g. ":3000")
//	-g string   gRPC health listen address
//	-d string   PostgreSQL DSN
//	-s string   access token secret
//	-r string   refresh token secret
//	-b string   S3 bucket
//	-e string   S3 base endpoint (MinIO etc.)
//	-l string   log level
//
// Only these flags are looked at, via flagx.FilterArgs, so -c and anything
// else on the command line is left alone.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-g", "-d", "-s", "-r", "-b", "-e", "-l"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "HTTP listen address")
	fs.StringVar(&config.GRPCHealthAddr, "g", config.GRPCHealthAddr, "gRPC health listen address")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.AccessTokenSecret, "s", config.AccessTokenSecret, "access token secret")
	fs.StringVar(&config.RefreshTokenSecret, "r", config.RefreshTokenSecret, "refresh token secret")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	return fs.Parse(args)
}
