package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/hynorvixx/backend/internal/flagx"
	"github.com/hynorvixx/backend/internal/timex"
)

// JsonConfig mirrors Config for JSON files. Pointer fields distinguish an
// absent key from a zero value, so a partial file only overrides what it names.
type JsonConfig struct {
	Environment    *string `json:"environment"`
	HTTPAddr       *string `json:"http_addr"`
	GRPCHealthAddr *string `json:"grpc_health_addr"`
	LogLevel       *string `json:"log_level"`

	DatabaseDSN       *string         `json:"database_dsn"`
	DBMaxOpenConns    *int            `json:"db_max_open_conns"`
	DBMaxIdleConns    *int            `json:"db_max_idle_conns"`
	DBConnMaxLifetime *timex.Duration `json:"db_conn_max_lifetime"`

	AccessTokenSecret  *string         `json:"access_token_secret"`
	RefreshTokenSecret *string         `json:"refresh_token_secret"`
	AccessTokenTTL     *timex.Duration `json:"access_token_ttl"`
	RefreshTokenTTL    *timex.Duration `json:"refresh_token_ttl"`
	BcryptCost         *int            `json:"bcrypt_cost"`

	S3AccessKeyID     *string `json:"s3_access_key_id"`
	S3SecretAccessKey *string `json:"s3_secret_access_key"`
	S3Bucket          *string `json:"s3_bucket"`
	S3Region          *string `json:"s3_region"`
	S3BaseEndpoint    *string `json:"s3_base_endpoint"`
	S3UsePathStyle    *bool   `json:"s3_use_path_style"`

	UploadURLTTL           *timex.Duration `json:"upload_url_ttl"`
	ViewURLTTL             *timex.Duration `json:"view_url_ttl"`
	MaxUploadSize          *int64          `json:"max_upload_size"`
	VerifyUploadOnFinalize *bool           `json:"verify_upload_on_finalize"`

	CORSOrigins []string `json:"cors_origins"`
}

// parseJson overlays the file named by -c/-config onto config. Nothing
// happens when no file is named.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setValue(&config.Environment, c.Environment)
	setValue(&config.HTTPAddr, c.HTTPAddr)
	setValue(&config.GRPCHealthAddr, c.GRPCHealthAddr)
	setValue(&config.LogLevel, c.LogLevel)

	setValue(&config.DatabaseDSN, c.DatabaseDSN)
	setValue(&config.DBMaxOpenConns, c.DBMaxOpenConns)
	setValue(&config.DBMaxIdleConns, c.DBMaxIdleConns)
	setDuration(&config.DBConnMaxLifetime, c.DBConnMaxLifetime)

	setValue(&config.AccessTokenSecret, c.AccessTokenSecret)
	setValue(&config.RefreshTokenSecret, c.RefreshTokenSecret)
	setDuration(&config.AccessTokenTTL, c.AccessTokenTTL)
	setDuration(&config.RefreshTokenTTL, c.RefreshTokenTTL)
	setValue(&config.BcryptCost, c.BcryptCost)

	setValue(&config.S3AccessKeyID, c.S3AccessKeyID)
	setValue(&config.S3SecretAccessKey, c.S3SecretAccessKey)
	setValue(&config.S3Bucket, c.S3Bucket)
	setValue(&config.S3Region, c.S3Region)
	setValue(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setValue(&config.S3UsePathStyle, c.S3UsePathStyle)

	setDuration(&config.UploadURLTTL, c.UploadURLTTL)
	setDuration(&config.ViewURLTTL, c.ViewURLTTL)
	setValue(&config.MaxUploadSize, c.MaxUploadSize)
	setValue(&config.VerifyUploadOnFinalize, c.VerifyUploadOnFinalize)

	if c.CORSOrigins != nil {
		config.CORSOrigins = c.CORSOrigins
	}
	return nil
}

func setValue[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func setDuration(dst *time.Duration, src *timex.Duration) {
	if src != nil {
		*dst = src.Duration
	}
}
