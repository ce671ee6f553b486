// Package config loads dbframe settings from a YAML file and DBFRAME_*
// environment variables. Environment values win over the file.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/koustreak/dbframe/internal/database"
	"github.com/koustreak/dbframe/internal/errs"
	"github.com/koustreak/dbframe/internal/filestore"
	"github.com/koustreak/dbframe/internal/logger"
)

// EnvPrefix starts every environment override.
const EnvPrefix = "DBFRAME_"

// Config is the whole settings file.
type Config struct {
	Database  database.Config  `yaml:"database"`
	Log       logger.Config    `yaml:"log"`
	FileStore filestore.Config `yaml:"filestore"`
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		Database: database.Config{
			MaxConns:       1,
			ConnectTimeout: 10 * time.Second,
		},
		Log: logger.Config{
			Level:      "info",
			Format:     "console",
			TimeFormat: "rfc3339",
		},
		FileStore: filestore.Config{
			Provider: filestore.ProviderMinIO,
		},
	}
}

// Load reads path over the defaults and applies environment overrides. An
// empty path skips the file. A missing file is tolerated when the
// environment names a driver or DSN.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist) && envConfigured():
		case err != nil:
			return nil, errs.Wrap(errs.ErrKindNotFound, "read config "+path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, errs.Wrap(errs.ErrKindInvalidInput, "parse config "+path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func envConfigured() bool {
	_, driver := os.LookupEnv(EnvPrefix + "DRIVER")
	_, dsn := os.LookupEnv(EnvPrefix + "DSN")
	return driver || dsn
}

func (c *Config) applyEnv() error {
	db := &c.Database
	setString(&db.DSN, "DSN")
	if v, ok := lookup("DRIVER"); ok {
		db.Driver = database.Driver(v)
	}
	setString(&db.Host, "HOST")
	setString(&db.User, "USER")
	setString(&db.Password, "PASSWORD")
	setString(&db.Database, "DATABASE")
	setString(&db.SSLMode, "SSLMODE")
	setString(&db.Path, "PATH")
	if v, ok := lookup("PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return errs.Wrap(errs.ErrKindInvalidInput, EnvPrefix+"PORT", err)
		}
		db.Port = port
	}
	if v, ok := lookup("QUERY_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errs.Wrap(errs.ErrKindInvalidInput, EnvPrefix+"QUERY_TIMEOUT", err)
		}
		db.QueryTimeout = d
	}

	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")

	fsc := &c.FileStore
	setString(&fsc.Endpoint, "S3_ENDPOINT")
	setString(&fsc.AccessKey, "S3_ACCESS_KEY")
	setString(&fsc.SecretKey, "S3_SECRET_KEY")
	setString(&fsc.DefaultBucket, "S3_BUCKET")
	setString(&fsc.Region, "S3_REGION")
	if v, ok := lookup("S3_USE_SSL"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errs.Wrap(errs.ErrKindInvalidInput, EnvPrefix+"S3_USE_SSL", err)
		}
		fsc.UseSSL = b
	}
	return nil
}

// lookup returns a non-empty DBFRAME_<name> value.
func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + name)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func setString(dst *string, name string) {
	if v, ok := lookup(name); ok {
		*dst = v
	}
}
