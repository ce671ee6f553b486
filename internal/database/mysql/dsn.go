package mysql

import (
	"fmt"

	gomysql "github.com/go-sql-driver/mysql"

	"github.com/koustreak/dbframe/internal/database"
	"github.com/koustreak/dbframe/internal/errs"
)

const defaultPort = 3306

// BuildDSN produces a go-sql-driver DSN. An explicit cfg.DSN is parsed and
// re-emitted so that the settings the object layer depends on (parseTime,
// no multi-statements) are always present.
func BuildDSN(cfg *database.Config) (string, error) {
	var mc *gomysql.Config
	if cfg.DSN != "" {
		parsed, err := gomysql.ParseDSN(cfg.DSN)
		if err != nil {
			return "", errs.Wrap(errs.ErrKindConnectionFailed, "invalid DSN", err)
		}
		mc = parsed
	} else {
		port := cfg.Port
		if port == 0 {
			port = defaultPort
		}
		mc = gomysql.NewConfig()
		mc.User = cfg.User
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = fmt.Sprintf("%s:%d", cfg.Host, port)
		mc.DBName = cfg.Database
	}

	mc.ParseTime = true
	mc.MultiStatements = false
	if cfg.ConnectTimeout > 0 {
		mc.Timeout = cfg.ConnectTimeout
	}
	if cfg.QueryTimeout > 0 {
		mc.ReadTimeout = cfg.QueryTimeout
		mc.WriteTimeout = cfg.QueryTimeout
	}
	return mc.FormatDSN(), nil
}
