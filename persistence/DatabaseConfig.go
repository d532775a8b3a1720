package persistence

import (
	"database/sql"
	"fmt"
	"worksync/config"

	"github.com/go-sql-driver/mysql"
)

const (
	DriverMysql  = "mysql"
	DriverSqlite = "sqlite3"
)

type DatabaseConfig struct {
	DriverType string
	DriverArgs string
	LogMode    bool
}

func ParseDatabaseConfig(cfg *config.Config) (*DatabaseConfig, error) {
	switch cfg.Database.Driver {
	case DriverMysql, DriverSqlite:
	default:
		return nil, fmt.Errorf("unsupported database driver '%s'", cfg.Database.Driver)
	}
	if cfg.Database.DSN == "" {
		return nil, fmt.Errorf("database dsn is required")
	}
	dsn := cfg.Database.DSN
	if cfg.Database.Driver == DriverMysql {
		c, err := mysql.ParseDSN(dsn)
		if err != nil {
			return nil, err
		}
		// timestamps are scanned into time.Time
		c.ParseTime = true
		dsn = c.FormatDSN()
	}
	return &DatabaseConfig{DriverType: cfg.Database.Driver, DriverArgs: dsn, LogMode: cfg.Server.Mode != "release"}, nil
}

// PrepareMysqlDatabase creates the database named in dsn if it does not exist
func PrepareMysqlDatabase(dsn string) error {
	c, err := mysql.ParseDSN(dsn)
	if err != nil {
		return err
	}
	if c.DBName == "" {
		return fmt.Errorf("database name is missing in dsn")
	}
	databaseName := c.DBName
	c.DBName = ""

	db, err := sql.Open(DriverMysql, c.FormatDSN())
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.Exec("CREATE DATABASE IF NOT EXISTS `" + databaseName + "` DEFAULT CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci")
	return err
}
