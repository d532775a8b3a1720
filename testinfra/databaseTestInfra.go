package testinfra

import (
	"context"
	"os"
	"strings"
	"worksync/persistence"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type TestDatabase struct {
	TestDatabaseName string
	DS               *persistence.DataSourceManager
}

// StartTestDatabase starts an in-memory sqlite database, or a mysql database when
// TEST_DATABASE_DRIVER=mysql (TEST_MYSQL_SERVICE=root:root@(127.0.0.1:3306)).
func StartTestDatabase(baseName string) *TestDatabase {
	databaseName := baseName + "_test_" + strings.ReplaceAll(uuid.New().String(), "-", "")

	var dbConfig *persistence.DatabaseConfig
	if os.Getenv("TEST_DATABASE_DRIVER") == persistence.DriverMysql {
		mysqlSvc := os.Getenv("TEST_MYSQL_SERVICE")
		if mysqlSvc == "" {
			mysqlSvc = "root:root@(127.0.0.1:3306)"
		}
		dbConfig = &persistence.DatabaseConfig{
			DriverType: persistence.DriverMysql,
			DriverArgs: mysqlSvc + "/" + databaseName + "?charset=utf8mb4&parseTime=True&loc=Local&timeout=5s",
		}
		// create database (no conflict)
		if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
			logrus.Fatalf("failed to prepare database %v\n", err)
		}
	} else {
		dbConfig = &persistence.DatabaseConfig{
			DriverType: persistence.DriverSqlite,
			DriverArgs: "file:" + databaseName + "?mode=memory&cache=shared",
		}
	}

	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		defer ds.Stop()
		logrus.Fatalf("database connection failed %v\n", err)
	}

	return &TestDatabase{TestDatabaseName: databaseName, DS: ds}
}

func StopTestDatabase(testDatabase *TestDatabase) {
	if testDatabase == nil || testDatabase.DS == nil {
		return
	}
	db := testDatabase.DS.GormDB(context.Background())
	if db != nil && testDatabase.DS.DatabaseConfig.DriverType == persistence.DriverMysql {
		if err := db.Exec("DROP DATABASE " + testDatabase.TestDatabaseName).Error; err != nil {
			logrus.Warnln("failed to drop test database: " + testDatabase.TestDatabaseName)
		} else {
			logrus.Infoln("test database " + testDatabase.TestDatabaseName + " dropped")
		}
	}

	// in-memory sqlite database is released with its last connection
	testDatabase.DS.Stop()
}
