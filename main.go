package main

import (
	"context"
	"net/http"
	"os"
	"worksync/account"
	"worksync/avatar"
	"worksync/bizerror"
	"worksync/client/es"
	"worksync/client/s3"
	"worksync/common"
	"worksync/config"
	"worksync/domain"
	"worksync/domain/checklist"
	"worksync/domain/comment"
	"worksync/domain/label"
	"worksync/domain/namespace"
	"worksync/domain/task"
	"worksync/domain/timelog"
	"worksync/event"
	"worksync/indices"
	"worksync/infra/tracing"
	"worksync/persistence"
	"worksync/schedule"
	"worksync/servehttp"
	"worksync/session"
	"worksync/sessions"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		logrus.Fatalf("load config failed: %v", err)
	}
	common.ConfigureLogger(cfg.Server.Mode)
	gin.SetMode(cfg.Server.Mode)
	logrus.Info("service start")

	closer, err := tracing.InitGlobalTracer(common.ServiceName)
	if err != nil {
		logrus.Fatalf("tracer initialization failed: %v", err)
	}
	defer closer.Close()

	dbConfig, err := persistence.ParseDatabaseConfig(cfg)
	if err != nil {
		logrus.Fatalf("parse database config failed: %v", err)
	}

	// create database (no conflict)
	if dbConfig.DriverType == persistence.DriverMysql {
		if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
			logrus.Fatalf("failed to prepare database: %v", err)
		}
	}

	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		logrus.Fatalf("database connection failed: %v", err)
	}
	defer ds.Stop()
	persistence.ActiveDataSourceManager = ds

	// database migration (race condition)
	db := ds.GormDB(context.Background())
	if err := db.AutoMigrate(&domain.Project{}, &domain.ProjectMember{}, &domain.Task{}, &domain.CheckItem{},
		&domain.TimeLog{}, &domain.Comment{}, &domain.Label{}, &account.User{}, &event.EventRecord{}).Error; err != nil {
		logrus.Fatalf("database migration failed: %v", err)
	}
	if err := account.DefaultSecurityConfiguration(db, cfg.Security.InitialAdminPassword); err != nil {
		logrus.Fatalf("security configuration failed: %v", err)
	}

	if cfg.Search.Enabled {
		if _, err := es.CreateClient(cfg.Search.Addresses, cfg.Server.Mode == gin.DebugMode); err != nil {
			logrus.Fatalf("search client initialization failed: %v", err)
		}
		event.RegisterHandler(indices.IndexTaskEventHandle)
	}
	if err := s3.Bootstrap(&cfg.Storage); err != nil {
		logrus.Fatalf("object storage initialization failed: %v", err)
	}

	crontab, err := schedule.StartCron(&cfg.Schedule)
	if err != nil {
		logrus.Fatalf("schedule initialization failed: %v", err)
	}
	defer crontab.Stop()

	engine := gin.New()
	engine.Use(gin.Logger(), tracing.TracingIngress(), bizerror.ErrorHandling())
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, common.ServiceName)
	})

	authorized := session.SimpleAuthFilter()
	sessions.RegisterSessionsHandler(engine,
		servehttp.RateLimiter(cfg.Security.LoginRateLimitRPS, cfg.Security.LoginRateLimitBurst))
	sessions.RegisterSessionHandler(engine, authorized)
	account.RegisterUsersHandler(engine, authorized)
	namespace.RegisterProjectsRestApis(engine, authorized)
	namespace.RegisterProjectMembersRestApis(engine, authorized)
	task.RegisterTasksRestApis(engine, authorized)
	checklist.RegisterCheckItemsRestApis(engine, authorized)
	timelog.RegisterTimeLogsRestApis(engine, authorized)
	comment.RegisterCommentsRestApis(engine, authorized)
	label.RegisterLabelsRestApis(engine, authorized)
	indices.RegisterIndicesRestAPI(engine, authorized)
	if s3.Enabled() {
		avatar.RegisterAvatarAPI(engine, authorized)
	}

	if err := servehttp.StartHTTPServer(engine, cfg.Server.Addr); err != nil {
		logrus.Errorf("http server: %v", err)
	}
	logrus.Info("service exiting")
}
