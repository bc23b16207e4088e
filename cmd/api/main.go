package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"course-management-api/internal/core/auth"
	"course-management-api/internal/core/config"
	"course-management-api/internal/core/database"
	"course-management-api/internal/core/kv"
	"course-management-api/internal/core/logger"
	"course-management-api/internal/core/server"
	"course-management-api/internal/seed"
	"course-management-api/internal/service"
	"course-management-api/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log, cleanup := newLogger(cfg)
	defer cleanup()

	// 数据库（失败会直接 Fatal）
	db := mustOpenDB(cfg, log)
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}
	if cfg.DB.Seed {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		seeded, err := seed.Run(ctx, db, cfg.Auth.BcryptCost, log)
		cancel()
		if err != nil {
			log.Fatal("seed failed", zap.Error(err))
		}
		log.Info("seed checked", zap.Bool("inserted", seeded))
	}

	// Redis 只用于分布式限速，连不上就退回进程内令牌桶
	var rdb *redis.Client
	if cfg.Redis.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		rdb, err = kv.Connect(ctx, kv.Opts{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		cancel()
		if err != nil {
			log.Warn("redis unavailable, using local rate limit", zap.Error(err))
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
	}

	mode := gin.DebugMode
	if cfg.App.Env == "prod" || cfg.App.Env == "production" {
		mode = gin.ReleaseMode
	}
	r := router.NewAPIEngine(router.Deps{
		Log:    log,
		DB:     db,
		JWT:    jwter,
		Redis:  rdb,
		Server: server.Options{Mode: mode, CORSOrigins: cfg.App.HTTP.CORSOrigins},
		Limits: router.Limits{
			RPS:            cfg.RateLimit.RPS,
			Burst:          cfg.RateLimit.Burst,
			MaxConcurrent:  cfg.App.HTTP.MaxConcurrent,
			MaxBodyBytes:   cfg.App.HTTP.MaxBodyBytes,
			RequestTimeout: time.Duration(cfg.App.HTTP.RequestTimeoutSec) * time.Second,
		},
		Auth: service.AuthOptions{
			BcryptCost:         cfg.Auth.BcryptCost,
			BlockInactiveLogin: cfg.Auth.BlockInactiveLogin,
		},
		Users: service.UserOptions{
			BcryptCost:                cfg.Auth.BcryptCost,
			DefaultInstructorPassword: cfg.Auth.DefaultInstructorPassword,
		},
	})

	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	// 启动日志
	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("course api starting",
		zap.String("addr", addr),
		zap.String("env", cfg.App.Env),
		zap.String("health", baseURL+"/health"),
		zap.String("api", baseURL+"/api"),
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("course api start FAILED", zap.Error(err))
		}
	}()
	log.Info("course api started SUCCESS")

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("course api stopped gracefully")
}

func newLogger(cfg *config.Config) (*zap.Logger, func()) {
	if !cfg.Log.File.Enable {
		return logger.New(cfg.Log.Level, cfg.Log.JSON)
	}
	f := cfg.Log.File
	return logger.NewWithRotate(cfg.Log.Level, cfg.Log.JSON, logger.FileRotate{
		Filename:   f.Filename,
		MaxSizeMB:  f.MaxSizeMB,
		MaxBackups: f.MaxBackups,
		MaxAgeDays: f.MaxAgeDays,
		Compress:   f.Compress,
	})
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Log:                l,
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}
