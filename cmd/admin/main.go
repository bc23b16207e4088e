// admin 运维命令：migrate / seed / create-admin
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"course-management-api/internal/core/config"
	"course-management-api/internal/core/database"
	"course-management-api/internal/core/logger"
	"course-management-api/internal/repo"
	"course-management-api/internal/seed"
	"course-management-api/internal/service"
)

const usage = `usage: admin <command> [flags]

commands:
  migrate                                  create or update tables
  seed                                     insert demo data into an empty database
  create-admin -name N -email E -password P
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, cleanup := logger.New(cfg.Log.Level, cfg.Log.JSON)
	defer cleanup()

	db := mustOpenDB(cfg, log)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	switch cmd := os.Args[1]; cmd {
	case "migrate":
		err = database.Migrate(db)
		if err == nil {
			log.Info("migrate done")
		}
	case "seed":
		if err = database.Migrate(db); err != nil {
			break
		}
		var inserted bool
		inserted, err = seed.Run(ctx, db, cfg.Auth.BcryptCost, log)
		if err == nil {
			log.Info("seed finished", zap.Bool("inserted", inserted))
		}
	case "create-admin":
		err = createAdmin(ctx, db, cfg, log, os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		cleanup()
		os.Exit(2)
	}
	if err != nil {
		log.Error("admin command failed", zap.String("cmd", os.Args[1]), zap.Error(err))
		cleanup()
		os.Exit(1)
	}
}

func createAdmin(ctx context.Context, db *gorm.DB, cfg *config.Config, l *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("create-admin", flag.ContinueOnError)
	name := fs.String("name", "Administrator", "display name")
	email := fs.String("email", "", "login email")
	password := fs.String("password", "", "login password (min 6)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}
	users := service.NewUserService(repo.NewUserRepo(db), repo.NewCourseRepo(db), service.UserOptions{
		BcryptCost:                cfg.Auth.BcryptCost,
		DefaultInstructorPassword: cfg.Auth.DefaultInstructorPassword,
	}, l)
	u, err := users.CreateAdmin(ctx, *name, *email, *password)
	if err != nil {
		return err
	}
	l.Info("admin created", zap.Uint("id", u.ID), zap.String("email", u.Email))
	return nil
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
