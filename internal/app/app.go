// Package app wires configuration into stores and services shared by the binaries.
package app

import (
	"context"
	"fmt"

	"leadcrm/internal/config"
	"leadcrm/internal/database"
	"leadcrm/internal/domain/auth"
	"leadcrm/internal/domain/lead"
	"leadcrm/internal/domain/leadimport"
	"leadcrm/internal/pkg/archive"
	"leadcrm/internal/pkg/jwt"
	"leadcrm/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	DB     *gorm.DB
	Redis  *redis.Client

	JWT    *jwt.Service
	Users  *repository.UserRepository
	Leads  *lead.Repository
	Auth   *auth.Service
	Lead   *lead.Service
	Import *leadimport.Service
}

// New connects the database, runs migrations and builds every service.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return NewWithDB(ctx, cfg, db)
}

// NewWithDB builds the services on top of an already migrated database.
func NewWithDB(ctx context.Context, cfg *config.Config, db *gorm.DB) (*App, error) {
	a := &App{Config: cfg, DB: db}

	a.JWT = jwt.New(cfg.JWTSecret, cfg.JWTTTL)
	a.Users = repository.NewUserRepository(db)
	a.Leads = lead.NewRepository(db)
	a.Auth = auth.NewService(a.Users, a.JWT)
	a.Lead = lead.NewService(a.Leads, a.Users)

	store, err := a.tableStore(ctx)
	if err != nil {
		return nil, err
	}

	var archiver archive.Archiver = archive.Nop{}
	if cfg.Import.ArchiveBucket != "" {
		s3a, err := archive.NewS3(ctx, cfg.Import.ArchiveBucket, cfg.Import.ArchivePrefix)
		if err != nil {
			return nil, err
		}
		archiver = s3a
	}

	a.Import = leadimport.NewService(store, a.Leads, a.Users, leadimport.NewRepository(db), archiver, leadimport.Options{
		MaxUploadBytes: cfg.Import.MaxUploadBytes,
		ValidateRows:   cfg.Import.ValidateRows,
		BatchSize:      cfg.Import.BatchSize,
	})

	return a, nil
}

func (a *App) tableStore(ctx context.Context) (leadimport.TableStore, error) {
	if a.Config.Import.TokenStore != config.TokenStoreRedis {
		return leadimport.NewInlineCodec(a.Config.JWTSecret, a.Config.Import.TokenTTL), nil
	}

	a.Redis = redis.NewClient(&redis.Options{
		Addr:     a.Config.Redis.Addr,
		Password: a.Config.Redis.Password,
		DB:       a.Config.Redis.DB,
	})
	if err := a.Redis.Ping(ctx).Err(); err != nil {
		_ = a.Redis.Close()
		return nil, fmt.Errorf("redis ping %s: %w", a.Config.Redis.Addr, err)
	}
	logrus.WithField("addr", a.Config.Redis.Addr).Info("import tokens stored in redis")
	return leadimport.NewRedisStore(a.Redis, a.Config.Import.TokenTTL), nil
}

// Close releases the database pool and the redis client.
func (a *App) Close() {
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
