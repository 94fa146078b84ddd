package cmd

import (
	"context"
	"errors"

	"prompt-cms/cache"
	"prompt-cms/config"
	"prompt-cms/events"
	"prompt-cms/handlers"
	"prompt-cms/helper"
	"prompt-cms/logger"
	"prompt-cms/middleware"
	"prompt-cms/repositories"
	"prompt-cms/services"
	"prompt-cms/validation"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// app holds the wired server and what must be closed on shutdown.
type app struct {
	db        *gorm.DB
	redis     *redis.Client
	publisher *events.KafkaPublisher
	hub       *events.Hub
	router    *gin.Engine
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	db, err := config.InitDB(cfg.Database)
	if err != nil {
		return nil, err
	}

	rdb, err := config.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Log.Warnw("redis unavailable, using in-process caches", "error", err)
		rdb = nil
	}

	var (
		views       cache.ViewCache
		revocations cache.Revocations
	)
	if rdb != nil {
		views = cache.NewRedisViewCache(rdb, cfg.Cache.TTL)
		revocations = cache.NewRedisRevocations(rdb)
	} else {
		views = cache.NewMemoryViewCache(cfg.Cache.TTL)
		revocations = cache.NewMemoryRevocations()
	}

	var writer events.KafkaWriter
	if w := config.NewKafkaWriter(cfg.Kafka); w != nil {
		writer = w
	}
	publisher := events.NewKafkaPublisher(writer)
	hub := events.NewHub()
	revalidator := events.NewRevalidator(views, publisher, hub)

	userRepo := repositories.NewUserRepository(db)
	profileRepo := repositories.NewProfileRepository(db)
	promptRepo := repositories.NewPromptRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)
	tagRepo := repositories.NewTagRepository(db)
	linkRepo := repositories.NewLinkRepository(db)

	validate := validation.New()
	policy := services.NewAccessPolicy(cfg.Auth.AdminEmails, cfg.Auth.SignupEmails())
	tokens := services.NewTokenIssuer(cfg.Auth.Secret(), cfg.Auth.TokenTTL)

	profileService := services.NewProfileService(profileRepo, validate)
	svc := handlers.PageServices{
		Auth:       services.NewAuthService(userRepo, profileService, policy, tokens, revocations, validate, cfg.Auth.RequireConfirmation),
		Profiles:   profileService,
		Prompts:    services.NewPromptService(promptRepo, categoryRepo, tagRepo, linkRepo, policy, validate, revalidator, views),
		Categories: services.NewCategoryService(categoryRepo, linkRepo, policy, validate, revalidator, views),
		Tags:       services.NewTagService(tagRepo, linkRepo, policy, validate, revalidator, views),
		Public:     services.NewPublicService(promptRepo, categoryRepo, tagRepo, views),
		Dashboard:  services.NewDashboardService(promptRepo, categoryRepo, tagRepo, policy, views),
		Policy:     policy,
		Cookie:     middleware.SessionCookie{Name: cfg.Auth.CookieName, Secure: cfg.Auth.CookieSecure},
	}

	router := handlers.NewRouter(handlers.Deps{
		Helper:     &helper.HTTPHelper{},
		Services:   svc,
		Health:     repositories.NewHealthRepository(db),
		Hub:        hub,
		Production: cfg.IsProduction(),
	})

	return &app{db: db, redis: rdb, publisher: publisher, hub: hub, router: router}, nil
}

func (a *app) Close() error {
	a.hub.Close()

	var errs []error
	if err := a.publisher.Close(); err != nil {
		errs = append(errs, err)
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if sqlDB, err := a.db.DB(); err == nil {
		errs = append(errs, sqlDB.Close())
	}
	return errors.Join(errs...)
}
