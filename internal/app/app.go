// Package app wires configuration, storage, services, background workers and
// the HTTP router into one application instance.
package app

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/axellelanca/shorturls/internal/api"
	"github.com/axellelanca/shorturls/internal/auth"
	"github.com/axellelanca/shorturls/internal/config"
	"github.com/axellelanca/shorturls/internal/database"
	"github.com/axellelanca/shorturls/internal/reclaimer"
	"github.com/axellelanca/shorturls/internal/repository"
	"github.com/axellelanca/shorturls/internal/services"
	"github.com/axellelanca/shorturls/internal/workers"
)

// App holds every long-lived component.
type App struct {
	Cfg        *config.Config
	DB         *gorm.DB
	LinkRepo   *repository.GormLinkRepository
	ClickRepo  *repository.GormClickRepository
	Links      *services.LinkService
	Resolver   *services.Resolver
	Dispatcher *workers.ClickDispatcher
	Reclaimer  *reclaimer.Reclaimer
	Verifier   *auth.Verifier

	closeOnce sync.Once
}

// New opens and migrates the database and builds the services. Background
// tasks are not running until Start. A nil clock means the wall clock.
func New(cfg *config.Config, now services.Clock) (*App, error) {
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		_ = database.Close(db)
		return nil, err
	}

	linkRepo := repository.NewLinkRepository(db)
	clickRepo := repository.NewClickRepository(db)
	log.Println("Repositories initialized.")

	recorder := services.NewClickRecorder(clickRepo)
	dispatcher := workers.NewClickDispatcher(recorder, cfg.Analytics.BufferSize)

	var sink services.ClickSink = recorder
	if cfg.Analytics.Async {
		sink = dispatcher
	}

	allocator := services.NewCodeAllocator(linkRepo, cfg.Links.CodeLength, now)
	links := services.NewLinkService(linkRepo, clickRepo, allocator, services.LinkOptions{
		MaxRetries:      cfg.Links.MaxRetries,
		DefaultValidity: cfg.DefaultValidity(),
		HistoryLimit:    cfg.Links.HistoryLimit,
	}, now)
	resolver := services.NewResolver(linkRepo, sink, cfg.Reclaimer.LazyDelete, now)
	log.Println("Services initialized.")

	return &App{
		Cfg:        cfg,
		DB:         db,
		LinkRepo:   linkRepo,
		ClickRepo:  clickRepo,
		Links:      links,
		Resolver:   resolver,
		Dispatcher: dispatcher,
		Reclaimer:  reclaimer.NewReclaimer(linkRepo, cfg.SweepInterval(), cfg.Reclaimer.BatchSize, now),
		Verifier:   auth.NewVerifier(cfg.Auth.JWTSecret),
	}, nil
}

// Router builds the gin engine serving the API and the redirects.
func (a *App) Router() *gin.Engine {
	router := gin.Default()
	api.SetupRoutes(router, api.Dependencies{
		Links:    a.Links,
		Resolver: a.Resolver,
		QR:       services.QRService{},
		Verifier: a.Verifier,
		BaseURL:  a.Cfg.Server.BaseURL,
	})
	return router
}

// Addr returns the HTTP listen address, e.g. ":8080".
func (a *App) Addr() string {
	return fmt.Sprintf(":%d", a.Cfg.Server.Port)
}

// Start launches the click workers and the reclaimer. The reclaimer runs
// until ctx is cancelled or Close is called.
func (a *App) Start(ctx context.Context) {
	if a.Cfg.Analytics.Async {
		a.Dispatcher.Start(a.Cfg.Analytics.WorkerCount)
		log.Printf("Click event channel initialized with a buffer of %d. %d click worker(s) started.",
			a.Cfg.Analytics.BufferSize, a.Cfg.Analytics.WorkerCount)
	}

	a.Reclaimer.Start(ctx)
	log.Printf("Expiry reclaimer started with an interval of %v.", a.Cfg.SweepInterval())
}

// Close stops the reclaimer, drains queued clicks and closes the database.
// Call it after the HTTP server has stopped accepting requests.
func (a *App) Close() error {
	var err error
	a.closeOnce.Do(func() {
		a.Reclaimer.Stop()
		a.Dispatcher.Stop()
		err = database.Close(a.DB)
	})
	return err
}
