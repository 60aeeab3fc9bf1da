package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/arcade-reservation-board/internal/board"
	"github.com/iliyamo/arcade-reservation-board/internal/config"
	"github.com/iliyamo/arcade-reservation-board/internal/database"
	"github.com/iliyamo/arcade-reservation-board/internal/handler"
	"github.com/iliyamo/arcade-reservation-board/internal/lock"
	"github.com/iliyamo/arcade-reservation-board/internal/logger"
	"github.com/iliyamo/arcade-reservation-board/internal/middleware"
	"github.com/iliyamo/arcade-reservation-board/internal/migrations"
	"github.com/iliyamo/arcade-reservation-board/internal/queue"
	"github.com/iliyamo/arcade-reservation-board/internal/repository"
	"github.com/iliyamo/arcade-reservation-board/internal/router"
	"github.com/iliyamo/arcade-reservation-board/internal/scheduler"
	"github.com/iliyamo/arcade-reservation-board/internal/service"
	"github.com/iliyamo/arcade-reservation-board/internal/service/queue_publisher"
)

func main() {
	cfg := config.Load()

	zl, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	db, err := database.Open(database.Settings{
		User: cfg.DBUser, Pass: cfg.DBPass, Host: cfg.DBHost, Port: cfg.DBPort, Name: cfg.DBName,
	})
	if err != nil {
		zl.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migrations.Up(ctx, db); err != nil {
		zl.Fatal("migrations failed", zap.Error(err))
	}

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		zl.Warn("redis unavailable: in-process rate limiting, no response cache, no reset lock")
	} else {
		defer rdb.Close()
	}

	var events service.EventPublisher = service.NopPublisher{}
	if cfg.Events.Enabled {
		events = queue_publisher.New(cfg.Events.URL, zl)
		consumer := &queue.Consumer{URL: cfg.Events.URL, LogDir: cfg.Events.LogDir, Log: zl}
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				zl.Error("board consumer stopped", zap.Error(err))
			}
		}()
	}

	bc := cfg.Board
	catalog := board.DefaultCatalog()
	resolver := board.NewResolver(board.NewTimeGrid(bc.OpenHour, bc.CloseHour), catalog)
	reservations := repository.NewReservationRepo(db)

	boardSvc := service.NewBoardService(service.BoardDeps{
		Resolver:         resolver,
		Admission:        board.NewAdmission(catalog, bc.NameLimit),
		Reservations:     reservations,
		DisabledPrograms: repository.NewDisabledProgramRepo(db),
		DisabledTimes:    repository.NewDisabledTimeRepo(db),
		Events:           events,
		Log:              zl,
		Location:         bc.Location,
	})
	lifecycle := service.NewLifecycle(boardSvc, reservations, repository.NewResetLogRepo(db), lock.NewRedisLocker(rdb), zl)
	gate, err := service.NewAdminGate(cfg.AdminPassword, cfg.BcryptCost, cfg.JWTSecret, cfg.AccessTTLMin)
	if err != nil {
		zl.Fatal("admin gate setup failed", zap.Error(err))
	}

	sched := scheduler.New(boardSvc, lifecycle, scheduler.Intervals{
		Reload:         bc.ReloadInterval,
		Purge:          bc.PurgeInterval,
		DisabledReload: bc.DisabledReloadInterval,
		Clock:          bc.ClockInterval,
	}, zl)
	sched.Prime(ctx)
	sched.Start(ctx)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(zl))

	routes := router.Routes{
		Board:     &handler.BoardHandler{Svc: boardSvc, NameLimit: bc.NameLimit, MaskNames: bc.MaskNames, Log: zl},
		Admin:     &handler.AdminHandler{Svc: boardSvc, Lifecycle: lifecycle, Gate: gate, Log: zl},
		Gate:      gate,
		RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, zl),
		Cache:     middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
	}
	router.RegisterRoutes(e)
	router.RegisterBoard(e, routes)
	router.RegisterAdmin(e, routes)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zl.Warn("http shutdown error", zap.Error(err))
		}
	}()

	zl.Info("listening", zap.String("addr", server.Addr), zap.String("env", cfg.Env))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		zl.Fatal("http server error", zap.Error(err))
	}

	sched.Wait()
	boardSvc.Wait()
	zl.Info("stopped")
}
