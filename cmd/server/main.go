package main // Entry point package

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/hammers-calendar/internal/config"
	"github.com/iliyamo/hammers-calendar/internal/database"
	"github.com/iliyamo/hammers-calendar/internal/handler"
	"github.com/iliyamo/hammers-calendar/internal/middleware"
	"github.com/iliyamo/hammers-calendar/internal/model"
	"github.com/iliyamo/hammers-calendar/internal/queue"
	"github.com/iliyamo/hammers-calendar/internal/repository"
	"github.com/iliyamo/hammers-calendar/internal/router"
	"github.com/iliyamo/hammers-calendar/internal/service"
)

func main() {
	// A .env file is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("env: %v", err)
	}
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, database.DSN(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName))
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("db: migrate: %v", err)
	}

	rdb := config.NewRedisClient(ctx) // nil disables cache, rate limit and the shared lock
	if rdb != nil {
		defer rdb.Close()
	}

	games := repository.NewGameRepo(db)
	attendance := repository.NewAttendanceRepo(db)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	seedAdmin(ctx, users, cfg.BcryptCost)

	var events service.EventPublisher = service.NopPublisher{}
	if os.Getenv("RABBITMQ_URL") != "" || os.Getenv("AMQP_URL") != "" {
		events = service.NewAMQPPublisher(cfg.AMQPURL)
	}
	if cfg.Consume {
		go func() {
			if err := queue.StartAttendanceConsumer(ctx, cfg.AMQPURL, "logs/attendance.log"); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("attendance-consumer: %v", err)
			}
		}()
	}

	cache := middleware.NewResponseCache(config.LoadCacheConfig(), rdb)
	rl := config.LoadRateLimitConfig()

	calendar := handler.NewCalendarHandler(games)
	att := handler.NewAttendanceHandler(games, attendance, service.NewGameLock(rdb, 10*time.Second), events, cache)
	auth := handler.NewAuthHandler(cfg, users, tokens)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger(), echomw.Recover())

	router.RegisterRoutes(e)
	router.RegisterCalendar(e, calendar, cfg.JWTSecret, middleware.NewTokenBucket(rl, rdb), cache.Middleware())
	router.RegisterAttendance(e, att, cfg.JWTSecret, middleware.NewTokenBucket(rl.WithCapacity(rl.AttendCapacity, "attend"), rdb))
	router.RegisterAuth(e, auth, att, cfg.JWTSecret)
	router.RegisterAdmin(e, auth, calendar, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

// seedAdmin creates the first ADMIN account from ADMIN_USERNAME and
// ADMIN_PASSWORD so that a fresh database can be managed at all.
func seedAdmin(ctx context.Context, users *repository.UserRepo, cost int) {
	name, pass := os.Getenv("ADMIN_USERNAME"), os.Getenv("ADMIN_PASSWORD")
	if name == "" || pass == "" {
		return
	}
	if _, err := users.GetByUsername(ctx, name); err == nil {
		return
	} else if !errors.Is(err, sql.ErrNoRows) {
		log.Printf("seed admin: %v", err)
		return
	}
	if _, err := users.Create(ctx, name, pass, model.RoleAdmin, cost); err != nil {
		log.Printf("seed admin: %v", err)
		return
	}
	log.Printf("seed admin: created %s", name)
}
