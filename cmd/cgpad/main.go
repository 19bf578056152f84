package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/mind-engage/mindengage-cgpa/internal/api/http"
	auth "github.com/mind-engage/mindengage-cgpa/internal/auth/middleware"
	"github.com/mind-engage/mindengage-cgpa/internal/config"
	"github.com/mind-engage/mindengage-cgpa/internal/converter"
	"github.com/mind-engage/mindengage-cgpa/internal/db"
	"github.com/mind-engage/mindengage-cgpa/internal/history"
	"github.com/mind-engage/mindengage-cgpa/internal/scale"
)

func main() {
	log.SetPrefix("cgpad: ")
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	defDir, err := scale.ParseDirection(cfg.DefaultDirection)
	if err != nil {
		log.Fatalf("DEFAULT_DIRECTION: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := api.Deps{
		DefaultDirection: defDir,
		Limiter:          api.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
	}

	// --- DB (conversion history only) ---
	if cfg.HistoryEnabled() {
		octx, cancel := context.WithTimeout(ctx, 10*time.Second)
		dbh, err := db.Open(octx, db.Driver(cfg.DBDriver), cfg.DBDSN)
		cancel()
		if err != nil {
			log.Fatalf("db open failed: %v", err)
		}
		defer dbh.Close()

		store := history.NewSQLStore(dbh)
		deps.Converter = converter.NewService(converter.WithRecorder(store))
		deps.History = store
		deps.Auth = auth.NewAuthService(cfg.AuthSecret)
		deps.Admin = auth.Admin{User: cfg.AdminUser, PassHash: cfg.AdminPassHash}
		if cfg.AdminPassHash == "" {
			log.Printf("ADMIN_PASS_HASH not set; /auth/login will reject every attempt")
		}
	} else {
		deps.Converter = converter.NewService()
	}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins(),
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	api.Mount(r, deps)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("listening on %s (mode=%s, db=%s, history=%t, default=%s)",
		cfg.HTTPAddr, cfg.Mode, cfg.DBDriver, cfg.HistoryEnabled(), defDir)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
