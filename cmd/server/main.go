package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/conquest-table/internal/auth"
	"github.com/freeeve/conquest-table/internal/config"
	"github.com/freeeve/conquest-table/internal/handler"
	"github.com/freeeve/conquest-table/internal/logger"
	"github.com/freeeve/conquest-table/internal/middleware"
	"github.com/freeeve/conquest-table/internal/repository"
	"github.com/freeeve/conquest-table/internal/repository/postgres"
	redisrepo "github.com/freeeve/conquest-table/internal/repository/redis"
	"github.com/freeeve/conquest-table/internal/service"
	"github.com/freeeve/conquest-table/pkg/conquest"
)

func main() {
	logger.Init()
	cfg := config.Load()
	log.Info().
		Bool("archive", cfg.DatabaseURL != "").
		Bool("leaderboard", cfg.RedisURL != "").
		Dur("turnTimeout", cfg.TurnTimeout).
		Dur("inactivityTimeout", cfg.InactivityTimeout).
		Dur("battleTimeout", cfg.BattleTimeout).
		Msg("Config loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Result archive (optional)
	var results repository.ResultRepository
	if cfg.DatabaseURL != "" {
		db, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Database connection failed")
		}
		defer db.Close()
		results = postgres.NewResultRepo(db)
	}

	// Leaderboard (optional)
	var leaderboard repository.Leaderboard
	if cfg.RedisURL != "" {
		redisClient, err := redisrepo.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Redis connection failed")
		}
		defer redisClient.Close()
		leaderboard = redisClient
	}

	m := conquest.StandardMap()
	if cfg.MapFile != "" {
		f, err := os.Open(cfg.MapFile)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.MapFile).Msg("Failed to open map file")
		}
		m, err = conquest.LoadMap(f)
		f.Close()
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.MapFile).Msg("Invalid map file")
		}
	}

	// WebSocket hub and the table
	wsHub := handler.NewHub()
	table := service.NewTable(service.TableConfig{
		Map:               m,
		TurnTimeout:       cfg.TurnTimeout,
		InactivityTimeout: cfg.InactivityTimeout,
		BattleTimeout:     cfg.BattleTimeout,
	}, service.TableDeps{
		Broadcaster: wsHub,
		Results:     results,
		Leaderboard: leaderboard,
	})
	go table.Run(ctx)

	// Auth
	jwtMgr := auth.NewJWTManager(cfg.JWTSecret)
	authMw := auth.Middleware(jwtMgr)

	// Handlers
	sessionHandler := handler.NewSessionHandler(jwtMgr)
	tableHandler := handler.NewTableHandler(table)
	resultsHandler := handler.NewResultsHandler(results, leaderboard)
	wsHandler := handler.NewWSHandler(wsHub, table, jwtMgr, handler.WSOptions{
		IntentRate:     cfg.IntentRate,
		IntentBurst:    cfg.IntentBurst,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	// Router
	mux := http.NewServeMux()

	// Health
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	mux.HandleFunc("POST /api/v1/session", sessionHandler.CreateSession)
	mux.HandleFunc("GET /api/v1/state", tableHandler.GetState)
	mux.Handle("GET /api/v1/me", authMw(http.HandlerFunc(tableHandler.GetMe)))
	mux.HandleFunc("GET /api/v1/results", resultsHandler.ListResults)
	mux.HandleFunc("GET /api/v1/leaderboard", resultsHandler.Leaderboard)

	// WebSocket (auth via query param, not middleware)
	mux.HandleFunc("GET /api/v1/ws", wsHandler.ServeWS)

	// Apply global middleware
	root := middleware.Chain(mux, middleware.Recover, middleware.Logger, middleware.CORS(cfg.AllowedOrigins), middleware.JSON)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server")

	wsHub.CloseAll("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}

	cancel()
	table.Dispose()
	log.Info().Msg("Server stopped")
}
