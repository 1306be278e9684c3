package main

import (
	"context"
	"errors"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cleberrangel/jusbr-consulta/internal/app"
	"github.com/cleberrangel/jusbr-consulta/internal/config"
	"github.com/cleberrangel/jusbr-consulta/internal/handler"
	"github.com/cleberrangel/jusbr-consulta/internal/logger"
	"github.com/cleberrangel/jusbr-consulta/internal/metrics"
	"github.com/cleberrangel/jusbr-consulta/internal/middleware"
	"github.com/cleberrangel/jusbr-consulta/internal/service"
	"github.com/cleberrangel/jusbr-consulta/internal/websocket"
)

const Version = "1.0.0"

func main() {
	// Carrega configurações
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("Erro ao carregar configurações: %v", err)
	}
	if err := cfg.RequireToken(); err != nil {
		stdlog.Fatalf("Erro ao carregar configurações: %v", err)
	}

	// Inicializa logger estruturado
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	log := logger.Global()
	log.Info().
		Str("version", Version).
		Str("port", cfg.Port).
		Str("storage", cfg.StorageDriver).
		Int("batch_size", cfg.BatchSize).
		Str("log_level", cfg.LogLevel).
		Bool("log_json", cfg.LogJSON).
		Msg("JusBR Consulta API iniciando")

	metrics.Init()

	hub := websocket.NewHub()
	go hub.Run()

	ctx := context.Background()
	a, err := app.New(ctx, cfg, hub)
	if err != nil {
		log.Fatal().Err(err).Msg("Erro ao inicializar coordenador")
	}

	var worker *service.DrainWorker
	var waker handler.Waker
	if cfg.AutoDrain {
		worker = service.NewDrainWorker(a.Service, cfg.AutoDrainEvery)
		worker.Start()
		waker = worker
	}

	// Configura modo do Gin
	gin.SetMode(cfg.GinMode)

	r := handler.NewRouter(handler.RouterConfig{
		Service: a.Service,
		Storage: a.Mirror,
		Hub:     hub,
		Waker:   waker,
		Auth: middleware.AuthConfig{
			TokenAPI:     cfg.TokenAPI,
			TokenAPIHash: cfg.TokenAPIHash,
		},
		Location: cfg.Location(),
		Version:  Version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Servidor iniciando")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Erro ao iniciar servidor")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Encerrando servidor")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Erro no shutdown do servidor")
	}

	if worker != nil {
		worker.Stop()
	}
	hub.Stop()

	if err := a.Close(); err != nil {
		log.Error().Err(err).Msg("Erro ao fechar armazenamento")
	}
	log.Info().Msg("Servidor encerrado")
}
