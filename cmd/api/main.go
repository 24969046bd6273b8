// Executável principal da API: carrega a configuração, inicializa dependências e sobe o servidor HTTP.
package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marcelojr/rifa-facil/internal/app/httpapi"
	"github.com/marcelojr/rifa-facil/internal/app/relatorio"
	"github.com/marcelojr/rifa-facil/internal/app/rifa"
	"github.com/marcelojr/rifa-facil/internal/app/sorteio"
	"github.com/marcelojr/rifa-facil/internal/domain"
	"github.com/marcelojr/rifa-facil/internal/platform/aleatorio"
	"github.com/marcelojr/rifa-facil/internal/platform/antifraude"
	"github.com/marcelojr/rifa-facil/internal/platform/clock"
	"github.com/marcelojr/rifa-facil/internal/platform/config"
	"github.com/marcelojr/rifa-facil/internal/platform/health"
	"github.com/marcelojr/rifa-facil/internal/platform/ids"
	"github.com/marcelojr/rifa-facil/internal/platform/logger"
	"github.com/marcelojr/rifa-facil/internal/platform/migrations"
	postgresstorage "github.com/marcelojr/rifa-facil/internal/platform/storage/postgres"
	redisstorage "github.com/marcelojr/rifa-facil/internal/platform/storage/redis"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("configuracao invalida", "err", err)
	}

	// Mantemos a conexão compartilhada em todo o ciclo para reaproveitar pool e checar readiness.
	db, err := postgresstorage.Open(ctx, cfg.PostgresDSN())
	if err != nil {
		logger.Fatal("falha ao conectar no postgres", "err", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("falha ao resgatar sql.DB", "err", err)
	}
	defer sqlDB.Close()

	if cfg.AutoMigrate {
		// Rodamos migrations automáticas apenas se habilitado para evitar surpresas em produção.
		if err := migrations.Run(db); err != nil {
			logger.Fatal("falha na migracao automatica", "err", err)
		}
	}

	// Redis centraliza fila de eventos, contadores, reservas e antifraude.
	redisClient, err := redisstorage.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Fatal("falha ao conectar no redis", "err", err)
	}
	defer redisClient.Close()

	rifaRepo := postgresstorage.NewRifaRepository(db)
	vendaRepo := postgresstorage.NewVendaRepository(db)
	relatorioRepo := postgresstorage.NewRelatorioRepository(db)
	contador := redisstorage.NewContador(redisClient, cfg.ContadorKeyPrefix)
	fila := redisstorage.NewFila(redisClient, cfg.FilaKeyPrefix)
	reservas := redisstorage.NewReserva(redisClient, cfg.ReservaKeyPrefix, time.Duration(cfg.ReservaTTLSegundos)*time.Second)
	relogio := clock.NovoRelogio()
	idGen := ids.NewGenerator()

	var antifraudeSvc domain.Antifraude = antifraude.NewNoop()
	if cfg.RateLimitEnabled {
		window := time.Duration(cfg.RateLimitWindowSeconds) * time.Second
		antifraudeSvc = antifraude.NewRedisRateLimiter(redisClient, cfg.RateLimitMaxActions, window, cfg.RateLimitKeyPrefix)
	}

	// Serviços agregam repositórios, fila e antifraude para guardar a lógica de negócio.
	rifaSvc := rifa.NewService(rifaRepo, vendaRepo, contador, fila, antifraudeSvc, relogio, idGen)
	sorteioSvc := sorteio.NewService(rifaRepo, vendaRepo, fila, aleatorio.NovaFonte(), relogio, idGen)
	relatorioSvc := relatorio.NewService(rifaRepo, relatorioRepo, relogio)

	mux := http.NewServeMux()
	checker := health.NewChecker(sqlDB, redisClient)

	// HTTP expõe API, health check e métricas que o Prometheus coleta.
	api := httpapi.New(rifaSvc, sorteioSvc, relatorioSvc, reservas, logger.L())
	api.Register(mux)
	mux.HandleFunc("/readyz", checker.ReadyHandler())
	mux.Handle("/metrics", promhttp.Handler())

	logger.Info("api ouvindo", "addr", cfg.HTTPAddress)
	if err := http.ListenAndServe(cfg.HTTPAddress, mux); err != nil {
		logger.Fatal("erro no servidor", "err", err)
	}
}
