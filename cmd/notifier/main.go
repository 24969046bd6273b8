// Notificador assíncrono que consome eventos do ledger, mantém contadores e prepara os resumos de venda.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marcelojr/rifa-facil/internal/app/notifier"
	"github.com/marcelojr/rifa-facil/internal/app/relatorio"
	"github.com/marcelojr/rifa-facil/internal/platform/clock"
	"github.com/marcelojr/rifa-facil/internal/platform/config"
	"github.com/marcelojr/rifa-facil/internal/platform/health"
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

	// Notificador usa a mesma conexão GORM da API para compartilhar migrations e modelos.
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
		// Evitamos divergência de schema rodando a mesma migração condicional da API.
		if err := migrations.Run(db); err != nil {
			logger.Fatal("falha na migracao automatica", "err", err)
		}
	}

	// Redis é obrigatório aqui porque fila e contador vivem sobre a mesma instância.
	redisClient, err := redisstorage.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Fatal("falha ao conectar no redis", "err", err)
	}
	defer redisClient.Close()

	contador := redisstorage.NewContador(redisClient, cfg.ContadorKeyPrefix)
	fila := redisstorage.NewFila(redisClient, cfg.FilaKeyPrefix)
	relogio := clock.NovoRelogio()
	checker := health.NewChecker(sqlDB, redisClient)

	if cfg.NotifierMetricsAddress != "" {
		go func() {
			// Metrics expõe observabilidade enquanto a goroutine principal consome a fila.
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			mux.HandleFunc("/readyz", checker.ReadyHandler())
			logger.Info("notifier metrics ouvindo", "addr", cfg.NotifierMetricsAddress)
			if err := http.ListenAndServe(cfg.NotifierMetricsAddress, mux); err != nil {
				logger.Error("erro no servidor de metrics do notifier", "err", err)
			}
		}()
	}

	rifaRepo := postgresstorage.NewRifaRepository(db)
	relatorioRepo := postgresstorage.NewRelatorioRepository(db)
	relatorioSvc := relatorio.NewService(rifaRepo, relatorioRepo, relogio)
	processor := notifier.NewProcessor(relatorioSvc, contador, relogio, logger.L())

	logger.Info("notifier iniciado, aguardando eventos")
	err = fila.ConsumirEventos(ctx, processor.Process)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("erro ao consumir eventos", "err", err)
	}

	logger.Info("notifier encerrado")
}
