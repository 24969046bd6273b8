package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	saleRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rifa_sale_requests_total",
		Help: "Total de tentativas de venda recebidas",
	}, []string{"status"})

	drawsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rifa_draws_total",
		Help: "Total de sorteios executados",
	}, []string{"status"})

	eventsProcessedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rifa_events_processed_total",
		Help: "Total de eventos do ledger processados pelo notificador",
	})

	eventProcessingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rifa_event_processing_duration_seconds",
		Help:    "Tempo para processar um evento no notificador",
		Buckets: prometheus.DefBuckets,
	})
)

func ObserveSaleRequest(status string) {
	saleRequestsTotal.WithLabelValues(status).Inc()
}

func ObserveDraw(status string) {
	drawsTotal.WithLabelValues(status).Inc()
}

func IncEventProcessed() {
	eventsProcessedTotal.Inc()
}

func ObserveProcessingDuration(seconds float64) {
	eventProcessingDuration.Observe(seconds)
}
