// Pacote notifier contém o processamento assíncrono dos eventos do ledger vindos da fila Redis.
package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/marcelojr/rifa-facil/internal/app/rifa"
	"github.com/marcelojr/rifa-facil/internal/domain"
	"github.com/marcelojr/rifa-facil/internal/platform/metrics"
)

// Processor mantém contadores por vendedor e entrega o resumo de vendas quando
// a rifa é sorteada. É a ponta de integração com a camada de compartilhamento.
type Processor struct {
	relatorio domain.RelatorioService
	contador  domain.Contador
	clock     domain.Clock
	logger    *slog.Logger
}

func NewProcessor(relatorio domain.RelatorioService, contador domain.Contador, clock domain.Clock, logger *slog.Logger) *Processor {
	return &Processor{
		relatorio: relatorio,
		contador:  contador,
		clock:     clock,
		logger:    logger,
	}
}

func (p *Processor) Process(ctx context.Context, evento domain.Evento) error {
	start := time.Now()

	// Eventos antigos podem chegar sem carimbo; usamos o clock local como chegada.
	if evento.CriadoEm.IsZero() {
		evento.CriadoEm = p.clock.Agora()
	}

	switch evento.Tipo {
	case domain.EventoVendaRegistrada:
		if err := p.processarVenda(ctx, evento); err != nil {
			return err
		}
	case domain.EventoSorteioFinalizado:
		if err := p.processarSorteio(ctx, evento); err != nil {
			return err
		}
	default:
		p.logger.Warn("evento de tipo desconhecido ignorado", "tipo", evento.Tipo, "id", evento.ID)
	}

	metrics.IncEventProcessed()
	metrics.ObserveProcessingDuration(time.Since(start).Seconds())

	return nil
}

func (p *Processor) processarVenda(ctx context.Context, evento domain.Evento) error {
	if p.contador == nil {
		return nil
	}
	if _, err := p.contador.Incrementar(ctx, rifa.ChaveVendedor(evento.RifaID, evento.Vendedor), int64(len(evento.Numeros))); err != nil {
		return fmt.Errorf("notifier: incrementar contador vendedor %s/%s: %w", evento.RifaID, evento.Vendedor, err)
	}
	return nil
}

func (p *Processor) processarSorteio(ctx context.Context, evento domain.Evento) error {
	resumo, err := p.relatorio.Resumo(ctx, evento.RifaID)
	if err != nil {
		return fmt.Errorf("notifier: montar resumo da rifa %s: %w", evento.RifaID, err)
	}

	// A entrega efetiva (WhatsApp etc.) fica na camada de compartilhamento;
	// aqui o resumo sai no log estruturado para o integrador consumir.
	p.logger.Info("sorteio finalizado, resumo pronto",
		"rifa", evento.RifaID,
		"ganhador", evento.Nome,
		"vendedor", evento.Vendedor,
		"resumo", resumo,
	)

	return nil
}
