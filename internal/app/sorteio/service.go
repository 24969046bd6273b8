// Pacote sorteio implementa o motor de sorteio: escolha uniforme entre os números
// vendidos e finalização única da rifa.
package sorteio

import (
	"context"
	"errors"
	"sync"

	"github.com/marcelojr/rifa-facil/internal/app/rifa"
	"github.com/marcelojr/rifa-facil/internal/domain"
	"github.com/marcelojr/rifa-facil/internal/platform/ids"
)

var (
	ErrSemNumerosVendidos = errors.New("nenhum numero vendido para sortear")

	// ErrInconsistencia indica um número vendido sem participante dono;
	// inalcançável enquanto as invariantes do ledger valem.
	ErrInconsistencia = errors.New("numero vendido sem participante associado")
)

// Service sorteia e finaliza. O mutex cobre o par sortear+finalizar para que um
// segundo sorteio não intercale antes da finalização ser gravada.
type Service struct {
	mu     sync.Mutex
	rifas  domain.RifaRepository
	vendas domain.VendaRepository
	fila   domain.Fila
	fonte  domain.Aleatorio
	clock  domain.Clock
	ids    *ids.Generator
}

func NewService(
	rifas domain.RifaRepository,
	vendas domain.VendaRepository,
	fila domain.Fila,
	fonte domain.Aleatorio,
	clock domain.Clock,
	idsGen *ids.Generator,
) *Service {
	if idsGen == nil {
		idsGen = ids.DefaultGenerator()
	}
	return &Service{
		rifas:  rifas,
		vendas: vendas,
		fila:   fila,
		fonte:  fonte,
		clock:  clock,
		ids:    idsGen,
	}
}

// Sortear escolhe um número com probabilidade uniforme 1/k entre os k números
// vendidos. Números não vendidos nunca saem sorteados; a chance é por número,
// não por participante.
func (s *Service) Sortear(ctx context.Context, id domain.RifaID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.rifas.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, rifa.ErrRifaNaoEncontrada
		}
		return 0, err
	}
	if r.Sorteada() {
		return 0, domain.ErrJaSorteada
	}

	vendidos, err := s.vendas.NumerosVendidos(ctx, id)
	if err != nil {
		return 0, err
	}
	if len(vendidos) == 0 {
		return 0, ErrSemNumerosVendidos
	}

	return vendidos[s.fonte.Intn(len(vendidos))], nil
}

// Finalizar resolve o dono do número sorteado e grava vencedor + encerramento.
// A apresentação pode inserir a contagem regressiva entre Sortear e Finalizar;
// o UPDATE condicional garante a finalização exatamente uma vez mesmo assim.
func (s *Service) Finalizar(ctx context.Context, id domain.RifaID, numero int) (domain.Ganhador, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.rifas.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Ganhador{}, rifa.ErrRifaNaoEncontrada
		}
		return domain.Ganhador{}, err
	}
	if r.Sorteada() {
		return domain.Ganhador{}, domain.ErrJaSorteada
	}

	dono, err := s.vendas.DonoDoNumero(ctx, id, numero)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Ganhador{}, ErrInconsistencia
		}
		return domain.Ganhador{}, err
	}

	ganhador := domain.Ganhador{
		Numero:   numero,
		Nome:     dono.Nome,
		Vendedor: dono.Vendedor,
	}

	if err := s.rifas.RegistrarVencedor(ctx, id, ganhador); err != nil {
		return domain.Ganhador{}, err
	}

	if s.fila != nil {
		// Evento de melhor esforço: o encerramento já está gravado.
		_ = s.fila.PublicarEvento(ctx, domain.Evento{
			ID:       s.ids.New(),
			Tipo:     domain.EventoSorteioFinalizado,
			RifaID:   id,
			Nome:     ganhador.Nome,
			Vendedor: ganhador.Vendedor,
			Numeros:  []int{numero},
			CriadoEm: s.clock.Agora(),
		})
	}

	return ganhador, nil
}

var _ domain.SorteioService = (*Service)(nil)
