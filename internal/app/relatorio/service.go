// Pacote relatorio implementa as leituras agregadas do ledger: estatísticas por
// rifa, dados de gráfico e o resumo de vendas compartilhável.
package relatorio

import (
	"context"
	"errors"
	"sort"

	"github.com/marcelojr/rifa-facil/internal/app/rifa"
	"github.com/marcelojr/rifa-facil/internal/domain"
)

// Service só lê; nenhuma operação aqui altera o ledger.
type Service struct {
	rifas     domain.RifaRepository
	agregados domain.RelatorioRepository
	clock     domain.Clock
}

func NewService(rifas domain.RifaRepository, agregados domain.RelatorioRepository, clock domain.Clock) *Service {
	return &Service{
		rifas:     rifas,
		agregados: agregados,
		clock:     clock,
	}
}

func (s *Service) Estatisticas(ctx context.Context, id domain.RifaID) (domain.Estatisticas, error) {
	r, err := s.rifas.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Estatisticas{}, rifa.ErrRifaNaoEncontrada
		}
		return domain.Estatisticas{}, err
	}

	totais, err := s.agregados.Totais(ctx, id)
	if err != nil {
		return domain.Estatisticas{}, err
	}

	vendedores, err := s.agregados.RankingVendedores(ctx, id)
	if err != nil {
		return domain.Estatisticas{}, err
	}

	compradores, err := s.agregados.RankingCompradores(ctx, id)
	if err != nil {
		return domain.Estatisticas{}, err
	}

	estat := domain.Estatisticas{
		Rifa:        r,
		Totais:      totais,
		Vendedores:  vendedores,
		Compradores: compradores,
	}

	// Sem preço configurado a arrecadação fica indefinida, não zero.
	if r.PrecoNumero != nil {
		arrecadado := *r.PrecoNumero * float64(totais.NumerosVendidos)
		estat.Arrecadado = &arrecadado
	}

	return estat, nil
}

func (s *Service) DadosGrafico(ctx context.Context) (domain.DadosGrafico, error) {
	resumos, err := s.agregados.ResumoRifas(ctx)
	if err != nil {
		return domain.DadosGrafico{}, err
	}

	vendedores, err := s.agregados.VendedoresGerais(ctx)
	if err != nil {
		return domain.DadosGrafico{}, err
	}

	top := make([]domain.RifaResumo, len(resumos))
	copy(top, resumos)
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].ValorArrecadado > top[j].ValorArrecadado
	})
	if len(top) > 5 {
		top = top[:5]
	}

	return domain.DadosGrafico{
		Rifas:      resumos,
		TopRifas:   top,
		Vendedores: vendedores,
	}, nil
}

// Resumo monta o texto de vendas pronto para compartilhar no aplicativo de mensagens.
func (s *Service) Resumo(ctx context.Context, id domain.RifaID) (string, error) {
	estat, err := s.Estatisticas(ctx, id)
	if err != nil {
		return "", err
	}
	return FormatarResumo(estat, s.clock.Agora()), nil
}

var _ domain.RelatorioService = (*Service)(nil)
