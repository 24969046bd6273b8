// Pacote rifa implementa as regras de negócio do ledger: ciclo de vida da rifa e registro de vendas.
package rifa

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/marcelojr/rifa-facil/internal/domain"
	"github.com/marcelojr/rifa-facil/internal/platform/ids"
)

var (
	ErrRifaInvalida       = errors.New("rifa invalida")
	ErrRifaNaoEncontrada  = errors.New("rifa nao encontrada")
	ErrRifaAtivaExistente = errors.New("ja existe uma rifa ativa")
	ErrRifaEncerrada      = errors.New("rifa encerrada")
	ErrNenhumaRifaAtiva   = errors.New("nenhuma rifa ativa")
	ErrVendaInvalida      = errors.New("venda invalida")
	ErrSelecaoVazia       = errors.New("nenhum numero selecionado")
	ErrNumeroInvalido     = errors.New("numero fora do intervalo da rifa")
)

// Service concentra ciclo de vida e vendas; o sorteio vive em um serviço próprio.
type Service struct {
	rifas      domain.RifaRepository
	vendas     domain.VendaRepository
	contador   domain.Contador
	fila       domain.Fila
	antifraude domain.Antifraude
	clock      domain.Clock
	ids        *ids.Generator
}

func NewService(
	rifas domain.RifaRepository,
	vendas domain.VendaRepository,
	contador domain.Contador,
	fila domain.Fila,
	antifraude domain.Antifraude,
	clock domain.Clock,
	idsGen *ids.Generator,
) *Service {
	if idsGen == nil {
		idsGen = ids.DefaultGenerator()
	}
	return &Service{
		rifas:      rifas,
		vendas:     vendas,
		contador:   contador,
		fila:       fila,
		antifraude: antifraude,
		clock:      clock,
		ids:        idsGen,
	}
}

// CriarRifa valida e cria a rifa já ativa. Só pode existir uma rifa ativa por vez;
// a anterior precisa ser encerrada (sorteada) antes de criar a próxima.
func (s *Service) CriarRifa(ctx context.Context, rifa domain.Rifa) (domain.Rifa, error) {
	if strings.TrimSpace(rifa.NomePremio) == "" {
		return domain.Rifa{}, fmt.Errorf("%w: nome do premio obrigatorio", ErrRifaInvalida)
	}
	if rifa.TotalNumeros <= 0 {
		return domain.Rifa{}, fmt.Errorf("%w: total de numeros deve ser positivo", ErrRifaInvalida)
	}
	if rifa.PrecoNumero != nil && *rifa.PrecoNumero < 0 {
		return domain.Rifa{}, fmt.Errorf("%w: preco por numero nao pode ser negativo", ErrRifaInvalida)
	}

	if _, err := s.rifas.Ativa(ctx); err == nil {
		return domain.Rifa{}, ErrRifaAtivaExistente
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.Rifa{}, err
	}

	agora := s.clock.Agora()
	rifa.ID = domain.RifaID(s.ids.New())
	rifa.Status = domain.StatusAtiva
	rifa.NumeroVencedor = nil
	rifa.NomeVencedor = ""
	rifa.NomeVendedor = ""
	rifa.CriadaEm = agora
	rifa.AtualizadaEm = agora

	if err := s.rifas.Create(ctx, rifa); err != nil {
		return domain.Rifa{}, err
	}

	return rifa, nil
}

// EstenderRifa aumenta o pool de números; o total nunca diminui.
func (s *Service) EstenderRifa(ctx context.Context, id domain.RifaID, adicionais int) (domain.Rifa, error) {
	if adicionais <= 0 {
		return domain.Rifa{}, fmt.Errorf("%w: quantidade adicional deve ser positiva", ErrRifaInvalida)
	}

	rifa, err := s.rifas.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Rifa{}, ErrRifaNaoEncontrada
		}
		return domain.Rifa{}, err
	}
	if !rifa.Ativa() {
		return domain.Rifa{}, ErrRifaEncerrada
	}

	if err := s.rifas.Estender(ctx, id, adicionais); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// A rifa encerrou entre a leitura e o UPDATE condicional.
			return domain.Rifa{}, ErrRifaEncerrada
		}
		return domain.Rifa{}, err
	}

	rifa.TotalNumeros += adicionais
	return rifa, nil
}

func (s *Service) RifaAtiva(ctx context.Context) (domain.Rifa, error) {
	rifa, err := s.rifas.Ativa(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Rifa{}, ErrNenhumaRifaAtiva
		}
		return domain.Rifa{}, err
	}
	return rifa, nil
}

func (s *Service) ListarRifas(ctx context.Context) ([]domain.Rifa, error) {
	return s.rifas.List(ctx)
}

func (s *Service) ListarEncerradas(ctx context.Context) ([]domain.Rifa, error) {
	return s.rifas.ListEncerradas(ctx)
}

// RegistrarVenda registra um participante levando um conjunto de números, tudo ou nada.
// Sem RifaID explícito a venda cai na rifa ativa.
func (s *Service) RegistrarVenda(ctx context.Context, venda domain.Venda) (domain.Participante, error) {
	var rifa domain.Rifa
	var err error

	if venda.RifaID == "" {
		rifa, err = s.rifas.Ativa(ctx)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.Participante{}, ErrNenhumaRifaAtiva
			}
			return domain.Participante{}, err
		}
	} else {
		rifa, err = s.rifas.FindByID(ctx, venda.RifaID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.Participante{}, ErrRifaNaoEncontrada
			}
			return domain.Participante{}, err
		}
		if !rifa.Ativa() {
			return domain.Participante{}, ErrRifaEncerrada
		}
	}

	if strings.TrimSpace(venda.Nome) == "" || strings.TrimSpace(venda.Vendedor) == "" {
		return domain.Participante{}, fmt.Errorf("%w: nome do participante e vendedor sao obrigatorios", ErrVendaInvalida)
	}
	numeros, err := normalizarNumeros(venda.Numeros, rifa.TotalNumeros)
	if err != nil {
		return domain.Participante{}, err
	}

	if s.antifraude != nil {
		venda.RifaID = rifa.ID
		if err := s.antifraude.Validar(ctx, venda); err != nil {
			return domain.Participante{}, err
		}
	}

	agora := s.clock.Agora()
	participante := domain.Participante{
		ID:       domain.ParticipanteID(s.ids.New()),
		RifaID:   rifa.ID,
		Nome:     venda.Nome,
		Vendedor: venda.Vendedor,
		Numeros:  juntarNumeros(numeros),
		CriadoEm: agora,
	}

	registros := make([]domain.NumeroVendido, len(numeros))
	for i, numero := range numeros {
		registros[i] = domain.NumeroVendido{
			ID:             domain.NumeroID(s.ids.New()),
			RifaID:         rifa.ID,
			Numero:         numero,
			ParticipanteID: participante.ID,
			CriadoEm:       agora,
		}
	}

	if err := s.vendas.RegistrarVenda(ctx, participante, registros); err != nil {
		return domain.Participante{}, err
	}

	if s.contador != nil {
		if _, err := s.contador.Incrementar(ctx, ChaveTotalVendidos(rifa.ID), int64(len(numeros))); err != nil {
			return domain.Participante{}, err
		}
	}

	if s.fila != nil {
		// A venda já está persistida; a publicação do evento é melhor esforço e
		// não desfaz a venda quando a fila está fora do ar.
		_ = s.fila.PublicarEvento(ctx, domain.Evento{
			ID:       s.ids.New(),
			Tipo:     domain.EventoVendaRegistrada,
			RifaID:   rifa.ID,
			Nome:     venda.Nome,
			Vendedor: venda.Vendedor,
			Numeros:  numeros,
			CriadoEm: agora,
		})
	}

	return participante, nil
}

func (s *Service) NumerosVendidos(ctx context.Context, id domain.RifaID) ([]int, error) {
	if _, err := s.rifas.FindByID(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrRifaNaoEncontrada
		}
		return nil, err
	}
	return s.vendas.NumerosVendidos(ctx, id)
}

// normalizarNumeros remove duplicatas, ordena e valida o intervalo 1..total.
func normalizarNumeros(numeros []int, total int) ([]int, error) {
	if len(numeros) == 0 {
		return nil, ErrSelecaoVazia
	}

	vistos := make(map[int]bool, len(numeros))
	resultado := make([]int, 0, len(numeros))
	for _, numero := range numeros {
		if numero < 1 || numero > total {
			return nil, fmt.Errorf("%w: %d", ErrNumeroInvalido, numero)
		}
		if vistos[numero] {
			continue
		}
		vistos[numero] = true
		resultado = append(resultado, numero)
	}

	sort.Ints(resultado)
	return resultado, nil
}

func juntarNumeros(numeros []int) string {
	itens := make([]string, len(numeros))
	for i, numero := range numeros {
		itens[i] = strconv.Itoa(numero)
	}
	return strings.Join(itens, ",")
}

var _ domain.RifaService = (*Service)(nil)
