package domain

import (
	"context"
	"time"
)

type RifaRepository interface {
	Create(ctx context.Context, r Rifa) error
	FindByID(ctx context.Context, id RifaID) (Rifa, error)
	// Ativa devolve a rifa ativa mais recente ou ErrNotFound.
	Ativa(ctx context.Context) (Rifa, error)
	List(ctx context.Context) ([]Rifa, error)
	ListEncerradas(ctx context.Context) ([]Rifa, error)
	Estender(ctx context.Context, id RifaID, adicionais int) error
	// RegistrarVencedor grava vencedor e encerra a rifa em um único UPDATE
	// condicionado a numero_vencedor IS NULL; ErrJaSorteada quando nada é alterado.
	RegistrarVencedor(ctx context.Context, id RifaID, g Ganhador) error
}

type VendaRepository interface {
	// RegistrarVenda persiste participante e números em uma única transação.
	// A violação do índice único (rifa_id, numero) é a rejeição definitiva.
	RegistrarVenda(ctx context.Context, p Participante, numeros []NumeroVendido) error
	NumerosVendidos(ctx context.Context, rifaID RifaID) ([]int, error)
	DonoDoNumero(ctx context.Context, rifaID RifaID, numero int) (Participante, error)
	ListParticipantes(ctx context.Context, rifaID RifaID) ([]Participante, error)
}

type RelatorioRepository interface {
	Totais(ctx context.Context, rifaID RifaID) (Totais, error)
	RankingVendedores(ctx context.Context, rifaID RifaID) ([]VendedorRanking, error)
	RankingCompradores(ctx context.Context, rifaID RifaID) ([]CompradorRanking, error)
	ResumoRifas(ctx context.Context) ([]RifaResumo, error)
	VendedoresGerais(ctx context.Context) ([]VendedorRanking, error)
}

type Contador interface {
	Incrementar(ctx context.Context, chave string, delta int64) (int64, error)
	Obter(ctx context.Context, chave string) (int64, error)
	ObterTodos(ctx context.Context, chaves []string) (map[string]int64, error)
}

type Fila interface {
	PublicarEvento(ctx context.Context, evento Evento) error
	ConsumirEventos(ctx context.Context, handler func(context.Context, Evento) error) error
}

// Reserva segura números por alguns minutos enquanto o vendedor preenche a venda.
// É apenas consultiva: quem garante a unicidade é o índice do banco.
type Reserva interface {
	Reservar(ctx context.Context, rifaID RifaID, numeros []int, dono string) ([]int, error)
	Liberar(ctx context.Context, rifaID RifaID, numeros []int) error
	Reservados(ctx context.Context, rifaID RifaID) ([]int, error)
}

type Antifraude interface {
	Validar(ctx context.Context, venda Venda) error
}

type Clock interface {
	Agora() time.Time
}

// Aleatorio abstrai a fonte de sorteio para permitir sementes fixas nos testes.
type Aleatorio interface {
	Intn(n int) int
}

type RifaService interface {
	CriarRifa(ctx context.Context, rifa Rifa) (Rifa, error)
	EstenderRifa(ctx context.Context, id RifaID, adicionais int) (Rifa, error)
	RifaAtiva(ctx context.Context) (Rifa, error)
	ListarRifas(ctx context.Context) ([]Rifa, error)
	ListarEncerradas(ctx context.Context) ([]Rifa, error)
	RegistrarVenda(ctx context.Context, venda Venda) (Participante, error)
	NumerosVendidos(ctx context.Context, id RifaID) ([]int, error)
}

type SorteioService interface {
	Sortear(ctx context.Context, id RifaID) (int, error)
	Finalizar(ctx context.Context, id RifaID, numero int) (Ganhador, error)
}

type RelatorioService interface {
	Estatisticas(ctx context.Context, id RifaID) (Estatisticas, error)
	DadosGrafico(ctx context.Context) (DadosGrafico, error)
	Resumo(ctx context.Context, id RifaID) (string, error)
}
