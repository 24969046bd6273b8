package rifa

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/marcelojr/rifa-facil/internal/domain"
	"github.com/marcelojr/rifa-facil/internal/platform/ids"
)

func TestServiceCriarRifa(t *testing.T) {
	deps := newServiceDeps()
	service := newTestService(deps)

	preco := 5.0
	rifa, err := service.CriarRifa(context.Background(), domain.Rifa{
		NomePremio:   "Cesta de Natal",
		TotalNumeros: 100,
		DataSorteio:  "24/12/2026",
		PrecoNumero:  &preco,
	})
	if err != nil {
		t.Fatalf("esperava criar rifa sem erro, mas veio: %v", err)
	}

	if rifa.ID == "" {
		t.Fatal("ID não pode ser vazio")
	}
	if rifa.Status != domain.StatusAtiva {
		t.Fatalf("rifa recém-criada deveria estar ativa, veio %q", rifa.Status)
	}

	got, err := deps.rifaRepo.FindByID(context.Background(), rifa.ID)
	if err != nil {
		t.Fatalf("falha ao buscar rifa salva: %v", err)
	}
	if got.NomePremio != "Cesta de Natal" {
		t.Fatalf("premio salvo incorreto, esperado %q, veio %q", "Cesta de Natal", got.NomePremio)
	}
}

func TestServiceCriarRifaInvalida(t *testing.T) {
	deps := newServiceDeps()
	service := newTestService(deps)

	precoNegativo := -1.0
	tests := []struct {
		name string
		rifa domain.Rifa
	}{
		{name: "sem premio", rifa: domain.Rifa{NomePremio: "  ", TotalNumeros: 10}},
		{name: "total zero", rifa: domain.Rifa{NomePremio: "Bolo", TotalNumeros: 0}},
		{name: "total negativo", rifa: domain.Rifa{NomePremio: "Bolo", TotalNumeros: -5}},
		{name: "preco negativo", rifa: domain.Rifa{NomePremio: "Bolo", TotalNumeros: 10, PrecoNumero: &precoNegativo}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := service.CriarRifa(context.Background(), tt.rifa); !errors.Is(err, ErrRifaInvalida) {
				t.Fatalf("esperava ErrRifaInvalida, veio: %v", err)
			}
		})
	}
}

func TestServiceCriarRifaComOutraAtiva(t *testing.T) {
	deps := newServiceDeps()
	service := newTestService(deps)

	if _, err := service.CriarRifa(context.Background(), domain.Rifa{NomePremio: "Primeira", TotalNumeros: 10}); err != nil {
		t.Fatalf("erro criando primeira rifa: %v", err)
	}

	_, err := service.CriarRifa(context.Background(), domain.Rifa{NomePremio: "Segunda", TotalNumeros: 20})
	if !errors.Is(err, ErrRifaAtivaExistente) {
		t.Fatalf("esperava ErrRifaAtivaExistente, veio: %v", err)
	}
}

func TestServiceEstenderRifa(t *testing.T) {
	deps := newServiceDeps()
	service := newTestService(deps)

	rifa, err := service.CriarRifa(context.Background(), domain.Rifa{NomePremio: "Bicicleta", TotalNumeros: 50})
	if err != nil {
		t.Fatalf("erro criando rifa: %v", err)
	}

	estendida, err := service.EstenderRifa(context.Background(), rifa.ID, 25)
	if err != nil {
		t.Fatalf("erro estendendo rifa: %v", err)
	}
	if estendida.TotalNumeros != 75 {
		t.Fatalf("total apos extensao deveria ser 75, veio %d", estendida.TotalNumeros)
	}

	if _, err := service.EstenderRifa(context.Background(), rifa.ID, 0); !errors.Is(err, ErrRifaInvalida) {
		t.Fatalf("extensao com zero deveria falhar com ErrRifaInvalida, veio: %v", err)
	}
	if _, err := service.EstenderRifa(context.Background(), "inexistente", 10); !errors.Is(err, ErrRifaNaoEncontrada) {
		t.Fatalf("rifa inexistente deveria falhar com ErrRifaNaoEncontrada, veio: %v", err)
	}
}

func TestServiceEstenderRifaEncerrada(t *testing.T) {
	deps := newServiceDeps()
	service := newTestService(deps)

	rifa, err := service.CriarRifa(context.Background(), domain.Rifa{NomePremio: "Churrasco", TotalNumeros: 10})
	if err != nil {
		t.Fatalf("erro criando rifa: %v", err)
	}

	if err := deps.rifaRepo.RegistrarVencedor(context.Background(), rifa.ID, domain.Ganhador{Numero: 3, Nome: "Ana", Vendedor: "Carlos"}); err != nil {
		t.Fatalf("erro encerrando rifa: %v", err)
	}

	if _, err := service.EstenderRifa(context.Background(), rifa.ID, 10); !errors.Is(err, ErrRifaEncerrada) {
		t.Fatalf("estender rifa encerrada deveria falhar com ErrRifaEncerrada, veio: %v", err)
	}
}

func TestServiceRegistrarVenda(t *testing.T) {
	deps := newServiceDeps()
	service := newTestService(deps)

	rifa, err := service.CriarRifa(context.Background(), domain.Rifa{NomePremio: "Panela", TotalNumeros: 10})
	if err != nil {
		t.Fatalf("erro criando rifa: %v", err)
	}

	participante, err := service.RegistrarVenda(context.Background(), domain.Venda{
		Nome:     "Ana",
		Vendedor: "Carlos",
		Numeros:  []int{7, 3, 7},
	})
	if err != nil {
		t.Fatalf("esperava registrar venda sem erro, mas veio: %v", err)
	}

	// Duplicatas removidas e CSV em ordem crescente.
	if participante.Numeros != "3,7" {
		t.Fatalf("numeros do participante deveriam ser %q, veio %q", "3,7", participante.Numeros)
	}

	vendidos, err := service.NumerosVendidos(context.Background(), rifa.ID)
	if err != nil {
		t.Fatalf("erro listando numeros vendidos: %v", err)
	}
	if len(vendidos) != 2 || vendidos[0] != 3 || vendidos[1] != 7 {
		t.Fatalf("vendidos deveriam ser [3 7], veio %v", vendidos)
	}

	if len(deps.fila.eventos) != 1 || deps.fila.eventos[0].Tipo != domain.EventoVendaRegistrada {
		t.Fatalf("esperava 1 evento de venda na fila, veio %v", deps.fila.eventos)
	}
	if total := deps.contador.valores[ChaveTotalVendidos(rifa.ID)]; total != 2 {
		t.Fatalf("contador de vendidos deveria ser 2, veio %d", total)
	}
}

func TestServiceRegistrarVendaConflito(t *testing.T) {
	deps := newServiceDeps()
	service := newTestService(deps)

	rifa, err := service.CriarRifa(context.Background(), domain.Rifa{NomePremio: "Panela", TotalNumeros: 10})
	if err != nil {
		t.Fatalf("erro criando rifa: %v", err)
	}

	if _, err := service.RegistrarVenda(context.Background(), domain.Venda{Nome: "Ana", Vendedor: "Carlos", Numeros: []int{3, 7}}); err != nil {
		t.Fatalf("erro registrando primeira venda: %v", err)
	}

	_, err = service.RegistrarVenda(context.Background(), domain.Venda{Nome: "Bruno", Vendedor: "Carlos", Numeros: []int{3}})
	if !errors.Is(err, domain.ErrNumeroJaVendido) {
		t.Fatalf("esperava conflito de numero, veio: %v", err)
	}

	var conflito *domain.ConflitoNumeros
	if !errors.As(err, &conflito) {
		t.Fatalf("erro deveria carregar ConflitoNumeros, veio: %v", err)
	}
	if len(conflito.Numeros) != 1 || conflito.Numeros[0] != 3 {
		t.Fatalf("conflito deveria listar [3], veio %v", conflito.Numeros)
	}

	// Tudo ou nada: o ledger continua mostrando exatamente {3,7}.
	vendidos, err := service.NumerosVendidos(context.Background(), rifa.ID)
	if err != nil {
		t.Fatalf("erro listando numeros vendidos: %v", err)
	}
	if len(vendidos) != 2 || vendidos[0] != 3 || vendidos[1] != 7 {
		t.Fatalf("ledger deveria manter [3 7], veio %v", vendidos)
	}
	if participantes := deps.vendaRepo.participantesDa(rifa.ID); len(participantes) != 1 {
		t.Fatalf("venda rejeitada nao deveria criar participante, total %d", len(participantes))
	}
}

func TestServiceRegistrarVendaValidacoes(t *testing.T) {
	deps := newServiceDeps()
	service := newTestService(deps)

	if _, err := service.RegistrarVenda(context.Background(), domain.Venda{Nome: "Ana", Vendedor: "Carlos", Numeros: []int{1}}); !errors.Is(err, ErrNenhumaRifaAtiva) {
		t.Fatalf("sem rifa ativa deveria falhar com ErrNenhumaRifaAtiva, veio: %v", err)
	}

	if _, err := service.CriarRifa(context.Background(), domain.Rifa{NomePremio: "Bolo", TotalNumeros: 10}); err != nil {
		t.Fatalf("erro criando rifa: %v", err)
	}

	tests := []struct {
		name    string
		venda   domain.Venda
		wantErr error
	}{
		{name: "sem numeros", venda: domain.Venda{Nome: "Ana", Vendedor: "Carlos"}, wantErr: ErrSelecaoVazia},
		{name: "numero zero", venda: domain.Venda{Nome: "Ana", Vendedor: "Carlos", Numeros: []int{0}}, wantErr: ErrNumeroInvalido},
		{name: "numero acima do total", venda: domain.Venda{Nome: "Ana", Vendedor: "Carlos", Numeros: []int{11}}, wantErr: ErrNumeroInvalido},
		{name: "sem nome", venda: domain.Venda{Nome: " ", Vendedor: "Carlos", Numeros: []int{1}}, wantErr: ErrVendaInvalida},
		{name: "sem vendedor", venda: domain.Venda{Nome: "Ana", Vendedor: "", Numeros: []int{1}}, wantErr: ErrVendaInvalida},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := service.RegistrarVenda(context.Background(), tt.venda); !errors.Is(err, tt.wantErr) {
				t.Fatalf("esperava %v, veio: %v", tt.wantErr, err)
			}
		})
	}
}

type serviceDependencies struct {
	rifaRepo  *inMemoryRifaRepo
	vendaRepo *inMemoryVendaRepo
	contador  *inMemoryContador
	fila      *recordingFila
	clock     *staticClock
	idGen     *ids.Generator
}

func newServiceDeps() *serviceDependencies {
	return &serviceDependencies{
		rifaRepo:  newInMemoryRifaRepo(),
		vendaRepo: newInMemoryVendaRepo(),
		contador:  newInMemoryContador(),
		fila:      &recordingFila{},
		clock:     &staticClock{now: time.Date(2026, 1, 10, 15, 0, 0, 0, time.UTC)},
		idGen:     ids.NewGenerator(),
	}
}

func newTestService(deps *serviceDependencies) *Service {
	return NewService(
		deps.rifaRepo,
		deps.vendaRepo,
		deps.contador,
		deps.fila,
		antifraudeNoop{},
		deps.clock,
		deps.idGen,
	)
}

type inMemoryRifaRepo struct {
	mu   sync.Mutex
	data map[domain.RifaID]domain.Rifa
}

func newInMemoryRifaRepo() *inMemoryRifaRepo {
	return &inMemoryRifaRepo{data: make(map[domain.RifaID]domain.Rifa)}
}

func (r *inMemoryRifaRepo) Create(_ context.Context, rifa domain.Rifa) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[rifa.ID] = rifa
	return nil
}

func (r *inMemoryRifaRepo) FindByID(_ context.Context, id domain.RifaID) (domain.Rifa, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rifa, ok := r.data[id]
	if !ok {
		return domain.Rifa{}, domain.ErrNotFound
	}
	return rifa, nil
}

func (r *inMemoryRifaRepo) Ativa(_ context.Context) (domain.Rifa, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var encontrada *domain.Rifa
	for _, rifa := range r.data {
		if rifa.Status != domain.StatusAtiva {
			continue
		}
		if encontrada == nil || rifa.CriadaEm.After(encontrada.CriadaEm) {
			copia := rifa
			encontrada = &copia
		}
	}
	if encontrada == nil {
		return domain.Rifa{}, domain.ErrNotFound
	}
	return *encontrada, nil
}

func (r *inMemoryRifaRepo) List(_ context.Context) ([]domain.Rifa, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]domain.Rifa, 0, len(r.data))
	for _, rifa := range r.data {
		result = append(result, rifa)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CriadaEm.After(result[j].CriadaEm) })
	return result, nil
}

func (r *inMemoryRifaRepo) ListEncerradas(_ context.Context) ([]domain.Rifa, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Rifa
	for _, rifa := range r.data {
		if rifa.Status == domain.StatusEncerrada && rifa.NumeroVencedor != nil {
			result = append(result, rifa)
		}
	}
	return result, nil
}

func (r *inMemoryRifaRepo) Estender(_ context.Context, id domain.RifaID, adicionais int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rifa, ok := r.data[id]
	if !ok || rifa.Status != domain.StatusAtiva {
		return domain.ErrNotFound
	}
	rifa.TotalNumeros += adicionais
	r.data[id] = rifa
	return nil
}

func (r *inMemoryRifaRepo) RegistrarVencedor(_ context.Context, id domain.RifaID, g domain.Ganhador) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rifa, ok := r.data[id]
	if !ok {
		return domain.ErrNotFound
	}
	if rifa.NumeroVencedor != nil {
		return domain.ErrJaSorteada
	}
	numero := g.Numero
	rifa.NumeroVencedor = &numero
	rifa.NomeVencedor = g.Nome
	rifa.NomeVendedor = g.Vendedor
	rifa.Status = domain.StatusEncerrada
	r.data[id] = rifa
	return nil
}

type inMemoryVendaRepo struct {
	mu            sync.Mutex
	participantes []domain.Participante
	numeros       []domain.NumeroVendido
}

func newInMemoryVendaRepo() *inMemoryVendaRepo {
	return &inMemoryVendaRepo{}
}

func (r *inMemoryVendaRepo) RegistrarVenda(_ context.Context, p domain.Participante, numeros []domain.NumeroVendido) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var conflito []int
	for _, pedido := range numeros {
		for _, vendido := range r.numeros {
			if vendido.RifaID == pedido.RifaID && vendido.Numero == pedido.Numero {
				conflito = append(conflito, pedido.Numero)
			}
		}
	}
	if len(conflito) > 0 {
		return &domain.ConflitoNumeros{Numeros: conflito}
	}

	r.participantes = append(r.participantes, p)
	r.numeros = append(r.numeros, numeros...)
	return nil
}

func (r *inMemoryVendaRepo) NumerosVendidos(_ context.Context, rifaID domain.RifaID) ([]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var vendidos []int
	for _, numero := range r.numeros {
		if numero.RifaID == rifaID {
			vendidos = append(vendidos, numero.Numero)
		}
	}
	sort.Ints(vendidos)
	return vendidos, nil
}

func (r *inMemoryVendaRepo) DonoDoNumero(_ context.Context, rifaID domain.RifaID, numero int) (domain.Participante, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, vendido := range r.numeros {
		if vendido.RifaID == rifaID && vendido.Numero == numero {
			for _, p := range r.participantes {
				if p.ID == vendido.ParticipanteID {
					return p, nil
				}
			}
		}
	}
	return domain.Participante{}, domain.ErrNotFound
}

func (r *inMemoryVendaRepo) ListParticipantes(_ context.Context, rifaID domain.RifaID) ([]domain.Participante, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Participante
	for _, p := range r.participantes {
		if p.RifaID == rifaID {
			result = append(result, p)
		}
	}
	return result, nil
}

func (r *inMemoryVendaRepo) participantesDa(rifaID domain.RifaID) []domain.Participante {
	participantes, _ := r.ListParticipantes(context.Background(), rifaID)
	return participantes
}

type inMemoryContador struct {
	mu      sync.Mutex
	valores map[string]int64
}

func newInMemoryContador() *inMemoryContador {
	return &inMemoryContador{valores: make(map[string]int64)}
}

func (c *inMemoryContador) Incrementar(_ context.Context, chave string, delta int64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.valores[chave] += delta
	return c.valores[chave], nil
}

func (c *inMemoryContador) Obter(_ context.Context, chave string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.valores[chave], nil
}

func (c *inMemoryContador) ObterTodos(_ context.Context, chaves []string) (map[string]int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	result := make(map[string]int64)
	for _, chave := range chaves {
		result[chave] = c.valores[chave]
	}
	return result, nil
}

type recordingFila struct {
	mu      sync.Mutex
	eventos []domain.Evento
}

func (r *recordingFila) PublicarEvento(_ context.Context, evento domain.Evento) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.eventos = append(r.eventos, evento)
	return nil
}

func (r *recordingFila) ConsumirEventos(ctx context.Context, handler func(context.Context, domain.Evento) error) error {
	r.mu.Lock()
	eventos := make([]domain.Evento, len(r.eventos))
	copy(eventos, r.eventos)
	r.eventos = nil
	r.mu.Unlock()

	for _, evento := range eventos {
		if err := handler(ctx, evento); err != nil {
			return err
		}
	}
	return nil
}

type antifraudeNoop struct{}

func (antifraudeNoop) Validar(_ context.Context, _ domain.Venda) error { return nil }

type staticClock struct {
	now time.Time
}

func (s *staticClock) Agora() time.Time {
	return s.now
}
