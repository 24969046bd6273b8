// Pacote httpapi expõe os handlers REST e traduz requisições HTTP para os serviços da rifa.
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/marcelojr/rifa-facil/internal/app/rifa"
	"github.com/marcelojr/rifa-facil/internal/app/sorteio"
	"github.com/marcelojr/rifa-facil/internal/domain"
	"github.com/marcelojr/rifa-facil/internal/platform/antifraude"
	"github.com/marcelojr/rifa-facil/internal/platform/metrics"
)

// API empacota os handlers HTTP ligados aos serviços e ao logger.
type API struct {
	rifas     domain.RifaService
	sorteios  domain.SorteioService
	relatorio domain.RelatorioService
	reservas  domain.Reserva
	logger    *slog.Logger
}

func New(rifas domain.RifaService, sorteios domain.SorteioService, relatorio domain.RelatorioService, reservas domain.Reserva, logger *slog.Logger) *API {
	return &API{
		rifas:     rifas,
		sorteios:  sorteios,
		relatorio: relatorio,
		reservas:  reservas,
		logger:    logger,
	}
}

func (a *API) Register(mux *http.ServeMux) {
	// Mantemos as rotas centralizadas para facilitar testes e reuso em servidores diferentes.
	mux.HandleFunc("/healthz", a.handleHealthz)
	mux.HandleFunc("/rifas", a.handleRifas)
	mux.HandleFunc("/rifas/", a.handleRifaDetalhes)
	mux.HandleFunc("/vendas", a.handleVendas)
	mux.HandleFunc("/graficos", a.handleGraficos)
}

func (a *API) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (a *API) handleRifas(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listarRifas(w, r)
	case http.MethodPost:
		a.criarRifa(w, r)
	default:
		http.Error(w, "metodo nao suportado", http.StatusMethodNotAllowed)
	}
}

func (a *API) handleRifaDetalhes(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/rifas/")
	partes := strings.Split(path, "/")
	if len(partes) == 0 || partes[0] == "" {
		http.NotFound(w, r)
		return
	}

	if partes[0] == "ativa" && len(partes) == 1 && r.Method == http.MethodGet {
		a.rifaAtiva(w, r)
		return
	}

	id := domain.RifaID(partes[0])

	switch {
	case len(partes) == 2 && partes[1] == "extensao" && r.Method == http.MethodPost:
		a.estenderRifa(w, r, id)
	case len(partes) == 2 && partes[1] == "numeros" && r.Method == http.MethodGet:
		a.numerosVendidos(w, r, id)
	case len(partes) == 2 && partes[1] == "sorteio" && r.Method == http.MethodPost:
		a.sortear(w, r, id)
	case len(partes) == 3 && partes[1] == "sorteio" && partes[2] == "finalizar" && r.Method == http.MethodPost:
		a.finalizarSorteio(w, r, id)
	case len(partes) == 2 && partes[1] == "estatisticas" && r.Method == http.MethodGet:
		a.estatisticas(w, r, id)
	case len(partes) == 2 && partes[1] == "resumo" && r.Method == http.MethodGet:
		a.resumo(w, r, id)
	case len(partes) == 2 && partes[1] == "reservas" && r.Method == http.MethodPost:
		a.reservarNumeros(w, r, id)
	case len(partes) == 2 && partes[1] == "reservas" && r.Method == http.MethodGet:
		a.listarReservas(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

func (a *API) handleVendas(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "metodo nao suportado", http.StatusMethodNotAllowed)
		return
	}
	a.registrarVenda(w, r)
}

type rifaRequest struct {
	NomePremio   string   `json:"nome_premio"`
	ImagemPremio string   `json:"imagem_premio"`
	TotalNumeros int      `json:"total_numeros"`
	DataSorteio  string   `json:"data_sorteio"`
	PrecoNumero  *float64 `json:"preco_numero"`
}

func (a *API) criarRifa(w http.ResponseWriter, r *http.Request) {
	var req rifaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.logger.Warn("payload invalido ao criar rifa", "err", err)
		http.Error(w, "payload invalido", http.StatusBadRequest)
		return
	}

	criada, err := a.rifas.CriarRifa(r.Context(), domain.Rifa{
		NomePremio:   req.NomePremio,
		ImagemPremio: req.ImagemPremio,
		TotalNumeros: req.TotalNumeros,
		DataSorteio:  req.DataSorteio,
		PrecoNumero:  req.PrecoNumero,
	})
	if err != nil {
		a.logger.Warn("falha ao criar rifa", "err", err, "premio", req.NomePremio)
		responderErro(w, err)
		return
	}

	a.logger.Info("rifa criada", "rifa", criada.ID, "premio", criada.NomePremio, "total", criada.TotalNumeros)
	responderJSON(w, http.StatusCreated, criada)
}

func (a *API) listarRifas(w http.ResponseWriter, r *http.Request) {
	rifas, err := a.rifas.ListarRifas(r.Context())
	if err != nil {
		a.logger.Error("erro ao listar rifas", "err", err)
		responderErro(w, err)
		return
	}

	responderJSON(w, http.StatusOK, rifas)
}

func (a *API) rifaAtiva(w http.ResponseWriter, r *http.Request) {
	ativa, err := a.rifas.RifaAtiva(r.Context())
	if err != nil {
		responderErro(w, err)
		return
	}

	responderJSON(w, http.StatusOK, ativa)
}

type extensaoRequest struct {
	Adicionais int `json:"adicionais"`
}

func (a *API) estenderRifa(w http.ResponseWriter, r *http.Request, id domain.RifaID) {
	var req extensaoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "payload invalido", http.StatusBadRequest)
		return
	}

	estendida, err := a.rifas.EstenderRifa(r.Context(), id, req.Adicionais)
	if err != nil {
		a.logger.Warn("falha ao estender rifa", "err", err, "rifa", id)
		responderErro(w, err)
		return
	}

	a.logger.Info("rifa estendida", "rifa", id, "adicionais", req.Adicionais, "total", estendida.TotalNumeros)
	responderJSON(w, http.StatusOK, estendida)
}

type vendaRequest struct {
	RifaID   string `json:"rifa_id"`
	Nome     string `json:"nome"`
	Vendedor string `json:"vendedor"`
	Numeros  []int  `json:"numeros"`
}

func (a *API) registrarVenda(w http.ResponseWriter, r *http.Request) {
	var req vendaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.ObserveSaleRequest("invalid_payload")
		a.logger.Warn("payload invalido ao registrar venda", "err", err)
		http.Error(w, "payload invalido", http.StatusBadRequest)
		return
	}

	venda := domain.Venda{
		RifaID:   domain.RifaID(req.RifaID),
		Nome:     req.Nome,
		Vendedor: req.Vendedor,
		Numeros:  req.Numeros,
		OrigemIP: origemIP(r),
	}

	participante, err := a.rifas.RegistrarVenda(r.Context(), venda)
	if err != nil {
		status := statusFromError(err)
		metrics.ObserveSaleRequest(status)
		a.logger.Warn("falha ao registrar venda", "err", err, "participante", req.Nome, "vendedor", req.Vendedor, "status", status)
		responderErro(w, err)
		return
	}

	metrics.ObserveSaleRequest("accepted")
	a.logger.Info("venda registrada", "rifa", participante.RifaID, "participante", participante.Nome, "numeros", participante.Numeros)
	responderJSON(w, http.StatusCreated, participante)
}

func (a *API) numerosVendidos(w http.ResponseWriter, r *http.Request, id domain.RifaID) {
	numeros, err := a.rifas.NumerosVendidos(r.Context(), id)
	if err != nil {
		responderErro(w, err)
		return
	}
	if numeros == nil {
		numeros = []int{}
	}

	responderJSON(w, http.StatusOK, numeros)
}

func (a *API) sortear(w http.ResponseWriter, r *http.Request, id domain.RifaID) {
	numero, err := a.sorteios.Sortear(r.Context(), id)
	if err != nil {
		metrics.ObserveDraw(statusFromError(err))
		a.logger.Warn("falha ao sortear", "err", err, "rifa", id)
		responderErro(w, err)
		return
	}

	metrics.ObserveDraw("drawn")
	a.logger.Info("numero sorteado", "rifa", id, "numero", numero)
	responderJSON(w, http.StatusOK, map[string]int{"numero": numero})
}

type finalizarRequest struct {
	Numero int `json:"numero"`
}

func (a *API) finalizarSorteio(w http.ResponseWriter, r *http.Request, id domain.RifaID) {
	var req finalizarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "payload invalido", http.StatusBadRequest)
		return
	}

	ganhador, err := a.sorteios.Finalizar(r.Context(), id, req.Numero)
	if err != nil {
		metrics.ObserveDraw(statusFromError(err))
		a.logger.Warn("falha ao finalizar sorteio", "err", err, "rifa", id, "numero", req.Numero)
		responderErro(w, err)
		return
	}

	metrics.ObserveDraw("finalized")
	a.logger.Info("sorteio finalizado", "rifa", id, "numero", ganhador.Numero, "ganhador", ganhador.Nome)
	responderJSON(w, http.StatusOK, ganhador)
}

func (a *API) estatisticas(w http.ResponseWriter, r *http.Request, id domain.RifaID) {
	estat, err := a.relatorio.Estatisticas(r.Context(), id)
	if err != nil {
		a.logger.Error("erro ao obter estatisticas", "err", err, "rifa", id)
		responderErro(w, err)
		return
	}

	responderJSON(w, http.StatusOK, estat)
}

func (a *API) resumo(w http.ResponseWriter, r *http.Request, id domain.RifaID) {
	texto, err := a.relatorio.Resumo(r.Context(), id)
	if err != nil {
		responderErro(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(texto))
}

func (a *API) handleGraficos(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "metodo nao suportado", http.StatusMethodNotAllowed)
		return
	}

	dados, err := a.relatorio.DadosGrafico(r.Context())
	if err != nil {
		a.logger.Error("erro ao obter dados de grafico", "err", err)
		responderErro(w, err)
		return
	}

	responderJSON(w, http.StatusOK, dados)
}

type reservaRequest struct {
	Numeros []int  `json:"numeros"`
	Dono    string `json:"dono"`
}

func (a *API) reservarNumeros(w http.ResponseWriter, r *http.Request, id domain.RifaID) {
	if a.reservas == nil {
		http.Error(w, "reservas indisponiveis", http.StatusServiceUnavailable)
		return
	}

	var req reservaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "payload invalido", http.StatusBadRequest)
		return
	}
	if len(req.Numeros) == 0 {
		http.Error(w, "nenhum numero informado", http.StatusBadRequest)
		return
	}

	recusados, err := a.reservas.Reservar(r.Context(), id, req.Numeros, req.Dono)
	if err != nil {
		a.logger.Error("erro ao reservar numeros", "err", err, "rifa", id)
		responderErro(w, err)
		return
	}

	if len(recusados) > 0 {
		responderJSON(w, http.StatusConflict, map[string]any{"recusados": recusados})
		return
	}

	responderJSON(w, http.StatusOK, map[string]any{"recusados": []int{}})
}

func (a *API) listarReservas(w http.ResponseWriter, r *http.Request, id domain.RifaID) {
	if a.reservas == nil {
		http.Error(w, "reservas indisponiveis", http.StatusServiceUnavailable)
		return
	}

	numeros, err := a.reservas.Reservados(r.Context(), id)
	if err != nil {
		a.logger.Error("erro ao listar reservas", "err", err, "rifa", id)
		responderErro(w, err)
		return
	}
	if numeros == nil {
		numeros = []int{}
	}

	responderJSON(w, http.StatusOK, numeros)
}

func origemIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	return strings.Split(r.RemoteAddr, ":")[0]
}

func responderJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func responderErro(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, rifa.ErrRifaInvalida),
		errors.Is(err, rifa.ErrVendaInvalida),
		errors.Is(err, rifa.ErrSelecaoVazia),
		errors.Is(err, rifa.ErrNumeroInvalido):
		status = http.StatusBadRequest
	case errors.Is(err, rifa.ErrRifaNaoEncontrada),
		errors.Is(err, rifa.ErrNenhumaRifaAtiva):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrNumeroJaVendido),
		errors.Is(err, rifa.ErrRifaAtivaExistente),
		errors.Is(err, rifa.ErrRifaEncerrada),
		errors.Is(err, domain.ErrJaSorteada):
		status = http.StatusConflict
	case errors.Is(err, sorteio.ErrSemNumerosVendidos):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, antifraude.ErrRateLimitExceeded):
		status = http.StatusTooManyRequests
	}

	corpo := map[string]any{"erro": err.Error()}

	// Conflito de números devolve a lista para a apresentação destacar na cartela.
	var conflito *domain.ConflitoNumeros
	if errors.As(err, &conflito) {
		corpo["numeros"] = conflito.Numeros
	}

	responderJSON(w, status, corpo)
}

func statusFromError(err error) string {
	switch {
	case errors.Is(err, antifraude.ErrRateLimitExceeded):
		return "rate_limited"
	case errors.Is(err, domain.ErrNumeroJaVendido),
		errors.Is(err, domain.ErrJaSorteada),
		errors.Is(err, rifa.ErrRifaAtivaExistente),
		errors.Is(err, rifa.ErrRifaEncerrada):
		return "conflict"
	case errors.Is(err, rifa.ErrRifaInvalida),
		errors.Is(err, rifa.ErrVendaInvalida),
		errors.Is(err, rifa.ErrSelecaoVazia),
		errors.Is(err, rifa.ErrNumeroInvalido):
		return "invalid"
	case errors.Is(err, rifa.ErrRifaNaoEncontrada),
		errors.Is(err, rifa.ErrNenhumaRifaAtiva):
		return "not_found"
	case errors.Is(err, sorteio.ErrSemNumerosVendidos):
		return "empty"
	default:
		return "error"
	}
}
