package domain

import (
	"time"
)

type (
	RifaID         string
	ParticipanteID string
	NumeroID       string
)

// Status possíveis de uma rifa. Depois de encerrada a rifa é imutável.
const (
	StatusAtiva     = "ativa"
	StatusEncerrada = "encerrada"
)

type Rifa struct {
	ID           RifaID   `gorm:"column:id;type:char(26);primaryKey" json:"id"`
	NomePremio   string   `gorm:"column:nome_premio;type:text;not null" json:"nome_premio"`
	ImagemPremio string   `gorm:"column:imagem_premio;type:text" json:"imagem_premio,omitempty"`
	TotalNumeros int      `gorm:"column:total_numeros;not null" json:"total_numeros"`
	DataSorteio  string   `gorm:"column:data_sorteio;type:text" json:"data_sorteio,omitempty"`
	PrecoNumero  *float64 `gorm:"column:preco_numero" json:"preco_numero,omitempty"`
	Status       string   `gorm:"column:status;type:text;not null;default:ativa" json:"status"`

	// Preenchidos uma única vez, na finalização do sorteio.
	NumeroVencedor *int   `gorm:"column:numero_vencedor" json:"numero_vencedor,omitempty"`
	NomeVencedor   string `gorm:"column:nome_vencedor;type:text" json:"nome_vencedor,omitempty"`
	NomeVendedor   string `gorm:"column:nome_vendedor;type:text" json:"nome_vendedor,omitempty"`

	CriadaEm     time.Time `gorm:"column:criada_em;autoCreateTime" json:"criada_em"`
	AtualizadaEm time.Time `gorm:"column:atualizada_em;autoUpdateTime" json:"atualizada_em"`
}

func (r Rifa) Ativa() bool { return r.Status == StatusAtiva }

// Sorteada indica se a rifa já tem número vencedor registrado.
func (r Rifa) Sorteada() bool { return r.NumeroVencedor != nil }

type Participante struct {
	ID     ParticipanteID `gorm:"column:id;type:char(26);primaryKey" json:"id"`
	RifaID RifaID         `gorm:"column:rifa_id;type:char(26);not null;index" json:"rifa_id"`
	Nome   string         `gorm:"column:nome;type:text;not null" json:"nome"`
	// Vendedor é quem fechou a venda; usado nos rankings do relatório.
	Vendedor string `gorm:"column:vendedor;type:text;not null" json:"vendedor"`
	// Numeros guarda a lista ordenada em CSV para exibição ("3,7,12").
	Numeros  string    `gorm:"column:numeros;type:text;not null" json:"numeros"`
	CriadoEm time.Time `gorm:"column:criado_em;autoCreateTime" json:"criado_em"`
}

type NumeroVendido struct {
	ID             NumeroID       `gorm:"column:id;type:char(26);primaryKey" json:"id"`
	RifaID         RifaID         `gorm:"column:rifa_id;type:char(26);not null;uniqueIndex:idx_rifa_numero,priority:1" json:"rifa_id"`
	Numero         int            `gorm:"column:numero;not null;uniqueIndex:idx_rifa_numero,priority:2" json:"numero"`
	ParticipanteID ParticipanteID `gorm:"column:participante_id;type:char(26);not null;index" json:"participante_id"`
	CriadoEm       time.Time      `gorm:"column:criado_em;autoCreateTime" json:"criado_em"`
}

// Venda representa um pedido de compra: um participante levando um conjunto de números.
type Venda struct {
	RifaID   RifaID
	Nome     string
	Vendedor string
	Numeros  []int
	OrigemIP string
}

// Ganhador é o resultado da finalização de um sorteio.
type Ganhador struct {
	Numero   int    `json:"numero"`
	Nome     string `json:"nome"`
	Vendedor string `json:"vendedor"`
}

// Totais agrega os contadores básicos de uma rifa.
type Totais struct {
	Participantes   int64 `json:"participantes"`
	NumerosVendidos int64 `json:"numeros_vendidos"`
}

type VendedorRanking struct {
	Vendedor     string `json:"vendedor"`
	Vendas       int64  `json:"vendas"`
	TotalNumeros int64  `json:"total_numeros"`
}

type CompradorRanking struct {
	Nome       string `json:"nome"`
	Vendedor   string `json:"vendedor"`
	Quantidade int64  `json:"quantidade"`
	Numeros    string `json:"numeros"`
}

// RifaResumo alimenta os gráficos: números vendidos e valor arrecadado por rifa.
type RifaResumo struct {
	RifaID          RifaID  `json:"rifa_id"`
	NomePremio      string  `json:"nome_premio"`
	Status          string  `json:"status"`
	TotalVendidos   int64   `json:"total_vendidos"`
	ValorArrecadado float64 `json:"valor_arrecadado"`
}

type Estatisticas struct {
	Rifa        Rifa               `json:"rifa"`
	Totais      Totais             `json:"totais"`
	Arrecadado  *float64           `json:"arrecadado,omitempty"`
	Vendedores  []VendedorRanking  `json:"vendedores"`
	Compradores []CompradorRanking `json:"compradores"`
}

type DadosGrafico struct {
	Rifas      []RifaResumo      `json:"rifas"`
	TopRifas   []RifaResumo      `json:"top_rifas"`
	Vendedores []VendedorRanking `json:"vendedores"`
}

// Tipos de evento publicados na fila para o notificador.
const (
	EventoVendaRegistrada   = "venda_registrada"
	EventoSorteioFinalizado = "sorteio_finalizado"
)

// Evento descreve um fato do ledger consumido de forma assíncrona.
type Evento struct {
	ID       string    `json:"id"`
	Tipo     string    `json:"tipo"`
	RifaID   RifaID    `json:"rifa_id"`
	Nome     string    `json:"nome,omitempty"`
	Vendedor string    `json:"vendedor,omitempty"`
	Numeros  []int     `json:"numeros,omitempty"`
	CriadoEm time.Time `json:"criado_em"`
}

func (Rifa) TableName() string { return "rifas" }

func (Participante) TableName() string { return "participantes" }

func (NumeroVendido) TableName() string { return "numeros_vendidos" }
