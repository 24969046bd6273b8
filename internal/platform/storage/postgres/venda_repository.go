package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/marcelojr/rifa-facil/internal/domain"
)

// VendaRepository persiste participantes e números vendidos dentro da mesma transação.
type VendaRepository struct {
	db *gorm.DB
}

func NewVendaRepository(db *gorm.DB) *VendaRepository {
	return &VendaRepository{db: db}
}

type participanteModel struct {
	ID       string    `gorm:"column:id;primaryKey"`
	RifaID   string    `gorm:"column:rifa_id;index"`
	Nome     string    `gorm:"column:nome"`
	Vendedor string    `gorm:"column:vendedor"`
	Numeros  string    `gorm:"column:numeros"`
	CriadoEm time.Time `gorm:"column:criado_em"`
}

func (participanteModel) TableName() string {
	return "participantes"
}

type numeroModel struct {
	ID             string    `gorm:"column:id;primaryKey"`
	RifaID         string    `gorm:"column:rifa_id;uniqueIndex:idx_rifa_numero,priority:1"`
	Numero         int       `gorm:"column:numero;uniqueIndex:idx_rifa_numero,priority:2"`
	ParticipanteID string    `gorm:"column:participante_id;index"`
	CriadoEm       time.Time `gorm:"column:criado_em"`
}

func (numeroModel) TableName() string {
	return "numeros_vendidos"
}

func (m participanteModel) toDomain() domain.Participante {
	return domain.Participante{
		ID:       domain.ParticipanteID(m.ID),
		RifaID:   domain.RifaID(m.RifaID),
		Nome:     m.Nome,
		Vendedor: m.Vendedor,
		Numeros:  m.Numeros,
		CriadoEm: m.CriadoEm,
	}
}

func fromDomainParticipante(p domain.Participante) participanteModel {
	return participanteModel{
		ID:       string(p.ID),
		RifaID:   string(p.RifaID),
		Nome:     p.Nome,
		Vendedor: p.Vendedor,
		Numeros:  p.Numeros,
		CriadoEm: p.CriadoEm,
	}
}

func fromDomainNumero(n domain.NumeroVendido) numeroModel {
	return numeroModel{
		ID:             string(n.ID),
		RifaID:         string(n.RifaID),
		Numero:         n.Numero,
		ParticipanteID: string(n.ParticipanteID),
		CriadoEm:       n.CriadoEm,
	}
}

// RegistrarVenda grava o participante e todos os números em uma única transação.
// Tudo ou nada: qualquer conflito desfaz a venda inteira.
func (r *VendaRepository) RegistrarVenda(ctx context.Context, p domain.Participante, numeros []domain.NumeroVendido) error {
	if len(numeros) == 0 {
		return fmt.Errorf("gorm venda: venda sem numeros")
	}

	pedidos := make([]int, len(numeros))
	for i, n := range numeros {
		pedidos[i] = n.Numero
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Checagem dentro da transação para devolver exatamente quais números
		// conflitam; o índice único continua sendo o árbitro em caso de corrida.
		var vendidos []int
		if err := tx.Model(&numeroModel{}).
			Where("rifa_id = ? AND numero IN ?", p.RifaID, pedidos).
			Order("numero ASC").
			Pluck("numero", &vendidos).Error; err != nil {
			return fmt.Errorf("gorm venda: checar conflito: %w", err)
		}
		if len(vendidos) > 0 {
			return &domain.ConflitoNumeros{Numeros: vendidos}
		}

		model := fromDomainParticipante(p)
		if err := tx.Create(&model).Error; err != nil {
			return fmt.Errorf("gorm venda: inserir participante: %w", err)
		}

		models := make([]numeroModel, len(numeros))
		for i, n := range numeros {
			models[i] = fromDomainNumero(n)
		}
		if err := tx.Create(&models).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// Corrida perdida entre a checagem e o INSERT: a venda inteira
				// é rejeitada com o conjunto pedido.
				return &domain.ConflitoNumeros{Numeros: pedidos}
			}
			return fmt.Errorf("gorm venda: inserir numeros: %w", err)
		}

		return nil
	})
}

func (r *VendaRepository) NumerosVendidos(ctx context.Context, rifaID domain.RifaID) ([]int, error) {
	var vendidos []int
	if err := r.db.WithContext(ctx).Model(&numeroModel{}).
		Where("rifa_id = ?", rifaID).
		Order("numero ASC").
		Pluck("numero", &vendidos).Error; err != nil {
		return nil, fmt.Errorf("gorm venda: numeros vendidos: %w", err)
	}
	return vendidos, nil
}

func (r *VendaRepository) DonoDoNumero(ctx context.Context, rifaID domain.RifaID, numero int) (domain.Participante, error) {
	var model participanteModel
	if err := r.db.WithContext(ctx).
		Joins("JOIN numeros_vendidos nv ON nv.participante_id = participantes.id").
		Where("nv.rifa_id = ? AND nv.numero = ?", rifaID, numero).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Participante{}, domain.ErrNotFound
		}
		return domain.Participante{}, fmt.Errorf("gorm venda: dono do numero: %w", err)
	}
	return model.toDomain(), nil
}

func (r *VendaRepository) ListParticipantes(ctx context.Context, rifaID domain.RifaID) ([]domain.Participante, error) {
	var models []participanteModel
	if err := r.db.WithContext(ctx).
		Where("rifa_id = ?", rifaID).
		Order("criado_em DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("gorm venda: listar participantes: %w", err)
	}

	result := make([]domain.Participante, len(models))
	for i, model := range models {
		result[i] = model.toDomain()
	}
	return result, nil
}

var _ domain.VendaRepository = (*VendaRepository)(nil)
