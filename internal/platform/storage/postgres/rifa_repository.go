package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/marcelojr/rifa-facil/internal/domain"
)

// RifaRepository mapeia o agregado de rifa para tabelas GORM.
type RifaRepository struct {
	db *gorm.DB
}

func NewRifaRepository(db *gorm.DB) *RifaRepository {
	return &RifaRepository{db: db}
}

type rifaModel struct {
	ID             string    `gorm:"column:id;primaryKey"`
	NomePremio     string    `gorm:"column:nome_premio"`
	ImagemPremio   string    `gorm:"column:imagem_premio"`
	TotalNumeros   int       `gorm:"column:total_numeros"`
	DataSorteio    string    `gorm:"column:data_sorteio"`
	PrecoNumero    *float64  `gorm:"column:preco_numero"`
	Status         string    `gorm:"column:status"`
	NumeroVencedor *int      `gorm:"column:numero_vencedor"`
	NomeVencedor   string    `gorm:"column:nome_vencedor"`
	NomeVendedor   string    `gorm:"column:nome_vendedor"`
	CriadaEm       time.Time `gorm:"column:criada_em"`
	AtualizadaEm   time.Time `gorm:"column:atualizada_em"`
}

func (rifaModel) TableName() string {
	return "rifas"
}

func (m rifaModel) toDomain() domain.Rifa {
	return domain.Rifa{
		ID:             domain.RifaID(m.ID),
		NomePremio:     m.NomePremio,
		ImagemPremio:   m.ImagemPremio,
		TotalNumeros:   m.TotalNumeros,
		DataSorteio:    m.DataSorteio,
		PrecoNumero:    m.PrecoNumero,
		Status:         m.Status,
		NumeroVencedor: m.NumeroVencedor,
		NomeVencedor:   m.NomeVencedor,
		NomeVendedor:   m.NomeVendedor,
		CriadaEm:       m.CriadaEm,
		AtualizadaEm:   m.AtualizadaEm,
	}
}

func fromDomainRifa(r domain.Rifa) rifaModel {
	return rifaModel{
		ID:             string(r.ID),
		NomePremio:     r.NomePremio,
		ImagemPremio:   r.ImagemPremio,
		TotalNumeros:   r.TotalNumeros,
		DataSorteio:    r.DataSorteio,
		PrecoNumero:    r.PrecoNumero,
		Status:         r.Status,
		NumeroVencedor: r.NumeroVencedor,
		NomeVencedor:   r.NomeVencedor,
		NomeVendedor:   r.NomeVendedor,
		CriadaEm:       r.CriadaEm,
		AtualizadaEm:   r.AtualizadaEm,
	}
}

func (r *RifaRepository) Create(ctx context.Context, rifa domain.Rifa) error {
	model := fromDomainRifa(rifa)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("gorm rifa: inserir: %w", err)
	}
	return nil
}

func (r *RifaRepository) FindByID(ctx context.Context, id domain.RifaID) (domain.Rifa, error) {
	var model rifaModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Rifa{}, domain.ErrNotFound
		}
		return domain.Rifa{}, fmt.Errorf("gorm rifa: buscar id: %w", err)
	}
	return model.toDomain(), nil
}

func (r *RifaRepository) Ativa(ctx context.Context) (domain.Rifa, error) {
	var model rifaModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", domain.StatusAtiva).
		Order("criada_em DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Rifa{}, domain.ErrNotFound
		}
		return domain.Rifa{}, fmt.Errorf("gorm rifa: buscar ativa: %w", err)
	}
	return model.toDomain(), nil
}

func (r *RifaRepository) List(ctx context.Context) ([]domain.Rifa, error) {
	var models []rifaModel
	if err := r.db.WithContext(ctx).
		Order("criada_em DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("gorm rifa: listar: %w", err)
	}

	result := make([]domain.Rifa, len(models))
	for i, model := range models {
		result[i] = model.toDomain()
	}
	return result, nil
}

func (r *RifaRepository) ListEncerradas(ctx context.Context) ([]domain.Rifa, error) {
	var models []rifaModel
	if err := r.db.WithContext(ctx).
		// Mesmo critério do histórico: encerradas e com vencedor registrado.
		Where("status = ? AND numero_vencedor IS NOT NULL", domain.StatusEncerrada).
		Order("criada_em DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("gorm rifa: listar encerradas: %w", err)
	}

	result := make([]domain.Rifa, len(models))
	for i, model := range models {
		result[i] = model.toDomain()
	}
	return result, nil
}

func (r *RifaRepository) Estender(ctx context.Context, id domain.RifaID, adicionais int) error {
	// O UPDATE incrementa direto no banco; a condição de status é a rede de
	// segurança contra estender uma rifa já encerrada.
	res := r.db.WithContext(ctx).Model(&rifaModel{}).
		Where("id = ? AND status = ?", id, domain.StatusAtiva).
		Update("total_numeros", gorm.Expr("total_numeros + ?", adicionais))
	if res.Error != nil {
		return fmt.Errorf("gorm rifa: estender: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *RifaRepository) RegistrarVencedor(ctx context.Context, id domain.RifaID, g domain.Ganhador) error {
	// Condicionar em numero_vencedor IS NULL garante finalização exatamente uma vez
	// mesmo com chamadas concorrentes.
	res := r.db.WithContext(ctx).Model(&rifaModel{}).
		Where("id = ? AND numero_vencedor IS NULL", id).
		Updates(map[string]any{
			"numero_vencedor": g.Numero,
			"nome_vencedor":   g.Nome,
			"nome_vendedor":   g.Vendedor,
			"status":          domain.StatusEncerrada,
		})
	if res.Error != nil {
		return fmt.Errorf("gorm rifa: registrar vencedor: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
		return domain.ErrJaSorteada
	}
	return nil
}

var _ domain.RifaRepository = (*RifaRepository)(nil)
