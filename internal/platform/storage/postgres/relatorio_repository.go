package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/marcelojr/rifa-facil/internal/domain"
)

// RelatorioRepository concentra as consultas agregadas de leitura do relatório.
type RelatorioRepository struct {
	db *gorm.DB
}

func NewRelatorioRepository(db *gorm.DB) *RelatorioRepository {
	return &RelatorioRepository{db: db}
}

func (r *RelatorioRepository) Totais(ctx context.Context, rifaID domain.RifaID) (domain.Totais, error) {
	var totais domain.Totais
	if err := r.db.WithContext(ctx).
		Raw(`
            SELECT COUNT(DISTINCT participante_id) AS participantes,
                   COUNT(*) AS numeros_vendidos
            FROM numeros_vendidos
            WHERE rifa_id = ?
        `, rifaID).
		Scan(&totais).Error; err != nil {
		return domain.Totais{}, fmt.Errorf("gorm relatorio: totais: %w", err)
	}
	return totais, nil
}

func (r *RelatorioRepository) RankingVendedores(ctx context.Context, rifaID domain.RifaID) ([]domain.VendedorRanking, error) {
	var ranking []domain.VendedorRanking
	// Desempate por nome do vendedor mantém a ordenação determinística.
	if err := r.db.WithContext(ctx).
		Raw(`
            SELECT p.vendedor AS vendedor,
                   COUNT(DISTINCT p.id) AS vendas,
                   COUNT(nv.id) AS total_numeros
            FROM participantes p
            LEFT JOIN numeros_vendidos nv ON nv.participante_id = p.id
            WHERE p.rifa_id = ?
            GROUP BY p.vendedor
            ORDER BY total_numeros DESC, p.vendedor ASC
            LIMIT 10
        `, rifaID).
		Scan(&ranking).Error; err != nil {
		return nil, fmt.Errorf("gorm relatorio: ranking vendedores: %w", err)
	}
	return ranking, nil
}

func (r *RelatorioRepository) RankingCompradores(ctx context.Context, rifaID domain.RifaID) ([]domain.CompradorRanking, error) {
	var ranking []domain.CompradorRanking
	if err := r.db.WithContext(ctx).
		Raw(`
            SELECT p.nome AS nome,
                   p.vendedor AS vendedor,
                   COUNT(nv.id) AS quantidade,
                   p.numeros AS numeros
            FROM participantes p
            LEFT JOIN numeros_vendidos nv ON nv.participante_id = p.id
            WHERE p.rifa_id = ?
            GROUP BY p.id, p.nome, p.vendedor, p.numeros
            ORDER BY quantidade DESC, p.nome ASC
        `, rifaID).
		Scan(&ranking).Error; err != nil {
		return nil, fmt.Errorf("gorm relatorio: ranking compradores: %w", err)
	}
	return ranking, nil
}

func (r *RelatorioRepository) ResumoRifas(ctx context.Context) ([]domain.RifaResumo, error) {
	var resumos []domain.RifaResumo
	// COALESCE mantém o cálculo válido quando a rifa não tem preço configurado.
	if err := r.db.WithContext(ctx).
		Raw(`
            SELECT r.id AS rifa_id,
                   r.nome_premio AS nome_premio,
                   r.status AS status,
                   COUNT(nv.id) AS total_vendidos,
                   COUNT(nv.id) * COALESCE(r.preco_numero, 0) AS valor_arrecadado
            FROM rifas r
            LEFT JOIN numeros_vendidos nv ON nv.rifa_id = r.id
            GROUP BY r.id, r.nome_premio, r.status, r.preco_numero, r.criada_em
            ORDER BY r.criada_em DESC
        `).
		Scan(&resumos).Error; err != nil {
		return nil, fmt.Errorf("gorm relatorio: resumo rifas: %w", err)
	}
	return resumos, nil
}

func (r *RelatorioRepository) VendedoresGerais(ctx context.Context) ([]domain.VendedorRanking, error) {
	var ranking []domain.VendedorRanking
	if err := r.db.WithContext(ctx).
		Raw(`
            SELECT p.vendedor AS vendedor,
                   COUNT(DISTINCT p.id) AS vendas,
                   COUNT(nv.id) AS total_numeros
            FROM participantes p
            LEFT JOIN numeros_vendidos nv ON nv.participante_id = p.id
            GROUP BY p.vendedor
            ORDER BY total_numeros DESC, p.vendedor ASC
            LIMIT 10
        `).
		Scan(&ranking).Error; err != nil {
		return nil, fmt.Errorf("gorm relatorio: vendedores gerais: %w", err)
	}
	return ranking, nil
}

var _ domain.RelatorioRepository = (*RelatorioRepository)(nil)
