// Pacote migrations centraliza as versões gormigrate aplicadas na inicialização.
package migrations

import (
	"fmt"

	gormigrate "github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/marcelojr/rifa-facil/internal/domain"
)

func Run(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("migrations: db nulo")
	}

	// Usamos gormigrate para versionar as migrations sem depender de AutoMigrate direto em produção.
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "202602090001_init_schema",
			Migrate: func(tx *gorm.DB) error {
				// O índice único (rifa_id, numero) em numeros_vendidos é o árbitro
				// final contra venda duplicada; vem dos próprios modelos.
				return tx.AutoMigrate(&domain.Rifa{}, &domain.Participante{}, &domain.NumeroVendido{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("numeros_vendidos", "participantes", "rifas")
			},
		},
	})

	if err := m.Migrate(); err != nil {
		return fmt.Errorf("migrations: falha ao aplicar: %w", err)
	}

	return nil
}
