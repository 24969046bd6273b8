package rifa

import (
	"fmt"

	"github.com/marcelojr/rifa-facil/internal/domain"
)

func ChaveTotalVendidos(id domain.RifaID) string {
	return fmt.Sprintf("rifa:%s:vendidos", id)
}

func ChaveVendedor(id domain.RifaID, vendedor string) string {
	return fmt.Sprintf("rifa:%s:vendedor:%s", id, vendedor)
}
