package antifraude

import (
	"context"

	"github.com/marcelojr/rifa-facil/internal/domain"
)

// Noop representa uma estratégia de antifraude desabilitada.
type Noop struct{}

func NewNoop() Noop {
	return Noop{}
}

func (Noop) Validar(ctx context.Context, venda domain.Venda) error {
	// Implementação vazia usada quando o rate limit é desligado via config.
	return nil
}
