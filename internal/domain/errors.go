package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrNotFound = errors.New("registro nao encontrado")

	// ErrNumeroJaVendido é o alvo de errors.Is para conflitos de números;
	// o detalhe (quais números) viaja em ConflitoNumeros.
	ErrNumeroJaVendido = errors.New("numero ja vendido")

	// ErrJaSorteada protege a finalização: o UPDATE condicional do vencedor
	// não altera linha nenhuma quando a rifa já foi sorteada.
	ErrJaSorteada = errors.New("rifa ja sorteada")
)

// ConflitoNumeros carrega os números que já estavam vendidos quando a venda falhou.
type ConflitoNumeros struct {
	Numeros []int
}

func (c *ConflitoNumeros) Error() string {
	itens := make([]string, len(c.Numeros))
	for i, n := range c.Numeros {
		itens[i] = strconv.Itoa(n)
	}
	return fmt.Sprintf("numeros ja vendidos: %s", strings.Join(itens, ","))
}

func (c *ConflitoNumeros) Unwrap() error { return ErrNumeroJaVendido }
