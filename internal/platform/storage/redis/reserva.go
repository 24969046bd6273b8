package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/marcelojr/rifa-facil/internal/domain"
)

// Reserva segura números com SETNX + TTL enquanto o vendedor fecha a venda.
// A reserva é consultiva: o índice único do Postgres continua sendo o árbitro.
type Reserva struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewReserva(client *redis.Client, prefix string, ttl time.Duration) *Reserva {
	if prefix == "" {
		prefix = "reserva"
	}
	return &Reserva{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// Reservar tenta segurar todos os números pedidos e devolve os que falharam.
// Quando há recusa, as reservas obtidas nesta chamada são desfeitas.
func (r *Reserva) Reservar(ctx context.Context, rifaID domain.RifaID, numeros []int, dono string) ([]int, error) {
	var obtidos []string
	var recusados []int

	for _, numero := range numeros {
		key := r.key(rifaID, numero)
		ok, err := r.client.SetNX(ctx, key, dono, r.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redis reserva: falha ao reservar %d: %w", numero, err)
		}
		if ok {
			obtidos = append(obtidos, key)
			continue
		}
		recusados = append(recusados, numero)
	}

	if len(recusados) > 0 && len(obtidos) > 0 {
		if err := r.client.Del(ctx, obtidos...).Err(); err != nil {
			return recusados, fmt.Errorf("redis reserva: falha ao desfazer reservas: %w", err)
		}
	}

	return recusados, nil
}

func (r *Reserva) Liberar(ctx context.Context, rifaID domain.RifaID, numeros []int) error {
	if len(numeros) == 0 {
		return nil
	}
	keys := make([]string, len(numeros))
	for i, numero := range numeros {
		keys[i] = r.key(rifaID, numero)
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis reserva: falha ao liberar: %w", err)
	}
	return nil
}

func (r *Reserva) Reservados(ctx context.Context, rifaID domain.RifaID) ([]int, error) {
	pattern := fmt.Sprintf("%s:%s:*", r.prefix, rifaID)
	var numeros []int

	iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		partes := strings.Split(iter.Val(), ":")
		numero, err := strconv.Atoi(partes[len(partes)-1])
		if err != nil {
			continue
		}
		numeros = append(numeros, numero)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis reserva: falha ao listar: %w", err)
	}

	return numeros, nil
}

func (r *Reserva) key(rifaID domain.RifaID, numero int) string {
	return fmt.Sprintf("%s:%s:%d", r.prefix, rifaID, numero)
}

var _ domain.Reserva = (*Reserva)(nil)
