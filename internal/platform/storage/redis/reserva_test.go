package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcelojr/rifa-facil/internal/domain"
)

func TestReserva_Reservar_QuandoNumerosLivres_DeveReservarTodos(t *testing.T) {
	client, _ := setupRedis(t)
	reserva := NewReserva(client, "reserva", 5*time.Minute)

	ctx := context.Background()
	rifaID := domain.RifaID("01HRIFA0000000000000000001")

	// Act
	recusados, err := reserva.Reservar(ctx, rifaID, []int{3, 7, 12}, "Carlos")
	require.NoError(t, err)

	// Assert
	assert.Empty(t, recusados)

	reservados, err := reserva.Reservados(ctx, rifaID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{3, 7, 12}, reservados)
}

func TestReserva_Reservar_QuandoNumeroJaReservado_DeveRecusarEDesfazer(t *testing.T) {
	client, _ := setupRedis(t)
	reserva := NewReserva(client, "reserva", 5*time.Minute)

	ctx := context.Background()
	rifaID := domain.RifaID("01HRIFA0000000000000000001")

	// Arrange: Carlos segura o 7
	recusados, err := reserva.Reservar(ctx, rifaID, []int{7}, "Carlos")
	require.NoError(t, err)
	require.Empty(t, recusados)

	// Act: Maria tenta 5, 7 e 9
	recusados, err = reserva.Reservar(ctx, rifaID, []int{5, 7, 9}, "Maria")
	require.NoError(t, err)

	// Assert: o 7 é recusado e as reservas parciais de Maria são desfeitas
	assert.Equal(t, []int{7}, recusados)

	reservados, err := reserva.Reservados(ctx, rifaID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{7}, reservados)
}

func TestReserva_Liberar_DeveRemoverReservas(t *testing.T) {
	client, _ := setupRedis(t)
	reserva := NewReserva(client, "reserva", 5*time.Minute)

	ctx := context.Background()
	rifaID := domain.RifaID("01HRIFA0000000000000000001")

	recusados, err := reserva.Reservar(ctx, rifaID, []int{3, 7}, "Carlos")
	require.NoError(t, err)
	require.Empty(t, recusados)

	// Act
	err = reserva.Liberar(ctx, rifaID, []int{3})
	require.NoError(t, err)

	// Assert
	reservados, err := reserva.Reservados(ctx, rifaID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{7}, reservados)
}

func TestReserva_Reservar_QuandoTTLExpira_DeveLiberarNumero(t *testing.T) {
	client, mr := setupRedis(t)
	reserva := NewReserva(client, "reserva", 5*time.Minute)

	ctx := context.Background()
	rifaID := domain.RifaID("01HRIFA0000000000000000001")

	recusados, err := reserva.Reservar(ctx, rifaID, []int{7}, "Carlos")
	require.NoError(t, err)
	require.Empty(t, recusados)

	// Act: avançar o relógio do miniredis além do TTL
	mr.FastForward(6 * time.Minute)

	// Assert: o número expirou e pode ser reservado de novo
	reservados, err := reserva.Reservados(ctx, rifaID)
	require.NoError(t, err)
	assert.Empty(t, reservados)

	recusados, err = reserva.Reservar(ctx, rifaID, []int{7}, "Maria")
	require.NoError(t, err)
	assert.Empty(t, recusados)
}

func TestReserva_Reservados_QuandoOutraRifa_NaoDeveVazar(t *testing.T) {
	client, _ := setupRedis(t)
	reserva := NewReserva(client, "reserva", 5*time.Minute)

	ctx := context.Background()

	recusados, err := reserva.Reservar(ctx, "rifa-a", []int{1, 2}, "Carlos")
	require.NoError(t, err)
	require.Empty(t, recusados)

	recusados, err = reserva.Reservar(ctx, "rifa-b", []int{9}, "Maria")
	require.NoError(t, err)
	require.Empty(t, recusados)

	// Act / Assert
	reservados, err := reserva.Reservados(ctx, "rifa-a")
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{1, 2}, reservados)
}
