// Pacote aleatorio fornece a fonte de números aleatórios usada pelo motor de sorteio.
package aleatorio

import (
	"math/rand"
	"sync"
	"time"
)

// Fonte embrulha math/rand com mutex para uso seguro entre goroutines.
type Fonte struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NovaFonte devolve uma fonte não determinística, semeada pelo relógio.
func NovaFonte() *Fonte {
	return &Fonte{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NovaFonteComSemente devolve uma fonte reprodutível para testes.
func NovaFonteComSemente(semente int64) *Fonte {
	return &Fonte{rng: rand.New(rand.NewSource(semente))}
}

func (f *Fonte) Intn(n int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rng.Intn(n)
}
