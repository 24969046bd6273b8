package clock

import "time"

type Relogio struct{}

func NovoRelogio() Relogio {
	return Relogio{}
}

func (Relogio) Agora() time.Time {
	return time.Now().UTC()
}
