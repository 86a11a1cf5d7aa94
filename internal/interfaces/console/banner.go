package console

import (
	"sync"
	"time"
)

// Duraciones de los banners transitorios.
const (
	SuccessTTL   = 3000 * time.Millisecond
	HighlightTTL = 2000 * time.Millisecond
)

// Banner mensaje transitorio que se borra solo tras ttl. Tras Stop no vuelve a
// cambiar, ni por Show ni por un timer pendiente.
type Banner struct {
	ttl     time.Duration
	mu      sync.Mutex
	text    string
	gen     uint64
	timer   *time.Timer
	stopped bool
}

// NewBanner crea un banner vacío.
func NewBanner(ttl time.Duration) *Banner {
	return &Banner{ttl: ttl}
}

// Show muestra text y reinicia el plazo.
func (b *Banner) Show(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		return
	}
	if b.timer != nil {
		b.timer.Stop()
	}
	b.gen++
	b.text = text
	gen := b.gen
	b.timer = time.AfterFunc(b.ttl, func() { b.expire(gen) })
}

// expire borra el texto si nadie lo reemplazó desde que se programó el timer.
func (b *Banner) expire(gen uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped || b.gen != gen {
		return
	}
	b.text = ""
	b.timer = nil
}

// Text texto visible ("" si no hay).
func (b *Banner) Text() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text
}

// Clear oculta el banner ya.
func (b *Banner) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		return
	}
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.gen++
	b.text = ""
}

// Stop cancela el timer pendiente y congela el banner.
func (b *Banner) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.stopped = true
}
