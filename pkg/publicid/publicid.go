// Package publicid genera los identificadores públicos de venta que se imprimen
// en el ticket: PREFIJO-AAAA-NNNNNN (ej. SJPOS-2026-483920).
//
// El número es uniforme en [100000, 999999]. El generador no comprueba unicidad:
// la tabla sales tiene UNIQUE(public_id) y el coordinador reintenta ante colisión.
package publicid

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"sync"
	"time"
)

const (
	minNumber = 100000
	maxNumber = 999999
)

var (
	prefixPattern = regexp.MustCompile(`^[A-Z][A-Z0-9]*$`)
	pattern       = regexp.MustCompile(`^[A-Z][A-Z0-9]*-\d{4}-\d{6}$`)
)

// Generator produce identificadores públicos. Es seguro para uso concurrente.
type Generator struct {
	prefix string
	now    func() time.Time

	mu  sync.Mutex
	rnd *rand.Rand
}

// Option ajusta el generador (tests).
type Option func(*Generator)

// WithClock fija el reloj usado para el año.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithRand fija la fuente aleatoria.
func WithRand(r *rand.Rand) Option {
	return func(g *Generator) { g.rnd = r }
}

// New construye un generador con el prefijo dado (ej. "SJPOS").
func New(prefix string, opts ...Option) *Generator {
	g := &Generator{
		prefix: prefix,
		now:    time.Now,
		rnd:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Next devuelve un nuevo identificador público.
func (g *Generator) Next() string {
	g.mu.Lock()
	n := minNumber + g.rnd.IntN(maxNumber-minNumber+1)
	g.mu.Unlock()
	return fmt.Sprintf("%s-%d-%d", g.prefix, g.now().Year(), n)
}

// Valid indica si s tiene la forma PREFIJO-AAAA-NNNNNN.
func Valid(s string) bool {
	return pattern.MatchString(s)
}

// ValidPrefix indica si p produce identificadores que Valid acepta.
func ValidPrefix(p string) bool {
	return prefixPattern.MatchString(p)
}
