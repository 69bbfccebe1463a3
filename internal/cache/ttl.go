// Package cache implementa una cache clave→valor con expiración perezosa.
//
// No hay goroutine de limpieza: una entrada caducada se borra en la siguiente
// lectura de esa misma key. Stats es de solo lectura y no borra nada.
package cache

import (
	"sync"
	"time"
)

// Entry es una entrada almacenada con su instante de escritura y TTL.
type Entry[V any] struct {
	Key      string
	Value    V
	StoredAt time.Time
	TTL      time.Duration
}

// expired: now - storedAt > ttl. Justo en el límite sigue viva.
func (e Entry[V]) expired(now time.Time) bool {
	return now.Sub(e.StoredAt) > e.TTL
}

// Age devuelve la antigüedad de la entrada respecto a now.
func (e Entry[V]) Age(now time.Time) time.Duration {
	return now.Sub(e.StoredAt)
}

// Stats es un recuento de entradas para observabilidad.
type Stats struct {
	Total   int `json:"total"`
	Active  int `json:"active"`
	Expired int `json:"expired"`
}

// TTL es una cache genérica protegida por un único mutex. La contención
// esperada es baja y las entradas son pequeñas.
type TTL[V any] struct {
	mu      sync.Mutex
	entries map[string]Entry[V]
	now     func() time.Time
}

// Option configura una TTL cache.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock inyecta el reloj. Usado en tests para controlar la expiración.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New crea una cache vacía.
func New[V any](opts ...Option) *TTL[V] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &TTL[V]{
		entries: make(map[string]Entry[V]),
		now:     o.now,
	}
}

// Now devuelve el instante según el reloj de la cache. Las edades de las
// entradas se calculan contra este reloj, no contra time.Now.
func (c *TTL[V]) Now() time.Time {
	return c.now()
}

// Set guarda value bajo key con el TTL dado. Sobrescribe cualquier valor previo.
func (c *TTL[V]) Set(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = Entry[V]{Key: key, Value: value, StoredAt: c.now(), TTL: ttl}
}

// Get devuelve el valor si existe y no ha caducado. Una entrada caducada se
// elimina en esta misma llamada.
func (c *TTL[V]) Get(key string) (V, bool) {
	e, ok := c.Entry(key)
	if !ok {
		var zero V
		return zero, false
	}
	return e.Value, true
}

// Entry devuelve la entrada completa (con StoredAt) aplicando la misma
// expiración perezosa que Get.
func (c *TTL[V]) Entry(key string) (Entry[V], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return Entry[V]{}, false
	}
	if e.expired(c.now()) {
		delete(c.entries, key)
		return Entry[V]{}, false
	}
	return e, true
}

// Has devuelve true si la key tiene un valor vigente.
func (c *TTL[V]) Has(key string) bool {
	_, ok := c.Entry(key)
	return ok
}

// Delete elimina la key si existe.
func (c *TTL[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear vacía la cache.
func (c *TTL[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]Entry[V])
}

// Stats cuenta entradas activas y caducadas sin modificarlas.
func (c *TTL[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	s := Stats{Total: len(c.entries)}
	for _, e := range c.entries {
		if e.expired(now) {
			s.Expired++
		} else {
			s.Active++
		}
	}
	return s
}
