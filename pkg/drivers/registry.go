// Package drivers opens accelerate drivers from target URLs such as
// "sqlite://app.db?busy_timeout=2000" or "redis://localhost:6379/0?prefix=app:".
package drivers

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/accelerate/pkg/domain"
	"github.com/aretw0/accelerate/pkg/ports"
)

// Driver is a ports.Driver owned by whoever opened it.
type Driver interface {
	ports.Driver
	io.Closer
}

// Target is a parsed driver target.
// Location is everything between "scheme://" and the query string.
type Target struct {
	Raw      string
	Scheme   string
	Location string
	Query    url.Values
}

// OpenFunc opens a driver for a parsed target.
type OpenFunc func(ctx context.Context, target Target) (Driver, error)

// Registry maps URL schemes to driver constructors.
type Registry struct {
	mu      sync.RWMutex
	openers map[string]OpenFunc
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		openers: make(map[string]OpenFunc),
	}
}

// Register adds a driver to the registry.
// If a driver with the same scheme exists, it is overwritten.
func (r *Registry) Register(scheme string, fn OpenFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.openers[strings.ToLower(scheme)] = fn
}

// Has reports whether a driver is registered for scheme.
func (r *Registry) Has(scheme string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.openers[strings.ToLower(scheme)]
	return ok
}

// Schemes lists the registered schemes, sorted.
func (r *Registry) Schemes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	schemes := make([]string, 0, len(r.openers))
	for s := range r.openers {
		schemes = append(schemes, s)
	}
	sort.Strings(schemes)
	return schemes
}

// Open parses target and opens the driver registered for its scheme.
// Returns domain.ErrUnknownDriver if no driver matches.
func (r *Registry) Open(ctx context.Context, target string) (Driver, error) {
	t, err := Parse(target)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	fn, ok := r.openers[t.Scheme]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %s)", domain.ErrUnknownDriver, t.Scheme, strings.Join(r.Schemes(), ", "))
	}

	return fn(ctx, t)
}

// Parse splits a target into scheme, location and query.
// It does not use url.Parse for the location, so paths like ":memory:" survive.
func Parse(target string) (Target, error) {
	scheme, rest, ok := strings.Cut(target, "://")
	if !ok || scheme == "" {
		return Target{}, fmt.Errorf("invalid target %q: expected scheme://location", target)
	}

	location, rawQuery, _ := strings.Cut(rest, "?")
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		return Target{}, fmt.Errorf("invalid target %q: %w", target, err)
	}

	return Target{
		Raw:      target,
		Scheme:   strings.ToLower(scheme),
		Location: location,
		Query:    query,
	}, nil
}

var defaultRegistry = NewDefault()

// NewDefault creates a registry with the built-in memory, sqlite, postgres and redis drivers.
func NewDefault() *Registry {
	r := NewRegistry()
	r.Register("memory", openMemory)
	r.Register("sqlite", openSQLite)
	r.Register("sqlite3", openSQLite)
	r.Register("postgres", openPostgres)
	r.Register("postgresql", openPostgres)
	r.Register("redis", openRedis)
	r.Register("rediss", openRedis)
	return r
}

// Register adds a driver to the default registry.
func Register(scheme string, fn OpenFunc) {
	defaultRegistry.Register(scheme, fn)
}

// Has reports whether the default registry knows scheme.
func Has(scheme string) bool {
	return defaultRegistry.Has(scheme)
}

// Open opens target using the default registry.
func Open(ctx context.Context, target string) (Driver, error) {
	return defaultRegistry.Open(ctx, target)
}
