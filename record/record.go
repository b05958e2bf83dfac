// Package record implements a registry of named, reference counted records,
// used to share process-wide services (such as the GUI) by string key.
//
// A record is created once by its provider, then opened and closed by each
// consumer. Opens and closes must be paired. A record cannot be destroyed
// while it is open.
package record

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrNotFound is returned when no record exists for a name.
	ErrNotFound = errors.New("record: not found")

	// ErrExists is returned by Create when the name is already taken.
	ErrExists = errors.New("record: already exists")

	// ErrInUse is returned by Destroy while the record is still open.
	ErrInUse = errors.New("record: in use")

	// ErrNotOpen is returned by Close when there is no open reference.
	ErrNotOpen = errors.New("record: not open")
)

type (
	// Registry maps names to records. The zero value is ready to use.
	Registry struct {
		records map[string]*entry
		mu      sync.Mutex
	}

	entry struct {
		data any
		refs int
	}
)

var defaultRegistry Registry

// Default returns the process-wide registry.
func Default() *Registry { return &defaultRegistry }

// Create registers data under name.
func (x *Registry) Create(name string, data any) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if _, ok := x.records[name]; ok {
		return fmt.Errorf("%w: %q", ErrExists, name)
	}
	if x.records == nil {
		x.records = make(map[string]*entry)
	}
	x.records[name] = &entry{data: data}
	return nil
}

// Open returns the data for name, incrementing its reference count.
// Every successful Open must be followed by exactly one Close.
func (x *Registry) Open(name string) (any, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	e, ok := x.records[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	e.refs++
	return e.data, nil
}

// Close releases a reference obtained by Open.
func (x *Registry) Close(name string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	e, ok := x.records[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if e.refs == 0 {
		return fmt.Errorf("%w: %q", ErrNotOpen, name)
	}
	e.refs--
	return nil
}

// Destroy removes the record for name, which must not be open.
func (x *Registry) Destroy(name string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	e, ok := x.records[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if e.refs != 0 {
		return fmt.Errorf("%w: %q has %d open reference(s)", ErrInUse, name, e.refs)
	}
	delete(x.records, name)
	return nil
}

// Exists reports whether a record is registered under name.
func (x *Registry) Exists(name string) bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	_, ok := x.records[name]
	return ok
}

// Refs returns the number of open references to name, or -1 if absent.
func (x *Registry) Refs(name string) int {
	x.mu.Lock()
	defer x.mu.Unlock()
	if e, ok := x.records[name]; ok {
		return e.refs
	}
	return -1
}
