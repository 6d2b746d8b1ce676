package scene

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

// Factory builds a live instance from its descriptor.
// It must honor `ctx` and pass `opts` through to nested enlivening,
// so that the whole tree shares one cancellation scope and one namespace.
type Factory func(ctx context.Context, d Descriptor, opts Options) (any, error)

// Namespace maps class names to factories.
// It is safe for concurrent use.
type Namespace struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewNamespace returns an empty namespace.
func NewNamespace() *Namespace {
	return &Namespace{factories: make(map[string]Factory)}
}

// DefaultNamespace is used when Options.Namespace is nil.
// Concrete types register themselves into it on package initialization.
var DefaultNamespace = NewNamespace()

// ClassName converts a type tag to its class name, by camel casing
// dash separated words and upper casing the first letter:
// "circle" gives "Circle", "i-text" gives "IText".
func ClassName(typeTag string) string {
	var sb strings.Builder
	sb.Grow(len(typeTag))
	upperNext := false
	for _, r := range typeTag {
		if r == '-' {
			upperNext = true
			continue
		}
		if upperNext {
			r = unicode.ToUpper(r)
			upperNext = false
		}
		sb.WriteRune(r)
	}
	name := sb.String()
	first, size := utf8.DecodeRuneInString(name)
	if size == 0 {
		return ""
	}
	return string(unicode.ToUpper(first)) + name[size:]
}

// Register adds the factory building objects tagged `typeTag`.
func (ns *Namespace) Register(typeTag string, f Factory) error {
	if f == nil {
		return fmt.Errorf("register %q: factory is nil", typeTag)
	}
	class := ClassName(typeTag)
	if class == "" {
		return errors.New("register: type tag is empty")
	}
	ns.mu.Lock()
	defer ns.mu.Unlock()
	if _, exists := ns.factories[class]; exists {
		return fmt.Errorf("register %q: class %s is already registered", typeTag, class)
	}
	ns.factories[class] = f
	return nil
}

// MustRegister panics on registration error; intended for init functions.
func (ns *Namespace) MustRegister(typeTag string, f Factory) {
	if err := ns.Register(typeTag, f); err != nil {
		panic(err)
	}
}

// Resolve returns the factory for `typeTag`, or an *UnresolvedTypeError.
func (ns *Namespace) Resolve(typeTag string) (Factory, error) {
	class := ClassName(typeTag)
	ns.mu.RLock()
	f, ok := ns.factories[class]
	ns.mu.RUnlock()
	if !ok {
		return nil, &UnresolvedTypeError{Type: typeTag, Class: class}
	}
	return f, nil
}

// Names returns the registered class names, sorted.
func (ns *Namespace) Names() []string {
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	out := make([]string, 0, len(ns.factories))
	for name := range ns.factories {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy of the namespace, which may
// then be extended without affecting `ns`.
func (ns *Namespace) Clone() *Namespace {
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	out := NewNamespace()
	for name, f := range ns.factories {
		out.factories[name] = f
	}
	return out
}
