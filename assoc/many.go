package assoc

import (
	"context"
	"fmt"

	"github.com/ridge/karst/record"
	"golang.org/x/exp/slices"
)

// Many resolves a plural association of one record.
type Many[T record.Record] struct {
	source record.Record
	decl   *Decl
	lookup Lookup[T]

	targets []T
	loaded  bool
}

// NewMany returns a resolver for a plural association of source. It panics
// if the declaration is not plural.
func NewMany[T record.Record](source record.Record, decl *Decl, lookup Lookup[T]) *Many[T] {
	if decl.Arity != Plural {
		panic(fmt.Sprintf("assoc: %s is not a plural association", decl.Name))
	}
	return &Many[T]{source: source, decl: decl, lookup: lookup}
}

// Resolve returns the referenced records in id order, loading them on first
// use. Dangling ids are skipped; lookup errors are returned and not memoized.
func (m *Many[T]) Resolve(ctx context.Context) ([]T, error) {
	if m.loaded {
		return slices.Clone(m.targets), nil
	}
	ids := idsOf(m.source.Attributes()[m.decl.Attr])
	targets := make([]T, 0, len(ids))
	for _, id := range ids {
		target, found, err := m.lookup(ctx, id)
		if err != nil {
			return nil, err
		}
		if !found {
			continue
		}
		targets = append(targets, target)
	}
	m.targets, m.loaded = targets, true
	return slices.Clone(m.targets), nil
}

// Loaded reports whether the resolver holds a memoized result.
func (m *Many[T]) Loaded() bool {
	return m.loaded
}

// Reset drops the memoized result.
func (m *Many[T]) Reset() {
	m.targets, m.loaded = nil, false
}

// Add puts the target into the association and maintains the inverse. The
// memoized result is invalidated.
func (m *Many[T]) Add(ctx context.Context, target T) error {
	if err := m.validate(target); err != nil {
		return err
	}
	ids := idsOf(m.source.Attributes()[m.decl.Attr])
	if err := m.source.SetAttribute(m.decl.Attr, withID(ids, target.ID())); err != nil {
		return err
	}
	if m.decl.Inverse != nil {
		if err := associate(m.decl.Inverse, target, m.source.ID()); err != nil {
			return err
		}
	}
	m.Reset()
	return nil
}

// Remove takes the target out of the association and maintains the inverse.
// Removing a record that is not a member has no effect. The memoized result
// is invalidated.
func (m *Many[T]) Remove(ctx context.Context, target T) error {
	if err := m.validate(target); err != nil {
		return err
	}
	ids := idsOf(m.source.Attributes()[m.decl.Attr])
	if err := m.source.SetAttribute(m.decl.Attr, withoutID(ids, target.ID())); err != nil {
		return err
	}
	if m.decl.Inverse != nil {
		if err := disassociate(m.decl.Inverse, target, m.source.ID()); err != nil {
			return err
		}
	}
	m.Reset()
	return nil
}

func (m *Many[T]) validate(target T) error {
	if target.ID() == "" {
		return fmt.Errorf("%s: %w", m.decl.Name, ErrTargetNotIdentified)
	}
	if m.decl.Inverse != nil && m.source.ID() == "" {
		return fmt.Errorf("%s: %w", m.decl.Name, ErrSourceNotIdentified)
	}
	return nil
}
