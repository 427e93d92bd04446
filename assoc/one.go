package assoc

import (
	"context"
	"fmt"

	"github.com/ridge/karst/record"
)

// One resolves a singular association of one record.
type One[T record.Record] struct {
	source record.Record
	decl   *Decl
	lookup Lookup[T]

	target T
	found  bool
	loaded bool
}

// NewOne returns a resolver for a singular association of source. It panics
// if the declaration is not singular.
func NewOne[T record.Record](source record.Record, decl *Decl, lookup Lookup[T]) *One[T] {
	if decl.Arity != Singular {
		panic(fmt.Sprintf("assoc: %s is not a singular association", decl.Name))
	}
	return &One[T]{source: source, decl: decl, lookup: lookup}
}

// Resolve returns the referenced record, loading it on first use. A blank
// referential attribute and a dangling id both resolve to no target; lookup
// errors are returned and not memoized.
func (o *One[T]) Resolve(ctx context.Context) (T, bool, error) {
	if o.loaded {
		return o.target, o.found, nil
	}
	var zero T
	id := idOf(o.source.Attributes()[o.decl.Attr])
	if id == "" {
		o.target, o.found, o.loaded = zero, false, true
		return o.target, o.found, nil
	}
	target, found, err := o.lookup(ctx, id)
	if err != nil {
		return zero, false, err
	}
	if !found {
		target = zero
	}
	o.target, o.found, o.loaded = target, found, true
	return o.target, o.found, nil
}

// Loaded reports whether the resolver holds a memoized result.
func (o *One[T]) Loaded() bool {
	return o.loaded
}

// Reset drops the memoized result. The next Resolve reads the referential
// attribute afresh.
func (o *One[T]) Reset() {
	var zero T
	o.target, o.found, o.loaded = zero, false, false
}

// Set points the association at a new target, detaching the old one first.
// Both records are mutated in place where a linked inverse requires it, and
// remain for the caller to persist.
func (o *One[T]) Set(ctx context.Context, target T) (T, error) {
	var zero T
	if _, _, err := o.detach(ctx); err != nil {
		return zero, err
	}
	if target.ID() == "" {
		return zero, fmt.Errorf("%s: %w", o.decl.Name, ErrTargetNotIdentified)
	}
	if o.decl.Inverse != nil && o.source.ID() == "" {
		return zero, fmt.Errorf("%s: %w", o.decl.Name, ErrSourceNotIdentified)
	}
	if err := o.source.SetAttribute(o.decl.Attr, target.ID()); err != nil {
		return zero, err
	}
	if o.decl.Inverse != nil {
		if err := associate(o.decl.Inverse, target, o.source.ID()); err != nil {
			return zero, err
		}
	}
	o.target, o.found, o.loaded = target, true, true
	return target, nil
}

// Clear detaches the association and returns the record it referenced, if
// any. The resolver goes back to the unloaded state.
func (o *One[T]) Clear(ctx context.Context) (T, bool, error) {
	old, found, err := o.detach(ctx)
	if err != nil {
		var zero T
		return zero, false, err
	}
	o.Reset()
	return old, found, nil
}

// detach blanks the referential attribute and removes the back-reference
// from the old target. It returns the old target.
func (o *One[T]) detach(ctx context.Context) (T, bool, error) {
	var zero T
	if idOf(o.source.Attributes()[o.decl.Attr]) == "" {
		return zero, false, nil
	}
	old, found, err := o.Resolve(ctx)
	if err != nil {
		return zero, false, err
	}
	if found && o.decl.Inverse != nil {
		if err := disassociate(o.decl.Inverse, old, o.source.ID()); err != nil {
			return zero, false, err
		}
	}
	if err := o.source.SetAttribute(o.decl.Attr, nil); err != nil {
		return zero, false, err
	}
	return old, found, nil
}
