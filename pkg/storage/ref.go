// Package storage provides typed access to values kept in a ports.Store.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/yurixander/minimal/pkg/domain"
	"github.com/yurixander/minimal/pkg/ports"
)

// Ref is a typed handle on one namespace/key pair.
type Ref[T any] struct {
	store     ports.Store
	namespace string
	key       string
	fallback  T
	locks     *Locks
}

// NewRef binds namespace/key in store. fallback is returned while the key
// is unset.
func NewRef[T any](store ports.Store, namespace, key string, fallback T) *Ref[T] {
	return &Ref[T]{store: store, namespace: namespace, key: key, fallback: fallback}
}

// WithLocks makes Transform atomic with respect to other Refs sharing locks.
func (r *Ref[T]) WithLocks(locks *Locks) *Ref[T] {
	r.locks = locks
	return r
}

// Get decodes the stored value, or returns the fallback when it is unset.
// Decoding is weakly typed so values written by hand ("5" for 5) still load.
func (r *Ref[T]) Get(ctx context.Context) (T, error) {
	raw, err := r.store.Get(ctx, r.namespace, r.key)
	if errors.Is(err, domain.ErrKeyNotFound) {
		return r.fallback, nil
	}
	if err != nil {
		return r.fallback, err
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return r.fallback, fmt.Errorf("failed to decode %s/%s: %w", r.namespace, r.key, err)
	}

	var out T
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return r.fallback, err
	}
	if err := decoder.Decode(generic); err != nil {
		return r.fallback, fmt.Errorf("failed to decode %s/%s: %w", r.namespace, r.key, err)
	}
	return out, nil
}

// Set encodes and stores v.
func (r *Ref[T]) Set(ctx context.Context, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", r.namespace, r.key, err)
	}
	return r.store.Set(ctx, r.namespace, r.key, raw)
}

// Reset deletes the stored value so Get returns the fallback again.
func (r *Ref[T]) Reset(ctx context.Context) error {
	return r.store.Delete(ctx, r.namespace, r.key)
}

// Transform reads the value, applies fn and stores the result. With locks
// attached, concurrent Transforms of the same key do not lose updates.
func (r *Ref[T]) Transform(ctx context.Context, fn func(T) T) (T, error) {
	if r.locks == nil {
		return r.transform(ctx, fn)
	}
	var out T
	err := r.locks.WithLock(ctx, r.namespace+"/"+r.key, func(ctx context.Context) error {
		var err error
		out, err = r.transform(ctx, fn)
		return err
	})
	return out, err
}

func (r *Ref[T]) transform(ctx context.Context, fn func(T) T) (T, error) {
	current, err := r.Get(ctx)
	if err != nil {
		return current, err
	}
	next := fn(current)
	if err := r.Set(ctx, next); err != nil {
		return current, err
	}
	return next, nil
}
