package auth

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher turns passwords into one-way hashes and checks them.
type Hasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	Verify(ctx context.Context, plaintext, hash string) bool
	// DummyHash is a valid hash of no real password. Comparing against it
	// costs the same as a real check.
	DummyHash() string
}

// BcryptHasher hashes with bcrypt at a fixed cost. The work runs on its
// own goroutine so a cancelled context releases the caller immediately;
// the abandoned result is discarded.
type BcryptHasher struct {
	cost  int
	dummy string
}

func NewBcryptHasher(cost int) (*BcryptHasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range", cost)
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), cost)
	if err != nil {
		return nil, err
	}
	return &BcryptHasher{cost: cost, dummy: string(dummy)}, nil
}

func (h *BcryptHasher) DummyHash() string {
	return h.dummy
}

func (h *BcryptHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		hash []byte
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		b, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
		ch <- result{hash: b, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return "", fmt.Errorf("hash password: %w", r.err)
		}
		return string(r.hash), nil
	}
}

func (h *BcryptHasher) Verify(ctx context.Context, plaintext, hash string) bool {
	if ctx.Err() != nil {
		return false
	}

	ch := make(chan bool, 1)
	go func() {
		ch <- bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
	}()

	select {
	case <-ctx.Done():
		return false
	case ok := <-ch:
		return ok
	}
}
