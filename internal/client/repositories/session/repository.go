// Package session keeps the CLI's login state in the local database as
// key/value pairs.
package session

import "context"

// Repository is a key/value store. Get returns common.ErrorNotFound for a
// missing key.
type Repository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
