package querier

import (
	"context"
	"errors"

	"github.com/darkclainer/wordmeaning/pkg/meaning"
)

var (
	// ErrNotFound means that dictionary knows nothing about the word. It's not a failure.
	ErrNotFound = errors.New("word not found")
	// ErrUnavailable means that dictionary can not be queried right now
	ErrUnavailable = errors.New("dictionary unavailable")
)

//go:generate go run github.com/vektra/mockery/v2 --name Querier --output ../mocks/

// Querier resolves word to its meanings and sources.
// Unknown word must be reported with empty result or ErrNotFound.
type Querier interface {
	Lookup(ctx context.Context, word string) (*meaning.WordResult, error)
	Close(ctx context.Context) error
}
