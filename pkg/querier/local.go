package querier

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v2"
	"go.uber.org/zap"

	"github.com/darkclainer/wordmeaning/pkg/meaning"
)

type LocalConfig struct {
	// Path to badger directory
	Path string `mapstructure:"path"`
	// InMemory makes dictionary live only until process exits, Path is ignored
	InMemory bool `mapstructure:"in_memory"`
}

// Local is offline dictionary that serves previously imported entries
type Local struct {
	storage *Storage
}

func NewLocal(db *badger.DB) *Local {
	return &Local{
		storage: &Storage{DB: db},
	}
}

// OpenLocal opens badger database described by config. Badger logs are routed to logger.
func OpenLocal(config *LocalConfig, logger *zap.Logger) (*Local, error) {
	var opts badger.Options
	switch {
	case config.InMemory:
		opts = badger.DefaultOptions("").WithInMemory(true)
	case config.Path != "":
		opts = badger.DefaultOptions(config.Path)
	default:
		return nil, errors.New("local dictionary requires either path or in_memory")
	}
	if logger == nil {
		opts = opts.WithLogger(nil)
	} else {
		opts = opts.WithLogger(newBadgerLogger(logger))
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("can not open local dictionary: %w", err)
	}
	return NewLocal(db), nil
}

func (l *Local) Lookup(ctx context.Context, word string) (*meaning.WordResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entry, err := l.storage.GetEntry(word)
	if errors.Is(err, ErrNotFound) {
		return &meaning.WordResult{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return entry, nil
}

// Import stores entries, replacing existing ones for the same words
func (l *Local) Import(ctx context.Context, entries map[string]*meaning.WordResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return l.storage.PutEntries(entries)
}

func (l *Local) Words(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return l.storage.Words()
}

func (l *Local) Close(ctx context.Context) error {
	if err := l.storage.Close(); err != nil {
		return fmt.Errorf("storage close failed: %w", err)
	}
	return nil
}

// badgerLogger adapts zap to badger.Logger
type badgerLogger struct {
	sugar *zap.SugaredLogger
}

func newBadgerLogger(logger *zap.Logger) *badgerLogger {
	return &badgerLogger{sugar: logger.Named("badger").Sugar()}
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.sugar.Warnf(format, args...)
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}
