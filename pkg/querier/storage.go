package querier

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v2"

	"github.com/darkclainer/wordmeaning/pkg/meaning"
)

type keyType byte

const (
	wordKey keyType = iota + 1
)

type wordEntryKey string

func (k wordEntryKey) MarshalBinary() ([]byte, error) {
	return marshalKey(string(k), wordKey), nil
}

func (k *wordEntryKey) UnmarshalBinary(data []byte) error {
	unmarshalledKey, err := unmarshalKey(data, wordKey)
	if err != nil {
		return err
	}
	*k = wordEntryKey(unmarshalledKey)
	return nil
}

func marshalKey(k string, t keyType) []byte {
	result := make([]byte, 0, len(k)+1)
	result = append(result, byte(t))
	return append(result, []byte(k)...)
}

func unmarshalKey(data []byte, expected keyType) (string, error) {
	if len(data) < 1 {
		return "", errors.New("key lenght must be at least 1")
	}
	if data[0] != byte(expected) {
		return "", fmt.Errorf("key type doesn't equal to expected type")
	}
	return string(data[1:]), nil
}

// Storage keeps word entries in badger as JSON encoded meaning.WordResult
type Storage struct {
	DB *badger.DB
}

// GetEntry returns ErrNotFound if there is no entry for word
func (s *Storage) GetEntry(word string) (*meaning.WordResult, error) {
	key, _ := wordEntryKey(word).MarshalBinary()
	var entry meaning.WordResult
	err := s.DB.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("can not get entry %q: %w", word, err)
	}
	return &entry, nil
}

// PutEntries writes all entries in a single batch
func (s *Storage) PutEntries(entries map[string]*meaning.WordResult) error {
	batch := s.DB.NewWriteBatch()
	defer batch.Cancel()
	for word, entry := range entries {
		key, _ := wordEntryKey(word).MarshalBinary()
		value, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("can not marshal entry %q: %w", word, err)
		}
		if err := batch.Set(key, value); err != nil {
			return fmt.Errorf("can not put entry %q: %w", word, err)
		}
	}
	if err := batch.Flush(); err != nil {
		return fmt.Errorf("can not flush entries: %w", err)
	}
	return nil
}

// Words returns all stored words in key order
func (s *Storage) Words() ([]string, error) {
	var words []string
	err := s.DB.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte{byte(wordKey)}
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			var word wordEntryKey
			if err := word.UnmarshalBinary(it.Item().KeyCopy(nil)); err != nil {
				return err
			}
			words = append(words, string(word))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("can not list words: %w", err)
	}
	return words, nil
}

func (s *Storage) Close() error {
	return s.DB.Close()
}
