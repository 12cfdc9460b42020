// Package dataset persists sampled query/candidate sets in BadgerDB so a
// benchmark can be rerun against exactly the same embeddings.
//
// Layout (all keys under "ds/<name>/"):
//
//	ds/<name>/meta          JSON Meta
//	ds/<name>/query         one raw embedding record
//	ds/<name>/c/<chunk>     up to ChunkSize raw candidate records
//
// Records are the in-memory bytes of embedding.Embedding (native-endian
// float32), written straight from embedding.AsBytes. Chunk indexes are
// big-endian so a prefix scan returns candidates in order.
package dataset

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/orneryd/embeddist/pkg/embedding"
)

// ChunkSize is the number of candidates stored per key. 256 records is
// 1.5 MiB, well under badger's per-transaction limits.
const ChunkSize = 256

var (
	// ErrNotFound is returned when a dataset does not exist.
	ErrNotFound = errors.New("dataset: not found")
	// ErrInvalidName is returned for empty names or names containing '/'.
	ErrInvalidName = errors.New("dataset: invalid name")
	// ErrCorrupt is returned when stored records do not match the metadata.
	ErrCorrupt = errors.New("dataset: corrupt")
)

// Data is one query and its candidate collection.
type Data struct {
	Query      embedding.Embedding
	Candidates []embedding.Embedding
}

// Meta describes a stored dataset.
type Meta struct {
	Name       string    `json:"name"`
	Count      int       `json:"count"`
	Dimensions int       `json:"dimensions"`
	Seed       int64     `json:"seed"`
	CreatedAt  time.Time `json:"created_at"`
}

// Options configures Open.
type Options struct {
	// DataDir is the badger directory. Ignored when InMemory is set.
	DataDir string
	// InMemory keeps everything in RAM; data is lost on Close.
	InMemory bool
}

// Store is a badger-backed dataset store. Safe for concurrent use.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) a dataset store.
func Open(opts Options) (*Store, error) {
	badgerOpts := badger.DefaultOptions(opts.DataDir)
	if opts.InMemory {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	}
	// Quiet logger
	badgerOpts = badgerOpts.WithLogger(nil)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores data under name, replacing any dataset with the same name.
func (s *Store) Save(name string, seed int64, data *Data) error {
	if err := validateName(name); err != nil {
		return err
	}
	if err := s.Delete(name); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	meta := Meta{
		Name:       name,
		Count:      len(data.Candidates),
		Dimensions: embedding.Dimensions,
		Seed:       seed,
		CreatedAt:  time.Now().UTC(),
	}
	metaBytes, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to encode meta: %w", err)
	}

	query := []embedding.Embedding{data.Query}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(queryKey(name), embedding.AsBytes(query))
	}); err != nil {
		return fmt.Errorf("failed to write query: %w", err)
	}

	// One transaction per chunk keeps each commit well below badger's batch
	// size limit.
	for start, chunk := 0, uint32(0); start < len(data.Candidates); start, chunk = start+ChunkSize, chunk+1 {
		end := min(start+ChunkSize, len(data.Candidates))
		err := s.db.Update(func(txn *badger.Txn) error {
			return txn.Set(chunkKey(name, chunk), embedding.AsBytes(data.Candidates[start:end]))
		})
		if err != nil {
			return fmt.Errorf("failed to write chunk %d: %w", chunk, err)
		}
	}

	// Meta goes last: a dataset without meta is treated as absent.
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(metaKey(name), metaBytes)
	}); err != nil {
		return fmt.Errorf("failed to write meta: %w", err)
	}
	return nil
}

// Meta returns the metadata of a stored dataset.
func (s *Store) Meta(name string) (*Meta, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	var meta Meta
	err := s.db.View(func(txn *badger.Txn) error {
		return readMeta(txn, name, &meta)
	})
	if err != nil {
		return nil, err
	}
	return &meta, nil
}

// Load reads a stored dataset back into one contiguous candidate slice.
func (s *Store) Load(name string) (*Data, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	var data Data
	err := s.db.View(func(txn *badger.Txn) error {
		var meta Meta
		if err := readMeta(txn, name, &meta); err != nil {
			return err
		}
		if meta.Dimensions != embedding.Dimensions {
			return fmt.Errorf("%w: %q has %d dimensions, want %d", ErrCorrupt, name, meta.Dimensions, embedding.Dimensions)
		}

		item, err := txn.Get(queryKey(name))
		if err != nil {
			return fmt.Errorf("%w: %q query: %v", ErrCorrupt, name, err)
		}
		if err := item.Value(func(val []byte) error {
			q, err := embedding.FromBytes(val)
			if err != nil {
				return err
			}
			if len(q) != 1 {
				return fmt.Errorf("%w: %q query holds %d records", ErrCorrupt, name, len(q))
			}
			data.Query = q[0]
			return nil
		}); err != nil {
			return err
		}

		data.Candidates = make([]embedding.Embedding, 0, meta.Count)
		prefix := chunkPrefix(name)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				chunk, err := embedding.FromBytes(val)
				if err != nil {
					return err
				}
				data.Candidates = append(data.Candidates, chunk...)
				return nil
			})
			if err != nil {
				return fmt.Errorf("%w: %q chunk: %v", ErrCorrupt, name, err)
			}
		}
		if len(data.Candidates) != meta.Count {
			return fmt.Errorf("%w: %q has %d candidates, meta says %d", ErrCorrupt, name, len(data.Candidates), meta.Count)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &data, nil
}

// List returns the names of all stored datasets in key order.
func (s *Store) List() ([]string, error) {
	var names []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(keyRoot)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			key := string(it.Item().Key())
			if name, ok := strings.CutSuffix(strings.TrimPrefix(key, keyRoot), "/meta"); ok && !strings.Contains(name, "/") {
				names = append(names, name)
			}
		}
		return nil
	})
	return names, err
}

// Delete removes a dataset. Returns ErrNotFound if it does not exist.
func (s *Store) Delete(name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	if _, err := s.Meta(name); err != nil {
		return err
	}

	var keys [][]byte
	prefix := datasetPrefix(name)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to scan dataset %q: %w", name, err)
	}

	// Meta first, so a partial delete leaves the dataset absent rather than
	// short.
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(metaKey(name))
	}); err != nil {
		return fmt.Errorf("failed to delete dataset %q: %w", name, err)
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		for _, k := range keys {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return fmt.Errorf("failed to delete dataset %q: %w", name, err)
	}
	return nil
}

func readMeta(txn *badger.Txn, name string, meta *Meta) error {
	item, err := txn.Get(metaKey(name))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		if err := json.Unmarshal(val, meta); err != nil {
			return fmt.Errorf("%w: %q meta: %v", ErrCorrupt, name, err)
		}
		return nil
	})
}

const keyRoot = "ds/"

func validateName(name string) error {
	if name == "" || strings.Contains(name, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func datasetPrefix(name string) []byte { return []byte(keyRoot + name + "/") }
func metaKey(name string) []byte       { return []byte(keyRoot + name + "/meta") }
func queryKey(name string) []byte      { return []byte(keyRoot + name + "/query") }
func chunkPrefix(name string) []byte   { return []byte(keyRoot + name + "/c/") }

func chunkKey(name string, chunk uint32) []byte {
	return binary.BigEndian.AppendUint32(chunkPrefix(name), chunk)
}
