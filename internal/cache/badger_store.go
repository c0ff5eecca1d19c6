package cache

import (
	"sync"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// BadgerStore é o KeyValueStore em disco usado em deployments de servidor.
// A cota de bytes é imposta aqui, sobre o tamanho lógico dos valores, para que
// a escada de degradação do LocalCache funcione igual à de um armazenamento
// local de navegador
type BadgerStore struct {
	db       *badger.DB
	maxBytes int64

	mu    sync.Mutex
	sizes map[string]int64
	used  int64
}

// NewBadgerStore abre (ou cria) o banco no diretório informado e reconstrói a
// contabilidade de uso a partir das chaves existentes
func NewBadgerStore(dir string, maxBytes int64) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao abrir o armazenamento local")
	}

	store := &BadgerStore{
		db:       db,
		maxBytes: maxBytes,
		sizes:    make(map[string]int64),
	}

	if err := store.loadSizes(); err != nil {
		_ = db.Close()
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"dir":        dir,
		"used_bytes": store.used,
		"max_bytes":  maxBytes,
	}).Info("Armazenamento local de cache aberto")

	return store, nil
}

func (s *BadgerStore) loadSizes() error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := string(item.KeyCopy(nil))
			size := item.ValueSize()
			s.sizes[key] = size
			s.used += size
		}

		return nil
	})
}

func (s *BadgerStore) Get(key string) ([]byte, bool, error) {
	var value []byte

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, false, nil
		}
		return nil, false, errors.Wrap(err, "erro ao ler do armazenamento local")
	}

	return value, true, nil
}

func (s *BadgerStore) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	newUsed := s.used - s.sizes[key] + int64(len(value))
	if s.maxBytes > 0 && newUsed > s.maxBytes {
		return ErrQuotaExceeded
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return errors.Wrap(err, "erro ao escrever no armazenamento local")
	}

	s.used = newUsed
	s.sizes[key] = int64(len(value))
	return nil
}

func (s *BadgerStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return errors.Wrap(err, "erro ao remover do armazenamento local")
	}

	s.used -= s.sizes[key]
	delete(s.sizes, key)
	return nil
}

func (s *BadgerStore) Keys(prefix string) ([]string, error) {
	keys := make([]string, 0)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "erro ao listar chaves do armazenamento local")
	}

	return keys, nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
