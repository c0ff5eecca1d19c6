package cache

import (
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// ErrQuotaExceeded sinaliza que a escrita ultrapassaria a cota de armazenamento
// do backend; é o gatilho da escada de degradação do LocalCache
var ErrQuotaExceeded = errors.New("cota de armazenamento excedida")

// KeyValueStore é a capacidade de armazenamento consumida pelo LocalCache.
// Abstrair o backend permite rodar a mesma lógica de merge e degradação sobre
// um armazenamento em memória (testes) ou em disco (deployment de servidor)
type KeyValueStore interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
	Keys(prefix string) ([]string, error)
}

// MemoryStore é um KeyValueStore em memória com cota de bytes, usado em testes
// e como fallback quando não há diretório de cache configurado
type MemoryStore struct {
	mu       sync.Mutex
	data     map[string][]byte
	maxBytes int64
	used     int64
}

// NewMemoryStore cria um MemoryStore; maxBytes <= 0 desabilita a cota
func NewMemoryStore(maxBytes int64) *MemoryStore {
	return &MemoryStore{
		data:     make(map[string][]byte),
		maxBytes: maxBytes,
	}
}

func (s *MemoryStore) Get(key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}

	out := make([]byte, len(value))
	copy(out, value)
	return out, true, nil
}

func (s *MemoryStore) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	newUsed := s.used - int64(len(s.data[key])) + int64(len(value))
	if s.maxBytes > 0 && newUsed > s.maxBytes {
		return ErrQuotaExceeded
	}

	stored := make([]byte, len(value))
	copy(stored, value)

	s.used = newUsed
	s.data[key] = stored
	return nil
}

func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.used -= int64(len(s.data[key]))
	delete(s.data, key)
	return nil
}

func (s *MemoryStore) Keys(prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0)
	for key := range s.data {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}

	return keys, nil
}

// UsedBytes expõe o uso corrente para diagnóstico
func (s *MemoryStore) UsedBytes() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.used
}
