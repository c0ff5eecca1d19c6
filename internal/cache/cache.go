package cache

import (
	"sort"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ads-dashboard-api/internal/domain"
	"github.com/vfg2006/ads-dashboard-api/pkg/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrStorageExhausted é o erro fatal da camada de cache: todos os degraus da
// escada de degradação falharam e não há como persistir sem perder dados
var ErrStorageExhausted = errors.New("armazenamento local esgotado")

// Prefixos de chave do cache: um blob comprimido de registros por conta, um
// blob JSON de status por conta e um array JSON limitado de histórico por conta
const (
	insightsKeyPrefix = "insights:"
	statusKeyPrefix   = "status:"
	historyKeyPrefix  = "history:"
)

// Degraus da escada de degradação por cota
const (
	trimKeepRatio        = 0.7 // degrau 2: mantém os 70% mais recentes por data
	trimLargeSetMin      = 50  // degrau 2 só se aplica a conjuntos grandes
	trimRecentWindowDays = 90  // degrau 3: mantém apenas os últimos 90 dias
)

const defaultHistoryLimit = 50

// LocalCache é o armazenamento local por conta de registros normalizados,
// status de sincronização e histórico de mutações. É o dono do algoritmo de
// merge/dedup e da degradação graciosa quando a cota do backend se esgota
type LocalCache struct {
	store        KeyValueStore
	historyLimit int
	mu           sync.Mutex
}

func New(store KeyValueStore, historyLimit int) *LocalCache {
	if historyLimit <= 0 {
		historyLimit = defaultHistoryLimit
	}

	return &LocalCache{
		store:        store,
		historyLimit: historyLimit,
	}
}

// GetInsights retorna os registros em cache da conta; cache vazio retorna
// uma lista vazia, nunca erro
func (c *LocalCache) GetInsights(accountID string) ([]domain.CachedRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.loadRecords(accountID)
}

// Save substitui o conjunto de registros da conta, registrando antes uma
// entrada de histórico e comprimindo o blob antes da escrita
func (c *LocalCache) Save(accountID string, records []domain.CachedRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.saveRecords(accountID, records, "save")
}

// MergeAndSave mescla os registros recebidos com os existentes e persiste o
// resultado com uma entrada de histórico de operação merge
func (c *LocalCache) MergeAndSave(accountID string, incoming []domain.CachedRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	existing, err := c.loadRecords(accountID)
	if err != nil {
		return err
	}

	merged := Merge(existing, incoming)
	return c.saveRecords(accountID, merged, "merge")
}

// Merge deduplica pela chave de identidade (dateStart, campaignId|"account",
// adId|""). Registros recebidos sobrescrevem os existentes de mesma chave,
// exceto os metadados de criativo: quando o recebido não os traz e o existente
// sim, os do existente são preservados (o enriquecimento de criativo pode
// chegar em um passe posterior ao das métricas). A operação é idempotente
func Merge(existing, incoming []domain.CachedRecord) []domain.CachedRecord {
	byKey := make(map[string]domain.CachedRecord, len(existing)+len(incoming))

	for _, record := range existing {
		byKey[record.Key()] = record
	}

	for _, record := range incoming {
		key := record.Key()
		if current, ok := byKey[key]; ok && record.Creative == nil && current.Creative != nil {
			record.Creative = current.Creative
		}
		byKey[key] = record
	}

	merged := make([]domain.CachedRecord, 0, len(byKey))
	for _, record := range byKey {
		merged = append(merged, record)
	}

	// Ordenação estável por chave para que merges repetidos produzam o mesmo blob
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Key() < merged[j].Key()
	})

	return merged
}

// saveRecords persiste o conjunto aplicando, em caso de cota excedida, a escada
// de degradação na ordem fixa: dados de outras contas, 70% mais recentes,
// janela de 90 dias, e por fim o erro fatal de armazenamento esgotado.
// A escada privilegia disponibilidade (manter algo utilizável) sobre completude
func (c *LocalCache) saveRecords(accountID string, records []domain.CachedRecord, operation string) error {
	before, err := c.loadRecords(accountID)
	if err != nil {
		return err
	}

	c.appendHistory(accountID, operation, len(before), len(records))

	if err := c.writeRecords(accountID, records); err == nil {
		return nil
	} else if !errors.Is(err, ErrQuotaExceeded) {
		return err
	}

	// Degrau 1: remover dados em cache de outras contas
	logrus.WithField("account_id", accountID).
		Warn("Cota do cache excedida, removendo dados de outras contas")

	if err := c.dropOtherAccounts(accountID); err != nil {
		return err
	}
	if err := c.writeRecords(accountID, records); err == nil {
		return nil
	} else if !errors.Is(err, ErrQuotaExceeded) {
		return err
	}

	// Degrau 2: para conjuntos grandes, manter apenas os 70% mais recentes por data
	if len(records) > trimLargeSetMin {
		trimmed := trimNewestRatio(records, trimKeepRatio)

		logrus.WithFields(logrus.Fields{
			"account_id": accountID,
			"from":       len(records),
			"to":         len(trimmed),
		}).Warn("Cota do cache ainda excedida, mantendo apenas os registros mais recentes")

		if err := c.writeRecords(accountID, trimmed); err == nil {
			return nil
		} else if !errors.Is(err, ErrQuotaExceeded) {
			return err
		}
		records = trimmed
	}

	// Degrau 3: manter apenas a janela recente de 90 dias
	windowed := trimToRecentWindow(records, trimRecentWindowDays)

	logrus.WithFields(logrus.Fields{
		"account_id": accountID,
		"from":       len(records),
		"to":         len(windowed),
		"window":     trimRecentWindowDays,
	}).Warn("Cota do cache ainda excedida, mantendo apenas a janela recente")

	if err := c.writeRecords(accountID, windowed); err == nil {
		return nil
	} else if !errors.Is(err, ErrQuotaExceeded) {
		return err
	}

	logrus.WithField("account_id", accountID).
		Error("Todos os degraus de degradação falharam, armazenamento esgotado")

	return errors.Wrapf(ErrStorageExhausted, "conta %s", accountID)
}

// GetSyncStatus retorna o status de sincronização da conta, ou nil se ausente
func (c *LocalCache) GetSyncStatus(accountID string) (*domain.SyncStatus, error) {
	blob, ok, err := c.store.Get(statusKeyPrefix + accountID)
	if err != nil || !ok {
		return nil, err
	}

	status := &domain.SyncStatus{}
	if err := json.Unmarshal(blob, status); err != nil {
		return nil, errors.Wrap(err, "erro ao decodificar status de sincronização do cache")
	}

	return status, nil
}

// SaveSyncStatus persiste o status de sincronização da conta
func (c *LocalCache) SaveSyncStatus(status *domain.SyncStatus) error {
	blob, err := json.Marshal(status)
	if err != nil {
		return errors.Wrap(err, "erro ao codificar status de sincronização")
	}

	return c.store.Set(statusKeyPrefix+status.AccountID, blob)
}

// Clear remove registros e status da conta, registrando a operação no histórico
func (c *LocalCache) Clear(accountID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	before, err := c.loadRecords(accountID)
	if err != nil {
		return err
	}

	if err := c.store.Delete(insightsKeyPrefix + accountID); err != nil {
		return err
	}
	if err := c.store.Delete(statusKeyPrefix + accountID); err != nil {
		return err
	}

	c.appendHistory(accountID, "clear", len(before), 0)

	logrus.WithFields(logrus.Fields{
		"account_id":     accountID,
		"records_before": len(before),
	}).Info("Cache da conta limpo")

	return nil
}

// ChangeHistory retorna o log limitado de mutações do cache da conta
func (c *LocalCache) ChangeHistory(accountID string) ([]domain.ChangeHistoryEntry, error) {
	blob, ok, err := c.store.Get(historyKeyPrefix + accountID)
	if err != nil || !ok {
		return nil, err
	}

	entries := make([]domain.ChangeHistoryEntry, 0)
	if err := json.Unmarshal(blob, &entries); err != nil {
		return nil, errors.Wrap(err, "erro ao decodificar histórico do cache")
	}

	return entries, nil
}

// CoveredDates retorna o conjunto de datas evidenciadas no cache da conta,
// usado pela heurística de cobertura do planejador
func (c *LocalCache) CoveredDates(accountID string) (map[string]bool, error) {
	records, err := c.GetInsights(accountID)
	if err != nil {
		return nil, err
	}

	covered := make(map[string]bool, len(records))
	for _, record := range records {
		covered[record.DateStart] = true
	}

	return covered, nil
}

// FindMissingDateRanges delega à aproximação por amostragem do domínio
func (c *LocalCache) FindMissingDateRanges(accountID string, rng domain.DateRange) ([]domain.DateRange, error) {
	covered, err := c.CoveredDates(accountID)
	if err != nil {
		return nil, err
	}

	return domain.MissingDateRanges(covered, rng), nil
}

func (c *LocalCache) loadRecords(accountID string) ([]domain.CachedRecord, error) {
	blob, ok, err := c.store.Get(insightsKeyPrefix + accountID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []domain.CachedRecord{}, nil
	}

	data, err := Decompress(blob)
	if err != nil {
		return nil, err
	}

	records := make([]domain.CachedRecord, 0)
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.Wrap(err, "erro ao decodificar registros do cache")
	}

	return records, nil
}

func (c *LocalCache) writeRecords(accountID string, records []domain.CachedRecord) error {
	data, err := json.Marshal(records)
	if err != nil {
		return errors.Wrap(err, "erro ao codificar registros do cache")
	}

	blob, err := Compress(data)
	if err != nil {
		return err
	}

	return c.store.Set(insightsKeyPrefix+accountID, blob)
}

func (c *LocalCache) dropOtherAccounts(accountID string) error {
	keys, err := c.store.Keys(insightsKeyPrefix)
	if err != nil {
		return err
	}

	own := insightsKeyPrefix + accountID
	for _, key := range keys {
		if key == own {
			continue
		}
		if err := c.store.Delete(key); err != nil {
			return err
		}

		logrus.WithField("key", key).Warn("Registro de outra conta removido por pressão de cota")
	}

	return nil
}

// appendHistory registra a mutação no log limitado. Falhas aqui são apenas
// logadas: o histórico é diagnóstico, nunca correção
func (c *LocalCache) appendHistory(accountID, operation string, before, after int) {
	entries, err := c.ChangeHistory(accountID)
	if err != nil {
		logrus.WithError(err).Warn("Erro ao carregar histórico do cache, recomeçando vazio")
		entries = nil
	}

	id, err := utils.GenerateID()
	if err != nil {
		id = ""
	}

	entries = append(entries, domain.ChangeHistoryEntry{
		ID:          id,
		Operation:   operation,
		CountBefore: before,
		CountAfter:  after,
		Source:      "sync-engine",
		At:          time.Now(),
	})

	if len(entries) > c.historyLimit {
		entries = entries[len(entries)-c.historyLimit:]
	}

	blob, err := json.Marshal(entries)
	if err != nil {
		logrus.WithError(err).Warn("Erro ao codificar histórico do cache")
		return
	}

	if err := c.store.Set(historyKeyPrefix+accountID, blob); err != nil {
		logrus.WithError(err).Warn("Erro ao persistir histórico do cache")
	}
}

// trimNewestRatio mantém a fração mais recente do conjunto, ordenando por data
func trimNewestRatio(records []domain.CachedRecord, ratio float64) []domain.CachedRecord {
	sorted := make([]domain.CachedRecord, len(records))
	copy(sorted, records)

	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].DateStart > sorted[j].DateStart
	})

	keep := int(float64(len(sorted)) * ratio)
	if keep < 1 {
		keep = 1
	}

	return sorted[:keep]
}

// trimToRecentWindow mantém apenas registros dentro da janela recente de dias
func trimToRecentWindow(records []domain.CachedRecord, days int) []domain.CachedRecord {
	cutoff := time.Now().AddDate(0, 0, -days).Format(time.DateOnly)

	windowed := make([]domain.CachedRecord, 0, len(records))
	for _, record := range records {
		if record.DateStart >= cutoff {
			windowed = append(windowed, record)
		}
	}

	return windowed
}
