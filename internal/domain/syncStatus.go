package domain

import "time"

// SyncMode identifica o tipo de sincronização executada
type SyncMode string

const (
	SyncModeFull        SyncMode = "full"
	SyncModeIncremental SyncMode = "incremental"
	SyncModeInitial     SyncMode = "initial"
)

// SyncState representa o estado corrente de uma execução de sincronização
type SyncState string

const (
	SyncStateIdle            SyncState = "idle"
	SyncStateProbing         SyncState = "probing"
	SyncStatePlanning        SyncState = "planning"
	SyncStateFetching        SyncState = "fetching"
	SyncStateFlushing        SyncState = "flushing"
	SyncStateCompleted       SyncState = "completed"
	SyncStatePartiallyFailed SyncState = "partially_failed"
)

// SyncStatus é o registro por conta mantido após cada sincronização bem-sucedida
type SyncStatus struct {
	AccountID           string     `json:"account_id"`
	LastFullSync        *time.Time `json:"last_full_sync,omitempty"`
	LastIncrementalSync *time.Time `json:"last_incremental_sync,omitempty"`
	TotalRecords        int        `json:"total_records"`
	EarliestDate        string     `json:"earliest_date,omitempty"`
	LatestDate          string     `json:"latest_date,omitempty"`
}

// ChangeHistoryEntry é uma entrada do log de auditoria de mutações do cache,
// limitado às N entradas mais recentes; usado apenas para diagnóstico de operação
type ChangeHistoryEntry struct {
	ID          string    `json:"id"`
	Operation   string    `json:"operation"` // save | clear | merge
	CountBefore int       `json:"count_before"`
	CountAfter  int       `json:"count_after"`
	Source      string    `json:"source,omitempty"`
	At          time.Time `json:"at"`
}

// RetentionLimit é o resultado da sondagem do limite de retenção da API
type RetentionLimit struct {
	MaxMonths  int       `json:"max_months"`
	OldestDate time.Time `json:"oldest_date"`
}

// SyncReport é o resultado devolvido ao chamador ao final de uma execução
type SyncReport struct {
	AccountID       string    `json:"account_id"`
	Mode            SyncMode  `json:"mode"`
	State           SyncState `json:"state"`
	ChunksPlanned   int       `json:"chunks_planned"`
	ChunksFetched   int       `json:"chunks_fetched"`
	ChunksSkipped   int       `json:"chunks_skipped"`
	RecordsImported int       `json:"records_imported"`
	RecordsUpdated  int       `json:"records_updated"`
	EarliestDate    string    `json:"earliest_date,omitempty"`
	LatestDate      string    `json:"latest_date,omitempty"`
	StartedAt       time.Time `json:"started_at"`
	CompletedAt     time.Time `json:"completed_at"`
	Error           string    `json:"error,omitempty"`
}
