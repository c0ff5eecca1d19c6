package syncing

import (
	"context"

	"github.com/vfg2006/ads-dashboard-api/internal/domain"
)

// Estratégias de importação aceitas pelo armazenamento remoto
const (
	StrategyMerge   = "merge"
	StrategyReplace = "replace"
)

// Fetcher define a interface para obter métricas normalizadas da API de anúncios
type Fetcher interface {
	// GetAccountInsights obtém as métricas de nível de conta do período (KPIs do dashboard)
	GetAccountInsights(ctx context.Context, accountID string, rng domain.DateRange) ([]domain.InsightRecord, error)

	// GetAdInsights obtém as métricas de nível de anúncio do período (detalhamento por criativo)
	GetAdInsights(ctx context.Context, accountID string, rng domain.DateRange) ([]domain.InsightRecord, error)

	// EnrichCreatives anexa metadados de criativo aos registros de anúncio em memória
	EnrichCreatives(ctx context.Context, records []domain.InsightRecord) error

	// DetectRetentionLimit sonda (com memoização) o limite de retenção da API para a conta
	DetectRetentionLimit(ctx context.Context, accountID string) (*domain.RetentionLimit, error)
}

// InsightStore é a fronteira de persistência remota consumida pelo orquestrador
type InsightStore interface {
	ImportInsights(ctx context.Context, accountID string, records []domain.InsightRecord, strategy string) (*domain.ImportResult, error)
	SaveSyncStatus(ctx context.Context, status *domain.SyncStatus) error
	GetSyncStatus(ctx context.Context, accountID string) (*domain.SyncStatus, error)
	CoveredDates(ctx context.Context, accountID string) (map[string]bool, error)
}

// InsightCache é o cache local por conta consumido pelo orquestrador
type InsightCache interface {
	MergeAndSave(accountID string, records []domain.CachedRecord) error
	CoveredDates(accountID string) (map[string]bool, error)
	GetSyncStatus(accountID string) (*domain.SyncStatus, error)
	SaveSyncStatus(status *domain.SyncStatus) error
}
