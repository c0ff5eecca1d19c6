package insighting

import (
	"context"
	"sort"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ads-dashboard-api/infrastructure/repository"
	"github.com/vfg2006/ads-dashboard-api/internal/cache"
	"github.com/vfg2006/ads-dashboard-api/internal/domain"
	"github.com/vfg2006/ads-dashboard-api/pkg/utils"
)

// Insighter é a leitura de insights consumida pelos handlers do dashboard
type Insighter interface {
	GetInsights(ctx context.Context, accountID string, rng domain.DateRange, cursor string, limit int) (*domain.InsightPage, error)
	GetStats(ctx context.Context, accountID string, rng domain.DateRange) (*domain.InsightStats, error)
	GetSyncStatus(ctx context.Context, accountID string) (*domain.SyncStatus, error)
	GetChangeHistory(accountID string) ([]domain.ChangeHistoryEntry, error)
	ClearAccountData(ctx context.Context, accountID string) (int64, error)
}

// Service lê preferencialmente do cache local e cai para o banco quando o
// cache não cobre o período solicitado
type Service struct {
	insightRepo repository.InsightRepository
	cache       *cache.LocalCache
}

func NewService(insightRepo repository.InsightRepository, localCache *cache.LocalCache) Insighter {
	return &Service{
		insightRepo: insightRepo,
		cache:       localCache,
	}
}

// GetInsights lista os registros do período. O cache local só responde quando
// cobre o período inteiro; caso contrário a leitura vai ao banco
func (s *Service) GetInsights(ctx context.Context, accountID string, rng domain.DateRange, cursor string, limit int) (*domain.InsightPage, error) {
	missing, err := s.cache.FindMissingDateRanges(accountID, rng)
	if err == nil && len(missing) == 0 {
		records, err := s.cache.GetInsights(accountID)
		if err == nil {
			return filterAndPage(records, rng, cursor, limit), nil
		}

		logrus.WithError(err).WithField("account_id", accountID).
			Warn("Erro ao ler insights do cache local, caindo para o banco")
	}

	return s.insightRepo.GetInsights(ctx, accountID, rng, cursor, limit)
}

// GetStats agrega os KPIs de nível de conta do período
func (s *Service) GetStats(ctx context.Context, accountID string, rng domain.DateRange) (*domain.InsightStats, error) {
	return s.insightRepo.GetInsightsStats(ctx, accountID, rng)
}

// GetSyncStatus lê o status de sincronização, preferindo o cache local
func (s *Service) GetSyncStatus(ctx context.Context, accountID string) (*domain.SyncStatus, error) {
	if status, err := s.cache.GetSyncStatus(accountID); err == nil && status != nil {
		return status, nil
	}

	return s.insightRepo.GetSyncStatus(ctx, accountID)
}

// GetChangeHistory retorna o log de mutações do cache da conta
func (s *Service) GetChangeHistory(accountID string) ([]domain.ChangeHistoryEntry, error) {
	return s.cache.ChangeHistory(accountID)
}

// ClearAccountData remove os dados da conta do cache local e do banco
func (s *Service) ClearAccountData(ctx context.Context, accountID string) (int64, error) {
	if err := s.cache.Clear(accountID); err != nil {
		logrus.WithError(err).WithField("account_id", accountID).
			Warn("Erro ao limpar cache local da conta")
	}

	return s.insightRepo.ClearAccountData(ctx, accountID)
}

// filterAndPage recorta o período no cache e devolve a mesma forma paginada da
// leitura do banco, com ordenação estável para o cursor permanecer válido
func filterAndPage(records []domain.CachedRecord, rng domain.DateRange, cursor string, limit int) *domain.InsightPage {
	if limit <= 0 {
		limit = 100
	}

	offset := utils.ParseIntOrZero(cursor)

	start := rng.Start.Format(utils.DateLayout)
	end := rng.End.Format(utils.DateLayout)

	filtered := make([]*domain.InsightRecord, 0, len(records))
	for i := range records {
		if records[i].DateStart >= start && records[i].DateStart <= end {
			record := records[i].InsightRecord
			filtered = append(filtered, &record)
		}
	}

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].Key() < filtered[j].Key()
	})

	page := &domain.InsightPage{Items: []*domain.InsightRecord{}}
	if offset >= len(filtered) {
		return page
	}

	endIdx := offset + limit
	if endIdx < len(filtered) {
		page.HasMore = true
		page.NextCursor = strconv.Itoa(endIdx)
	} else {
		endIdx = len(filtered)
	}

	page.Items = filtered[offset:endIdx]

	return page
}
