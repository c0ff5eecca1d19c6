package insighting

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/ads-dashboard-api/internal/cache"
	"github.com/vfg2006/ads-dashboard-api/internal/domain"
)

// stubInsightRepo registra os argumentos de paginação recebidos e devolve uma
// página fixa, para verificar o repasse do cursor ao banco
type stubInsightRepo struct {
	page      *domain.InsightPage
	gotCursor string
	gotLimit  int
	calls     int
}

func (s *stubInsightRepo) ImportInsights(context.Context, string, []domain.InsightRecord, string) (*domain.ImportResult, error) {
	return &domain.ImportResult{}, nil
}

func (s *stubInsightRepo) GetInsights(_ context.Context, _ string, _ domain.DateRange, cursor string, limit int) (*domain.InsightPage, error) {
	s.calls++
	s.gotCursor = cursor
	s.gotLimit = limit
	return s.page, nil
}

func (s *stubInsightRepo) GetInsightsStats(context.Context, string, domain.DateRange) (*domain.InsightStats, error) {
	return &domain.InsightStats{}, nil
}

func (s *stubInsightRepo) CoveredDates(context.Context, string) (map[string]bool, error) {
	return map[string]bool{}, nil
}

func (s *stubInsightRepo) ClearAccountData(context.Context, string) (int64, error) {
	return 0, nil
}

func (s *stubInsightRepo) SaveSyncStatus(context.Context, *domain.SyncStatus) error {
	return nil
}

func (s *stubInsightRepo) GetSyncStatus(context.Context, string) (*domain.SyncStatus, error) {
	return nil, nil
}

func cachedRecord(accountID, date string) domain.CachedRecord {
	return domain.CachedRecord{
		InsightRecord: domain.InsightRecord{
			DateStart: date,
			DateStop:  date,
			AccountID: accountID,
			Spend:     10,
		},
		SyncedAt: time.Now(),
	}
}

func TestService_GetInsightsPaginatesCacheWithCursor(t *testing.T) {
	localCache := cache.New(cache.NewMemoryStore(0), 0)

	dates := []string{"2026-05-01", "2026-05-02", "2026-05-03", "2026-05-04", "2026-05-05"}
	records := make([]domain.CachedRecord, 0, len(dates))
	for _, date := range dates {
		records = append(records, cachedRecord("act_1", date))
	}
	require.NoError(t, localCache.Save("act_1", records))

	repo := &stubInsightRepo{}
	service := NewService(repo, localCache)

	rng := domain.NewDateRange(
		time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 5, 5, 0, 0, 0, 0, time.UTC),
	)

	page, err := service.GetInsights(context.Background(), "act_1", rng, "", 2)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "2026-05-01", page.Items[0].DateStart)
	assert.Equal(t, "2026-05-02", page.Items[1].DateStart)
	assert.True(t, page.HasMore)
	assert.Equal(t, "2", page.NextCursor)

	page, err = service.GetInsights(context.Background(), "act_1", rng, page.NextCursor, 2)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "2026-05-03", page.Items[0].DateStart)
	assert.True(t, page.HasMore)
	assert.Equal(t, "4", page.NextCursor)

	page, err = service.GetInsights(context.Background(), "act_1", rng, page.NextCursor, 2)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "2026-05-05", page.Items[0].DateStart)
	assert.False(t, page.HasMore)
	assert.Empty(t, page.NextCursor)

	// O período inteiro está no cache, então o banco nunca deve ser consultado
	assert.Zero(t, repo.calls)
}

func TestService_GetInsightsCursorBeyondEndReturnsEmptyPage(t *testing.T) {
	localCache := cache.New(cache.NewMemoryStore(0), 0)
	require.NoError(t, localCache.Save("act_1", []domain.CachedRecord{
		cachedRecord("act_1", "2026-05-01"),
	}))

	service := NewService(&stubInsightRepo{}, localCache)

	rng := domain.NewDateRange(
		time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
	)

	page, err := service.GetInsights(context.Background(), "act_1", rng, "50", 10)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.False(t, page.HasMore)
	assert.Empty(t, page.NextCursor)
}

func TestService_GetInsightsFallsBackToRepositoryWhenCacheUncovered(t *testing.T) {
	localCache := cache.New(cache.NewMemoryStore(0), 0)

	expected := &domain.InsightPage{
		Items:      []*domain.InsightRecord{{DateStart: "2026-05-01", AccountID: "act_1"}},
		HasMore:    true,
		NextCursor: "25",
	}
	repo := &stubInsightRepo{page: expected}
	service := NewService(repo, localCache)

	rng := domain.NewDateRange(
		time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC),
	)

	page, err := service.GetInsights(context.Background(), "act_1", rng, "25", 25)
	require.NoError(t, err)
	assert.Equal(t, expected, page)
	assert.Equal(t, 1, repo.calls)
	assert.Equal(t, "25", repo.gotCursor)
	assert.Equal(t, 25, repo.gotLimit)
}
