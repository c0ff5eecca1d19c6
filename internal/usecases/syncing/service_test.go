package syncing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metadomain "github.com/vfg2006/ads-dashboard-api/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/ads-dashboard-api/internal/config"
	"github.com/vfg2006/ads-dashboard-api/internal/domain"
	"github.com/vfg2006/ads-dashboard-api/internal/usecases/syncing/mocks"
	"github.com/vfg2006/ads-dashboard-api/pkg/utils"
	"go.uber.org/mock/gomock"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Sync.FlushEveryChunks = 10
	cfg.Sync.InterChunkDelayMS = 0
	cfg.Sync.SkipCreativeEnrichment = true
	cfg.Sync.MaxLookbackMonths = 0
	cfg.Sync.InitialWindowDays = 30
	return cfg
}

func accountRecord(date string) domain.InsightRecord {
	return domain.InsightRecord{
		DateStart:   date,
		DateStop:    date,
		Impressions: 100,
		Clicks:      10,
		Spend:       25.5,
	}
}

// Execução full com um chunk intermediário falhando por erro de servidor:
// os demais chunks são processados, o chunk com falha é contabilizado como
// pulado e lastFullSync é marcado mesmo assim
func TestService_Run_FullSyncWithFailingChunk(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockFetcher := mocks.NewMockFetcher(ctrl)
	mockStore := mocks.NewMockInsightStore(ctrl)
	mockCache := mocks.NewMockInsightCache(ctrl)

	accountID := "act_123"
	today := utils.TruncateToDay(time.Now())
	oldest := today.AddDate(0, -13, 0)

	chunks := domain.NewDateRange(oldest, today).MonthChunks()
	require.Greater(t, len(chunks), 10)

	failingIdx := 6

	mockCache.EXPECT().GetSyncStatus(accountID).Return(nil, nil)
	mockStore.EXPECT().GetSyncStatus(gomock.Any(), accountID).Return(nil, nil)

	mockFetcher.EXPECT().
		DetectRetentionLimit(gomock.Any(), accountID).
		Return(&domain.RetentionLimit{MaxMonths: 13, OldestDate: oldest}, nil)

	for i, chunk := range chunks {
		if i == failingIdx {
			mockFetcher.EXPECT().
				GetAccountInsights(gomock.Any(), accountID, chunk).
				Return(nil, &metadomain.APIError{Kind: metadomain.ServerError, StatusCode: 500})
			continue
		}

		date := chunk.Start.Format(utils.DateLayout)
		mockFetcher.EXPECT().
			GetAccountInsights(gomock.Any(), accountID, chunk).
			Return([]domain.InsightRecord{accountRecord(date)}, nil)
		mockFetcher.EXPECT().
			GetAdInsights(gomock.Any(), accountID, chunk).
			Return([]domain.InsightRecord{}, nil)
	}

	imported := 0
	mockStore.EXPECT().
		ImportInsights(gomock.Any(), accountID, gomock.Any(), StrategyMerge).
		DoAndReturn(func(_ context.Context, _ string, records []domain.InsightRecord, _ string) (*domain.ImportResult, error) {
			imported += len(records)
			return &domain.ImportResult{Imported: len(records)}, nil
		}).
		AnyTimes()

	mockCache.EXPECT().MergeAndSave(accountID, gomock.Any()).Return(nil).AnyTimes()

	var savedStatus *domain.SyncStatus
	mockStore.EXPECT().
		SaveSyncStatus(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, status *domain.SyncStatus) error {
			savedStatus = status
			return nil
		})
	mockCache.EXPECT().SaveSyncStatus(gomock.Any()).Return(nil)

	service := NewService(testConfig(), mockFetcher, mockStore, mockCache)

	report, err := service.Run(context.Background(), accountID, domain.SyncModeFull)
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Equal(t, domain.SyncStateCompleted, report.State)
	assert.Equal(t, len(chunks), report.ChunksPlanned)
	assert.Equal(t, len(chunks)-1, report.ChunksFetched)
	assert.Equal(t, 1, report.ChunksSkipped)
	assert.Equal(t, len(chunks)-1, imported)

	// O chunk falho não é o primeiro, então a data mais antiga vem do chunk mais antigo
	assert.Equal(t, chunks[0].Start.Format(utils.DateLayout), report.EarliestDate)

	require.NotNil(t, savedStatus)
	assert.NotNil(t, savedStatus.LastFullSync)
	assert.Nil(t, savedStatus.LastIncrementalSync)
	assert.Equal(t, len(chunks)-1, savedStatus.TotalRecords)
}

// Chunk fora da janela de retenção (DATE_LIMIT) conta como pulado sem
// interromper a execução
func TestService_Run_DateLimitChunkIsSkipped(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockFetcher := mocks.NewMockFetcher(ctrl)
	mockStore := mocks.NewMockInsightStore(ctrl)
	mockCache := mocks.NewMockInsightCache(ctrl)

	accountID := "act_456"
	today := utils.TruncateToDay(time.Now())
	oldest := today.AddDate(0, -2, 0)

	chunks := domain.NewDateRange(oldest, today).MonthChunks()

	mockCache.EXPECT().GetSyncStatus(accountID).Return(nil, nil)
	mockStore.EXPECT().GetSyncStatus(gomock.Any(), accountID).Return(nil, nil)
	mockFetcher.EXPECT().
		DetectRetentionLimit(gomock.Any(), accountID).
		Return(&domain.RetentionLimit{MaxMonths: 2, OldestDate: oldest}, nil)

	for i, chunk := range chunks {
		if i == 0 {
			mockFetcher.EXPECT().
				GetAccountInsights(gomock.Any(), accountID, chunk).
				Return(nil, &metadomain.APIError{
					Kind:       metadomain.APIErrorKind,
					StatusCode: 400,
					Code:       metadomain.DateLimitCode,
				})
			continue
		}

		date := chunk.Start.Format(utils.DateLayout)
		mockFetcher.EXPECT().
			GetAccountInsights(gomock.Any(), accountID, chunk).
			Return([]domain.InsightRecord{accountRecord(date)}, nil)
		mockFetcher.EXPECT().
			GetAdInsights(gomock.Any(), accountID, chunk).
			Return([]domain.InsightRecord{}, nil)
	}

	mockStore.EXPECT().
		ImportInsights(gomock.Any(), accountID, gomock.Any(), StrategyMerge).
		Return(&domain.ImportResult{}, nil).
		AnyTimes()
	mockCache.EXPECT().MergeAndSave(accountID, gomock.Any()).Return(nil).AnyTimes()
	mockStore.EXPECT().SaveSyncStatus(gomock.Any(), gomock.Any()).Return(nil)
	mockCache.EXPECT().SaveSyncStatus(gomock.Any()).Return(nil)

	service := NewService(testConfig(), mockFetcher, mockStore, mockCache)

	report, err := service.Run(context.Background(), accountID, domain.SyncModeFull)
	require.NoError(t, err)

	assert.Equal(t, domain.SyncStateCompleted, report.State)
	assert.Equal(t, 1, report.ChunksSkipped)
	assert.Equal(t, len(chunks)-1, report.ChunksFetched)

	// A data mais antiga observada vem do primeiro chunk bem-sucedido
	assert.Equal(t, chunks[1].Start.Format(utils.DateLayout), report.EarliestDate)
}

// Plano incremental vazio encerra sem emitir nenhuma chamada à API
func TestService_Run_EmptyIncrementalPlanShortCircuits(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockFetcher := mocks.NewMockFetcher(ctrl)
	mockStore := mocks.NewMockInsightStore(ctrl)
	mockCache := mocks.NewMockInsightCache(ctrl)

	accountID := "act_789"
	today := utils.TruncateToDay(time.Now())

	status := &domain.SyncStatus{
		AccountID:  accountID,
		LatestDate: today.Format(utils.DateLayout),
	}

	// Cobertura completa do período solicitado: toda data amostrada está presente
	covered := map[string]bool{}
	for d := today.AddDate(0, 0, -40); !d.After(today); d = d.AddDate(0, 0, 1) {
		covered[d.Format(utils.DateLayout)] = true
	}

	mockCache.EXPECT().GetSyncStatus(accountID).Return(status, nil)
	mockCache.EXPECT().CoveredDates(accountID).Return(covered, nil)

	service := NewService(testConfig(), mockFetcher, mockStore, mockCache)

	report, err := service.Run(context.Background(), accountID, domain.SyncModeIncremental)
	require.NoError(t, err)

	assert.Equal(t, domain.SyncStateCompleted, report.State)
	assert.Equal(t, 0, report.ChunksPlanned)
	assert.Equal(t, 0, report.ChunksFetched)
}

// Cancelamento no meio da execução: o acumulador é descarregado antes de sair
// e a importação remota recebe um contexto ainda utilizável
func TestService_Run_CancellationFlushesAccumulator(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockFetcher := mocks.NewMockFetcher(ctrl)
	mockStore := mocks.NewMockInsightStore(ctrl)
	mockCache := mocks.NewMockInsightCache(ctrl)

	accountID := "act_cancel"
	today := utils.TruncateToDay(time.Now())

	cfg := testConfig()
	cfg.Sync.MaxLookbackMonths = 2 // janela fixa: sem sondagem

	chunks := domain.NewDateRange(today.AddDate(0, -2, 0), today).MonthChunks()
	require.Greater(t, len(chunks), 1)

	ctx, cancel := context.WithCancel(context.Background())

	mockCache.EXPECT().GetSyncStatus(accountID).Return(nil, nil)
	mockStore.EXPECT().GetSyncStatus(gomock.Any(), accountID).Return(nil, nil)

	// O primeiro chunk é buscado e o contexto é cancelado em seguida
	first := chunks[0]
	mockFetcher.EXPECT().
		GetAccountInsights(gomock.Any(), accountID, first).
		DoAndReturn(func(context.Context, string, domain.DateRange) ([]domain.InsightRecord, error) {
			cancel()
			return []domain.InsightRecord{accountRecord(first.Start.Format(utils.DateLayout))}, nil
		})
	mockFetcher.EXPECT().
		GetAdInsights(gomock.Any(), accountID, first).
		Return([]domain.InsightRecord{}, nil)

	mockStore.EXPECT().
		ImportInsights(gomock.Any(), accountID, gomock.Any(), StrategyMerge).
		DoAndReturn(func(flushCtx context.Context, _ string, records []domain.InsightRecord, _ string) (*domain.ImportResult, error) {
			assert.NoError(t, flushCtx.Err(), "o descarregamento final não deve ver o contexto cancelado")
			assert.Len(t, records, 1)
			return &domain.ImportResult{Imported: len(records)}, nil
		})
	mockCache.EXPECT().MergeAndSave(accountID, gomock.Any()).Return(nil)

	service := NewService(cfg, mockFetcher, mockStore, mockCache)

	report, err := service.Run(ctx, accountID, domain.SyncModeFull)
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)

	assert.Equal(t, domain.SyncStatePartiallyFailed, report.State)
	assert.Equal(t, 1, report.ChunksFetched)
	assert.Equal(t, 1, report.RecordsImported)
}

// Cache local vazio com banco quente: a cobertura do armazenamento remoto
// alimenta o plano incremental e evita re-buscar o histórico
func TestService_Run_IncrementalFallsBackToStoreCoverage(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockFetcher := mocks.NewMockFetcher(ctrl)
	mockStore := mocks.NewMockInsightStore(ctrl)
	mockCache := mocks.NewMockInsightCache(ctrl)

	accountID := "act_987"
	today := utils.TruncateToDay(time.Now())

	status := &domain.SyncStatus{
		AccountID:  accountID,
		LatestDate: today.Format(utils.DateLayout),
	}

	covered := map[string]bool{}
	for d := today.AddDate(0, 0, -40); !d.After(today); d = d.AddDate(0, 0, 1) {
		covered[d.Format(utils.DateLayout)] = true
	}

	mockCache.EXPECT().GetSyncStatus(accountID).Return(status, nil)
	mockCache.EXPECT().CoveredDates(accountID).Return(map[string]bool{}, nil)
	mockStore.EXPECT().CoveredDates(gomock.Any(), accountID).Return(covered, nil)

	service := NewService(testConfig(), mockFetcher, mockStore, mockCache)

	report, err := service.Run(context.Background(), accountID, domain.SyncModeIncremental)
	require.NoError(t, err)

	assert.Equal(t, domain.SyncStateCompleted, report.State)
	assert.Equal(t, 0, report.ChunksPlanned)
}

// Execuções sobrepostas para a mesma conta são rejeitadas pelo guarda
func TestService_Run_RejectsOverlappingRuns(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service := NewService(
		testConfig(),
		mocks.NewMockFetcher(ctrl),
		mocks.NewMockInsightStore(ctrl),
		mocks.NewMockInsightCache(ctrl),
	)

	require.NoError(t, service.acquire("act_1"))
	assert.True(t, service.InProgress("act_1"))

	_, err := service.Run(context.Background(), "act_1", domain.SyncModeIncremental)
	assert.ErrorIs(t, err, ErrSyncInProgress)

	// Outra conta não é afetada pelo guarda
	assert.False(t, service.InProgress("act_2"))

	service.release("act_1")
	assert.False(t, service.InProgress("act_1"))
}
