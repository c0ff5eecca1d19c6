package syncing

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	metadomain "github.com/vfg2006/ads-dashboard-api/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/ads-dashboard-api/internal/cache"
	"github.com/vfg2006/ads-dashboard-api/internal/config"
	"github.com/vfg2006/ads-dashboard-api/internal/domain"
	"github.com/vfg2006/ads-dashboard-api/pkg/utils"
)

// ErrSyncInProgress é retornado quando já existe uma execução em andamento
// para a mesma conta; o guarda evita escritas intercaladas de execuções
// sobrepostas
var ErrSyncInProgress = errors.New("sincronização já em andamento para a conta")

const defaultFlushEveryChunks = 10

// Service é o orquestrador de sincronização: resolve o plano, percorre os
// chunks sequencialmente através do Transport com retry, normaliza, acumula e
// descarrega periodicamente para o armazenamento remoto e o cache local,
// atualizando o status ao final
type Service struct {
	cfg     *config.Config
	fetcher Fetcher
	store   InsightStore
	cache   InsightCache
	planner *Planner

	runMu   sync.Mutex
	running map[string]bool
}

func NewService(cfg *config.Config, fetcher Fetcher, store InsightStore, insightCache InsightCache) *Service {
	return &Service{
		cfg:     cfg,
		fetcher: fetcher,
		store:   store,
		cache:   insightCache,
		planner: NewPlanner(cfg.Sync.InitialWindowDays),
		running: make(map[string]bool),
	}
}

// InProgress informa se há uma execução em andamento para a conta
func (s *Service) InProgress(accountID string) bool {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.running[accountID]
}

// Run executa uma sincronização para a conta no modo solicitado. Chunks são
// processados do mais antigo para o mais recente, então uma conclusão parcial
// sempre produz um prefixo histórico contíguo. O cancelamento do contexto é
// verificado entre chunks; o que já foi acumulado é descarregado antes de sair
func (s *Service) Run(ctx context.Context, accountID string, mode domain.SyncMode) (*domain.SyncReport, error) {
	if err := s.acquire(accountID); err != nil {
		return nil, err
	}
	defer s.release(accountID)

	report := &domain.SyncReport{
		AccountID: accountID,
		Mode:      mode,
		State:     domain.SyncStateIdle,
		StartedAt: time.Now(),
	}

	status := s.loadStatus(ctx, accountID)

	// Cache vazio sem sincronização anterior: janela inicial curta para o
	// dashboard ter algo a exibir, adiando o backfill completo
	if mode == domain.SyncModeIncremental && status == nil {
		mode = domain.SyncModeInitial
		report.Mode = mode
	}

	requested, err := s.resolveWindow(ctx, accountID, mode, status, report)
	if err != nil {
		report.State = domain.SyncStatePartiallyFailed
		report.Error = err.Error()
		report.CompletedAt = time.Now()
		return report, err
	}

	report.State = domain.SyncStatePlanning

	covered := map[string]bool{}
	if mode == domain.SyncModeIncremental {
		if dates, err := s.cache.CoveredDates(accountID); err == nil {
			covered = dates
		} else {
			logrus.WithError(err).Warn("Erro ao ler cobertura do cache, plano assumirá cache vazio")
		}

		// Cache local vazio mas banco quente (processo recém-iniciado): a
		// cobertura do armazenamento remoto evita re-buscar o histórico inteiro
		if len(covered) == 0 {
			if dates, err := s.store.CoveredDates(ctx, accountID); err == nil {
				covered = dates
			} else {
				logrus.WithError(err).Warn("Erro ao ler cobertura do banco, plano assumirá cobertura vazia")
			}
		}
	}

	chunks := s.planner.Plan(mode, requested, covered)
	report.ChunksPlanned = len(chunks)

	if len(chunks) == 0 {
		logrus.WithFields(logrus.Fields{
			"account_id": accountID,
			"mode":       string(mode),
		}).Info("Plano de sincronização vazio, nada a buscar")

		report.State = domain.SyncStateCompleted
		report.CompletedAt = time.Now()
		return report, nil
	}

	logrus.WithFields(logrus.Fields{
		"account_id": accountID,
		"mode":       string(mode),
		"requested":  requested.String(),
		"chunks":     len(chunks),
	}).Info("Iniciando sincronização de insights")

	err = s.fetchChunks(ctx, accountID, chunks, report)
	if err != nil {
		report.State = domain.SyncStatePartiallyFailed
		report.Error = err.Error()
		report.CompletedAt = time.Now()
		return report, err
	}

	s.finalizeStatus(ctx, accountID, mode, status, report)

	report.State = domain.SyncStateCompleted
	report.CompletedAt = time.Now()

	logrus.WithFields(logrus.Fields{
		"account_id":     accountID,
		"mode":           string(mode),
		"chunks_fetched": report.ChunksFetched,
		"chunks_skipped": report.ChunksSkipped,
		"imported":       report.RecordsImported,
		"updated":        report.RecordsUpdated,
		"duration":       report.CompletedAt.Sub(report.StartedAt).String(),
	}).Info("Sincronização de insights concluída")

	return report, nil
}

// fetchChunks percorre o plano sequencialmente, acumulando registros e
// descarregando a cada N chunks para limitar o pico de memória em backfills
// longos. Um erro de chunk nunca aborta a execução inteira, exceto o
// esgotamento de armazenamento do cache, que é fatal
func (s *Service) fetchChunks(ctx context.Context, accountID string, chunks []domain.DateRange, report *domain.SyncReport) error {
	flushEvery := s.cfg.Sync.FlushEveryChunks
	if flushEvery <= 0 {
		flushEvery = defaultFlushEveryChunks
	}

	interChunkDelay := time.Duration(s.cfg.Sync.InterChunkDelayMS) * time.Millisecond

	accumulator := make([]domain.InsightRecord, 0)

	for i, chunk := range chunks {
		if ctx.Err() != nil {
			// Cancelamento limpo: descarrega o que já foi acumulado antes de
			// sair. O descarregamento usa um contexto desacoplado, senão a
			// importação remota falharia com o próprio contexto já cancelado
			if flushErr := s.flush(context.WithoutCancel(ctx), accountID, accumulator, report); flushErr != nil {
				return flushErr
			}
			return errors.Wrap(ctx.Err(), "sincronização cancelada")
		}

		report.State = domain.SyncStateFetching

		logrus.WithFields(logrus.Fields{
			"account_id": accountID,
			"chunk":      i + 1,
			"total":      len(chunks),
			"range":      chunk.String(),
		}).Debug("Buscando chunk de insights")

		records, err := s.fetchChunk(ctx, accountID, chunk)
		if err != nil {
			s.handleChunkError(accountID, chunk, err, report)
		} else {
			accumulator = append(accumulator, records...)
			report.ChunksFetched++
			s.observeDates(records, report)
		}

		if (i+1)%flushEvery == 0 || i == len(chunks)-1 {
			report.State = domain.SyncStateFlushing
			if err := s.flush(ctx, accountID, accumulator, report); err != nil {
				return err
			}
			accumulator = accumulator[:0]
		}

		if i < len(chunks)-1 && interChunkDelay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(interChunkDelay):
			}
		}
	}

	return nil
}

// fetchChunk busca as métricas de conta (KPIs) e de anúncio (detalhamento por
// criativo) de um chunk
func (s *Service) fetchChunk(ctx context.Context, accountID string, chunk domain.DateRange) ([]domain.InsightRecord, error) {
	accountRecords, err := s.fetcher.GetAccountInsights(ctx, accountID, chunk)
	if err != nil {
		return nil, err
	}

	adRecords, err := s.fetcher.GetAdInsights(ctx, accountID, chunk)
	if err != nil {
		return nil, err
	}

	return append(accountRecords, adRecords...), nil
}

// handleChunkError converte erros por chunk em "pular e continuar". O sinal de
// limite de retenção significa que o chunk está fora do alcance da API e não é
// tratado como falha
func (s *Service) handleChunkError(accountID string, chunk domain.DateRange, err error, report *domain.SyncReport) {
	report.ChunksSkipped++

	var apiErr *metadomain.APIError
	if errors.As(err, &apiErr) && apiErr.IsDateLimit() {
		logrus.WithFields(logrus.Fields{
			"account_id": accountID,
			"range":      chunk.String(),
		}).Info("Chunk fora da janela de retenção da API, pulando")
		return
	}

	logrus.WithFields(logrus.Fields{
		"account_id": accountID,
		"range":      chunk.String(),
		"error":      err.Error(),
	}).Error("Erro ao buscar chunk, pulando e continuando a sincronização")
}

// flush enriquece os criativos pendentes e descarrega o acumulador no
// armazenamento remoto (estratégia merge) e no cache local, limpando-o em
// seguida. O esgotamento de armazenamento do cache propaga como fatal: não há
// como continuar sem perder dados
func (s *Service) flush(ctx context.Context, accountID string, accumulator []domain.InsightRecord, report *domain.SyncReport) error {
	if len(accumulator) == 0 {
		return nil
	}

	if !s.cfg.Sync.SkipCreativeEnrichment {
		if err := s.fetcher.EnrichCreatives(ctx, accumulator); err != nil {
			logrus.WithFields(logrus.Fields{
				"account_id": accountID,
				"error":      err.Error(),
			}).Warn("Erro no enriquecimento de criativos, seguindo sem os metadados")
		}
	}

	result, err := s.store.ImportInsights(ctx, accountID, accumulator, StrategyMerge)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"account_id": accountID,
			"records":    len(accumulator),
			"error":      err.Error(),
		}).Error("Erro ao importar registros no armazenamento remoto")
	} else {
		report.RecordsImported += result.Imported
		report.RecordsUpdated += result.Updated
	}

	now := time.Now()
	cached := make([]domain.CachedRecord, 0, len(accumulator))
	for _, record := range accumulator {
		cached = append(cached, domain.CachedRecord{InsightRecord: record, SyncedAt: now})
	}

	if err := s.cache.MergeAndSave(accountID, cached); err != nil {
		if errors.Is(err, cache.ErrStorageExhausted) {
			return err
		}
		logrus.WithFields(logrus.Fields{
			"account_id": accountID,
			"error":      err.Error(),
		}).Error("Erro ao mesclar registros no cache local")
	}

	logrus.WithFields(logrus.Fields{
		"account_id": accountID,
		"records":    len(accumulator),
	}).Debug("Acumulador descarregado")

	return nil
}

// resolveWindow determina o intervalo solicitado para o modo. No modo full sem
// override de retrocesso configurado, o limite de retenção é sondado primeiro
func (s *Service) resolveWindow(ctx context.Context, accountID string, mode domain.SyncMode, status *domain.SyncStatus, report *domain.SyncReport) (domain.DateRange, error) {
	today := utils.TruncateToDay(time.Now())

	switch mode {
	case domain.SyncModeFull:
		months := s.cfg.Sync.MaxLookbackMonths
		if months <= 0 {
			report.State = domain.SyncStateProbing

			limit, err := s.fetcher.DetectRetentionLimit(ctx, accountID)
			if err != nil {
				return domain.DateRange{}, errors.Wrap(err, "erro ao sondar limite de retenção")
			}
			return domain.NewDateRange(limit.OldestDate, today), nil
		}
		return domain.NewDateRange(today.AddDate(0, -months, 0), today), nil

	case domain.SyncModeIncremental:
		start := today.AddDate(0, 0, -s.planner.InitialWindowDays())
		if status != nil && status.LatestDate != "" {
			if parsed, err := utils.ParseDate(status.LatestDate); err == nil {
				start = *parsed
			}
		}
		return domain.NewDateRange(start, today), nil

	default: // initial
		return domain.NewDateRange(today.AddDate(0, 0, -s.planner.InitialWindowDays()), today), nil
	}
}

// loadStatus lê o status de sincronização, preferindo o cache local e caindo
// para o armazenamento remoto
func (s *Service) loadStatus(ctx context.Context, accountID string) *domain.SyncStatus {
	if status, err := s.cache.GetSyncStatus(accountID); err == nil && status != nil {
		return status
	}

	status, err := s.store.GetSyncStatus(ctx, accountID)
	if err != nil {
		logrus.WithError(err).WithField("account_id", accountID).
			Warn("Erro ao ler status de sincronização do armazenamento remoto")
		return nil
	}

	return status
}

// finalizeStatus atualiza o SyncStatus com os novos totais e o intervalo de
// datas observado; lastFullSync só é marcado em execuções full e
// lastIncrementalSync nas demais
func (s *Service) finalizeStatus(ctx context.Context, accountID string, mode domain.SyncMode, previous *domain.SyncStatus, report *domain.SyncReport) {
	now := time.Now()

	status := &domain.SyncStatus{AccountID: accountID}
	if previous != nil {
		*status = *previous
	}

	status.TotalRecords += report.RecordsImported

	if status.EarliestDate == "" || (report.EarliestDate != "" && report.EarliestDate < status.EarliestDate) {
		status.EarliestDate = report.EarliestDate
	}
	if report.LatestDate > status.LatestDate {
		status.LatestDate = report.LatestDate
	}

	if mode == domain.SyncModeFull {
		status.LastFullSync = &now
	} else {
		status.LastIncrementalSync = &now
	}

	if err := s.store.SaveSyncStatus(ctx, status); err != nil {
		logrus.WithError(err).WithField("account_id", accountID).
			Error("Erro ao salvar status de sincronização no armazenamento remoto")
	}
	if err := s.cache.SaveSyncStatus(status); err != nil {
		logrus.WithError(err).WithField("account_id", accountID).
			Error("Erro ao salvar status de sincronização no cache local")
	}
}

func (s *Service) observeDates(records []domain.InsightRecord, report *domain.SyncReport) {
	for i := range records {
		date := records[i].DateStart
		if date == "" {
			continue
		}
		if report.EarliestDate == "" || date < report.EarliestDate {
			report.EarliestDate = date
		}
		if date > report.LatestDate {
			report.LatestDate = date
		}
	}
}

func (s *Service) acquire(accountID string) error {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if s.running[accountID] {
		return ErrSyncInProgress
	}

	s.running[accountID] = true
	return nil
}

func (s *Service) release(accountID string) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	delete(s.running, accountID)
}
