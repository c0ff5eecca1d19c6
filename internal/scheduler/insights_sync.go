package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ads-dashboard-api/infrastructure/repository"
	"github.com/vfg2006/ads-dashboard-api/internal/config"
	"github.com/vfg2006/ads-dashboard-api/internal/domain"
	"github.com/vfg2006/ads-dashboard-api/internal/usecases/syncing"
	"github.com/vfg2006/ads-dashboard-api/pkg/utils"
)

// InsightSyncConfig representa a configuração do agendador de sincronização de insights
type InsightSyncConfig struct {
	CronSchedule        string
	RequestDelaySeconds int
	SyncEnabled         bool
}

// InsightSyncService agenda sincronizações incrementais de insights para todas
// as contas ativas, uma conta por vez
type InsightSyncService struct {
	scheduler   *gocron.Scheduler
	config      InsightSyncConfig
	appConfig   *config.Config
	accountRepo repository.AccountRepository
	syncService *syncing.Service

	syncRunning         bool
	syncMutex           sync.Mutex
	lastSyncStartedAt   time.Time
	lastSyncCompletedAt time.Time
	lastReports         []*domain.SyncReport
}

// NewInsightSyncService cria uma nova instância do agendador de sincronização de insights
func NewInsightSyncService(
	accountRepo repository.AccountRepository,
	syncService *syncing.Service,
	appConfig *config.Config,
) *InsightSyncService {
	syncConfig := InsightSyncConfig{
		CronSchedule:        appConfig.InsightSync.CronSchedule,
		RequestDelaySeconds: appConfig.InsightSync.RequestDelaySeconds,
		SyncEnabled:         appConfig.InsightSync.Enabled,
	}

	scheduler := gocron.NewScheduler(time.Local)

	logrus.WithFields(logrus.Fields{
		"cron_schedule":         syncConfig.CronSchedule,
		"request_delay_seconds": syncConfig.RequestDelaySeconds,
		"sync_enabled":          syncConfig.SyncEnabled,
	}).Info("Configuração do agendador de sincronização de insights carregada")

	return &InsightSyncService{
		scheduler:   scheduler,
		config:      syncConfig,
		appConfig:   appConfig,
		accountRepo: accountRepo,
		syncService: syncService,
	}
}

// Start inicia o agendador
func (s *InsightSyncService) Start(ctx context.Context) error {
	if !s.config.SyncEnabled {
		logrus.Info("Sincronização agendada de insights desabilitada por configuração")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando agendador de sincronização de insights")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.syncAllAccounts(ctx)
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar sincronização de insights: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador de sincronização de insights")
		s.scheduler.Stop()
	}()

	return nil
}

// syncAllAccounts executa uma sincronização incremental para cada conta ativa
func (s *InsightSyncService) syncAllAccounts(ctx context.Context) {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Sincronização de insights já em andamento, ignorando")
		return
	}
	s.syncRunning = true
	s.lastSyncStartedAt = time.Now()
	s.syncMutex.Unlock()

	defer func() {
		s.syncMutex.Lock()
		s.syncRunning = false
		s.lastSyncCompletedAt = time.Now()
		s.syncMutex.Unlock()
	}()

	logrus.Info("Iniciando sincronização de insights para todas as contas ativas")

	accounts, err := s.accountRepo.ListAccounts(ctx, []domain.AdAccountStatus{domain.AdAccountStatusActive})
	if err != nil {
		logrus.WithError(err).Error("Erro ao buscar lista de contas para sincronização de insights")
		return
	}

	if len(accounts) == 0 {
		logrus.Info("Nenhuma conta ativa encontrada para sincronização de insights")
		return
	}

	reports := make([]*domain.SyncReport, 0, len(accounts))

	for i, account := range accounts {
		if ctx.Err() != nil {
			logrus.Info("Sincronização agendada interrompida por cancelamento do contexto")
			break
		}

		if account.ExternalID == "" {
			logrus.WithField("account_id", account.ID).Warn("Conta sem external_id. Pulando.")
			continue
		}

		logrus.WithFields(logrus.Fields{
			"account_id":   account.ID,
			"external_id":  account.ExternalID,
			"account_name": account.Name,
		}).Info("Sincronizando insights para conta")

		report, err := s.syncService.Run(ctx, account.ExternalID, domain.SyncModeIncremental)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"account_id":  account.ID,
				"external_id": account.ExternalID,
				"error":       err.Error(),
			}).Error("Erro na sincronização de insights da conta")
		}

		if report != nil {
			reports = append(reports, report)
			logrus.Debugf("Relatório da sincronização: %s", utils.PrettyJson(report))
		}

		// Espaçamento entre contas para não saturar a API
		if i < len(accounts)-1 && s.config.RequestDelaySeconds > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(time.Duration(s.config.RequestDelaySeconds) * time.Second):
			}
		}
	}

	s.syncMutex.Lock()
	s.lastReports = reports
	s.syncMutex.Unlock()

	logrus.WithFields(logrus.Fields{
		"accounts": len(accounts),
		"reports":  len(reports),
		"duration": time.Since(s.lastSyncStartedAt).String(),
	}).Info("Sincronização de insights concluída para todas as contas")
}

// TriggerManualSync inicia manualmente uma sincronização de todas as contas.
// A execução é desacoplada do cancelamento do contexto recebido: o disparo vem
// de um handler HTTP e o contexto da requisição é cancelado assim que a
// resposta 202 é escrita, bem antes da sincronização terminar
func (s *InsightSyncService) TriggerManualSync(ctx context.Context) {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Sincronização de insights já em andamento, ignorando solicitação manual")
		return
	}
	s.syncMutex.Unlock()

	go s.syncAllAccounts(context.WithoutCancel(ctx))
}

// GetStatus retorna o estado corrente do agendador para o endpoint de diagnóstico
func (s *InsightSyncService) GetStatus() map[string]interface{} {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	status := map[string]interface{}{
		"enabled":       s.config.SyncEnabled,
		"cron_schedule": s.config.CronSchedule,
		"sync_running":  s.syncRunning,
	}

	if !s.lastSyncStartedAt.IsZero() {
		status["last_sync_started_at"] = s.lastSyncStartedAt
	}
	if !s.lastSyncCompletedAt.IsZero() {
		status["last_sync_completed_at"] = s.lastSyncCompletedAt
	}
	if len(s.lastReports) > 0 {
		status["last_reports"] = s.lastReports
	}

	return status
}
