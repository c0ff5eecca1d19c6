package meta

import (
	"context"

	"github.com/sirupsen/logrus"
	metadomain "github.com/vfg2006/ads-dashboard-api/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/ads-dashboard-api/infrastructure/integrator/meta/metaclient"
	"github.com/vfg2006/ads-dashboard-api/internal/config"
	"github.com/vfg2006/ads-dashboard-api/internal/domain"
)

// MetaIntegrator é a fachada de alto nível sobre o Transport: busca insights de
// conta e de anúncio com retry, normaliza e enriquece criativos em lotes
type MetaIntegrator struct {
	cfg    *config.Config
	Client metaclient.Client
	retry  metaclient.RetryPolicy
	prober *metaclient.RetentionProber
}

func New(cfg *config.Config, client metaclient.Client) *MetaIntegrator {
	return &MetaIntegrator{
		cfg:    cfg,
		Client: client,
		retry:  metaclient.RetryPolicyFromConfig(cfg),
		prober: metaclient.NewRetentionProber(client),
	}
}

// GetAccountInsights busca e normaliza os insights de nível de conta do período
func (s *MetaIntegrator) GetAccountInsights(ctx context.Context, accountID string, rng domain.DateRange) ([]domain.InsightRecord, error) {
	raws, err := metaclient.WithRetry(ctx, s.retry, "account_insights", func() ([]metadomain.RawInsight, error) {
		return s.Client.GetInsights(ctx, accountID, metaclient.LevelAccount, rng)
	})
	if err != nil {
		return nil, err
	}

	records := make([]domain.InsightRecord, 0, len(raws))
	for _, raw := range raws {
		records = append(records, Normalize(raw))
	}

	logrus.WithFields(logrus.Fields{
		"account_id": accountID,
		"range":      rng.String(),
		"records":    len(records),
	}).Debug("insights: métricas de conta obtidas e normalizadas")

	return records, nil
}

// GetAdInsights busca e normaliza os insights de nível de anúncio do período
func (s *MetaIntegrator) GetAdInsights(ctx context.Context, accountID string, rng domain.DateRange) ([]domain.InsightRecord, error) {
	raws, err := metaclient.WithRetry(ctx, s.retry, "ad_insights", func() ([]metadomain.RawInsight, error) {
		return s.Client.GetInsights(ctx, accountID, metaclient.LevelAd, rng)
	})
	if err != nil {
		return nil, err
	}

	records := make([]domain.InsightRecord, 0, len(raws))
	for _, raw := range raws {
		records = append(records, Normalize(raw))
	}

	logrus.WithFields(logrus.Fields{
		"account_id": accountID,
		"range":      rng.String(),
		"records":    len(records),
	}).Debug("insights: métricas de anúncio obtidas e normalizadas")

	return records, nil
}

// EnrichCreatives busca os metadados de criativo dos anúncios distintos
// observados nos registros, em lotes limitados, e os anexa aos registros em
// memória. Registros que já possuem criativo não são re-buscados
func (s *MetaIntegrator) EnrichCreatives(ctx context.Context, records []domain.InsightRecord) error {
	batchSize := s.cfg.Sync.CreativeBatchSize
	if batchSize <= 0 || batchSize > 50 {
		batchSize = 50
	}

	adIDs := distinctAdIDs(records)
	if len(adIDs) == 0 {
		return nil
	}

	creatives := make(map[string]*metadomain.RawCreative)
	for start := 0; start < len(adIDs); start += batchSize {
		end := start + batchSize
		if end > len(adIDs) {
			end = len(adIDs)
		}

		batch, err := metaclient.WithRetry(ctx, s.retry, "ad_creatives", func() (map[string]*metadomain.RawCreative, error) {
			return s.Client.GetAdCreatives(ctx, adIDs[start:end])
		})
		if err != nil {
			return err
		}

		for adID, creative := range batch {
			creatives[adID] = creative
		}
	}

	enriched := 0
	for i := range records {
		if records[i].AdID == "" || records[i].Creative != nil {
			continue
		}
		if raw, ok := creatives[records[i].AdID]; ok {
			records[i].Creative = NormalizeCreative(raw)
			enriched++
		}
	}

	logrus.WithFields(logrus.Fields{
		"distinct_ads": len(adIDs),
		"enriched":     enriched,
	}).Debug("insights: criativos anexados aos registros de anúncio")

	return nil
}

// DetectRetentionLimit delega ao prober memoizado do cliente
func (s *MetaIntegrator) DetectRetentionLimit(ctx context.Context, accountID string) (*domain.RetentionLimit, error) {
	return s.prober.DetectRetentionLimit(ctx, accountID)
}

// distinctAdIDs coleta os identificadores de anúncio distintos ainda sem criativo
func distinctAdIDs(records []domain.InsightRecord) []string {
	seen := make(map[string]bool)
	ids := make([]string, 0)

	for i := range records {
		adID := records[i].AdID
		if adID == "" || records[i].Creative != nil || seen[adID] {
			continue
		}
		seen[adID] = true
		ids = append(ids, adID)
	}

	return ids
}
