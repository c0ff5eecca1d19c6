package metaclient

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	metadomain "github.com/vfg2006/ads-dashboard-api/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/ads-dashboard-api/internal/domain"
	"github.com/vfg2006/ads-dashboard-api/pkg/utils"
)

// Limites da busca binária de retenção. A janela real depende da conta e da
// versão da API e não é documentada, por isso é descoberta por sondagem
const (
	probeLowMonths  = 1
	probeHighMonths = 36

	// FallbackMaxMonths é usado quando a sondagem falha ou é pulada
	FallbackMaxMonths = 37
)

// RetentionProber descobre por busca binária o mês mais antigo que a API
// aceita consultar, memoizando o resultado pelo tempo de vida do prober.
// Chamadores concorrentes aguardam a mesma sondagem em andamento através de
// um canal compartilhado de resultado pendente
type RetentionProber struct {
	client Client

	mu      sync.Mutex
	results map[string]*domain.RetentionLimit
	pending map[string]chan struct{}
}

func NewRetentionProber(client Client) *RetentionProber {
	return &RetentionProber{
		client:  client,
		results: make(map[string]*domain.RetentionLimit),
		pending: make(map[string]chan struct{}),
	}
}

// DetectRetentionLimit retorna o limite de retenção da conta, sondando a API
// na primeira chamada e servindo o resultado memoizado nas seguintes
func (p *RetentionProber) DetectRetentionLimit(ctx context.Context, accountID string) (*domain.RetentionLimit, error) {
	p.mu.Lock()

	if limit, ok := p.results[accountID]; ok {
		p.mu.Unlock()
		return limit, nil
	}

	if waitCh, inFlight := p.pending[accountID]; inFlight {
		p.mu.Unlock()

		select {
		case <-waitCh:
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		p.mu.Lock()
		limit := p.results[accountID]
		p.mu.Unlock()

		if limit == nil {
			return p.fallback(), nil
		}
		return limit, nil
	}

	waitCh := make(chan struct{})
	p.pending[accountID] = waitCh
	p.mu.Unlock()

	limit := p.probe(ctx, accountID)

	p.mu.Lock()
	p.results[accountID] = limit
	delete(p.pending, accountID)
	close(waitCh)
	p.mu.Unlock()

	return limit, nil
}

// probe executa a busca binária sobre [1, 36] meses para trás. Sucesso em uma
// consulta mínima de um dia indica que é possível ir mais longe (low = mid+1);
// o erro específico de limite de datas indica o contrário (high = mid-1);
// qualquer outro erro aborta a busca mantendo o melhor limite já encontrado
func (p *RetentionProber) probe(ctx context.Context, accountID string) *domain.RetentionLimit {
	logrus.WithField("account_id", accountID).Info("Sondando limite de retenção da API")

	low, high := probeLowMonths, probeHighMonths
	best := 0
	probes := 0

	for low <= high {
		mid := (low + high) / 2

		day := utils.TruncateToDay(time.Now().AddDate(0, -mid, 0))
		probeRange := domain.DateRange{Start: day, End: day}

		probes++
		_, err := p.client.GetInsights(ctx, accountID, LevelAccount, probeRange)
		if err == nil {
			best = mid
			low = mid + 1
			continue
		}

		var apiErr *metadomain.APIError
		if errors.As(err, &apiErr) && apiErr.IsDateLimit() {
			high = mid - 1
			continue
		}

		// Erro inesperado: aborta cedo preservando o melhor limite encontrado
		logrus.WithFields(logrus.Fields{
			"account_id":   accountID,
			"months_back":  mid,
			"probes_total": probes,
			"error":        err.Error(),
		}).Warn("Sondagem de retenção abortada por erro inesperado")
		break
	}

	if best == 0 {
		logrus.WithField("account_id", accountID).
			Warnf("Sondagem não encontrou limite, usando fallback de %d meses", FallbackMaxMonths)
		return p.fallback()
	}

	limit := &domain.RetentionLimit{
		MaxMonths:  best,
		OldestDate: utils.TruncateToDay(time.Now().AddDate(0, -best, 0)),
	}

	logrus.WithFields(logrus.Fields{
		"account_id":  accountID,
		"max_months":  limit.MaxMonths,
		"oldest_date": limit.OldestDate.Format(time.DateOnly),
		"probes":      probes,
	}).Info("Limite de retenção detectado")

	return limit
}

func (p *RetentionProber) fallback() *domain.RetentionLimit {
	return &domain.RetentionLimit{
		MaxMonths:  FallbackMaxMonths,
		OldestDate: utils.TruncateToDay(time.Now().AddDate(0, -FallbackMaxMonths, 0)),
	}
}
