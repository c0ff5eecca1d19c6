package metaclient

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	metadomain "github.com/vfg2006/ads-dashboard-api/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/ads-dashboard-api/internal/config"
)

// RetryPolicy define o backoff exponencial limitado aplicado sobre as chamadas
// do Transport. Erros de rate limit usam uma base de espera maior
type RetryPolicy struct {
	MaxAttempts        int
	BaseDelay          time.Duration
	RateLimitBaseDelay time.Duration
}

// DefaultRetryPolicy retorna a política padrão: 3 tentativas, base de 1s,
// base de 5s para rate limit
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:        3,
		BaseDelay:          1000 * time.Millisecond,
		RateLimitBaseDelay: 5000 * time.Millisecond,
	}
}

// RetryPolicyFromConfig monta a política a partir da configuração global
func RetryPolicyFromConfig(cfg *config.Config) RetryPolicy {
	policy := DefaultRetryPolicy()

	if cfg.Sync.RetryMaxAttempts > 0 {
		policy.MaxAttempts = cfg.Sync.RetryMaxAttempts
	}
	if cfg.Sync.RetryBaseDelayMS > 0 {
		policy.BaseDelay = time.Duration(cfg.Sync.RetryBaseDelayMS) * time.Millisecond
	}
	if cfg.Sync.RetryRateLimitDelayMS > 0 {
		policy.RateLimitBaseDelay = time.Duration(cfg.Sync.RetryRateLimitDelayMS) * time.Millisecond
	}

	return policy
}

// delayFor calcula a espera antes da próxima tentativa: base * 2^(attempt-1)
func (p RetryPolicy) delayFor(err error, attempt int) time.Duration {
	base := p.BaseDelay

	var apiErr *metadomain.APIError
	if errors.As(err, &apiErr) && apiErr.Kind == metadomain.RateLimit {
		base = p.RateLimitBaseDelay
	}

	return base * time.Duration(1<<(attempt-1))
}

// WithRetry executa fn com a política de retry. Na última tentativa o erro é
// propagado sem espera. Nenhuma distinção entre erros retryable e não-retryable
// é feita além da base de espera: até AUTH_ERROR é re-tentado dentro do limite
// (ineficiência conhecida, não um problema de corretude)
func WithRetry[T any](ctx context.Context, policy RetryPolicy, op string, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == policy.MaxAttempts {
			break
		}

		wait := policy.delayFor(err, attempt)

		logrus.WithFields(logrus.Fields{
			"operation": op,
			"attempt":   attempt,
			"wait":      wait.String(),
			"error":     err.Error(),
		}).Warn("Falha na chamada à API, aguardando antes de nova tentativa")

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(wait):
		}
	}

	return zero, lastErr
}
