package metaclient

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metadomain "github.com/vfg2006/ads-dashboard-api/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/ads-dashboard-api/internal/domain"
	"github.com/vfg2006/ads-dashboard-api/pkg/utils"
)

// probeClient simula o comportamento da API frente às sondagens de retenção:
// datas dentro da janela respondem com sucesso, datas além dela respondem com
// o erro de limite de datas
type probeClient struct {
	mu     sync.Mutex
	calls  int
	delay  time.Duration
	handle func(rng domain.DateRange) error
}

func (f *probeClient) GetInsights(_ context.Context, _, _ string, rng domain.DateRange) ([]metadomain.RawInsight, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	if err := f.handle(rng); err != nil {
		return nil, err
	}
	return []metadomain.RawInsight{}, nil
}

func (f *probeClient) GetAdCreatives(context.Context, []string) (map[string]*metadomain.RawCreative, error) {
	return map[string]*metadomain.RawCreative{}, nil
}

func (f *probeClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func dateLimitErr() *metadomain.APIError {
	return &metadomain.APIError{
		Kind:       metadomain.APIErrorKind,
		StatusCode: 400,
		Code:       metadomain.DateLimitCode,
	}
}

// retentionWindow devolve um handler que aceita consultas até maxMonths atrás.
// O corte fica no meio do caminho entre os dias sondados de meses consecutivos,
// tolerando a normalização de fim de mês do AddDate
func retentionWindow(maxMonths int) func(rng domain.DateRange) error {
	cutoff := utils.TruncateToDay(time.Now().AddDate(0, -maxMonths, 0)).AddDate(0, 0, -14)

	return func(rng domain.DateRange) error {
		if rng.Start.Before(cutoff) {
			return dateLimitErr()
		}
		return nil
	}
}

func TestRetentionProber_BinarySearchFindsLimit(t *testing.T) {
	client := &probeClient{handle: retentionWindow(13)}
	prober := NewRetentionProber(client)

	limit, err := prober.DetectRetentionLimit(context.Background(), "act_1")
	require.NoError(t, err)
	require.NotNil(t, limit)

	assert.Equal(t, 13, limit.MaxMonths)
	assert.False(t, limit.OldestDate.IsZero())

	// Busca binária sobre [1, 36]: no máximo 6 sondagens
	assert.LessOrEqual(t, client.callCount(), 6)
}

func TestRetentionProber_FindsBoundaryLimits(t *testing.T) {
	for _, maxMonths := range []int{1, 36} {
		client := &probeClient{handle: retentionWindow(maxMonths)}
		prober := NewRetentionProber(client)

		limit, err := prober.DetectRetentionLimit(context.Background(), "act_1")
		require.NoError(t, err)
		assert.Equal(t, maxMonths, limit.MaxMonths)
	}
}

func TestRetentionProber_FallbackWhenEveryProbeFails(t *testing.T) {
	client := &probeClient{handle: func(domain.DateRange) error {
		return dateLimitErr()
	}}
	prober := NewRetentionProber(client)

	limit, err := prober.DetectRetentionLimit(context.Background(), "act_1")
	require.NoError(t, err)

	assert.Equal(t, FallbackMaxMonths, limit.MaxMonths)
}

func TestRetentionProber_UnexpectedErrorAbortsSearch(t *testing.T) {
	client := &probeClient{handle: func(domain.DateRange) error {
		return &metadomain.APIError{Kind: metadomain.ServerError, StatusCode: 500}
	}}
	prober := NewRetentionProber(client)

	limit, err := prober.DetectRetentionLimit(context.Background(), "act_1")
	require.NoError(t, err)

	// A primeira sondagem já aborta a busca e o fallback é usado
	assert.Equal(t, 1, client.callCount())
	assert.Equal(t, FallbackMaxMonths, limit.MaxMonths)
}

func TestRetentionProber_MemoizesResultPerAccount(t *testing.T) {
	client := &probeClient{handle: retentionWindow(13)}
	prober := NewRetentionProber(client)

	first, err := prober.DetectRetentionLimit(context.Background(), "act_1")
	require.NoError(t, err)

	probesAfterFirst := client.callCount()

	second, err := prober.DetectRetentionLimit(context.Background(), "act_1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, probesAfterFirst, client.callCount(), "a segunda chamada não deve sondar novamente")

	// Conta diferente dispara sua própria sondagem
	_, err = prober.DetectRetentionLimit(context.Background(), "act_2")
	require.NoError(t, err)
	assert.Greater(t, client.callCount(), probesAfterFirst)
}

func TestRetentionProber_ConcurrentCallersShareOneProbe(t *testing.T) {
	client := &probeClient{handle: retentionWindow(13), delay: 5 * time.Millisecond}
	prober := NewRetentionProber(client)

	const callers = 8

	var wg sync.WaitGroup
	results := make([]*domain.RetentionLimit, callers)
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx], errs[idx] = prober.DetectRetentionLimit(context.Background(), "act_1")
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	// Uma única busca binária atendeu todos os chamadores
	assert.LessOrEqual(t, client.callCount(), 6)

	for _, limit := range results {
		require.NotNil(t, limit)
		assert.Equal(t, results[0], limit)
	}
}
