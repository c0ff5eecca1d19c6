package metaclient

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metadomain "github.com/vfg2006/ads-dashboard-api/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/ads-dashboard-api/internal/config"
	"github.com/vfg2006/ads-dashboard-api/internal/domain"
)

func clientConfig(serverURL string) *config.Config {
	cfg := &config.Config{}
	cfg.Meta.URL = serverURL
	cfg.Meta.AccessToken = "test-token"
	cfg.Sync.RowLimit = 25
	cfg.Sync.MinCallSpacingMS = 0
	return cfg
}

func mayRange() domain.DateRange {
	start, _ := time.Parse(time.DateOnly, "2024-05-01")
	end, _ := time.Parse(time.DateOnly, "2024-05-31")
	return domain.DateRange{Start: start, End: end}
}

func TestMetaClient_GetInsights_FollowsPaging(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/act_123/insights", r.URL.Path)
		assert.Equal(t, "test-token", r.URL.Query().Get("access_token"))
		assert.Equal(t, "account", r.URL.Query().Get("level"))

		w.Header().Set("Content-Type", "application/json")

		if r.URL.Query().Get("after") == "cursor2" {
			fmt.Fprint(w, `{"data":[{"account_id":"123","date_start":"2024-05-02","date_stop":"2024-05-02","impressions":"200","clicks":"20","spend":"10.00"}],"paging":{"cursors":{}}}`)
			return
		}

		next := server.URL + "/act_123/insights?after=cursor2&access_token=test-token"
		fmt.Fprintf(w, `{"data":[{"account_id":"123","date_start":"2024-05-01","date_stop":"2024-05-01","impressions":"100","clicks":"10","spend":"5.00"}],"paging":{"cursors":{"after":"cursor2"},"next":%q}}`, next)
	}))
	defer server.Close()

	client := NewClient(clientConfig(server.URL))

	insights, err := client.GetInsights(context.Background(), "123", LevelAccount, mayRange())
	require.NoError(t, err)

	require.Len(t, insights, 2)
	assert.Equal(t, "2024-05-01", insights[0].DateStart)
	assert.Equal(t, "2024-05-02", insights[1].DateStart)
}

func TestMetaClient_GetInsights_ClassifiesErrors(t *testing.T) {
	cases := []struct {
		name       string
		statusCode int
		body       string
		wantKind   metadomain.ErrorKind
		wantDate   bool
	}{
		{
			name:       "token inválido",
			statusCode: http.StatusUnauthorized,
			body:       `{"error":{"message":"Invalid OAuth access token","type":"OAuthException","code":190}}`,
			wantKind:   metadomain.AuthError,
		},
		{
			name:       "sem permissão na conta",
			statusCode: http.StatusForbidden,
			body:       `{"error":{"message":"Permission denied","code":200}}`,
			wantKind:   metadomain.PermissionError,
		},
		{
			name:       "rate limit por status",
			statusCode: http.StatusTooManyRequests,
			body:       `{"error":{"message":"Too many requests","code":613}}`,
			wantKind:   metadomain.RateLimit,
		},
		{
			name:       "erro interno da plataforma",
			statusCode: http.StatusInternalServerError,
			body:       `{"error":{"message":"An unexpected error has occurred","code":2}}`,
			wantKind:   metadomain.ServerError,
		},
		{
			name:       "rate limit sinalizado por código em resposta 400",
			statusCode: http.StatusBadRequest,
			body:       `{"error":{"message":"Application request limit reached","code":4}}`,
			wantKind:   metadomain.RateLimit,
		},
		{
			name:       "data além da janela de retenção",
			statusCode: http.StatusBadRequest,
			body:       `{"error":{"message":"The date you are trying to query is beyond the allowed range","code":3018}}`,
			wantKind:   metadomain.APIErrorKind,
			wantDate:   true,
		},
		{
			name:       "corpo de erro que não é JSON",
			statusCode: http.StatusBadGateway,
			body:       `<html>Bad Gateway</html>`,
			wantKind:   metadomain.ServerError,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.statusCode)
				fmt.Fprint(w, tc.body)
			}))
			defer server.Close()

			client := NewClient(clientConfig(server.URL))

			_, err := client.GetInsights(context.Background(), "123", LevelAccount, mayRange())
			require.Error(t, err)

			var apiErr *metadomain.APIError
			require.ErrorAs(t, err, &apiErr)

			assert.Equal(t, tc.wantKind, apiErr.Kind)
			assert.Equal(t, tc.statusCode, apiErr.StatusCode)
			assert.Equal(t, tc.wantDate, apiErr.IsDateLimit())
		})
	}
}

func TestMetaClient_GetInsights_NetworkErrorIsClassified(t *testing.T) {
	// Servidor fechado antes da chamada: falha de conexão
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	serverURL := server.URL
	server.Close()

	client := NewClient(clientConfig(serverURL))

	_, err := client.GetInsights(context.Background(), "123", LevelAccount, mayRange())
	require.Error(t, err)

	var apiErr *metadomain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, metadomain.NetworkError, apiErr.Kind)
}

func TestMetaClient_EnforcesMinCallSpacing(t *testing.T) {
	calls := 0
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Query().Get("after") == "cursor2" {
			fmt.Fprint(w, `{"data":[],"paging":{"cursors":{}}}`)
			return
		}
		next := server.URL + "/act_123/insights?after=cursor2&access_token=test-token"
		fmt.Fprintf(w, `{"data":[],"paging":{"cursors":{"after":"cursor2"},"next":%q}}`, next)
	}))
	defer server.Close()

	cfg := clientConfig(server.URL)
	cfg.Sync.MinCallSpacingMS = 40

	client := NewClient(cfg)

	start := time.Now()
	_, err := client.GetInsights(context.Background(), "123", LevelAccount, mayRange())
	require.NoError(t, err)

	require.Equal(t, 2, calls)
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond,
		"a segunda chamada deve respeitar o espaçamento mínimo")
}

func TestMetaClient_GetAdCreatives_Batch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ad1,ad2", r.URL.Query().Get("ids"))
		fmt.Fprint(w, `{
			"ad1": {"id":"ad1","creative":{"id":"cr1","object_type":"VIDEO","video_id":"v1"}},
			"ad2": {"id":"ad2"}
		}`)
	}))
	defer server.Close()

	client := NewClient(clientConfig(server.URL))

	creatives, err := client.GetAdCreatives(context.Background(), []string{"ad1", "ad2"})
	require.NoError(t, err)

	// Apenas anúncios com criativo presente entram no mapa
	require.Len(t, creatives, 1)
	require.NotNil(t, creatives["ad1"])
	assert.Equal(t, "cr1", creatives["ad1"].ID)
	assert.Equal(t, "VIDEO", creatives["ad1"].ObjectType)
}

func TestMetaClient_GetAdCreatives_FallsBackToIndividualFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// O lote falha; as buscas individuais respondem normalmente
		if r.URL.Query().Get("ids") != "" {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"error":{"message":"Unknown error","code":1}}`)
			return
		}

		switch r.URL.Path {
		case "/ad1":
			fmt.Fprint(w, `{"id":"ad1","creative":{"id":"cr1","object_type":"SHARE"}}`)
		case "/ad2":
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":{"message":"Unsupported request","code":100}}`)
		default:
			t.Errorf("caminho inesperado: %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := NewClient(clientConfig(server.URL))

	creatives, err := client.GetAdCreatives(context.Background(), []string{"ad1", "ad2"})
	require.NoError(t, err)

	// ad1 recuperado individualmente, a falha de ad2 é tolerada
	require.Len(t, creatives, 1)
	assert.Equal(t, "cr1", creatives["ad1"].ID)
}

func TestMetaClient_GetAdCreatives_EmptyBatchShortCircuits(t *testing.T) {
	client := NewClient(clientConfig("http://unused.invalid"))

	creatives, err := client.GetAdCreatives(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, creatives)
}
