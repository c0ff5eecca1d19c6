package metaclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	metadomain "github.com/vfg2006/ads-dashboard-api/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/ads-dashboard-api/internal/config"
	"github.com/vfg2006/ads-dashboard-api/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Nível de agregação aceito pelo endpoint /insights
const (
	LevelAccount  = "account"
	LevelCampaign = "campaign"
	LevelAdset    = "adset"
	LevelAd       = "ad"
)

// MaxRowLimit é o teto de linhas por requisição para controlar o tamanho do payload
const MaxRowLimit = 25

const accountInsightFields = "account_id,account_name,date_start,date_stop,impressions,clicks,spend,reach,frequency,cpm,cpc,ctr,actions,action_values,cost_per_action_type,purchase_roas"

const adInsightFields = "account_id,campaign_id,adset_id,ad_id,ad_name,date_start,date_stop,impressions,clicks,spend,reach,frequency,cpm,cpc,ctr,actions,action_values,cost_per_action_type,purchase_roas"

const creativeFields = "creative{id,thumbnail_url,video_id,object_type,object_story_spec{link_data{child_attachments{name,link,picture}}}}"

type Client interface {
	GetInsights(ctx context.Context, accountID, level string, rng domain.DateRange) ([]metadomain.RawInsight, error)
	GetAdCreatives(ctx context.Context, adIDs []string) (map[string]*metadomain.RawCreative, error)
}

// MetaClient implementa o Transport: chamadas autenticadas à Graph API com
// espaçamento mínimo entre chamadas consecutivas e classificação de erros
type MetaClient struct {
	Cfg        *config.Config
	httpClient *http.Client

	minSpacing time.Duration
	callMu     sync.Mutex
	lastCall   time.Time
}

func NewClient(cfg *config.Config) Client {
	return &MetaClient{
		Cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		minSpacing: time.Duration(cfg.Sync.MinCallSpacingMS) * time.Millisecond,
	}
}

// GetInsights busca os insights do período no nível informado, seguindo os
// cursores de paginação até esgotar os dados
func (c *MetaClient) GetInsights(ctx context.Context, accountID, level string, rng domain.DateRange) ([]metadomain.RawInsight, error) {
	fields := accountInsightFields
	if level == LevelAd || level == LevelAdset {
		fields = adInsightFields
	}

	limit := c.Cfg.Sync.RowLimit
	if limit <= 0 || limit > MaxRowLimit {
		limit = MaxRowLimit
	}

	timeRange := fmt.Sprintf("{\"since\":\"%s\",\"until\":\"%s\"}",
		rng.Start.Format(time.DateOnly), rng.End.Format(time.DateOnly))

	params := url.Values{}
	params.Add("fields", fields)
	params.Add("level", level)
	params.Add("time_range", timeRange)
	params.Add("time_increment", "1")
	params.Add("limit", fmt.Sprintf("%d", limit))
	params.Add("action_breakdowns", "action_type")
	params.Add("action_attribution_windows", "7d_click,1d_view")
	params.Add("access_token", c.Cfg.Meta.AccessToken)

	requestURL := fmt.Sprintf("%s/act_%s/insights?%s", c.Cfg.Meta.URL, accountID, params.Encode())

	insights := make([]metadomain.RawInsight, 0)
	for requestURL != "" {
		body, err := c.call(ctx, requestURL)
		if err != nil {
			return nil, err
		}

		var response metadomain.InsightsResponse
		if err := json.Unmarshal(body, &response); err != nil {
			logrus.WithError(err).Error("Erro ao decodificar JSON de insights")
			return nil, err
		}

		insights = append(insights, response.Data...)

		// paging.next já carrega todos os parâmetros, inclusive o access_token
		requestURL = response.Paging.Next
	}

	return insights, nil
}

// GetAdCreatives busca os metadados de criativo de um lote de anúncios em uma
// única chamada; quando o lote falha, degrada para buscas individuais de
// melhor esforço por anúncio
func (c *MetaClient) GetAdCreatives(ctx context.Context, adIDs []string) (map[string]*metadomain.RawCreative, error) {
	if len(adIDs) == 0 {
		return map[string]*metadomain.RawCreative{}, nil
	}

	params := url.Values{}
	params.Add("ids", strings.Join(adIDs, ","))
	params.Add("fields", creativeFields)
	params.Add("access_token", c.Cfg.Meta.AccessToken)

	requestURL := fmt.Sprintf("%s/?%s", c.Cfg.Meta.URL, params.Encode())

	body, err := c.call(ctx, requestURL)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"batch_size": len(adIDs),
			"error":      err.Error(),
		}).Warn("Falha no lote de criativos, tentando busca individual por anúncio")
		return c.getAdCreativesOneByOne(ctx, adIDs), nil
	}

	var response map[string]metadomain.AdWithCreative
	if err := json.Unmarshal(body, &response); err != nil {
		logrus.WithError(err).Error("Erro ao decodificar JSON de criativos")
		return nil, err
	}

	creatives := make(map[string]*metadomain.RawCreative, len(response))
	for adID, ad := range response {
		if ad.Creative != nil {
			creatives[adID] = ad.Creative
		}
	}

	return creatives, nil
}

// getAdCreativesOneByOne busca criativos um a um, ignorando falhas individuais
func (c *MetaClient) getAdCreativesOneByOne(ctx context.Context, adIDs []string) map[string]*metadomain.RawCreative {
	creatives := make(map[string]*metadomain.RawCreative)

	for _, adID := range adIDs {
		params := url.Values{}
		params.Add("fields", creativeFields)
		params.Add("access_token", c.Cfg.Meta.AccessToken)

		requestURL := fmt.Sprintf("%s/%s?%s", c.Cfg.Meta.URL, adID, params.Encode())

		body, err := c.call(ctx, requestURL)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"ad_id": adID,
				"error": err.Error(),
			}).Warn("Falha ao buscar criativo individual, pulando")
			continue
		}

		var ad metadomain.AdWithCreative
		if err := json.Unmarshal(body, &ad); err != nil {
			logrus.WithField("ad_id", adID).WithError(err).Warn("Erro ao decodificar criativo individual")
			continue
		}

		if ad.Creative != nil {
			creatives[adID] = ad.Creative
		}
	}

	return creatives
}

// call executa uma chamada HTTP respeitando o espaçamento mínimo entre chamadas
// consecutivas e classifica falhas na taxonomia de erros do integrador
func (c *MetaClient) call(ctx context.Context, requestURL string) ([]byte, error) {
	c.waitCallSpacing()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, metadomain.NewNetworkError(err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, metadomain.NewNetworkError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, metadomain.NewNetworkError(err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResponse metadomain.ErrorResponse
		// O corpo de erro nem sempre é JSON válido; a classificação por status cobre esse caso
		_ = json.Unmarshal(body, &errResponse)

		apiErr := metadomain.ClassifyStatus(resp.StatusCode, errResponse.Error, string(body))

		logrus.WithFields(logrus.Fields{
			"status_code": resp.StatusCode,
			"error_kind":  string(apiErr.Kind),
			"error_code":  apiErr.Code,
		}).Debug("Chamada à Graph API retornou erro")

		return nil, apiErr
	}

	return body, nil
}

// waitCallSpacing garante o piso de espaçamento desde a chamada anterior.
// É cooperativo: evita rajadas consecutivas, não é um leaky bucket
func (c *MetaClient) waitCallSpacing() {
	c.callMu.Lock()
	defer c.callMu.Unlock()

	if c.minSpacing > 0 && !c.lastCall.IsZero() {
		elapsed := time.Since(c.lastCall)
		if elapsed < c.minSpacing {
			time.Sleep(c.minSpacing - elapsed)
		}
	}

	c.lastCall = time.Now()
}
