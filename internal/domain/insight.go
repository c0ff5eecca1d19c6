package domain

import (
	"fmt"
	"time"
)

// AccountScope é o identificador de escopo usado quando o registro é de nível de conta
const AccountScope = "account"

// ConversionMetrics é a tupla canônica de conversão extraída das métricas heterogêneas da API
type ConversionMetrics struct {
	Conversions       float64 `json:"conversions"`
	ConversionValue   float64 `json:"conversion_value"`
	CostPerConversion float64 `json:"cost_per_conversion"`
	ROAS              float64 `json:"roas"`
}

// ActionEntry representa uma entrada bruta de ação da API (preservada para diagnóstico)
type ActionEntry struct {
	ActionType string `json:"action_type"`
	Value      string `json:"value"`
}

// CarouselCard representa um cartão de carrossel de um criativo
type CarouselCard struct {
	Name     string `json:"name,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	Link     string `json:"link,omitempty"`
}

// Creative contém os metadados de criativo anexados a registros de nível de anúncio
type Creative struct {
	CreativeID    string         `json:"creative_id"`
	Type          string         `json:"type,omitempty"`
	ThumbnailURL  string         `json:"thumbnail_url,omitempty"`
	VideoID       string         `json:"video_id,omitempty"`
	CarouselCards []CarouselCard `json:"carousel_cards,omitempty"`
}

// InsightRecord representa uma observação de métricas de anúncios para uma data e escopo
type InsightRecord struct {
	DateStart  string `json:"date_start"`
	DateStop   string `json:"date_stop"`
	AccountID  string `json:"account_id,omitempty"`
	CampaignID string `json:"campaign_id,omitempty"`
	AdsetID    string `json:"adset_id,omitempty"`
	AdID       string `json:"ad_id,omitempty"`
	AdName     string `json:"ad_name,omitempty"`

	Impressions int     `json:"impressions"`
	Clicks      int     `json:"clicks"`
	Spend       float64 `json:"spend"`
	Reach       int     `json:"reach"`
	Frequency   float64 `json:"frequency"`
	CPM         float64 `json:"cpm"`
	CPC         float64 `json:"cpc"`
	CTR         float64 `json:"ctr"`

	Conversion ConversionMetrics `json:"conversion"`

	// Arrays brutos preservados para diagnóstico
	Actions           []ActionEntry `json:"actions,omitempty"`
	ActionValues      []ActionEntry `json:"action_values,omitempty"`
	CostPerActionType []ActionEntry `json:"cost_per_action_type,omitempty"`
	PurchaseROAS      []ActionEntry `json:"purchase_roas,omitempty"`

	Creative *Creative `json:"creative,omitempty"`
}

// Key retorna a chave de identidade do registro: (dateStart, campaignId ou "account", adId ou "")
// A unicidade desta chave é a invariante preservada pelo merge do cache
func (r *InsightRecord) Key() string {
	campaign := r.CampaignID
	if campaign == "" {
		campaign = AccountScope
	}

	return fmt.Sprintf("%s|%s|%s", r.DateStart, campaign, r.AdID)
}

// CachedRecord é um InsightRecord acrescido do instante em que foi sincronizado
type CachedRecord struct {
	InsightRecord
	SyncedAt time.Time `json:"synced_at"`
}

// ImportResult é o resultado de uma importação de registros no armazenamento remoto
type ImportResult struct {
	Imported int `json:"imported"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
}

// InsightPage é uma página de registros com cursor opaco para a leitura seguinte
type InsightPage struct {
	Items      []*InsightRecord `json:"items"`
	HasMore    bool             `json:"has_more"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

// InsightStats contém os agregados de KPI de um período
type InsightStats struct {
	AccountID       string  `json:"account_id"`
	Records         int     `json:"records"`
	Impressions     int     `json:"impressions"`
	Clicks          int     `json:"clicks"`
	Spend           float64 `json:"spend"`
	Conversions     float64 `json:"conversions"`
	ConversionValue float64 `json:"conversion_value"`
	ROAS            float64 `json:"roas"`
}
