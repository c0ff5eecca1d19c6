package meta

import (
	metadomain "github.com/vfg2006/ads-dashboard-api/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/ads-dashboard-api/internal/domain"
	"github.com/vfg2006/ads-dashboard-api/pkg/utils"
)

// conversionPrecedence define a ordem de preferência entre os tipos de ação de
// conversão da API. O omni_purchase é o agregado pré-calculado pela própria
// plataforma e tem prioridade; os demais são variantes parciais do mesmo evento.
// A escolha é estável e independente da posição no array
var conversionPrecedence = []string{
	"omni_purchase",
	"purchase",
	"website_purchase",
	"offsite_conversion.fb_pixel_purchase",
	"offsite_conversion",
}

// Normalize converte um registro bruto da API, com seus arrays heterogêneos por
// tipo de ação, em um InsightRecord com a tupla canônica de conversão. Os arrays
// brutos são preservados no registro para diagnóstico. A função é pura: a mesma
// entrada sempre produz a mesma saída, requisito da idempotência do merge
func Normalize(raw metadomain.RawInsight) domain.InsightRecord {
	record := domain.InsightRecord{
		DateStart:  raw.DateStart,
		DateStop:   raw.DateStop,
		AccountID:  raw.AccountID,
		CampaignID: raw.CampaignID,
		AdsetID:    raw.AdsetID,
		AdID:       raw.AdID,
		AdName:     raw.AdName,

		Impressions: utils.ParseIntOrZero(raw.Impressions),
		Clicks:      utils.ParseIntOrZero(raw.Clicks),
		Spend:       utils.ParseFloatOrZero(raw.Spend),
		Reach:       utils.ParseIntOrZero(raw.Reach),
		Frequency:   utils.ParseFloatOrZero(raw.Frequency),
		CPM:         utils.ParseFloatOrZero(raw.CPM),
		CPC:         utils.ParseFloatOrZero(raw.CPC),
		CTR:         utils.ParseFloatOrZero(raw.CTR),

		Actions:           copyActions(raw.Actions),
		ActionValues:      copyActions(raw.ActionValues),
		CostPerActionType: copyActions(raw.CostPerActionType),
		PurchaseROAS:      copyActions(raw.PurchaseROAS),
	}

	record.Conversion = normalizeConversion(raw, record.Spend)

	return record
}

// normalizeConversion extrai a tupla {conversões, valor, custo por conversão,
// ROAS} aplicando a precedência definida sobre os arrays por tipo de ação
func normalizeConversion(raw metadomain.RawInsight, spend float64) domain.ConversionMetrics {
	conversions, _ := pickByPrecedence(raw.Actions)
	value, _ := pickByPrecedence(raw.ActionValues)

	costPerConversion, found := pickByPrecedence(raw.CostPerActionType)
	if !found && conversions > 0 {
		costPerConversion = utils.RoundWithTwoDecimalPlace(spend / conversions)
	}

	roas, found := pickByPrecedence(raw.PurchaseROAS)
	if !found && spend > 0 && value > 0 {
		roas = utils.RoundWithTwoDecimalPlace(value / spend)
	}

	return domain.ConversionMetrics{
		Conversions:       conversions,
		ConversionValue:   value,
		CostPerConversion: costPerConversion,
		ROAS:              roas,
	}
}

// pickByPrecedence devolve o valor do tipo de ação de maior precedência presente
// no array; a varredura por precedência (e não pela ordem do array) garante
// resultado estável e evita somar variantes sobrepostas do mesmo evento
func pickByPrecedence(entries []metadomain.ActionEntry) (float64, bool) {
	if len(entries) == 0 {
		return 0, false
	}

	for _, actionType := range conversionPrecedence {
		for _, entry := range entries {
			if entry.ActionType == actionType {
				return utils.ParseFloatOrZero(entry.Value), true
			}
		}
	}

	return 0, false
}

func copyActions(entries []metadomain.ActionEntry) []domain.ActionEntry {
	if len(entries) == 0 {
		return nil
	}

	out := make([]domain.ActionEntry, len(entries))
	for i, entry := range entries {
		out[i] = domain.ActionEntry{ActionType: entry.ActionType, Value: entry.Value}
	}

	return out
}

// NormalizeCreative converte o sub-objeto creative do wire para o descritor de
// criativo do domínio
func NormalizeCreative(raw *metadomain.RawCreative) *domain.Creative {
	if raw == nil {
		return nil
	}

	creative := &domain.Creative{
		CreativeID:   raw.ID,
		Type:         raw.ObjectType,
		ThumbnailURL: raw.ThumbnailURL,
		VideoID:      raw.VideoID,
	}

	if raw.ObjectStorySpec != nil && raw.ObjectStorySpec.LinkData != nil {
		for _, attachment := range raw.ObjectStorySpec.LinkData.ChildAttachments {
			creative.CarouselCards = append(creative.CarouselCards, domain.CarouselCard{
				Name:     attachment.Name,
				ImageURL: attachment.Picture,
				Link:     attachment.Link,
			})
		}
	}

	return creative
}
