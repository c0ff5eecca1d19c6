package meta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metadomain "github.com/vfg2006/ads-dashboard-api/infrastructure/integrator/meta/domain"
)

func TestNormalize_BasicMetrics(t *testing.T) {
	raw := metadomain.RawInsight{
		DateStart:   "2024-05-01",
		DateStop:    "2024-05-01",
		AccountID:   "act_1",
		Impressions: "1200",
		Clicks:      "45",
		Spend:       "99.90",
		Reach:       "800",
		Frequency:   "1.5",
		CPM:         "83.25",
		CPC:         "2.22",
		CTR:         "3.75",
	}

	record := Normalize(raw)

	assert.Equal(t, 1200, record.Impressions)
	assert.Equal(t, 45, record.Clicks)
	assert.Equal(t, 99.90, record.Spend)
	assert.Equal(t, 800, record.Reach)
	assert.Equal(t, 1.5, record.Frequency)
	assert.Equal(t, "2024-05-01|account|", record.Key())
}

// A precedência escolhe purchase sobre website_purchase, independentemente da
// ordem em que a API devolve os tipos de ação
func TestNormalize_ConversionPrecedence(t *testing.T) {
	raw := metadomain.RawInsight{
		DateStart: "2024-05-01",
		Spend:     "50.00",
		Actions: []metadomain.ActionEntry{
			{ActionType: "website_purchase", Value: "3"},
			{ActionType: "purchase", Value: "5"},
			{ActionType: "link_click", Value: "40"},
		},
		ActionValues: []metadomain.ActionEntry{
			{ActionType: "website_purchase", Value: "120.00"},
			{ActionType: "purchase", Value: "200.00"},
		},
	}

	record := Normalize(raw)

	assert.Equal(t, 5.0, record.Conversion.Conversions)
	assert.Equal(t, 200.0, record.Conversion.ConversionValue)

	// Ordem invertida do array produz exatamente o mesmo resultado
	raw.Actions[0], raw.Actions[1] = raw.Actions[1], raw.Actions[0]
	raw.ActionValues[0], raw.ActionValues[1] = raw.ActionValues[1], raw.ActionValues[0]

	again := Normalize(raw)
	assert.Equal(t, record.Conversion, again.Conversion)
}

func TestNormalize_OmniPurchaseWinsOverAll(t *testing.T) {
	raw := metadomain.RawInsight{
		DateStart: "2024-05-01",
		Actions: []metadomain.ActionEntry{
			{ActionType: "offsite_conversion.fb_pixel_purchase", Value: "2"},
			{ActionType: "omni_purchase", Value: "7"},
			{ActionType: "purchase", Value: "6"},
		},
	}

	record := Normalize(raw)
	assert.Equal(t, 7.0, record.Conversion.Conversions)
}

// Sem custo por conversão informado, o fallback é spend / conversões
func TestNormalize_CostPerConversionFallback(t *testing.T) {
	raw := metadomain.RawInsight{
		DateStart: "2024-05-01",
		Spend:     "100.00",
		Actions: []metadomain.ActionEntry{
			{ActionType: "purchase", Value: "4"},
		},
	}

	record := Normalize(raw)
	assert.Equal(t, 25.0, record.Conversion.CostPerConversion)
}

// Sem purchase_roas informado, o fallback é valor de conversão / spend
func TestNormalize_ROASFallback(t *testing.T) {
	raw := metadomain.RawInsight{
		DateStart: "2024-05-01",
		Spend:     "100.00",
		Actions: []metadomain.ActionEntry{
			{ActionType: "purchase", Value: "4"},
		},
		ActionValues: []metadomain.ActionEntry{
			{ActionType: "purchase", Value: "350.00"},
		},
	}

	record := Normalize(raw)
	assert.Equal(t, 3.5, record.Conversion.ROAS)
}

func TestNormalize_NoConversionData(t *testing.T) {
	raw := metadomain.RawInsight{
		DateStart: "2024-05-01",
		Spend:     "10.00",
		Actions: []metadomain.ActionEntry{
			{ActionType: "link_click", Value: "40"},
		},
	}

	record := Normalize(raw)

	assert.Zero(t, record.Conversion.Conversions)
	assert.Zero(t, record.Conversion.ConversionValue)
	assert.Zero(t, record.Conversion.ROAS)

	// Arrays brutos preservados para diagnóstico
	require.Len(t, record.Actions, 1)
	assert.Equal(t, "link_click", record.Actions[0].ActionType)
}

func TestNormalize_IsPure(t *testing.T) {
	raw := metadomain.RawInsight{
		DateStart: "2024-05-01",
		Spend:     "50.00",
		Actions: []metadomain.ActionEntry{
			{ActionType: "purchase", Value: "5"},
		},
	}

	first := Normalize(raw)
	second := Normalize(raw)

	assert.Equal(t, first, second)
}

func TestNormalizeCreative_Carousel(t *testing.T) {
	raw := &metadomain.RawCreative{
		ID:           "cr1",
		ObjectType:   "SHARE",
		ThumbnailURL: "https://example.test/thumb.jpg",
		ObjectStorySpec: &metadomain.ObjectStorySpec{
			LinkData: &metadomain.LinkData{
				ChildAttachments: []metadomain.ChildAttachment{
					{Name: "Card 1", Picture: "https://example.test/1.jpg", Link: "https://example.test/1"},
					{Name: "Card 2", Picture: "https://example.test/2.jpg", Link: "https://example.test/2"},
				},
			},
		},
	}

	creative := NormalizeCreative(raw)

	require.NotNil(t, creative)
	assert.Equal(t, "cr1", creative.CreativeID)
	assert.Len(t, creative.CarouselCards, 2)
	assert.Equal(t, "Card 2", creative.CarouselCards[1].Name)

	assert.Nil(t, NormalizeCreative(nil))
}
