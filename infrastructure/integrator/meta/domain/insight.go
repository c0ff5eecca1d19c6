package metadomain

// ActionEntry é uma entrada de ação da API: um valor numérico-como-string
// rotulado pelo tipo de ação (purchase, website_purchase, omni_purchase, ...)
type ActionEntry struct {
	ActionType string `json:"action_type"`
	Value      string `json:"value"`
}

// RawInsight representa um registro bruto de insights como chega da API.
// Todos os campos numéricos são strings no wire
type RawInsight struct {
	AccountID   string `json:"account_id"`
	AccountName string `json:"account_name,omitempty"`
	CampaignID  string `json:"campaign_id,omitempty"`
	AdsetID     string `json:"adset_id,omitempty"`
	AdID        string `json:"ad_id,omitempty"`
	AdName      string `json:"ad_name,omitempty"`
	DateStart   string `json:"date_start"`
	DateStop    string `json:"date_stop"`

	Impressions string `json:"impressions"`
	Clicks      string `json:"clicks"`
	Spend       string `json:"spend"`
	Reach       string `json:"reach"`
	Frequency   string `json:"frequency"`
	CPM         string `json:"cpm"`
	CPC         string `json:"cpc"`
	CTR         string `json:"ctr"`

	Actions           []ActionEntry `json:"actions,omitempty"`
	ActionValues      []ActionEntry `json:"action_values,omitempty"`
	CostPerActionType []ActionEntry `json:"cost_per_action_type,omitempty"`
	PurchaseROAS      []ActionEntry `json:"purchase_roas,omitempty"`
}

// Paging representa os cursores de paginação da Graph API
type Paging struct {
	Cursors struct {
		Before string `json:"before"`
		After  string `json:"after"`
	} `json:"cursors"`
	Next string `json:"next,omitempty"`
}

// InsightsResponse é a resposta paginada do endpoint /insights
type InsightsResponse struct {
	Data   []RawInsight `json:"data"`
	Paging Paging       `json:"paging"`
}

// RawCreative representa o sub-objeto creative retornado por GET /{adId}
type RawCreative struct {
	ID           string `json:"id"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	VideoID      string `json:"video_id,omitempty"`
	ObjectType   string `json:"object_type,omitempty"`

	ObjectStorySpec *ObjectStorySpec `json:"object_story_spec,omitempty"`
}

// ObjectStorySpec carrega os dados do post vinculado ao criativo
type ObjectStorySpec struct {
	LinkData *LinkData `json:"link_data,omitempty"`
}

// LinkData contém os anexos de um anúncio em formato carrossel
type LinkData struct {
	ChildAttachments []ChildAttachment `json:"child_attachments,omitempty"`
}

// ChildAttachment é um cartão individual do carrossel
type ChildAttachment struct {
	Name    string `json:"name,omitempty"`
	Link    string `json:"link,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// AdWithCreative é a resposta de GET /{adId}?fields=creative{...}
type AdWithCreative struct {
	ID       string       `json:"id"`
	Creative *RawCreative `json:"creative,omitempty"`
}
