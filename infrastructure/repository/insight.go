package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/vfg2006/ads-dashboard-api/infrastructure/database/postgres"
	"github.com/vfg2006/ads-dashboard-api/internal/domain"
	"github.com/vfg2006/ads-dashboard-api/pkg/utils"
)

const (
	insightsTable   = "insights i"
	syncStatusTable = "sync_status s"
)

type InsightRepository interface {
	ImportInsights(ctx context.Context, accountID string, records []domain.InsightRecord, strategy string) (*domain.ImportResult, error)
	GetInsights(ctx context.Context, accountID string, rng domain.DateRange, cursor string, limit int) (*domain.InsightPage, error)
	GetInsightsStats(ctx context.Context, accountID string, rng domain.DateRange) (*domain.InsightStats, error)
	CoveredDates(ctx context.Context, accountID string) (map[string]bool, error)
	ClearAccountData(ctx context.Context, accountID string) (int64, error)
	SaveSyncStatus(ctx context.Context, status *domain.SyncStatus) error
	GetSyncStatus(ctx context.Context, accountID string) (*domain.SyncStatus, error)
}

type insightRepository struct {
	conn *postgres.Connection
}

func NewInsightRepository(conn *postgres.Connection) InsightRepository {
	return &insightRepository{
		conn: conn,
	}
}

// rawPayload agrupa os arrays brutos da API persistidos em uma única coluna JSONB
type rawPayload struct {
	Actions           []domain.ActionEntry `json:"actions,omitempty"`
	ActionValues      []domain.ActionEntry `json:"action_values,omitempty"`
	CostPerActionType []domain.ActionEntry `json:"cost_per_action_type,omitempty"`
	PurchaseROAS      []domain.ActionEntry `json:"purchase_roas,omitempty"`
}

// ImportInsights grava os registros com upsert sobre a chave de identidade
// (account_id, date_start, campaign_scope, ad_id). Na estratégia merge, o
// criativo existente é preservado quando o registro novo chega sem ele
func (r *insightRepository) ImportInsights(ctx context.Context, accountID string, records []domain.InsightRecord, strategy string) (*domain.ImportResult, error) {
	result := &domain.ImportResult{}

	if len(records) == 0 {
		return result, nil
	}

	err := r.conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		for i := range records {
			inserted, err := r.upsertRecord(ctx, tx, accountID, &records[i], strategy)
			if err != nil {
				return err
			}

			if inserted {
				result.Imported++
			} else {
				result.Updated++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *insightRepository) upsertRecord(ctx context.Context, tx *sql.Tx, accountID string, record *domain.InsightRecord, strategy string) (bool, error) {
	campaignScope := record.CampaignID
	if campaignScope == "" {
		campaignScope = domain.AccountScope
	}

	rawJSON, err := json.Marshal(rawPayload{
		Actions:           record.Actions,
		ActionValues:      record.ActionValues,
		CostPerActionType: record.CostPerActionType,
		PurchaseROAS:      record.PurchaseROAS,
	})
	if err != nil {
		return false, fmt.Errorf("erro ao serializar payload bruto: %w", err)
	}

	var creativeJSON []byte
	if record.Creative != nil {
		creativeJSON, err = json.Marshal(record.Creative)
		if err != nil {
			return false, fmt.Errorf("erro ao serializar criativo: %w", err)
		}
	}

	conflictUpdate := `
		ON CONFLICT (account_id, date_start, campaign_scope, ad_id) DO UPDATE SET
			date_stop = EXCLUDED.date_stop,
			adset_id = EXCLUDED.adset_id,
			ad_name = EXCLUDED.ad_name,
			impressions = EXCLUDED.impressions,
			clicks = EXCLUDED.clicks,
			spend = EXCLUDED.spend,
			reach = EXCLUDED.reach,
			frequency = EXCLUDED.frequency,
			cpm = EXCLUDED.cpm,
			cpc = EXCLUDED.cpc,
			ctr = EXCLUDED.ctr,
			conversions = EXCLUDED.conversions,
			conversion_value = EXCLUDED.conversion_value,
			cost_per_conversion = EXCLUDED.cost_per_conversion,
			roas = EXCLUDED.roas,
			raw = EXCLUDED.raw,
			creative = COALESCE(EXCLUDED.creative, insights.creative),
			updated_at = NOW()
		RETURNING (xmax = 0) AS inserted
	`
	if strategy == "replace" {
		conflictUpdate = `
			ON CONFLICT (account_id, date_start, campaign_scope, ad_id) DO UPDATE SET
				date_stop = EXCLUDED.date_stop,
				adset_id = EXCLUDED.adset_id,
				ad_name = EXCLUDED.ad_name,
				impressions = EXCLUDED.impressions,
				clicks = EXCLUDED.clicks,
				spend = EXCLUDED.spend,
				reach = EXCLUDED.reach,
				frequency = EXCLUDED.frequency,
				cpm = EXCLUDED.cpm,
				cpc = EXCLUDED.cpc,
				ctr = EXCLUDED.ctr,
				conversions = EXCLUDED.conversions,
				conversion_value = EXCLUDED.conversion_value,
				cost_per_conversion = EXCLUDED.cost_per_conversion,
				roas = EXCLUDED.roas,
				raw = EXCLUDED.raw,
				creative = EXCLUDED.creative,
				updated_at = NOW()
			RETURNING (xmax = 0) AS inserted
		`
	}

	query := squirrel.StatementBuilder.
		Insert("insights").
		Columns(
			"account_id", "date_start", "date_stop", "campaign_scope", "ad_id",
			"adset_id", "ad_name",
			"impressions", "clicks", "spend", "reach", "frequency", "cpm", "cpc", "ctr",
			"conversions", "conversion_value", "cost_per_conversion", "roas",
			"raw", "creative",
		).
		Values(
			accountID,
			record.DateStart,
			record.DateStop,
			campaignScope,
			record.AdID,
			record.AdsetID,
			record.AdName,
			record.Impressions,
			record.Clicks,
			record.Spend,
			record.Reach,
			record.Frequency,
			record.CPM,
			record.CPC,
			record.CTR,
			record.Conversion.Conversions,
			record.Conversion.ConversionValue,
			record.Conversion.CostPerConversion,
			record.Conversion.ROAS,
			rawJSON,
			creativeJSON,
		).
		Suffix(conflictUpdate).
		PlaceholderFormat(squirrel.Dollar)

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return false, fmt.Errorf("erro ao construir a query: %w", err)
	}

	var inserted bool
	if err := tx.QueryRowContext(ctx, sqlQuery, args...).Scan(&inserted); err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return false, fmt.Errorf("erro no banco de dados: %w (código: %s)", pqErr, pqErr.Code)
		}
		return false, fmt.Errorf("erro ao executar a query: %w", err)
	}

	return inserted, nil
}

const insightColumns = `
	i.account_id, i.date_start, i.date_stop, i.campaign_scope, i.ad_id,
	i.adset_id, i.ad_name,
	i.impressions, i.clicks, i.spend, i.reach, i.frequency, i.cpm, i.cpc, i.ctr,
	i.conversions, i.conversion_value, i.cost_per_conversion, i.roas,
	i.raw, i.creative
`

// GetInsights lista os registros de um período, ordenados por data, em páginas
// com cursor opaco. Uma linha extra é buscada para saber se há página seguinte
func (r *insightRepository) GetInsights(ctx context.Context, accountID string, rng domain.DateRange, cursor string, limit int) (*domain.InsightPage, error) {
	if limit <= 0 {
		limit = 100
	}

	offset := utils.ParseIntOrZero(cursor)

	query, args, err := squirrel.
		Select(insightColumns).
		From(insightsTable).
		Where(squirrel.Eq{"i.account_id": accountID}).
		Where(squirrel.GtOrEq{"i.date_start": rng.Start.Format(utils.DateLayout)}).
		Where(squirrel.LtOrEq{"i.date_start": rng.End.Format(utils.DateLayout)}).
		OrderBy("i.date_start ASC", "i.campaign_scope ASC", "i.ad_id ASC").
		Limit(uint64(limit + 1)).
		Offset(uint64(offset)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	insights := make([]*domain.InsightRecord, 0)
	for rows.Next() {
		insight, err := r.scanInsight(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear insight: %w", err)
		}
		insights = append(insights, insight)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return buildInsightPage(insights, offset, limit), nil
}

// buildInsightPage monta o envelope paginado a partir do resultado com a linha
// extra de sondagem de próxima página
func buildInsightPage(insights []*domain.InsightRecord, offset, limit int) *domain.InsightPage {
	page := &domain.InsightPage{Items: insights}

	if len(insights) > limit {
		page.Items = insights[:limit]
		page.HasMore = true
		page.NextCursor = strconv.Itoa(offset + limit)
	}

	return page
}

// GetInsightsStats agrega os KPIs de nível de conta do período
func (r *insightRepository) GetInsightsStats(ctx context.Context, accountID string, rng domain.DateRange) (*domain.InsightStats, error) {
	query, args, err := squirrel.
		Select(
			"COUNT(*)",
			"COALESCE(SUM(i.impressions), 0)",
			"COALESCE(SUM(i.clicks), 0)",
			"COALESCE(SUM(i.spend), 0)",
			"COALESCE(SUM(i.conversions), 0)",
			"COALESCE(SUM(i.conversion_value), 0)",
		).
		From(insightsTable).
		Where(squirrel.Eq{"i.account_id": accountID, "i.campaign_scope": domain.AccountScope}).
		Where(squirrel.GtOrEq{"i.date_start": rng.Start.Format(utils.DateLayout)}).
		Where(squirrel.LtOrEq{"i.date_start": rng.End.Format(utils.DateLayout)}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	stats := &domain.InsightStats{AccountID: accountID}

	err = r.conn.QueryRowContext(ctx, query, args...).Scan(
		&stats.Records,
		&stats.Impressions,
		&stats.Clicks,
		&stats.Spend,
		&stats.Conversions,
		&stats.ConversionValue,
	)
	if err != nil {
		return nil, fmt.Errorf("erro ao agregar estatísticas: %w", err)
	}

	if stats.Spend > 0 {
		stats.ROAS = utils.RoundWithTwoDecimalPlace(stats.ConversionValue / stats.Spend)
	}

	return stats, nil
}

// CoveredDates retorna o conjunto de datas com registro de nível de conta
func (r *insightRepository) CoveredDates(ctx context.Context, accountID string) (map[string]bool, error) {
	query, args, err := squirrel.
		Select("DISTINCT i.date_start").
		From(insightsTable).
		Where(squirrel.Eq{"i.account_id": accountID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	covered := make(map[string]bool)
	for rows.Next() {
		var date time.Time
		if err := rows.Scan(&date); err != nil {
			return nil, fmt.Errorf("erro ao escanear data: %w", err)
		}
		covered[date.Format(utils.DateLayout)] = true
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return covered, nil
}

// ClearAccountData remove todos os registros e o status de sincronização da conta
func (r *insightRepository) ClearAccountData(ctx context.Context, accountID string) (int64, error) {
	var removed int64

	err := r.conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		query, args, err := squirrel.
			Delete("insights").
			Where(squirrel.Eq{"account_id": accountID}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("erro ao construir a query: %w", err)
		}

		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("erro ao executar a query: %w", err)
		}

		removed, err = result.RowsAffected()
		if err != nil {
			return fmt.Errorf("erro ao obter número de linhas afetadas: %w", err)
		}

		query, args, err = squirrel.
			Delete("sync_status").
			Where(squirrel.Eq{"account_id": accountID}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("erro ao construir a query: %w", err)
		}

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("erro ao remover status de sincronização: %w", err)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return removed, nil
}

// SaveSyncStatus grava o status de sincronização da conta com upsert
func (r *insightRepository) SaveSyncStatus(ctx context.Context, status *domain.SyncStatus) error {
	query := squirrel.StatementBuilder.
		Insert("sync_status").
		Columns("account_id", "last_full_sync", "last_incremental_sync", "total_records", "earliest_date", "latest_date").
		Values(
			status.AccountID,
			status.LastFullSync,
			status.LastIncrementalSync,
			status.TotalRecords,
			nullIfEmpty(status.EarliestDate),
			nullIfEmpty(status.LatestDate),
		).
		Suffix(`
			ON CONFLICT (account_id) DO UPDATE SET
				last_full_sync = COALESCE(EXCLUDED.last_full_sync, sync_status.last_full_sync),
				last_incremental_sync = COALESCE(EXCLUDED.last_incremental_sync, sync_status.last_incremental_sync),
				total_records = EXCLUDED.total_records,
				earliest_date = COALESCE(EXCLUDED.earliest_date, sync_status.earliest_date),
				latest_date = COALESCE(EXCLUDED.latest_date, sync_status.latest_date),
				updated_at = NOW()
		`).
		PlaceholderFormat(squirrel.Dollar)

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if _, err := r.conn.ExecContext(ctx, sqlQuery, args...); err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return fmt.Errorf("erro no banco de dados: %w (código: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("erro ao executar a query: %w", err)
	}

	return nil
}

// GetSyncStatus lê o status de sincronização da conta; nil quando inexistente
func (r *insightRepository) GetSyncStatus(ctx context.Context, accountID string) (*domain.SyncStatus, error) {
	query, args, err := squirrel.
		Select("s.account_id, s.last_full_sync, s.last_incremental_sync, s.total_records, s.earliest_date, s.latest_date").
		From(syncStatusTable).
		Where(squirrel.Eq{"s.account_id": accountID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	status := &domain.SyncStatus{}
	var earliest, latest sql.NullTime

	err = r.conn.QueryRowContext(ctx, query, args...).Scan(
		&status.AccountID,
		&status.LastFullSync,
		&status.LastIncrementalSync,
		&status.TotalRecords,
		&earliest,
		&latest,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao escanear status de sincronização: %w", err)
	}

	if earliest.Valid {
		status.EarliestDate = earliest.Time.Format(utils.DateLayout)
	}
	if latest.Valid {
		status.LatestDate = latest.Time.Format(utils.DateLayout)
	}

	return status, nil
}

func (r *insightRepository) scanInsight(rows *sql.Rows) (*domain.InsightRecord, error) {
	insight := &domain.InsightRecord{}
	var dateStart, dateStop time.Time
	var campaignScope string
	var adsetID, adName sql.NullString
	var rawJSON, creativeJSON []byte

	err := rows.Scan(
		&insight.AccountID,
		&dateStart,
		&dateStop,
		&campaignScope,
		&insight.AdID,
		&adsetID,
		&adName,
		&insight.Impressions,
		&insight.Clicks,
		&insight.Spend,
		&insight.Reach,
		&insight.Frequency,
		&insight.CPM,
		&insight.CPC,
		&insight.CTR,
		&insight.Conversion.Conversions,
		&insight.Conversion.ConversionValue,
		&insight.Conversion.CostPerConversion,
		&insight.Conversion.ROAS,
		&rawJSON,
		&creativeJSON,
	)
	if err != nil {
		return nil, err
	}

	insight.DateStart = dateStart.Format(utils.DateLayout)
	insight.DateStop = dateStop.Format(utils.DateLayout)
	if campaignScope != domain.AccountScope {
		insight.CampaignID = campaignScope
	}
	insight.AdsetID = adsetID.String
	insight.AdName = adName.String

	if len(rawJSON) > 0 {
		var raw rawPayload
		if err := json.Unmarshal(rawJSON, &raw); err != nil {
			return nil, fmt.Errorf("erro ao deserializar payload bruto: %w", err)
		}
		insight.Actions = raw.Actions
		insight.ActionValues = raw.ActionValues
		insight.CostPerActionType = raw.CostPerActionType
		insight.PurchaseROAS = raw.PurchaseROAS
	}

	if len(creativeJSON) > 0 {
		creative := &domain.Creative{}
		if err := json.Unmarshal(creativeJSON, creative); err != nil {
			return nil, fmt.Errorf("erro ao deserializar criativo: %w", err)
		}
		insight.Creative = creative
	}

	return insight, nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
