package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/vfg2006/ads-dashboard-api/internal/domain"
	"github.com/vfg2006/ads-dashboard-api/internal/usecases/insighting"
	"github.com/vfg2006/ads-dashboard-api/pkg/apiErrors"
	"github.com/vfg2006/ads-dashboard-api/pkg/log"
	"github.com/vfg2006/ads-dashboard-api/pkg/utils"
)

// parseRangeParams extrai e valida start_date/end_date da query string.
// Sem parâmetros, o período padrão é os últimos 30 dias
func parseRangeParams(r *http.Request) (domain.DateRange, error) {
	today := utils.TruncateToDay(time.Now())

	start := today.AddDate(0, 0, -30)
	end := today

	if raw := r.URL.Query().Get("start_date"); raw != "" {
		parsed, err := utils.ParseDate(raw)
		if err != nil {
			return domain.DateRange{}, err
		}
		start = *parsed
	}

	if raw := r.URL.Query().Get("end_date"); raw != "" {
		parsed, err := utils.ParseDate(raw)
		if err != nil {
			return domain.DateRange{}, err
		}
		end = *parsed
	}

	return domain.NewDateRange(start, end), nil
}

func GetAccountInsights(service insighting.Insighter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		id := httprouter.ParamsFromContext(r.Context()).ByName("id")

		rng, err := parseRangeParams(r)
		if err != nil {
			logger.WithFields(log.Fields{
				"account_id": id,
				"error":      err.Error(),
			}).Warn("insights: parâmetro de data inválido")

			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Datas inválidas, use o formato YYYY-MM-DD", nil)
			return
		}

		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		cursor := r.URL.Query().Get("cursor")

		page, err := service.GetInsights(r.Context(), id, rng, cursor, limit)
		if err != nil {
			logger.WithFields(log.Fields{
				"account_id": id,
				"range":      rng.String(),
				"error":      err.Error(),
			}).Error("insights: erro ao listar insights da conta")

			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao listar insights", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(page); err != nil {
			logger.WithError(err).Error("insights: erro ao codificar resposta")
		}
	})
}

func GetAccountInsightStats(service insighting.Insighter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		id := httprouter.ParamsFromContext(r.Context()).ByName("id")

		rng, err := parseRangeParams(r)
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Datas inválidas, use o formato YYYY-MM-DD", nil)
			return
		}

		stats, err := service.GetStats(r.Context(), id, rng)
		if err != nil {
			logger.WithFields(log.Fields{
				"account_id": id,
				"range":      rng.String(),
				"error":      err.Error(),
			}).Error("insights: erro ao agregar estatísticas da conta")

			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao agregar estatísticas", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(stats); err != nil {
			logger.WithError(err).Error("insights: erro ao codificar resposta")
		}
	})
}

func GetAccountChangeHistory(service insighting.Insighter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		id := httprouter.ParamsFromContext(r.Context()).ByName("id")

		history, err := service.GetChangeHistory(id)
		if err != nil {
			logger.WithFields(log.Fields{
				"account_id": id,
				"error":      err.Error(),
			}).Error("insights: erro ao ler histórico do cache")

			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao ler histórico do cache", nil)
			return
		}

		if history == nil {
			history = []domain.ChangeHistoryEntry{}
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(history); err != nil {
			logger.WithError(err).Error("insights: erro ao codificar resposta")
		}
	})
}

func ClearAccountInsights(service insighting.Insighter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		id := httprouter.ParamsFromContext(r.Context()).ByName("id")

		removed, err := service.ClearAccountData(r.Context(), id)
		if err != nil {
			logger.WithFields(log.Fields{
				"account_id": id,
				"error":      err.Error(),
			}).Error("insights: erro ao limpar dados da conta")

			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao limpar dados da conta", nil)
			return
		}

		logger.WithFields(log.Fields{
			"account_id": id,
			"removed":    removed,
		}).Info("insights: dados da conta removidos")

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]int64{"removed": removed})
	})
}
