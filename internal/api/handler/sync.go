package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
	"github.com/vfg2006/ads-dashboard-api/internal/cache"
	"github.com/vfg2006/ads-dashboard-api/internal/domain"
	"github.com/vfg2006/ads-dashboard-api/internal/usecases/insighting"
	"github.com/vfg2006/ads-dashboard-api/internal/usecases/syncing"
	"github.com/vfg2006/ads-dashboard-api/pkg/apiErrors"
	"github.com/vfg2006/ads-dashboard-api/pkg/log"
)

type RunSyncRequest struct {
	Mode string `json:"mode"` // full | incremental | initial
}

// RunSync dispara uma sincronização síncrona para a conta. Execuções
// sobrepostas da mesma conta são rejeitadas com 409
func RunSync(service *syncing.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		id := httprouter.ParamsFromContext(r.Context()).ByName("id")

		var req RunSyncRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Formato de requisição inválido", nil)
			return
		}

		mode := domain.SyncMode(req.Mode)
		switch mode {
		case domain.SyncModeFull, domain.SyncModeIncremental, domain.SyncModeInitial:
		case "":
			mode = domain.SyncModeIncremental
		default:
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Modo de sincronização inválido: use full, incremental ou initial", nil)
			return
		}

		logger.WithFields(log.Fields{
			"account_id": id,
			"mode":       string(mode),
		}).Info("sync: execução solicitada via API")

		report, err := service.Run(r.Context(), id, mode)
		if err != nil {
			switch {
			case errors.Is(err, syncing.ErrSyncInProgress):
				apiErrors.WriteError(w, apiErrors.ErrSyncInProgress, "Sincronização já em andamento para esta conta", nil)
			case errors.Is(err, cache.ErrStorageExhausted):
				apiErrors.WriteError(w, apiErrors.ErrStorageExhausted, "Armazenamento local esgotado", report)
			default:
				logger.WithFields(log.Fields{
					"account_id": id,
					"error":      err.Error(),
				}).Error("sync: erro na execução")

				apiErrors.WriteError(w, apiErrors.ErrExternalService, "Erro na sincronização", report)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(report); err != nil {
			logger.WithError(err).Error("sync: erro ao codificar resposta")
		}
	})
}

type SyncStatusResponse struct {
	InProgress bool               `json:"in_progress"`
	Status     *domain.SyncStatus `json:"status,omitempty"`
}

// GetSyncStatus retorna o status persistido e se há execução em andamento
func GetSyncStatus(service *syncing.Service, insightService insighting.Insighter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		id := httprouter.ParamsFromContext(r.Context()).ByName("id")

		status, err := insightService.GetSyncStatus(r.Context(), id)
		if err != nil {
			logger.WithFields(log.Fields{
				"account_id": id,
				"error":      err.Error(),
			}).Error("sync: erro ao ler status de sincronização")

			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao ler status de sincronização", nil)
			return
		}

		response := SyncStatusResponse{
			InProgress: service.InProgress(id),
			Status:     status,
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			logger.WithError(err).Error("sync: erro ao codificar resposta")
		}
	})
}
