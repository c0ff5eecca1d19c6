package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/vfg2006/ads-dashboard-api/internal/domain"
	"github.com/vfg2006/ads-dashboard-api/pkg/apiErrors"
	"github.com/vfg2006/ads-dashboard-api/pkg/log"
)

// AccountLister é a visão de contas exigida pelos handlers
type AccountLister interface {
	ListAccounts(ctx context.Context, availableStatus []domain.AdAccountStatus) ([]*domain.AdAccount, error)
	GetAccountByID(ctx context.Context, accountID string) (*domain.AdAccount, error)
	SaveOrUpdate(ctx context.Context, account *domain.AdAccount) error
	UpdateStatus(ctx context.Context, accountID string, status domain.AdAccountStatus) error
}

func AdAccountList(service AccountLister) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		var statuses []domain.AdAccountStatus
		if raw := r.URL.Query().Get("status"); raw != "" {
			statuses = append(statuses, domain.AdAccountStatus(raw))
		}

		accounts, err := service.ListAccounts(r.Context(), statuses)
		if err != nil {
			logger.WithError(err).Error("accounts: erro ao listar contas")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao listar contas", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(accounts); err != nil {
			logger.WithError(err).Error("accounts: erro ao codificar resposta")
		}
	})
}

func GetAdAccount(service AccountLister) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		id := httprouter.ParamsFromContext(r.Context()).ByName("id")

		account, err := service.GetAccountByID(r.Context(), id)
		if err != nil {
			logger.WithFields(log.Fields{
				"account_id": id,
				"error":      err.Error(),
			}).Error("accounts: erro ao buscar conta")

			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao buscar conta", nil)
			return
		}

		if account == nil {
			apiErrors.WriteError(w, apiErrors.ErrAccountNotFound, "Conta não encontrada", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(account); err != nil {
			logger.WithError(err).Error("accounts: erro ao codificar resposta")
		}
	})
}

func SaveAdAccount(service AccountLister) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		var account domain.AdAccount
		if err := json.NewDecoder(r.Body).Decode(&account); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Formato de requisição inválido", nil)
			return
		}

		if account.ID == "" || account.ExternalID == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "id e external_id são obrigatórios", nil)
			return
		}

		if account.Status == "" {
			account.Status = domain.AdAccountStatusActive
		}

		if err := service.SaveOrUpdate(r.Context(), &account); err != nil {
			logger.WithFields(log.Fields{
				"account_id": account.ID,
				"error":      err.Error(),
			}).Error("accounts: erro ao salvar conta")

			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao salvar conta", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(account)
	})
}

type updateStatusRequest struct {
	Status domain.AdAccountStatus `json:"status"`
}

// UpdateAdAccountStatus ativa ou desativa uma conta. Contas inativas ficam de
// fora do ciclo de sincronização agendada
func UpdateAdAccountStatus(service AccountLister) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		id := httprouter.ParamsFromContext(r.Context()).ByName("id")

		var payload updateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Formato de requisição inválido", nil)
			return
		}

		if payload.Status != domain.AdAccountStatusActive && payload.Status != domain.AdAccountStatusInactive {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "status deve ser active ou inactive", nil)
			return
		}

		account, err := service.GetAccountByID(r.Context(), id)
		if err != nil {
			logger.WithFields(log.Fields{
				"account_id": id,
				"error":      err.Error(),
			}).Error("accounts: erro ao buscar conta")

			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao buscar conta", nil)
			return
		}

		if account == nil {
			apiErrors.WriteError(w, apiErrors.ErrAccountNotFound, "Conta não encontrada", nil)
			return
		}

		if err := service.UpdateStatus(r.Context(), id, payload.Status); err != nil {
			logger.WithFields(log.Fields{
				"account_id": id,
				"status":     payload.Status,
				"error":      err.Error(),
			}).Error("accounts: erro ao atualizar status da conta")

			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao atualizar status da conta", nil)
			return
		}

		logger.WithFields(log.Fields{
			"account_id": id,
			"status":     payload.Status,
		}).Info("accounts: status da conta atualizado")

		account.Status = payload.Status

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(account); err != nil {
			logger.WithError(err).Error("accounts: erro ao codificar resposta")
		}
	})
}
