package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/ads-dashboard-api/internal/domain"
)

type stubAccountService struct {
	accounts      map[string]*domain.AdAccount
	updatedID     string
	updatedStatus domain.AdAccountStatus
}

func (s *stubAccountService) ListAccounts(context.Context, []domain.AdAccountStatus) ([]*domain.AdAccount, error) {
	accounts := make([]*domain.AdAccount, 0, len(s.accounts))
	for _, account := range s.accounts {
		accounts = append(accounts, account)
	}
	return accounts, nil
}

func (s *stubAccountService) GetAccountByID(_ context.Context, accountID string) (*domain.AdAccount, error) {
	return s.accounts[accountID], nil
}

func (s *stubAccountService) SaveOrUpdate(_ context.Context, account *domain.AdAccount) error {
	s.accounts[account.ID] = account
	return nil
}

func (s *stubAccountService) UpdateStatus(_ context.Context, accountID string, status domain.AdAccountStatus) error {
	s.updatedID = accountID
	s.updatedStatus = status
	return nil
}

// requestWithID injeta o parâmetro de rota do httprouter no contexto, como o
// roteador faria em produção
func requestWithID(method, target, body, id string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	ctx := context.WithValue(req.Context(), httprouter.ParamsKey, httprouter.Params{
		{Key: "id", Value: id},
	})

	return req.WithContext(ctx)
}

func TestGetAdAccount_ReturnsAccount(t *testing.T) {
	service := &stubAccountService{accounts: map[string]*domain.AdAccount{
		"act_1": {ID: "act_1", ExternalID: "123", Name: "Loja Exemplo", Status: domain.AdAccountStatusActive},
	}}

	recorder := httptest.NewRecorder()
	GetAdAccount(service).ServeHTTP(recorder, requestWithID(http.MethodGet, "/v1/accounts/act_1", "", "act_1"))

	require.Equal(t, http.StatusOK, recorder.Code)

	var got domain.AdAccount
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&got))
	assert.Equal(t, "act_1", got.ID)
	assert.Equal(t, "Loja Exemplo", got.Name)
}

func TestGetAdAccount_NotFound(t *testing.T) {
	service := &stubAccountService{accounts: map[string]*domain.AdAccount{}}

	recorder := httptest.NewRecorder()
	GetAdAccount(service).ServeHTTP(recorder, requestWithID(http.MethodGet, "/v1/accounts/act_missing", "", "act_missing"))

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestUpdateAdAccountStatus_Deactivates(t *testing.T) {
	service := &stubAccountService{accounts: map[string]*domain.AdAccount{
		"act_1": {ID: "act_1", ExternalID: "123", Status: domain.AdAccountStatusActive},
	}}

	recorder := httptest.NewRecorder()
	req := requestWithID(http.MethodPatch, "/v1/accounts/act_1/status", `{"status":"inactive"}`, "act_1")
	UpdateAdAccountStatus(service).ServeHTTP(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "act_1", service.updatedID)
	assert.Equal(t, domain.AdAccountStatusInactive, service.updatedStatus)

	var got domain.AdAccount
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&got))
	assert.Equal(t, domain.AdAccountStatusInactive, got.Status)
}

func TestUpdateAdAccountStatus_RejectsUnknownStatus(t *testing.T) {
	service := &stubAccountService{accounts: map[string]*domain.AdAccount{
		"act_1": {ID: "act_1", Status: domain.AdAccountStatusActive},
	}}

	recorder := httptest.NewRecorder()
	req := requestWithID(http.MethodPatch, "/v1/accounts/act_1/status", `{"status":"paused"}`, "act_1")
	UpdateAdAccountStatus(service).ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Empty(t, service.updatedID, "status inválido não deve chegar ao repositório")
}

func TestUpdateAdAccountStatus_NotFound(t *testing.T) {
	service := &stubAccountService{accounts: map[string]*domain.AdAccount{}}

	recorder := httptest.NewRecorder()
	req := requestWithID(http.MethodPatch, "/v1/accounts/act_missing/status", `{"status":"active"}`, "act_missing")
	UpdateAdAccountStatus(service).ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Empty(t, service.updatedID)
}
