package metadomain

import (
	"fmt"
	"net/http"
)

// ErrorKind classifica as falhas do Transport em uma taxonomia pequena
type ErrorKind string

const (
	AuthError       ErrorKind = "AUTH_ERROR"       // 401
	PermissionError ErrorKind = "PERMISSION_ERROR" // 403
	RateLimit       ErrorKind = "RATE_LIMIT"       // 429
	ServerError     ErrorKind = "SERVER_ERROR"     // 5xx
	APIErrorKind    ErrorKind = "API_ERROR"        // demais 4xx
	NetworkError    ErrorKind = "NETWORK_ERROR"    // falha de transporte (DNS, timeout, etc.)
)

// DateLimitCode é o código numérico retornado pela Graph API quando a data
// solicitada está além da janela de retenção permitida
const DateLimitCode = 3018

// ErrorResponse representa a estrutura de erro da API do Meta
type ErrorResponse struct {
	Error ErrorDetails `json:"error"`
}

// ErrorDetails contém os detalhes de erro da API do Meta
type ErrorDetails struct {
	Message      string `json:"message"`
	Type         string `json:"type"`
	Code         int    `json:"code"`
	ErrorSubcode int    `json:"error_subcode,omitempty"`
	FBTraceID    string `json:"fbtrace_id"`
}

// APIError é o erro classificado produzido pelo Transport; carrega o status
// HTTP original e o corpo bruto para diagnóstico
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Code       int
	Subcode    int
	Message    string
	Body       string
	Err        error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s (status=%d code=%d): %s", e.Kind, e.StatusCode, e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// IsDateLimit verifica se o erro é o sinal de limite de retenção de datas,
// um sub-caso de API_ERROR distinguido pelo código específico
func (e *APIError) IsDateLimit() bool {
	return e.Code == DateLimitCode
}

// ClassifyStatus converte um status HTTP e os detalhes do corpo de erro
// em um APIError classificado
func ClassifyStatus(statusCode int, details ErrorDetails, body string) *APIError {
	var kind ErrorKind

	switch {
	case statusCode == http.StatusUnauthorized:
		kind = AuthError
	case statusCode == http.StatusForbidden:
		kind = PermissionError
	case statusCode == http.StatusTooManyRequests:
		kind = RateLimit
	case statusCode >= 500:
		kind = ServerError
	default:
		kind = APIErrorKind
	}

	// A Graph API também sinaliza rate limit com códigos 4, 17 e 32 em respostas 400
	if kind == APIErrorKind && (details.Code == 4 || details.Code == 17 || details.Code == 32) {
		kind = RateLimit
	}

	return &APIError{
		Kind:       kind,
		StatusCode: statusCode,
		Code:       details.Code,
		Subcode:    details.ErrorSubcode,
		Message:    details.Message,
		Body:       body,
	}
}

// NewNetworkError embrulha uma falha de transporte (DNS, timeout, conexão recusada)
func NewNetworkError(err error) *APIError {
	return &APIError{
		Kind:    NetworkError,
		Message: err.Error(),
		Err:     err,
	}
}
