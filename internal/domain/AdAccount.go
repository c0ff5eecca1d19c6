package domain

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AdAccountStatus representa o status de uma conta de anúncios
type AdAccountStatus string

const (
	AdAccountStatusActive   AdAccountStatus = "active"
	AdAccountStatusInactive AdAccountStatus = "inactive"
)

// AdAccount representa uma conta de anúncios gerenciada pelo dashboard
type AdAccount struct {
	ID         string          `json:"id"`
	ExternalID string          `json:"external_id"`
	Name       string          `json:"name"`
	Status     AdAccountStatus `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// Claims representa as claims do token JWT emitido pela API
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}
