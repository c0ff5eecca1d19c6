package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/vfg2006/ads-dashboard-api/infrastructure/database/postgres"
	"github.com/vfg2006/ads-dashboard-api/internal/domain"
)

const (
	accountsTable = "accounts a"
)

type AccountRepository interface {
	GetAccountByID(ctx context.Context, accountID string) (*domain.AdAccount, error)
	ListAccounts(ctx context.Context, availableStatus []domain.AdAccountStatus) ([]*domain.AdAccount, error)
	SaveOrUpdate(ctx context.Context, account *domain.AdAccount) error
	UpdateStatus(ctx context.Context, accountID string, status domain.AdAccountStatus) error
}

type accountRepository struct {
	conn *postgres.Connection
}

func NewAccountRepository(conn *postgres.Connection) AccountRepository {
	return &accountRepository{
		conn: conn,
	}
}

func (a *accountRepository) GetAccountByID(ctx context.Context, accountID string) (*domain.AdAccount, error) {
	query, args, err := squirrel.
		Select("a.id, a.external_id, a.name, a.status, a.created_at, a.updated_at").
		From(accountsTable).
		Where(squirrel.Eq{"a.id": accountID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	account := &domain.AdAccount{}

	err = a.conn.QueryRowContext(ctx, query, args...).Scan(
		&account.ID,
		&account.ExternalID,
		&account.Name,
		&account.Status,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao escanear conta: %w", err)
	}

	return account, nil
}

func (a *accountRepository) ListAccounts(ctx context.Context, availableStatus []domain.AdAccountStatus) ([]*domain.AdAccount, error) {
	builder := squirrel.
		Select("a.id, a.external_id, a.name, a.status, a.created_at, a.updated_at").
		From(accountsTable).
		OrderBy("a.name ASC").
		PlaceholderFormat(squirrel.Dollar)

	if len(availableStatus) > 0 {
		builder = builder.Where(squirrel.Eq{"a.status": availableStatus})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := a.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	accounts := make([]*domain.AdAccount, 0)
	for rows.Next() {
		account := &domain.AdAccount{}
		err := rows.Scan(
			&account.ID,
			&account.ExternalID,
			&account.Name,
			&account.Status,
			&account.CreatedAt,
			&account.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear conta: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return accounts, nil
}

func (a *accountRepository) SaveOrUpdate(ctx context.Context, account *domain.AdAccount) error {
	query := squirrel.StatementBuilder.
		Insert("accounts").
		Columns("id", "external_id", "name", "status").
		Values(account.ID, account.ExternalID, account.Name, account.Status).
		Suffix(`
			ON CONFLICT (id) DO UPDATE SET
				external_id = EXCLUDED.external_id,
				name = EXCLUDED.name,
				status = EXCLUDED.status,
				updated_at = NOW()
		`).
		PlaceholderFormat(squirrel.Dollar)

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if _, err := a.conn.ExecContext(ctx, sqlQuery, args...); err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return fmt.Errorf("erro no banco de dados: %w (código: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("erro ao executar a query: %w", err)
	}

	return nil
}

func (a *accountRepository) UpdateStatus(ctx context.Context, accountID string, status domain.AdAccountStatus) error {
	query, args, err := squirrel.
		Update("accounts").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": accountID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if _, err := a.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("erro ao executar a query: %w", err)
	}

	return nil
}
