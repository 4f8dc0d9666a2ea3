package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/marcelsmeets511/lijf-leven-administratie-backend/internal/core/domain"
)

type ClientRepository struct {
	db *sqlx.DB
}

func NewClientRepository(db *sqlx.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

type clientRow struct {
	ID    int64          `db:"id"`
	Name  string         `db:"name"`
	Email sql.NullString `db:"email"`
	Phone sql.NullString `db:"phone"`
}

func (r clientRow) toDomain() domain.Client {
	return domain.Client{
		ID:    r.ID,
		Name:  r.Name,
		Email: r.Email.String,
		Phone: r.Phone.String,
	}
}

func (r *ClientRepository) Create(ctx context.Context, c *domain.Client) error {
	query := r.db.Rebind("INSERT INTO clients (name, email, phone) VALUES (?, ?, ?) RETURNING id")
	err := r.db.QueryRowxContext(ctx, query, c.Name, nullString(c.Email), nullString(c.Phone)).Scan(&c.ID)
	if err != nil {
		return mapError(err)
	}
	return nil
}

func (r *ClientRepository) FindByID(ctx context.Context, id int64) (*domain.Client, error) {
	var row clientRow
	query := r.db.Rebind("SELECT id, name, email, phone FROM clients WHERE id = ?")
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrClientNotFound
		}
		return nil, fmt.Errorf("find client: %w", err)
	}
	client := row.toDomain()
	return &client, nil
}

func (r *ClientRepository) List(ctx context.Context) ([]domain.Client, error) {
	var rows []clientRow
	if err := r.db.SelectContext(ctx, &rows, "SELECT id, name, email, phone FROM clients ORDER BY name, id"); err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	clients := make([]domain.Client, len(rows))
	for i, row := range rows {
		clients[i] = row.toDomain()
	}
	return clients, nil
}

// nullString maps an empty string to SQL NULL.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
