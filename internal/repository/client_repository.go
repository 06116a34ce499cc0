package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/content-crm/internal/domain"
)

// ClientRepository encapsulates client company persistence.
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	Update(ctx context.Context, client *domain.Client) error
	GetByID(ctx context.Context, id string) (*domain.Client, error)
	List(ctx context.Context, activeOnly bool) ([]domain.Client, error)
}

type clientRepository struct {
	pool *pgxpool.Pool
}

// NewClientRepository instantiates repository.
func NewClientRepository(pool *pgxpool.Pool) ClientRepository {
	return &clientRepository{pool: pool}
}

func (r *clientRepository) Create(ctx context.Context, client *domain.Client) error {
	const query = `
        INSERT INTO clients (name, email, flat_rate, active)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		client.Name,
		client.Email,
		client.FlatRate,
		client.Active,
	).Scan(&client.ID, &client.CreatedAt, &client.UpdatedAt)
}

func (r *clientRepository) Update(ctx context.Context, client *domain.Client) error {
	const query = `
        UPDATE clients SET name=$1, email=$2, flat_rate=$3, active=$4, updated_at=NOW()
        WHERE id=$5`
	cmd, err := r.pool.Exec(ctx, query,
		client.Name,
		client.Email,
		client.FlatRate,
		client.Active,
		client.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *clientRepository) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	const query = `
        SELECT id, name, email, flat_rate, active, created_at, updated_at
        FROM clients WHERE id=$1`
	var client domain.Client
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&client.ID,
		&client.Name,
		&client.Email,
		&client.FlatRate,
		&client.Active,
		&client.CreatedAt,
		&client.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *clientRepository) List(ctx context.Context, activeOnly bool) ([]domain.Client, error) {
	query := `SELECT id, name, email, flat_rate, active, created_at, updated_at FROM clients`
	if activeOnly {
		query += ` WHERE active=TRUE`
	}
	query += ` ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Client
	for rows.Next() {
		var client domain.Client
		if err := rows.Scan(
			&client.ID,
			&client.Name,
			&client.Email,
			&client.FlatRate,
			&client.Active,
			&client.CreatedAt,
			&client.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, client)
	}
	return result, rows.Err()
}
