package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/content-crm/internal/domain"
)

// MemberFilter captures member listing parameters.
type MemberFilter struct {
	Role   *domain.Role
	Active *bool
	Limit  int
	Offset int
}

// MemberRepository encapsulates team member persistence.
type MemberRepository interface {
	Create(ctx context.Context, member *domain.TeamMember) error
	Update(ctx context.Context, member *domain.TeamMember) error
	GetByID(ctx context.Context, id string) (*domain.TeamMember, error)
	GetByEmail(ctx context.Context, email string) (*domain.TeamMember, error)
	List(ctx context.Context, filter MemberFilter) ([]domain.TeamMember, error)
}

type memberRepository struct {
	pool *pgxpool.Pool
}

// NewMemberRepository instantiates repository.
func NewMemberRepository(pool *pgxpool.Pool) MemberRepository {
	return &memberRepository{pool: pool}
}

const memberColumns = `id, name, email, password_hash, role, compensation, active, created_at, updated_at`

func (r *memberRepository) Create(ctx context.Context, member *domain.TeamMember) error {
	const query = `
        INSERT INTO members (name, email, password_hash, role, compensation, active)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		member.Name,
		member.Email,
		member.PasswordHash,
		member.Role,
		member.Compensation,
		member.Active,
	).Scan(&member.ID, &member.CreatedAt, &member.UpdatedAt)
}

func (r *memberRepository) Update(ctx context.Context, member *domain.TeamMember) error {
	const query = `
        UPDATE members SET name=$1, email=$2, password_hash=$3, role=$4, compensation=$5, active=$6, updated_at=NOW()
        WHERE id=$7`
	cmd, err := r.pool.Exec(ctx, query,
		member.Name,
		member.Email,
		member.PasswordHash,
		member.Role,
		member.Compensation,
		member.Active,
		member.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *memberRepository) GetByID(ctx context.Context, id string) (*domain.TeamMember, error) {
	const query = `SELECT ` + memberColumns + ` FROM members WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *memberRepository) GetByEmail(ctx context.Context, email string) (*domain.TeamMember, error) {
	const query = `SELECT ` + memberColumns + ` FROM members WHERE LOWER(email)=LOWER($1)`
	return r.fetchSingle(ctx, query, email)
}

func (r *memberRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.TeamMember, error) {
	var member domain.TeamMember
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&member.ID,
		&member.Name,
		&member.Email,
		&member.PasswordHash,
		&member.Role,
		&member.Compensation,
		&member.Active,
		&member.CreatedAt,
		&member.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *memberRepository) List(ctx context.Context, filter MemberFilter) ([]domain.TeamMember, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE 1=1`
	args := []any{}
	if filter.Role != nil {
		args = append(args, *filter.Role)
		query += ` AND role=$1`
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		if len(args) == 1 {
			query += ` AND active=$1`
		} else {
			query += ` AND active=$2`
		}
	}
	query += ` ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TeamMember
	for rows.Next() {
		var member domain.TeamMember
		if err := rows.Scan(
			&member.ID,
			&member.Name,
			&member.Email,
			&member.PasswordHash,
			&member.Role,
			&member.Compensation,
			&member.Active,
			&member.CreatedAt,
			&member.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, member)
	}
	return result, rows.Err()
}
