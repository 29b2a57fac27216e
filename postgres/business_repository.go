package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/divyanshprajapati011/maps-scraper/web"
)

var _ web.BusinessRepository = (*businessRepository)(nil)

type businessRepository struct {
	db *sql.DB
}

func NewBusinessRepository(db *sql.DB) web.BusinessRepository {
	return &businessRepository{db: db}
}

const businessColumns = `id, query, name, address, phone, website, description, rating, reviews, plus_code, email, scraped_at`

func (r *businessRepository) Get(ctx context.Context, id string) (web.Business, error) {
	q := `SELECT ` + businessColumns + ` FROM businesses WHERE id = $1`

	var business web.Business

	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&business.ID,
		&business.Query,
		&business.Name,
		&business.Address,
		&business.Phone,
		&business.Website,
		&business.Description,
		&business.Rating,
		&business.Reviews,
		&business.PlusCode,
		&business.Email,
		&business.ScrapedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return web.Business{}, fmt.Errorf("business not found: %w", err)
		}

		return web.Business{}, fmt.Errorf("failed to get business: %w", err)
	}

	return business, nil
}

func (r *businessRepository) Create(ctx context.Context, business *web.Business) error {
	if err := business.Validate(); err != nil {
		return fmt.Errorf("invalid business: %w", err)
	}

	q := `INSERT INTO businesses (` + businessColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.db.ExecContext(ctx, q,
		business.ID,
		business.Query,
		business.Name,
		business.Address,
		business.Phone,
		business.Website,
		business.Description,
		business.Rating,
		business.Reviews,
		business.PlusCode,
		business.Email,
		business.ScrapedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create business: %w", err)
	}

	return nil
}

func (r *businessRepository) Select(ctx context.Context, params web.BusinessSelectParams) ([]web.Business, error) {
	q := `SELECT ` + businessColumns + ` FROM businesses WHERE 1=1`

	args := []interface{}{}
	argCount := 1

	if params.Query != "" {
		q += fmt.Sprintf(" AND query = $%d", argCount)
		args = append(args, params.Query)
		argCount++
	}

	q += " ORDER BY scraped_at DESC, id"

	if params.Limit > 0 {
		q += fmt.Sprintf(" LIMIT $%d", argCount)
		args = append(args, params.Limit)
		argCount++
	}

	if params.Offset > 0 {
		q += fmt.Sprintf(" OFFSET $%d", argCount)
		args = append(args, params.Offset)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select businesses: %w", err)
	}
	defer rows.Close()

	var businesses []web.Business

	for rows.Next() {
		var business web.Business

		err := rows.Scan(
			&business.ID,
			&business.Query,
			&business.Name,
			&business.Address,
			&business.Phone,
			&business.Website,
			&business.Description,
			&business.Rating,
			&business.Reviews,
			&business.PlusCode,
			&business.Email,
			&business.ScrapedAt,
		)

		if err != nil {
			return nil, fmt.Errorf("failed to scan business: %w", err)
		}

		businesses = append(businesses, business)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate businesses: %w", err)
	}

	return businesses, nil
}

func (r *businessRepository) Delete(ctx context.Context, id string) error {
	q := `DELETE FROM businesses WHERE id = $1`

	result, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return fmt.Errorf("failed to delete business: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("business not found")
	}

	return nil
}
