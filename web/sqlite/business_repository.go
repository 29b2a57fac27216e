package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/divyanshprajapati011/maps-scraper/web"
)

type businessRepo struct {
	db *sql.DB
}

func NewBusinessRepository(db *sql.DB) web.BusinessRepository {
	return &businessRepo{db: db}
}

const businessColumns = `id, query, name, address, phone, website, description, rating, reviews, plus_code, email, scraped_at`

func (r *businessRepo) Get(ctx context.Context, id string) (web.Business, error) {
	const q = `SELECT ` + businessColumns + ` FROM businesses WHERE id = ?`

	row := r.db.QueryRowContext(ctx, q, id)

	return rowToBusiness(row)
}

func (r *businessRepo) Create(ctx context.Context, business *web.Business) error {
	const q = `INSERT INTO businesses (` + businessColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

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
		business.ScrapedAt.Unix(),
	)

	return err
}

func (r *businessRepo) Select(ctx context.Context, params web.BusinessSelectParams) ([]web.Business, error) {
	q := `SELECT ` + businessColumns + ` FROM businesses WHERE 1=1`

	var args []interface{}

	if params.Query != "" {
		q += ` AND query = ?`
		args = append(args, params.Query)
	}

	q += " ORDER BY scraped_at DESC, id"

	if params.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, params.Limit)
	}

	if params.Offset > 0 {
		q += " OFFSET ?"
		args = append(args, params.Offset)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var businesses []web.Business

	for rows.Next() {
		business, err := rowToBusiness(rows)
		if err != nil {
			return nil, err
		}

		businesses = append(businesses, business)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return businesses, nil
}

func (r *businessRepo) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM businesses WHERE id = ?`

	_, err := r.db.ExecContext(ctx, q, id)

	return err
}

func rowToBusiness(row scannable) (web.Business, error) {
	var business web.Business
	var scrapedAt int64

	err := row.Scan(
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
		&scrapedAt,
	)
	if err != nil {
		return web.Business{}, err
	}

	business.ScrapedAt = time.Unix(scrapedAt, 0).UTC()

	return business, nil
}
