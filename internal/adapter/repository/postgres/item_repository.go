package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/srgjo27/rental_checkout/internal/core/domain"
)

type ItemRepository struct {
	db *sql.DB
}

func NewItemRepository(db *sql.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

func (r *ItemRepository) GetByID(ctx context.Context, itemID string) (*domain.Item, error) {
	query, args, err := psql.
		Select("id", "title", "price_per_day", "status").
		From("items").
		Where(sq.Eq{"id": itemID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build item query: %w", err)
	}

	var item domain.Item
	err = r.db.QueryRowContext(ctx, query, args...).Scan(
		&item.ID,
		&item.Title,
		&item.PricePerDay,
		&item.Status,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrItemNotFound, itemID)
		}
		return nil, err
	}

	return &item, nil
}

// Save inserts or replaces a catalog item. The catalog is owned elsewhere;
// this is how its items get mirrored for pricing.
func (r *ItemRepository) Save(ctx context.Context, item *domain.Item) error {
	query, args, err := psql.
		Insert("items").
		Columns("id", "title", "price_per_day", "status").
		Values(item.ID, item.Title, item.PricePerDay, item.Status).
		Suffix("ON CONFLICT (id) DO UPDATE SET title = EXCLUDED.title, price_per_day = EXCLUDED.price_per_day, status = EXCLUDED.status").
		ToSql()
	if err != nil {
		return fmt.Errorf("build item upsert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save item %s: %w", item.ID, err)
	}
	return nil
}
