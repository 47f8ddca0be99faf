package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"

	"github.com/srgjo27/rental_checkout/internal/core/domain"
)

type CartRepository struct {
	db *sql.DB
}

func NewCartRepository(db *sql.DB) *CartRepository {
	return &CartRepository{db: db}
}

// GetCart returns an empty cart for a session that never added anything.
func (r *CartRepository) GetCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	query, args, err := psql.
		Select("item_id", "quantity", "start_date", "end_date", "unit_price_per_day").
		From("cart_lines").
		Where(sq.Eq{"session_id": sessionID}).
		OrderBy("added_at", "item_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build cart query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query cart lines: %w", err)
	}
	defer rows.Close()

	cart := &domain.Cart{Lines: []domain.CartLine{}}
	for rows.Next() {
		var (
			line       domain.CartLine
			start, end sql.NullTime
		)
		if err := rows.Scan(&line.ItemID, &line.Quantity, &start, &end, &line.UnitPricePerDay); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		line.StartDate = dateOrZero(start)
		line.EndDate = dateOrZero(end)
		cart.Lines = append(cart.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart lines: %w", err)
	}

	discount, err := r.discount(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	cart.Discount = discount

	return cart, nil
}

func (r *CartRepository) discount(ctx context.Context, sessionID string) (decimal.Decimal, error) {
	query, args, err := psql.Select("amount").From("cart_discounts").Where(sq.Eq{"session_id": sessionID}).ToSql()
	if err != nil {
		return decimal.Zero, fmt.Errorf("build discount query: %w", err)
	}

	var amount decimal.Decimal
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&amount)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("query discount: %w", err)
	}
	return amount, nil
}

// UpsertLine keeps the line's original position in the cart when it is
// updated.
func (r *CartRepository) UpsertLine(ctx context.Context, sessionID string, line domain.CartLine) error {
	query, args, err := psql.
		Insert("cart_lines").
		Columns("session_id", "item_id", "quantity", "start_date", "end_date", "unit_price_per_day").
		Values(sessionID, line.ItemID, line.Quantity, nullDate(line.StartDate), nullDate(line.EndDate), line.UnitPricePerDay).
		Suffix(`ON CONFLICT (session_id, item_id) DO UPDATE SET
			quantity = EXCLUDED.quantity,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			unit_price_per_day = EXCLUDED.unit_price_per_day,
			updated_at = NOW()`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert cart line %s: %w", line.ItemID, err)
	}
	return nil
}

func (r *CartRepository) DeleteLine(ctx context.Context, sessionID, itemID string) error {
	query, args, err := psql.Delete("cart_lines").Where(sq.Eq{"session_id": sessionID, "item_id": itemID}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete cart line %s: %w", itemID, err)
	}
	return nil
}

func (r *CartRepository) DeleteCart(ctx context.Context, sessionID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := deleteCartTx(ctx, tx, sessionID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// SetDiscount records the flat discount the pricing collaborator granted to
// the session.
func (r *CartRepository) SetDiscount(ctx context.Context, sessionID string, amount decimal.Decimal) error {
	query, args, err := psql.
		Insert("cart_discounts").
		Columns("session_id", "amount").
		Values(sessionID, amount).
		Suffix("ON CONFLICT (session_id) DO UPDATE SET amount = EXCLUDED.amount").
		ToSql()
	if err != nil {
		return fmt.Errorf("build discount upsert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set discount: %w", err)
	}
	return nil
}

func deleteCartTx(ctx context.Context, tx *sql.Tx, sessionID string) error {
	for _, table := range []string{"cart_lines", "cart_discounts"} {
		query, args, err := psql.Delete(table).Where(sq.Eq{"session_id": sessionID}).ToSql()
		if err != nil {
			return fmt.Errorf("build delete %s: %w", table, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("delete %s: %w", table, err)
		}
	}
	return nil
}
