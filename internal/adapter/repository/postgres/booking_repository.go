package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/srgjo27/rental_checkout/internal/core/domain"
)

type BookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// CreateBooking writes the booking with its lines and clears the session's
// server cart in the same transaction.
func (r *BookingRepository) CreateBooking(ctx context.Context, booking *domain.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer tx.Rollback()

	queryHeader, args, err := psql.
		Insert("bookings").
		Columns("id", "session_id", "customer_name", "total", "status", "payment_reference", "payer_id", "created_at").
		Values(booking.ID, booking.SessionID, booking.CustomerName, booking.Total, booking.Status,
			booking.PaymentReference, booking.PayerID, booking.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build booking insert: %w", err)
	}

	if _, err := tx.ExecContext(ctx, queryHeader, args...); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateReference
		}
		return fmt.Errorf("failed to insert booking header: %w", err)
	}

	queryLine := `
	INSERT INTO booking_lines (id, booking_id, item_id, quantity, start_date, end_date, billable_days, unit_price_per_day, line_total)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	stmt, err := tx.PrepareContext(ctx, queryLine)
	if err != nil {
		return fmt.Errorf("failed to prepare line statement: %w", err)
	}

	defer stmt.Close()

	for _, line := range booking.Lines {
		_, err := stmt.ExecContext(ctx, line.ID, line.BookingID, line.ItemID, line.Quantity,
			nullDate(line.StartDate), nullDate(line.EndDate), line.BillableDays, line.UnitPricePerDay, line.LineTotal)
		if err != nil {
			return fmt.Errorf("failed to insert booking line %s: %w", line.ItemID, err)
		}
	}

	if err := deleteCartTx(ctx, tx, booking.SessionID); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *BookingRepository) GetByPaymentReference(ctx context.Context, reference string) (*domain.Booking, error) {
	query, args, err := psql.
		Select("id", "session_id", "customer_name", "total", "status", "payment_reference", "payer_id", "created_at").
		From("bookings").
		Where(sq.Eq{"payment_reference": reference}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build booking query: %w", err)
	}

	var b domain.Booking
	err = r.db.QueryRowContext(ctx, query, args...).Scan(
		&b.ID,
		&b.SessionID,
		&b.CustomerName,
		&b.Total,
		&b.Status,
		&b.PaymentReference,
		&b.PayerID,
		&b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}

	lines, err := r.lines(ctx, &b)
	if err != nil {
		return nil, err
	}
	b.Lines = lines

	return &b, nil
}

func (r *BookingRepository) lines(ctx context.Context, b *domain.Booking) ([]domain.BookingLine, error) {
	query, args, err := psql.
		Select("id", "item_id", "quantity", "start_date", "end_date", "billable_days", "unit_price_per_day", "line_total").
		From("booking_lines").
		Where(sq.Eq{"booking_id": b.ID}).
		OrderBy("item_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build booking lines query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var lines []domain.BookingLine
	for rows.Next() {
		var (
			line       domain.BookingLine
			start, end sql.NullTime
		)
		if err := rows.Scan(
			&line.ID,
			&line.ItemID,
			&line.Quantity,
			&start,
			&end,
			&line.BillableDays,
			&line.UnitPricePerDay,
			&line.LineTotal,
		); err != nil {
			return nil, err
		}
		line.BookingID = b.ID
		line.StartDate = dateOrZero(start)
		line.EndDate = dateOrZero(end)
		lines = append(lines, line)
	}

	return lines, rows.Err()
}
