package repository

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype/zeronull"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/fort-major/msq-pay/internal/entity"
)

type Repository struct {
	db *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{
		db: pool,
	}
}

func (r *Repository) Preference(ctx context.Context, deviceID, key string) (bool, error) {
	const q = `SELECT value FROM preferences WHERE device_id = $1 AND key = $2`

	var value bool

	err := r.db.QueryRow(ctx, q, deviceID, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, entity.ErrNotFound
		}

		return false, err
	}

	return value, nil
}

func (r *Repository) SetPreference(ctx context.Context, deviceID, key string, value bool, updatedAt time.Time) error {
	const q = `
	INSERT INTO preferences (device_id, key, value, updated_at)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (device_id, key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.Exec(ctx, q, deviceID, key, value, updatedAt)
	if err != nil {
		return err
	}

	return nil
}

func (r *Repository) CreateCheckout(ctx context.Context, c entity.CheckoutSnapshot) error {
	q, args, err := sq.Insert("checkouts").
		Columns(checkoutColumns...).
		Values(
			c.ID,
			c.SessionID,
			c.Mode,
			zeronull.Text(invoiceIDText(c.InvoiceID)),
			c.AccountID,
			c.AccountName,
			c.AccountPrincipal,
			bigToDecimal(c.AccountBalance),
			c.AssetID,
			c.Symbol,
			int16(c.Decimals),
			bigToDecimal(c.Fee),
			c.PeerOrigin,
			bigToDecimal(c.Amount),
			c.RecipientPrincipal,
			zeronull.Text(hex.EncodeToString(c.RecipientSubaccount)),
			zeronull.Text(hex.EncodeToString(c.Memo)),
			bigToDecimal(new(big.Int).SetUint64(c.CreatedAt)),
			c.StoredAt,
		).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, q, args...)
	if err != nil {
		return err
	}

	return nil
}

func (r *Repository) Checkout(ctx context.Context, id uuid.UUID) (entity.CheckoutSnapshot, error) {
	q := selectCheckout + " WHERE id = $1"
	return scanCheckout(r.db.QueryRow(ctx, q, id))
}

func (r *Repository) Checkouts(ctx context.Context, f entity.CheckoutFilter) ([]entity.CheckoutSnapshot, error) {
	stmt := sq.Select(checkoutColumns...).From("checkouts").PlaceholderFormat(sq.Dollar)

	if f.InvoiceID != nil {
		stmt = stmt.Where(sq.Eq{"invoice_id": f.InvoiceID.String()})
	}

	if f.PeerOrigin != "" {
		stmt = stmt.Where(sq.Eq{"peer_origin": f.PeerOrigin})
	}

	if f.Limit > 0 {
		stmt = stmt.Limit(f.Limit)

		if f.Page > 1 {
			stmt = stmt.Offset(f.Page*f.Limit - f.Limit)
		}
	}

	sql, args, err := stmt.OrderBy("stored_at DESC", "id").ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := make([]entity.CheckoutSnapshot, 0, f.Limit)

	for rows.Next() {
		c, err := scanCheckout(rows)
		if err != nil {
			return nil, err
		}

		res = append(res, c)
	}

	return res, rows.Err()
}

func scanCheckout(row pgx.Row) (entity.CheckoutSnapshot, error) {
	var (
		c                           entity.CheckoutSnapshot
		invoiceID, subaccount, memo zeronull.Text
		balance, fee, amount, ts    decimal.Decimal
		decimals                    int16
	)

	err := row.Scan(
		&c.ID,
		&c.SessionID,
		&c.Mode,
		&invoiceID,
		&c.AccountID,
		&c.AccountName,
		&c.AccountPrincipal,
		&balance,
		&c.AssetID,
		&c.Symbol,
		&decimals,
		&fee,
		&c.PeerOrigin,
		&amount,
		&c.RecipientPrincipal,
		&subaccount,
		&memo,
		&ts,
		&c.StoredAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.CheckoutSnapshot{}, entity.ErrNotFound
		}

		return entity.CheckoutSnapshot{}, err
	}

	c.Decimals = uint8(decimals)
	c.AccountBalance = balance.BigInt()
	c.Fee = fee.BigInt()
	c.Amount = amount.BigInt()
	c.CreatedAt = ts.BigInt().Uint64()

	if invoiceID != "" {
		id, err := entity.ParseInvoiceID(string(invoiceID))
		if err != nil {
			return entity.CheckoutSnapshot{}, fmt.Errorf("stored invoice id: %w", err)
		}

		c.InvoiceID = &id
	}

	if c.RecipientSubaccount, err = decodeHex(subaccount); err != nil {
		return entity.CheckoutSnapshot{}, fmt.Errorf("stored subaccount: %w", err)
	}

	if c.Memo, err = decodeHex(memo); err != nil {
		return entity.CheckoutSnapshot{}, fmt.Errorf("stored memo: %w", err)
	}

	return c, nil
}

func invoiceIDText(id *entity.InvoiceID) string {
	if id == nil {
		return ""
	}

	return id.String()
}

func decodeHex(s zeronull.Text) ([]byte, error) {
	if s == "" {
		return nil, nil
	}

	return hex.DecodeString(string(s))
}

func bigToDecimal(v *big.Int) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}

	return decimal.NewFromBigInt(v, 0)
}
