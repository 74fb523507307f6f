package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/bookauth/internal/common"
	"github.com/dmitrijs2005/bookauth/internal/dbx"
	"github.com/samber/oops"
)

// ErrIncomplete is returned by Save when one of the slots would be empty.
var ErrIncomplete = errors.New("token and user must be saved together")

type SQLiteRepository struct {
	db *sql.DB
}

var _ Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func getSlot(ctx context.Context, q dbx.DBTX, key string) ([]byte, error) {
	var value []byte
	err := q.QueryRowContext(ctx, `SELECT value FROM slots WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get slot[%s]: %w", key, err)
	}
	return value, nil
}

func setSlot(ctx context.Context, q dbx.DBTX, key string, value []byte) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO slots (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set slot[%s]: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) Token(ctx context.Context) (string, error) {
	v, err := getSlot(ctx, r.db, common.TokenSlot)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

func (r *SQLiteRepository) Load(ctx context.Context) (Credentials, error) {
	var c Credentials
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		token, err := getSlot(ctx, tx, common.TokenSlot)
		if err != nil {
			return err
		}
		user, err := getSlot(ctx, tx, common.UserSlot)
		if err != nil {
			return err
		}
		c = Credentials{Token: string(token), User: user}
		return nil
	})
	if err != nil {
		return Credentials{}, err
	}
	return c, nil
}

func (r *SQLiteRepository) Save(ctx context.Context, c Credentials) error {
	if !c.Complete() {
		return oops.Code("CREDENTIALS_INCOMPLETE").
			With("has_token", c.Token != "").
			With("has_user", len(c.User) > 0).
			Wrap(ErrIncomplete)
	}
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := setSlot(ctx, tx, common.TokenSlot, []byte(c.Token)); err != nil {
			return err
		}
		return setSlot(ctx, tx, common.UserSlot, c.User)
	})
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM slots WHERE key IN (?, ?)`, common.TokenSlot, common.UserSlot)
	if err != nil {
		return fmt.Errorf("failed to clear slots: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ClearIfToken(ctx context.Context, token string) (bool, error) {
	cleared := false
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		stored, err := getSlot(ctx, tx, common.TokenSlot)
		if err != nil {
			return err
		}
		if string(stored) != token {
			return nil
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM slots WHERE key IN (?, ?)`, common.TokenSlot, common.UserSlot); err != nil {
			return fmt.Errorf("failed to clear slots: %w", err)
		}
		cleared = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return cleared, nil
}
