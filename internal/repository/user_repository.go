package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/kiosk-table-reservation/internal/model"
	"github.com/iliyamo/kiosk-table-reservation/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// GetByUsername fetches a user by trimmed username.  It returns ErrNotFound
// when the account does not exist.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	username = strings.TrimSpace(username)
	var (
		u       model.User
		storeID sql.NullInt64
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,username,name,password,store_id FROM users WHERE username=? LIMIT 1",
		username).Scan(&u.ID, &u.Username, &u.Name, &u.PasswordHash, &storeID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	if storeID.Valid {
		id := storeID.Int64
		u.StoreID = &id
	}
	return u, nil
}

// EnsureAdmin creates the administrative account on the admin store if no
// user with that username exists yet.  An existing account is left as is.
func (r *UserRepo) EnsureAdmin(ctx context.Context, username, name, password string, cost int) error {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT IGNORE INTO users (username, name, password, store_id) VALUES (?,?,?,?)",
		strings.TrimSpace(username), name, hash, model.AdminStoreID)
	return err
}
