package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/campusbuzz/event-registration/internal/model"
)

// UserRepo provides data access to the `users` table, including the
// password-reset token columns. All timestamps are stored in UTC.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,name,email,password_hash,role,reset_token_hash,reset_token_expires,created_at,updated_at"

func scanUser(row *sql.Row) (model.User, error) {
	var (
		u       model.User
		role    string
		tokHash sql.NullString
		tokExp  sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role,
		&tokHash, &tokExp, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, err
	}
	u.Role = model.Role(role)
	if tokHash.Valid {
		h := tokHash.String
		u.ResetTokenHash = &h
	}
	if tokExp.Valid {
		e := tokExp.Time
		u.ResetTokenExpires = &e
	}
	return u, nil
}

// Create inserts a user and returns the stored record. The caller is
// responsible for hashing the password; the email is normalized here so
// the unique key always sees lower-cased addresses.
func (r *UserRepo) Create(ctx context.Context, name, email, passwordHash string, role model.Role) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, role) VALUES (?,?,?,?)",
		name, email, passwordHash, role.String())
	if err != nil {
		// MySQL duplicate-key errors carry code 1062.
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// SetResetToken stores a reset-token hash and its expiry on the user,
// overwriting any previously issued token. At most one reset token is
// live per user at a time.
func (r *UserRepo) SetResetToken(ctx context.Context, userID uint64, tokenHash string, expires time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET reset_token_hash=?, reset_token_expires=? WHERE id=?",
		tokenHash, expires, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ClearResetToken drops any live reset token on the user. Clearing both
// columns together keeps the set-together invariant.
func (r *UserRepo) ClearResetToken(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET reset_token_hash=NULL, reset_token_expires=NULL WHERE id=?",
		userID)
	return err
}

// ConsumeResetToken atomically redeems a reset token: the password is
// replaced and the token columns cleared only where the stored hash
// matches and the expiry is still in the future. The conditional UPDATE
// makes the token single-use even under concurrent consume attempts;
// a second caller sees zero rows affected and gets ErrResetTokenInvalid.
func (r *UserRepo) ConsumeResetToken(ctx context.Context, tokenHash, newPasswordHash string, now time.Time) (model.User, error) {
	var id uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT id FROM users WHERE reset_token_hash=? AND reset_token_expires > ? LIMIT 1",
		tokenHash, now).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.User{}, ErrResetTokenInvalid
		}
		return model.User{}, err
	}
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET password_hash=?, reset_token_hash=NULL, reset_token_expires=NULL
		 WHERE id=? AND reset_token_hash=? AND reset_token_expires > ?`,
		newPasswordHash, id, tokenHash, now)
	if err != nil {
		return model.User{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.User{}, ErrResetTokenInvalid
	}
	return r.GetByID(ctx, id)
}
