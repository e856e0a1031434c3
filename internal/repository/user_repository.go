package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/uniraum/room-booking/internal/utils"
)

// User mirrors the 'users' table.
type User struct {
	ID             string
	Username       string
	Email          string
	PasswordHash   string
	Role           string
	ProfilePicture sql.NullString
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrUsernameExists = errors.New("username already exists")
	ErrEmailExists    = errors.New("email already exists")
)

// Create inserts a user and returns its generated ID.  Duplicate
// username/email violations are mapped to sentinel errors via the
// unique key names.
func (r *UserRepo) Create(ctx context.Context, username, email, password, role string, cost int) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO users (id, username, email, password_hash, role) VALUES (?,?,?,?,?)",
		id, username, email, hash, role)
	if err != nil {
		return "", mapDuplicateUser(err)
	}
	return id, nil
}

func mapDuplicateUser(err error) error {
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "1062") {
		return err
	}
	if strings.Contains(msg, "uq_users_username") {
		return ErrUsernameExists
	}
	return ErrEmailExists
}

const userColumns = "id,username,email,password_hash,role,profile_picture,created_at,updated_at"

func scanUser(row *sql.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role,
		&u.ProfilePicture, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrUserNotFound
	}
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// GetByUsername fetches a user by exact username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username=? LIMIT 1", username))
}

// List returns every user ordered by creation time descending.
func (r *UserRepo) List(ctx context.Context) ([]User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]User, 0)
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role,
			&u.ProfilePicture, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// UserPatch lists optional field updates.  Nil fields are left alone.
type UserPatch struct {
	Username *string
	Email    *string
	Password *string // plain text; hashed here
	Role     *string
}

// Update applies a partial update.  It returns ErrUserNotFound when no
// row matches and maps duplicate key violations to sentinels.
func (r *UserRepo) Update(ctx context.Context, id string, p UserPatch, bcryptCost int) error {
	set := []string{}
	args := []any{}
	if p.Username != nil {
		set = append(set, "username=?")
		args = append(args, *p.Username)
	}
	if p.Email != nil {
		set = append(set, "email=?")
		args = append(args, strings.ToLower(strings.TrimSpace(*p.Email)))
	}
	if p.Password != nil {
		hash, err := utils.HashPassword(*p.Password, bcryptCost)
		if err != nil {
			return err
		}
		set = append(set, "password_hash=?")
		args = append(args, hash)
	}
	if p.Role != nil {
		set = append(set, "role=?")
		args = append(args, *p.Role)
	}
	if len(set) == 0 {
		return nil
	}
	args = append(args, id)
	// Callers verify existence with GetByID first; a no-op update
	// (identical values) reports zero affected rows on MySQL, so rows
	// affected is not a reliable existence signal here.
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET "+strings.Join(set, ", ")+" WHERE id=?", args...)
	if err != nil {
		return mapDuplicateUser(err)
	}
	return nil
}

// UpdateRole changes only the role column.
func (r *UserRepo) UpdateRole(ctx context.Context, id, role string) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET role=? WHERE id=?", role, id)
	return err
}

// SetProfilePicture stores the picture data URL; pass an invalid
// NullString to clear it.
func (r *UserRepo) SetProfilePicture(ctx context.Context, id string, picture sql.NullString) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET profile_picture=? WHERE id=?", picture, id)
	return err
}

// Delete removes a user permanently.  Refresh tokens cascade.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return err
	}
	return requireAffected(res, ErrUserNotFound)
}

// UsernameTaken reports whether another user (excluding excludeID, when
// non-empty) already holds the username.
func (r *UserRepo) UsernameTaken(ctx context.Context, username, excludeID string) (bool, error) {
	return r.taken(ctx, "username", username, excludeID)
}

// EmailTaken reports whether another user already holds the email.
func (r *UserRepo) EmailTaken(ctx context.Context, email, excludeID string) (bool, error) {
	return r.taken(ctx, "email", strings.ToLower(strings.TrimSpace(email)), excludeID)
}

func (r *UserRepo) taken(ctx context.Context, column, value, excludeID string) (bool, error) {
	q := "SELECT COUNT(*) FROM users WHERE " + column + "=?"
	args := []any{value}
	if excludeID != "" {
		q += " AND id<>?"
		args = append(args, excludeID)
	}
	var n int
	if err := r.DB.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// Count returns the number of users; used by the startup seeder to
// decide whether initial data is needed.
func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n)
	return n, err
}

// requireAffected converts a zero-row update/delete into notFound.
func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
