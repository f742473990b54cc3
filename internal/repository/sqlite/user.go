package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/ymatsui/memoboard/internal/apperror"
	"github.com/ymatsui/memoboard/internal/model"
	"github.com/ymatsui/memoboard/internal/repository"
)

// UserRepo implements repository.UserRepository on the shared connection
// pool. One repo type per entity keeps the interface method names clean
// (Create, GetByID, ...) instead of prefixing everything on one struct.
type UserRepo struct {
	conn *sql.DB
}

// NewUserRepo returns the user repository backed by db.
func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{conn: db.conn}
}

// compile-time check that *UserRepo implements repository.UserRepository
var _ repository.UserRepository = (*UserRepo)(nil)

// Create inserts a new user and fills in the generated ID and timestamps.
func (r *UserRepo) Create(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := r.conn.ExecContext(ctx,
		`INSERT INTO users (external_id, name, email, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		user.ExternalID,
		user.Name,
		user.Email,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting user (externalID=%s): %w", user.ExternalID, err)
	}

	// SQLite assigns the autoincrement id; read it back so the caller's
	// struct carries the canonical record.
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading inserted user id: %w", err)
	}
	user.ID = id

	return nil
}

// GetByID retrieves a user by internal ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return r.getUser(ctx,
		`SELECT id, external_id, name, email, created_at, updated_at
		 FROM users WHERE id = ?`, id, strconv.FormatInt(id, 10))
}

// GetByExternalID retrieves a user by the identity provider's subject.
// This is the unique lookup behind the authorization policy and the
// find-or-create bootstrap.
func (r *UserRepo) GetByExternalID(ctx context.Context, externalID string) (*model.User, error) {
	return r.getUser(ctx,
		`SELECT id, external_id, name, email, created_at, updated_at
		 FROM users WHERE external_id = ?`, externalID, externalID)
}

func (r *UserRepo) getUser(ctx context.Context, query string, arg any, label string) (*model.User, error) {
	var u model.User
	err := r.conn.QueryRowContext(ctx, query, arg).Scan(
		&u.ID,
		&u.ExternalID,
		&u.Name,
		&u.Email,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", label)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", label, err)
	}
	return &u, nil
}

// List returns all users, newest first.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT id, external_id, name, email, created_at, updated_at
		 FROM users
		 ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(
			&u.ID, &u.ExternalID, &u.Name, &u.Email,
			&u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating users: %w", err)
	}

	return users, nil
}

// Update modifies a user's name and email. external_id is immutable and is
// deliberately absent from the SET clause.
func (r *UserRepo) Update(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now().UTC()

	result, err := r.conn.ExecContext(ctx,
		`UPDATE users SET name = ?, email = ?, updated_at = ? WHERE id = ?`,
		user.Name,
		user.Email,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating user %d: %w", user.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("user", strconv.FormatInt(user.ID, 10))
	}

	return nil
}

// Delete removes a user and returns the deleted record. This is the
// explicit admin delete path — nothing else removes users.
func (r *UserRepo) Delete(ctx context.Context, id int64) (*model.User, error) {
	// Fetch first so the response can carry the deleted record.
	user, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := r.conn.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("sqlite: deleting user %d: %w", id, err)
	}

	return user, nil
}
