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

// PostRepo implements repository.PostRepository.
type PostRepo struct {
	conn *sql.DB
}

// NewPostRepo returns the post repository backed by db.
func NewPostRepo(db *DB) *PostRepo {
	return &PostRepo{conn: db.conn}
}

var _ repository.PostRepository = (*PostRepo)(nil)

// Create inserts a new post and fills in the generated ID and timestamps.
// The caller (service layer) supplies a resolved owner id — never a raw
// external identity.
func (r *PostRepo) Create(ctx context.Context, post *model.Post) error {
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now

	result, err := r.conn.ExecContext(ctx,
		`INSERT INTO posts (title, content, user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		post.Title,
		post.Content,
		post.UserID,
		post.CreatedAt,
		post.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting post: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading inserted post id: %w", err)
	}
	post.ID = id

	return nil
}

// GetByID retrieves a post with its owner's public fields joined in.
// Returns apperror.ErrNotFound if no post exists with that ID.
func (r *PostRepo) GetByID(ctx context.Context, id int64) (*model.Post, error) {
	var (
		p     model.Post
		owner model.PostOwner
	)
	err := r.conn.QueryRowContext(ctx,
		`SELECT p.id, p.title, p.content, p.user_id, p.created_at, p.updated_at,
		        u.external_id, u.name
		 FROM posts p
		 JOIN users u ON u.id = p.user_id
		 WHERE p.id = ?`,
		id,
	).Scan(
		&p.ID,
		&p.Title,
		&p.Content,
		&p.UserID,
		&p.CreatedAt,
		&p.UpdatedAt,
		&owner.ExternalID,
		&owner.Name,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("post", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("sqlite: getting post %d: %w", id, err)
	}

	p.User = &owner
	return &p, nil
}

// List returns all posts with owners, newest first.
func (r *PostRepo) List(ctx context.Context) ([]model.Post, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT p.id, p.title, p.content, p.user_id, p.created_at, p.updated_at,
		        u.external_id, u.name
		 FROM posts p
		 JOIN users u ON u.id = p.user_id
		 ORDER BY p.created_at DESC, p.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing posts: %w", err)
	}
	defer rows.Close()

	posts := []model.Post{}
	for rows.Next() {
		var (
			p     model.Post
			owner model.PostOwner
		)
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Content, &p.UserID, &p.CreatedAt, &p.UpdatedAt,
			&owner.ExternalID, &owner.Name,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning post row: %w", err)
		}
		p.User = &owner
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating posts: %w", err)
	}

	return posts, nil
}

// Update modifies a post's title and content. user_id is immutable.
func (r *PostRepo) Update(ctx context.Context, post *model.Post) error {
	post.UpdatedAt = time.Now().UTC()

	result, err := r.conn.ExecContext(ctx,
		`UPDATE posts SET title = ?, content = ?, updated_at = ? WHERE id = ?`,
		post.Title,
		post.Content,
		post.UpdatedAt,
		post.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating post %d: %w", post.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("post", strconv.FormatInt(post.ID, 10))
	}

	return nil
}

// Delete removes a post and returns the deleted record.
func (r *PostRepo) Delete(ctx context.Context, id int64) (*model.Post, error) {
	post, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := r.conn.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("sqlite: deleting post %d: %w", id, err)
	}

	return post, nil
}
