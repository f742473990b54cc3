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

// MemoRepo implements repository.MemoRepository.
//
// ENCODING BOUNDARY:
// The memos table stores items/images/urls as JSON-encoded text (the same
// stringified form clients send). This repo is the storage-side boundary:
// it encodes the structured model fields on every write and decodes them on
// every read, so the service layer only ever sees typed values.
type MemoRepo struct {
	conn *sql.DB
}

// NewMemoRepo returns the memo repository backed by db.
func NewMemoRepo(db *DB) *MemoRepo {
	return &MemoRepo{conn: db.conn}
}

var _ repository.MemoRepository = (*MemoRepo)(nil)

// Create inserts a new memo and fills in the generated ID and timestamps.
func (r *MemoRepo) Create(ctx context.Context, memo *model.Memo) error {
	items, images, urls, err := encodeMemoFields(memo)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	memo.CreatedAt = now
	memo.UpdatedAt = now

	result, err := r.conn.ExecContext(ctx,
		`INSERT INTO memos (title, type, items, text_content, images, urls, user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		memo.Title,
		memo.Type,
		items,
		memo.TextContent,
		images,
		urls,
		memo.UserID,
		memo.CreatedAt,
		memo.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting memo: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading inserted memo id: %w", err)
	}
	memo.ID = id

	return nil
}

// GetByID retrieves a memo by ID with its structured fields decoded.
// Returns apperror.ErrNotFound if no memo exists with that ID.
func (r *MemoRepo) GetByID(ctx context.Context, id int64) (*model.Memo, error) {
	row := r.conn.QueryRowContext(ctx,
		`SELECT id, title, type, items, text_content, images, urls, user_id, created_at, updated_at
		 FROM memos WHERE id = ?`,
		id,
	)

	memo, err := scanMemo(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("memo", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("sqlite: getting memo %d: %w", id, err)
	}

	return memo, nil
}

// List returns all memos, newest first.
func (r *MemoRepo) List(ctx context.Context) ([]model.Memo, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT id, title, type, items, text_content, images, urls, user_id, created_at, updated_at
		 FROM memos
		 ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing memos: %w", err)
	}
	defer rows.Close()

	memos := []model.Memo{}
	for rows.Next() {
		memo, err := scanMemo(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning memo row: %w", err)
		}
		memos = append(memos, *memo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating memos: %w", err)
	}

	return memos, nil
}

// Update modifies a memo's mutable fields. user_id is immutable.
func (r *MemoRepo) Update(ctx context.Context, memo *model.Memo) error {
	items, images, urls, err := encodeMemoFields(memo)
	if err != nil {
		return err
	}

	memo.UpdatedAt = time.Now().UTC()

	result, err := r.conn.ExecContext(ctx,
		`UPDATE memos
		 SET title = ?, type = ?, items = ?, text_content = ?, images = ?, urls = ?, updated_at = ?
		 WHERE id = ?`,
		memo.Title,
		memo.Type,
		items,
		memo.TextContent,
		images,
		urls,
		memo.UpdatedAt,
		memo.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating memo %d: %w", memo.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("memo", strconv.FormatInt(memo.ID, 10))
	}

	return nil
}

// Delete removes a memo and returns the deleted record.
func (r *MemoRepo) Delete(ctx context.Context, id int64) (*model.Memo, error) {
	memo, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := r.conn.ExecContext(ctx, `DELETE FROM memos WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("sqlite: deleting memo %d: %w", id, err)
	}

	return memo, nil
}

// encodeMemoFields renders the structured fields into their stored text
// form. Encoding only fails on unencodable values, which the model types
// can't contain — but the error is still propagated rather than swallowed.
func encodeMemoFields(memo *model.Memo) (items, images, urls string, err error) {
	if items, err = model.EncodeItems(memo.Items); err != nil {
		return "", "", "", fmt.Errorf("sqlite: encoding memo items: %w", err)
	}
	if images, err = model.EncodeImages(memo.Images); err != nil {
		return "", "", "", fmt.Errorf("sqlite: encoding memo images: %w", err)
	}
	if urls, err = model.EncodeLinks(memo.URLs); err != nil {
		return "", "", "", fmt.Errorf("sqlite: encoding memo urls: %w", err)
	}
	return items, images, urls, nil
}

// scanMemo reads one memo row through the given Scan func and decodes the
// stringified columns. Works for both QueryRow and Rows iteration.
func scanMemo(scan func(dest ...any) error) (*model.Memo, error) {
	var (
		m                   model.Memo
		items, images, urls string
	)
	if err := scan(
		&m.ID, &m.Title, &m.Type, &items, &m.TextContent, &images, &urls,
		&m.UserID, &m.CreatedAt, &m.UpdatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if m.Items, err = model.DecodeItems(items); err != nil {
		return nil, fmt.Errorf("decoding memo %d items: %w", m.ID, err)
	}
	if m.Images, err = model.DecodeImages(images); err != nil {
		return nil, fmt.Errorf("decoding memo %d images: %w", m.ID, err)
	}
	if m.URLs, err = model.DecodeLinks(urls); err != nil {
		return nil, fmt.Errorf("decoding memo %d urls: %w", m.ID, err)
	}

	return &m, nil
}
