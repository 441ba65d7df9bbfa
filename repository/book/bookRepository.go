package bookrepo

import (
	"context"
	"database/sql"

	"github.com/bablookumarmuz/Library-Management/model"
)

type Repo interface {
	Create(ctx context.Context, b *model.Book) (int64, error)
	Update(ctx context.Context, b *model.Book) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]model.Book, error)
	Detail(ctx context.Context, id int64) (*model.Book, error)

	// DecrementAvailable takes one copy if any is left; reports false when
	// the stock is exhausted.
	DecrementAvailable(ctx context.Context, tx *sql.Tx, id int64) (bool, error)
	IncrementAvailable(ctx context.Context, tx *sql.Tx, id int64) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) Create(ctx context.Context, b *model.Book) (int64, error) {
	const q = `
INSERT INTO books (title, author, isbn, category, quantity, available_quantity)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING id`
	var id int64
	if err := r.db.QueryRowContext(ctx, q,
		b.Title, b.Author, b.ISBN, b.Category, b.Quantity, b.AvailableQuantity,
	).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repo) Update(ctx context.Context, b *model.Book) error {
	const q = `
		UPDATE books
		SET title = $2,
			author = $3,
			isbn = $4,
			category = $5,
			quantity = $6,
			available_quantity = $7
		WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q,
		b.ID, b.Title, b.Author, b.ISBN, b.Category, b.Quantity, b.AvailableQuantity)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) List(ctx context.Context) ([]model.Book, error) {
	const q = `
	SELECT id, title, author, isbn, category, quantity, available_quantity
	FROM books
	ORDER BY id DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Book
	for rows.Next() {
		var b model.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.ISBN, &b.Category, &b.Quantity, &b.AvailableQuantity); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *repo) Detail(ctx context.Context, id int64) (*model.Book, error) {
	const q = `
SELECT id, title, author, isbn, category, quantity, available_quantity
FROM books
WHERE id = $1`
	var b model.Book
	if err := r.db.QueryRowContext(ctx, q, id).Scan(
		&b.ID, &b.Title, &b.Author, &b.ISBN, &b.Category, &b.Quantity, &b.AvailableQuantity,
	); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repo) DecrementAvailable(ctx context.Context, tx *sql.Tx, id int64) (bool, error) {
	// Guard: only decrement while stock remains.
	const q = `
		UPDATE books
		SET available_quantity = available_quantity - 1
		WHERE id = $1
		AND available_quantity > 0`
	res, err := tx.ExecContext(ctx, q, id)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff > 0, nil
}

func (r *repo) IncrementAvailable(ctx context.Context, tx *sql.Tx, id int64) error {
	const q = `
		UPDATE books
		SET available_quantity = available_quantity + 1
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, id)
	return err
}
