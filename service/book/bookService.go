package booksvc

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/bablookumarmuz/Library-Management/model"
	bookrepo "github.com/bablookumarmuz/Library-Management/repository/book"
)

var (
	ErrNotFound  = errors.New("book not found")
	ErrISBNTaken = errors.New("isbn already exists")
	ErrBadInput  = errors.New("bad input")
)

type Service interface {
	Create(ctx context.Context, b *model.Book) (int64, error)
	Update(ctx context.Context, b *model.Book) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]model.Book, error)
	Detail(ctx context.Context, id int64) (*model.Book, error)
}

type service struct{ br bookrepo.Repo }

func New(br bookrepo.Repo) Service { return &service{br: br} }

func (s *service) Create(ctx context.Context, b *model.Book) (int64, error) {
	if strings.TrimSpace(b.Title) == "" || strings.TrimSpace(b.ISBN) == "" {
		return 0, ErrBadInput
	}
	if b.Quantity < 0 {
		return 0, ErrBadInput
	}
	if b.AvailableQuantity == 0 {
		b.AvailableQuantity = b.Quantity
	}
	id, err := s.br.Create(ctx, b)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return 0, ErrISBNTaken
		}
		return 0, err
	}
	return id, nil
}

func (s *service) Update(ctx context.Context, b *model.Book) error {
	if err := s.br.Update(ctx, b); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if err := s.br.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *service) List(ctx context.Context) ([]model.Book, error) {
	return s.br.List(ctx)
}

func (s *service) Detail(ctx context.Context, id int64) (*model.Book, error) {
	b, err := s.br.Detail(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}
