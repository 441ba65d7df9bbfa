package loansvc

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bablookumarmuz/Library-Management/model"
	bookrepo "github.com/bablookumarmuz/Library-Management/repository/book"
	loanrepo "github.com/bablookumarmuz/Library-Management/repository/loan"
)

// stub driver so the service can open and commit transactions against fakes

type stubDriver struct{}
type stubConn struct{}
type stubTx struct{}

func (stubDriver) Open(string) (driver.Conn, error)  { return stubConn{}, nil }
func (stubConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not supported") }
func (stubConn) Close() error                        { return nil }
func (stubConn) Begin() (driver.Tx, error)           { return stubTx{}, nil }
func (stubTx) Commit() error                         { return nil }
func (stubTx) Rollback() error                       { return nil }

func init() { sql.Register("loansvc_stub", stubDriver{}) }

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("loansvc_stub", "")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// --- fakes ---

type fakeBookRepo struct {
	books map[int64]*model.Book
}

var _ bookrepo.Repo = (*fakeBookRepo)(nil)

func (f *fakeBookRepo) Detail(ctx context.Context, id int64) (*model.Book, error) {
	b, ok := f.books[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBookRepo) DecrementAvailable(ctx context.Context, tx *sql.Tx, id int64) (bool, error) {
	b, ok := f.books[id]
	if !ok || b.AvailableQuantity <= 0 {
		return false, nil
	}
	b.AvailableQuantity--
	return true, nil
}

func (f *fakeBookRepo) IncrementAvailable(ctx context.Context, tx *sql.Tx, id int64) error {
	if b, ok := f.books[id]; ok {
		b.AvailableQuantity++
	}
	return nil
}

func (f *fakeBookRepo) Create(ctx context.Context, b *model.Book) (int64, error) { return 0, nil }
func (f *fakeBookRepo) Update(ctx context.Context, b *model.Book) error          { return nil }
func (f *fakeBookRepo) Delete(ctx context.Context, id int64) error               { return nil }
func (f *fakeBookRepo) List(ctx context.Context) ([]model.Book, error)           { return nil, nil }

type fakeLoanRepo struct {
	loans  map[int64]*model.Loan
	nextID int64
}

var _ loanrepo.Repo = (*fakeLoanRepo)(nil)

func newFakeLoanRepo() *fakeLoanRepo { return &fakeLoanRepo{loans: map[int64]*model.Loan{}} }

func (f *fakeLoanRepo) Insert(ctx context.Context, tx *sql.Tx, l *model.Loan) error {
	f.nextID++
	l.ID = f.nextID
	cp := *l
	f.loans[l.ID] = &cp
	return nil
}

func (f *fakeLoanRepo) GetForUpdate(ctx context.Context, tx *sql.Tx, loanID int64) (*model.Loan, error) {
	l, ok := f.loans[loanID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *l
	return &cp, nil
}

func (f *fakeLoanRepo) MarkReturned(ctx context.Context, tx *sql.Tx, loanID int64, at time.Time) error {
	l := f.loans[loanID]
	l.Status = model.LoanReturned
	l.ReturnedAt = &at
	return nil
}

func (f *fakeLoanRepo) ListOpen(ctx context.Context) ([]model.Loan, error)    { return nil, nil }
func (f *fakeLoanRepo) MarkOverdue(ctx context.Context, id int64) (bool, error) { return false, nil }
func (f *fakeLoanRepo) ListByBorrower(ctx context.Context, borrowerID int64) ([]loanrepo.HistoryRow, error) {
	return nil, nil
}
func (f *fakeLoanRepo) ListAll(ctx context.Context) ([]loanrepo.HistoryRow, error) { return nil, nil }

// --- tests ---

func newHarness(t *testing.T) (Service, *fakeLoanRepo, *fakeBookRepo) {
	lr := newFakeLoanRepo()
	br := &fakeBookRepo{books: map[int64]*model.Book{
		1: {ID: 1, Title: "Clean Code", ISBN: "978-0132350884", Quantity: 2, AvailableQuantity: 1},
		2: {ID: 2, Title: "SICP", ISBN: "978-0262510875", Quantity: 1, AvailableQuantity: 0},
	}}
	return New(testDB(t), lr, br, 14), lr, br
}

func TestBorrow_Success(t *testing.T) {
	svc, lr, br := newHarness(t)

	loan, err := svc.Borrow(context.Background(), 7, 1)
	require.NoError(t, err)
	require.Equal(t, model.LoanIssued, loan.Status)
	require.Equal(t, int64(7), loan.BorrowerID)
	require.Equal(t, loan.IssuedAt.Add(14*24*time.Hour), loan.DueAt)
	require.Zero(t, br.books[1].AvailableQuantity)
	require.Len(t, lr.loans, 1)
}

func TestBorrow_BookNotFound(t *testing.T) {
	svc, _, _ := newHarness(t)
	_, err := svc.Borrow(context.Background(), 7, 99)
	require.Equal(t, ErrBookNotFound, Code(err))
}

func TestBorrow_NoStock(t *testing.T) {
	svc, lr, _ := newHarness(t)
	_, err := svc.Borrow(context.Background(), 7, 2)
	require.Equal(t, ErrNoStock, Code(err))
	require.Empty(t, lr.loans)
}

func TestReturn_Success(t *testing.T) {
	svc, lr, br := newHarness(t)
	loan, err := svc.Borrow(context.Background(), 7, 1)
	require.NoError(t, err)

	require.NoError(t, svc.Return(context.Background(), 7, loan.ID))
	got := lr.loans[loan.ID]
	require.Equal(t, model.LoanReturned, got.Status)
	require.NotNil(t, got.ReturnedAt)
	require.Equal(t, int64(1), br.books[1].AvailableQuantity)
}

func TestReturn_OverdueLoanStillCloses(t *testing.T) {
	svc, lr, _ := newHarness(t)
	loan, err := svc.Borrow(context.Background(), 7, 1)
	require.NoError(t, err)
	lr.loans[loan.ID].Status = model.LoanOverdue

	require.NoError(t, svc.Return(context.Background(), 7, loan.ID))
	require.Equal(t, model.LoanReturned, lr.loans[loan.ID].Status)
}

func TestReturn_NotOwner(t *testing.T) {
	svc, _, _ := newHarness(t)
	loan, err := svc.Borrow(context.Background(), 7, 1)
	require.NoError(t, err)

	err = svc.Return(context.Background(), 8, loan.ID)
	require.Equal(t, ErrNotOwner, Code(err))
}

func TestReturn_AlreadyReturned(t *testing.T) {
	svc, _, _ := newHarness(t)
	loan, err := svc.Borrow(context.Background(), 7, 1)
	require.NoError(t, err)
	require.NoError(t, svc.Return(context.Background(), 7, loan.ID))

	err = svc.Return(context.Background(), 7, loan.ID)
	require.Equal(t, ErrNotOpen, Code(err))
}

func TestReturn_NotFound(t *testing.T) {
	svc, _, _ := newHarness(t)
	err := svc.Return(context.Background(), 7, 42)
	require.Equal(t, ErrNotFound, Code(err))
}
