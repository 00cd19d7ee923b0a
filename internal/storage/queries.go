package storage

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

type Category struct {
	ID   int64
	Name string
	Type string
}

// TransactionRow is a transactions row joined with its category.
type TransactionRow struct {
	ID              int64
	UserID          string
	CategoryID      int64
	Amount          string
	TransactionDate string
	Description     string
	CategoryName    string
	CategoryType    string
}

type MonthAmountRow struct {
	Month  int64
	Type   string
	Amount string
}

const listCategories = `SELECT id, name, type FROM categories ORDER BY type, name`

func (q *Queries) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := q.db.QueryContext(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Category
	for rows.Next() {
		var i Category
		if err := rows.Scan(&i.ID, &i.Name, &i.Type); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getCategory = `SELECT id, name, type FROM categories WHERE id = ?`

func (q *Queries) GetCategory(ctx context.Context, id int64) (Category, error) {
	row := q.db.QueryRowContext(ctx, getCategory, id)
	var i Category
	err := row.Scan(&i.ID, &i.Name, &i.Type)
	return i, err
}

const insertTransaction = `INSERT INTO transactions (user_id, category_id, amount, transaction_date, description)
VALUES (?, ?, ?, ?, ?)
RETURNING id`

type InsertTransactionParams struct {
	UserID          string
	CategoryID      int64
	Amount          string
	TransactionDate string
	Description     string
}

func (q *Queries) InsertTransaction(ctx context.Context, arg InsertTransactionParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, insertTransaction,
		arg.UserID,
		arg.CategoryID,
		arg.Amount,
		arg.TransactionDate,
		arg.Description,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const updateTransaction = `UPDATE transactions
SET category_id = ?, amount = ?, transaction_date = ?, description = ?
WHERE id = ? AND user_id = ?`

type UpdateTransactionParams struct {
	CategoryID      int64
	Amount          string
	TransactionDate string
	Description     string
	ID              int64
	UserID          string
}

func (q *Queries) UpdateTransaction(ctx context.Context, arg UpdateTransactionParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateTransaction,
		arg.CategoryID,
		arg.Amount,
		arg.TransactionDate,
		arg.Description,
		arg.ID,
		arg.UserID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteTransaction = `DELETE FROM transactions WHERE id = ? AND user_id = ?`

func (q *Queries) DeleteTransaction(ctx context.Context, id int64, userID string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteTransaction, id, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const selectTransactions = `SELECT t.id, t.user_id, t.category_id, t.amount, t.transaction_date,
       t.description, c.name, c.type
FROM transactions t
JOIN categories c ON c.id = t.category_id
`

const getTransaction = selectTransactions + `WHERE t.id = ? AND t.user_id = ?`

func (q *Queries) GetTransaction(ctx context.Context, id int64, userID string) (TransactionRow, error) {
	row := q.db.QueryRowContext(ctx, getTransaction, id, userID)
	var i TransactionRow
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.CategoryID,
		&i.Amount,
		&i.TransactionDate,
		&i.Description,
		&i.CategoryName,
		&i.CategoryType,
	)
	return i, err
}

const listTransactionsBetween = selectTransactions + `WHERE t.user_id = ? AND t.transaction_date >= ? AND t.transaction_date < ?
ORDER BY t.transaction_date DESC, t.id DESC`

// ListTransactionsBetween returns rows dated in [from, to), both YYYY-MM-DD.
func (q *Queries) ListTransactionsBetween(ctx context.Context, userID, from, to string) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, listTransactionsBetween, userID, from, to)
	if err != nil {
		return nil, err
	}
	return scanTransactionRows(rows)
}

const listRecentTransactions = selectTransactions + `WHERE t.user_id = ?
ORDER BY t.transaction_date DESC, t.id DESC
LIMIT ?`

func (q *Queries) ListRecentTransactions(ctx context.Context, userID string, limit int64) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, listRecentTransactions, userID, limit)
	if err != nil {
		return nil, err
	}
	return scanTransactionRows(rows)
}

func scanTransactionRows(rows *sql.Rows) ([]TransactionRow, error) {
	defer rows.Close()
	var items []TransactionRow
	for rows.Next() {
		var i TransactionRow
		if err := rows.Scan(
			&i.ID,
			&i.UserID,
			&i.CategoryID,
			&i.Amount,
			&i.TransactionDate,
			&i.Description,
			&i.CategoryName,
			&i.CategoryType,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const earliestTransactionDate = `SELECT MIN(transaction_date) FROM transactions WHERE user_id = ?`

func (q *Queries) EarliestTransactionDate(ctx context.Context, userID string) (sql.NullString, error) {
	row := q.db.QueryRowContext(ctx, earliestTransactionDate, userID)
	var d sql.NullString
	err := row.Scan(&d)
	return d, err
}

const listMonthAmounts = `SELECT CAST(strftime('%m', t.transaction_date) AS INTEGER) AS month, c.type, t.amount
FROM transactions t
JOIN categories c ON c.id = t.category_id
WHERE t.user_id = ? AND t.transaction_date >= ? AND t.transaction_date < ?`

// ListMonthAmounts returns one row per transaction; amounts are summed by the caller
// since they are stored as decimal text.
func (q *Queries) ListMonthAmounts(ctx context.Context, userID, from, to string) ([]MonthAmountRow, error) {
	rows, err := q.db.QueryContext(ctx, listMonthAmounts, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MonthAmountRow
	for rows.Next() {
		var i MonthAmountRow
		if err := rows.Scan(&i.Month, &i.Type, &i.Amount); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
