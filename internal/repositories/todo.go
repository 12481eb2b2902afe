// Package repositories はデータベース操作を行うリポジトリを提供します。
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"todo-api/internal/models"
)

// ErrTodoNotFound はTODOが見つからない場合のエラーです。
// 障害ではなく「該当なし」を表すので、呼び出し側は 404 に変換します。
var ErrTodoNotFound = errors.New("todo not found")

const todoColumns = "id, title, description, created_at, updated_at"

// TodoRepository はTodoのデータベース操作を行うための構造体です。
type TodoRepository struct {
	DB  *sql.DB
	now func() time.Time
}

// Option は TodoRepository の設定を変更します。
type Option func(*TodoRepository)

// WithClock はタイムスタンプに使う時計を差し替えます。
func WithClock(now func() time.Time) Option {
	return func(r *TodoRepository) { r.now = now }
}

// NewTodoRepository は新しいTodoRepositoryインスタンスを作成します。
func NewTodoRepository(db *sql.DB, opts ...Option) *TodoRepository {
	r := &TodoRepository{DB: db, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// timestamp は MySQL の DATETIME(6) と同じ精度に丸めた UTC の現在時刻です。
func (r *TodoRepository) timestamp() time.Time {
	return r.now().UTC().Truncate(time.Microsecond)
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanTodo は1行を models.Todo に変換します。
func scanTodo(row rowScanner) (*models.Todo, error) {
	var (
		t    models.Todo
		desc sql.NullString
	)
	if err := row.Scan(&t.ID, &t.Title, &desc, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	if desc.Valid {
		t.Description = &desc.String
	}
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return &t, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// Create は新しいTodoをデータベースに挿入し、保存された行を返します。
func (r *TodoRepository) Create(ctx context.Context, title string, description *string) (*models.Todo, error) {
	now := r.timestamp()
	query := "INSERT INTO todos (title, description, created_at, updated_at) VALUES (?, ?, ?, ?)"

	result, err := r.DB.ExecContext(ctx, query, title, nullString(description), now, now)
	if err != nil {
		slog.ErrorContext(ctx, "failed to insert todo", "error", err)
		return nil, fmt.Errorf("could not insert todo: %w", err)
	}

	// 自動採番されたIDを取得
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("could not get last insert ID: %w", err)
	}

	return r.FindByID(ctx, int(id))
}

// FindAll はすべてのTodoをID順で取得します。0件の場合は空スライスを返します。
func (r *TodoRepository) FindAll(ctx context.Context) ([]*models.Todo, error) {
	query := "SELECT " + todoColumns + " FROM todos ORDER BY id"

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		slog.ErrorContext(ctx, "failed to query todos", "error", err)
		return nil, fmt.Errorf("could not query todos: %w", err)
	}
	defer rows.Close()

	todos := []*models.Todo{}
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			slog.ErrorContext(ctx, "failed to scan todo", "error", err)
			return nil, fmt.Errorf("could not scan todo: %w", err)
		}
		todos = append(todos, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating todos: %w", err)
	}

	return todos, nil
}

// FindByID は指定されたIDのTodoを取得します。
func (r *TodoRepository) FindByID(ctx context.Context, id int) (*models.Todo, error) {
	query := "SELECT " + todoColumns + " FROM todos WHERE id = ?"

	t, err := scanTodo(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTodoNotFound
		}
		slog.ErrorContext(ctx, "failed to query todo by ID", "id", id, "error", err)
		return nil, fmt.Errorf("could not query todo: %w", err)
	}
	return t, nil
}

// Update は patch で指定されたフィールドだけを更新し、更新後のTodoを返します。
// 指定フィールドが無くても updated_at は更新されます。
func (r *TodoRepository) Update(ctx context.Context, id int, patch models.TodoPatch) (*models.Todo, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	// Commit 済みなら Rollback は ErrTxDone を返すだけ
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			slog.ErrorContext(ctx, "failed to rollback", "error", rbErr)
		}
	}()

	selectQuery := "SELECT " + todoColumns + " FROM todos WHERE id = ?"
	current, err := scanTodo(tx.QueryRowContext(ctx, selectQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("could not query todo: %w", err)
	}

	patch.Apply(current)
	current.UpdatedAt = r.timestamp()
	if current.UpdatedAt.Before(current.CreatedAt) {
		current.UpdatedAt = current.CreatedAt
	}

	query := "UPDATE todos SET title = ?, description = ?, updated_at = ? WHERE id = ?"
	result, err := tx.ExecContext(ctx, query, current.Title, nullString(current.Description), current.UpdatedAt, id)
	if err != nil {
		slog.ErrorContext(ctx, "failed to update todo", "id", id, "error", err)
		return nil, fmt.Errorf("could not update todo: %w", err)
	}

	// 更新された行数を確認
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("could not get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrTodoNotFound
	}

	updated, err := scanTodo(tx.QueryRowContext(ctx, selectQuery, id))
	if err != nil {
		return nil, fmt.Errorf("could not reload todo: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("could not commit update: %w", err)
	}
	return updated, nil
}

// Delete は指定されたIDのTodoを削除します。該当行が無ければ false を返します。
func (r *TodoRepository) Delete(ctx context.Context, id int) (bool, error) {
	query := "DELETE FROM todos WHERE id = ?"

	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		slog.ErrorContext(ctx, "failed to delete todo", "id", id, "error", err)
		return false, fmt.Errorf("could not delete todo: %w", err)
	}

	// 削除された行数を確認
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("could not get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// Ping はストアの疎通確認を行います。
func (r *TodoRepository) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}
