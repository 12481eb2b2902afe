// Package testutil はテスト用の DB とルーターを提供します。
package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"todo-api/internal/config"
	"todo-api/internal/database"
	"todo-api/internal/models"
	"todo-api/internal/repositories"
	"todo-api/internal/routes"
)

// FakeClock は呼ばれるたびに Step だけ進む時計です。
// updated_at が必ず増加することをテストで確認するために使います。
type FakeClock struct {
	mu   sync.Mutex
	now  time.Time
	Step time.Duration
}

// NewFakeClock は 2024-01-01 00:00:00 UTC から1秒ずつ進む時計を返します。
func NewFakeClock() *FakeClock {
	return &FakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Step: time.Second}
}

// Now は現在時刻を返し、時計を進めます。
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now
	c.now = c.now.Add(c.Step)
	return now
}

// NewTestDB は一時ディレクトリに SQLite DB を作り、マイグレーションを適用します。
// DB はテスト終了時に閉じられます。
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()
	cfg := config.DatabaseConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "todo_test.db"),
	}

	db, err := database.InitDB(ctx, cfg)
	require.NoError(t, err, "Failed to open test database")
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.Migrate(ctx, db, cfg.Driver), "Failed to migrate test database")
	return db
}

// SetupTestDB はテスト用のDBとGinルーターを用意します。
// ログは返り値の LogBuffer に JSON Lines で書き出されます。
func SetupTestDB(t *testing.T) (*sql.DB, *gin.Engine, *repositories.TodoRepository, *LogBuffer) {
	t.Helper()
	db := NewTestDB(t)
	clock := NewFakeClock()
	logs := &LogBuffer{}

	router := SetupTestRouter(t, db, logs, repositories.WithClock(clock.Now))
	todoRepo := repositories.NewTodoRepository(db, repositories.WithClock(clock.Now))
	return db, router, todoRepo, logs
}

// SetupTestRouter はテスト用のGinルーターをセットアップします。
func SetupTestRouter(t *testing.T, db *sql.DB, w io.Writer, repoOpts ...repositories.Option) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	return routes.SetupRouter(db, routes.Options{
		Logger:       logger,
		AllowOrigins: []string{"http://localhost:3000"},
		RepoOptions:  repoOpts,
	})
}

// LogBuffer は並行に書き込まれても安全なログの書き込み先です。
type LogBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *LogBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// Records は書き込まれた JSON ログを1行ずつデコードして返します。
func (b *LogBuffer) Records(t *testing.T) []map[string]any {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()

	var records []map[string]any
	dec := json.NewDecoder(bytes.NewReader(b.buf.Bytes()))
	for dec.More() {
		var rec map[string]any
		require.NoError(t, dec.Decode(&rec))
		records = append(records, rec)
	}
	return records
}

// Reset はバッファを空にします。
func (b *LogBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

// DoRequest は JSON ボディ付きでリクエストを送り、レスポンスを返します。
func DoRequest(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewBuffer(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

// CreateTestTodo は API 経由でTODOを作成し、レスポンスを返します。
func CreateTestTodo(t *testing.T, router http.Handler, title string, description *string) *models.TodoResponse {
	t.Helper()
	payload := map[string]any{"title": title}
	if description != nil {
		payload["description"] = *description
	}

	resp := DoRequest(t, router, http.MethodPost, "/todos", payload)
	require.Equal(t, http.StatusCreated, resp.Code, "TODO作成に失敗しました: %s", resp.Body.String())

	var created models.TodoResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	return &created
}
