// Package models は Todo を定義します。
package models

import (
	"time"
)

// Todo は todos テーブルの1行を表します。
type Todo struct {
	ID          int       // 主キー (自動採番)
	Title       string    // NULL にはならない (空文字は可)
	Description *string   // nil = NULL
	CreatedAt   time.Time // 作成日時 (以後変更しない)
	UpdatedAt   time.Time // 更新のたびに更新
}

// TodoPatch は部分更新の内容です。Set が false のフィールドは変更しません。
type TodoPatch struct {
	Title       Optional[string]
	Description Optional[string]
}

// IsEmpty は更新対象のフィールドが一つもないかを返します。
func (p TodoPatch) IsEmpty() bool {
	return !p.Title.Set && !p.Description.Set
}

// Apply はパッチを t に適用します。
func (p TodoPatch) Apply(t *Todo) {
	if p.Title.Set && !p.Title.Null {
		t.Title = p.Title.Value
	}
	if p.Description.Set {
		t.Description = p.Description.Ptr()
	}
}

// CreateTodoRequest は POST /todos のリクエストボディです。
// title はポインタにして、空文字は許可しつつキー欠落と null を弾きます。
type CreateTodoRequest struct {
	Title       *string `json:"title" binding:"required"`
	Description *string `json:"description"`
}

// UpdateTodoRequest は PUT /todos/:id のリクエストボディです。
// 送られたキーだけが更新されます。
type UpdateTodoRequest struct {
	Title       Optional[string] `json:"title"`
	Description Optional[string] `json:"description"`
}

// Patch はリクエストを TodoPatch に変換します。
func (r UpdateTodoRequest) Patch() TodoPatch {
	return TodoPatch{Title: r.Title, Description: r.Description}
}

// TodoResponse はクライアントに返す Todo の表現です。
type TodoResponse struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewTodoResponse は永続化済みの Todo からレスポンスを作ります。
func NewTodoResponse(t *Todo) TodoResponse {
	return TodoResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// NewTodoResponses は一覧用です。空でも nil ではなく空スライスを返します。
func NewTodoResponses(todos []*Todo) []TodoResponse {
	res := make([]TodoResponse, 0, len(todos))
	for _, t := range todos {
		res = append(res, NewTodoResponse(t))
	}
	return res
}
