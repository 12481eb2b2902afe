package services

import (
	"context"

	"todo-api/internal/models"
	"todo-api/internal/repositories"
)

// TodoService はTodo関連のビジネスロジックを扱います。
type TodoService struct {
	todoRepo *repositories.TodoRepository
}

// NewTodoService は新しいTodoServiceを作成します。
func NewTodoService(todoRepo *repositories.TodoRepository) *TodoService {
	return &TodoService{todoRepo: todoRepo}
}

// CreateTodo は新しいTodoを作成します。
func (s *TodoService) CreateTodo(ctx context.Context, req *models.CreateTodoRequest) (*models.Todo, error) {
	var title string
	if req.Title != nil {
		title = *req.Title
	}
	return s.todoRepo.Create(ctx, title, req.Description)
}

// GetTodos は全Todoを取得します。
func (s *TodoService) GetTodos(ctx context.Context) ([]*models.Todo, error) {
	return s.todoRepo.FindAll(ctx)
}

// GetTodoByID は指定IDのTodoを取得します。
func (s *TodoService) GetTodoByID(ctx context.Context, id int) (*models.Todo, error) {
	return s.todoRepo.FindByID(ctx, id)
}

// UpdateTodo はリクエストで送られたフィールドだけを更新します。
func (s *TodoService) UpdateTodo(ctx context.Context, id int, req *models.UpdateTodoRequest) (*models.Todo, error) {
	return s.todoRepo.Update(ctx, id, req.Patch())
}

// DeleteTodo はTodoを削除します。存在しなければ false を返します。
func (s *TodoService) DeleteTodo(ctx context.Context, id int) (bool, error) {
	return s.todoRepo.Delete(ctx, id)
}

// Ping はストアの疎通確認を行います。
func (s *TodoService) Ping(ctx context.Context) error {
	return s.todoRepo.Ping(ctx)
}
