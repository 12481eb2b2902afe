package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"todo-api/internal/models"
	"todo-api/internal/repositories"
	"todo-api/internal/services"
)

// TodoHandler はTodo関連のハンドラーを管理します。
type TodoHandler struct {
	todoService *services.TodoService
}

// NewTodoHandler は新しいTodoHandlerを作成します。
func NewTodoHandler(todoService *services.TodoService) *TodoHandler {
	useJSONFieldNames()
	return &TodoHandler{todoService: todoService}
}

// parseID はパスパラメータ :id を整数として読み取ります。
// 整数でなければ 422 を返して false になります。
func parseID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		abortValidation(c, ErrorDetail{Loc: []string{"path", "id"}, Msg: msgInvalidInteger, Type: "int_parsing"})
		return 0, false
	}
	return id, true
}

// CreateTodoHandler は新しいTodoを作成します。
func (h *TodoHandler) CreateTodoHandler(c *gin.Context) {
	var req models.CreateTodoRequest
	if err := bindJSONObject(c, &req); err != nil {
		abortValidation(c, bindingErrorDetails(err)...)
		return
	}

	createdTodo, err := h.todoService.CreateTodo(c.Request.Context(), &req)
	if err != nil {
		abortInternal(c, err, "failed to create todo")
		return
	}
	c.JSON(http.StatusCreated, models.NewTodoResponse(createdTodo))
}

// GetTodosHandler はTodoリストを取得します。
func (h *TodoHandler) GetTodosHandler(c *gin.Context) {
	todos, err := h.todoService.GetTodos(c.Request.Context())
	if err != nil {
		abortInternal(c, err, "failed to fetch todos")
		return
	}
	c.JSON(http.StatusOK, models.NewTodoResponses(todos))
}

// GetTodoByIDHandler は指定IDのTodoを取得します。
func (h *TodoHandler) GetTodoByIDHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	todo, err := h.todoService.GetTodoByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrTodoNotFound) {
			abortNotFound(c)
			return
		}
		abortInternal(c, err, "failed to fetch todo")
		return
	}
	c.JSON(http.StatusOK, models.NewTodoResponse(todo))
}

// UpdateTodoHandler はTodoを更新します。送られてきたフィールドだけが変更されます。
func (h *TodoHandler) UpdateTodoHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req models.UpdateTodoRequest
	if err := bindJSONObject(c, &req); err != nil {
		abortValidation(c, bindingErrorDetails(err)...)
		return
	}
	// title は NULL にできない
	if req.Title.Set && req.Title.Null {
		abortValidation(c, ErrorDetail{Loc: []string{"body", "title"}, Msg: msgInvalidString, Type: "string_type"})
		return
	}

	updatedTodo, err := h.todoService.UpdateTodo(c.Request.Context(), id, &req)
	if err != nil {
		if errors.Is(err, repositories.ErrTodoNotFound) {
			abortNotFound(c)
			return
		}
		abortInternal(c, err, "failed to update todo")
		return
	}
	c.JSON(http.StatusOK, models.NewTodoResponse(updatedTodo))
}

// DeleteTodoHandler はTodoを削除します。
func (h *TodoHandler) DeleteTodoHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	deleted, err := h.todoService.DeleteTodo(c.Request.Context(), id)
	if err != nil {
		abortInternal(c, err, "failed to delete todo")
		return
	}
	if !deleted {
		abortNotFound(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msgTodoDeleted})
}

// DBCheckHandler はデータベース接続の健全性を確認します。
func (h *TodoHandler) DBCheckHandler(c *gin.Context) {
	if err := h.todoService.Ping(c.Request.Context()); err != nil {
		abortInternal(c, err, "db ping failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Database connection is healthy"})
}
