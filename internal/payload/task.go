package payload

import (
	"time"

	"github.com/pattarapol/jotter-api/internal/model"
)

type CreateTaskRequest struct {
	Title string     `json:"title"  validate:"required,max=200"`
	DueAt *time.Time `json:"due_at"`
}

type UpdateTaskRequest struct {
	Title *string    `json:"title" validate:"omitempty,max=200"`
	Done  *bool      `json:"done"`
	DueAt *time.Time `json:"due_at"`
}

type TaskResponse struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Done      bool       `json:"done"`
	DueAt     *time.Time `json:"due_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func NewTaskResponse(task *model.Task) TaskResponse {
	return TaskResponse{
		ID:        task.ID.Hex(),
		Title:     task.Title,
		Done:      task.Done,
		DueAt:     task.DueAt,
		CreatedAt: task.CreatedAt,
		UpdatedAt: task.UpdatedAt,
	}
}

func NewTaskListResponse(tasks []*model.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, NewTaskResponse(task))
	}
	return out
}
