package usecase

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/pattarapol/jotter-api/internal/apperrors"
	"github.com/pattarapol/jotter-api/internal/model"
	"github.com/pattarapol/jotter-api/internal/repository"
)

// TaskUsecase defines user-scoped task CRUD.
type TaskUsecase interface {
	CreateTask(ctx context.Context, userID string, params CreateTaskParams) (*model.Task, error)
	GetTask(ctx context.Context, userID, id string) (*model.Task, error)
	ListTasks(ctx context.Context, userID string, params repository.ListParams) ([]*model.Task, error)
	UpdateTask(ctx context.Context, userID, id string, params repository.UpdateTaskParams) (*model.Task, error)
	DeleteTask(ctx context.Context, userID, id string) error
}

// CreateTaskParams defines the parameters for creating a task.
type CreateTaskParams struct {
	Title string
	DueAt *time.Time
}

type taskUsecase struct {
	taskRepo repository.TaskRepository
}

// NewTaskUsecase creates a new instance of TaskUsecase.
func NewTaskUsecase(taskRepo repository.TaskRepository) TaskUsecase {
	return &taskUsecase{taskRepo: taskRepo}
}

func (u *taskUsecase) CreateTask(ctx context.Context, userID string, params CreateTaskParams) (*model.Task, error) {
	userObjectID, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, apperrors.NotFound("user", "user not found")
	}

	return u.taskRepo.CreateTask(ctx, &model.Task{
		UserID: userObjectID,
		Title:  params.Title,
		DueAt:  params.DueAt,
	})
}

func (u *taskUsecase) GetTask(ctx context.Context, userID, id string) (*model.Task, error) {
	task, err := u.taskRepo.GetTask(ctx, userID, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("task", "task not found")
		}

		return nil, err
	}

	return task, nil
}

func (u *taskUsecase) ListTasks(
	ctx context.Context,
	userID string,
	params repository.ListParams,
) ([]*model.Task, error) {
	return u.taskRepo.ListTasks(ctx, userID, params)
}

func (u *taskUsecase) UpdateTask(
	ctx context.Context,
	userID, id string,
	params repository.UpdateTaskParams,
) (*model.Task, error) {
	task, err := u.taskRepo.UpdateTask(ctx, userID, id, params)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("task", "task not found")
		}

		return nil, err
	}

	return task, nil
}

func (u *taskUsecase) DeleteTask(ctx context.Context, userID, id string) error {
	if err := u.taskRepo.DeleteTask(ctx, userID, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperrors.NotFound("task", "task not found")
		}

		return err
	}

	return nil
}
