package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/pattarapol/jotter-api/internal/apperrors"
	"github.com/pattarapol/jotter-api/internal/model"
)

// TaskRepository defines the interface for task-related database
// operations, user-scoped like NoteRepository.
type TaskRepository interface {
	CreateTask(ctx context.Context, task *model.Task) (*model.Task, error)
	GetTask(ctx context.Context, userID, id string) (*model.Task, error)
	ListTasks(ctx context.Context, userID string, params ListParams) ([]*model.Task, error)
	UpdateTask(ctx context.Context, userID, id string, params UpdateTaskParams) (*model.Task, error)
	DeleteTask(ctx context.Context, userID, id string) error
}

// UpdateTaskParams defines the optional parameters for updating a task.
// Only the fields that are not nil will be updated.
type UpdateTaskParams struct {
	Title *string
	Done  *bool
	DueAt *time.Time
}

const taskCollection = "tasks"

type taskMongoRepository struct {
	db *mongo.Database
}

func NewTaskMongoRepository(db *mongo.Database) TaskRepository {
	return &taskMongoRepository{db: db}
}

func (r *taskMongoRepository) CreateTask(ctx context.Context, task *model.Task) (*model.Task, error) {
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now

	result, err := r.db.Collection(taskCollection).InsertOne(ctx, task)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		task.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return task, nil
}

func (r *taskMongoRepository) GetTask(ctx context.Context, userID, id string) (*model.Task, error) {
	filter, err := ownedFilter(userID, id)
	if err != nil {
		return nil, err
	}

	result := r.db.Collection(taskCollection).FindOne(ctx, filter)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var task model.Task
	if err := result.Decode(&task); err != nil {
		return nil, err
	}

	return &task, nil
}

func (r *taskMongoRepository) ListTasks(
	ctx context.Context,
	userID string,
	params ListParams,
) ([]*model.Task, error) {
	userObjectID, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	findOptions := options.Find()
	findOptions.SetLimit(clampListLimit(params.Limit))

	if params.Offset > 0 {
		findOptions.SetSkip(int64(params.Offset))
	}

	findOptions.SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.db.Collection(taskCollection).Find(ctx, bson.M{"user_id": userObjectID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tasks []*model.Task
	for cursor.Next(ctx) {
		var task model.Task
		if err := cursor.Decode(&task); err != nil {
			return nil, err
		}
		tasks = append(tasks, &task)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return tasks, nil
}

func (r *taskMongoRepository) UpdateTask(
	ctx context.Context,
	userID, id string,
	params UpdateTaskParams,
) (*model.Task, error) {
	filter, err := ownedFilter(userID, id)
	if err != nil {
		return nil, err
	}

	updateMap := bson.M{}
	if params.Title != nil {
		updateMap["title"] = *params.Title
	}
	if params.Done != nil {
		updateMap["done"] = *params.Done
	}
	if params.DueAt != nil {
		updateMap["due_at"] = *params.DueAt
	}

	if len(updateMap) == 0 {
		return nil, apperrors.BadRequest("", "no fields to update")
	}

	updateMap["updated_at"] = time.Now()

	result := r.db.Collection(taskCollection).FindOneAndUpdate(
		ctx,
		filter,
		bson.M{"$set": updateMap},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var task model.Task
	if err := result.Decode(&task); err != nil {
		return nil, err
	}

	return &task, nil
}

func (r *taskMongoRepository) DeleteTask(ctx context.Context, userID, id string) error {
	filter, err := ownedFilter(userID, id)
	if err != nil {
		return err
	}

	result, err := r.db.Collection(taskCollection).DeleteOne(ctx, filter)
	if err != nil {
		return err
	}

	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}

	return nil
}
