package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

const collectionTasks = "tasks"

type TaskRepository struct {
	col *mongo.Collection
}

func NewTaskRepository(db *mongo.Database) *TaskRepository {
	return &TaskRepository{col: db.Collection(collectionTasks)}
}

type taskDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description,omitempty"`
	DueDate     *time.Time         `bson:"dueDate,omitempty"`
	Status      string             `bson:"status"`
	Priority    string             `bson:"priority"`
	AssignedTo  primitive.ObjectID `bson:"assignedTo"`
	CreatedBy   primitive.ObjectID `bson:"createdBy,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d taskDocument) toDomain() *domain.Task {
	t := &domain.Task{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		DueDate:     d.DueDate,
		Status:      domain.TaskStatus(d.Status),
		Priority:    domain.TaskPriority(d.Priority),
		AssignedTo:  d.AssignedTo.Hex(),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	if !d.CreatedBy.IsZero() {
		t.CreatedBy = d.CreatedBy.Hex()
	}
	return t
}

// Create inserts a new task. AssignedTo must be a valid user ID.
func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	assignee, err := primitive.ObjectIDFromHex(task.AssignedTo)
	if err != nil {
		return nil, domain.ErrAssigneeNotFound
	}
	doc := taskDocument{
		Title:       task.Title,
		Description: task.Description,
		DueDate:     task.DueDate,
		Status:      string(task.Status),
		Priority:    string(task.Priority),
		AssignedTo:  assignee,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
	if creator, err := primitive.ObjectIDFromHex(task.CreatedBy); err == nil {
		doc.CreatedBy = creator
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return doc.toDomain(), nil
}

func (r *TaskRepository) FindOne(ctx context.Context, filter ports.TaskFilter) (*domain.Task, error) {
	q, ok := taskQuery(filter)
	if !ok {
		return nil, domain.ErrTaskNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc taskDocument
	if err := r.col.FindOne(ctx, q).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return doc.toDomain(), nil
}

// ListByAssignee returns the user's tasks, oldest first.
func (r *TaskRepository) ListByAssignee(ctx context.Context, userID string) ([]*domain.Task, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return []*domain.Task{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"assignedTo": oid}, opts)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	var docs []taskDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	tasks := make([]*domain.Task, 0, len(docs))
	for _, d := range docs {
		tasks = append(tasks, d.toDomain())
	}
	return tasks, nil
}

func (r *TaskRepository) Update(ctx context.Context, filter ports.TaskFilter, upd domain.TaskUpdate) (*domain.Task, error) {
	q, ok := taskQuery(filter)
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	set, err := taskSet(upd, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc taskDocument
	if err := r.col.FindOneAndUpdate(ctx, q, bson.M{"$set": set}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("update task: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *TaskRepository) Delete(ctx context.Context, filter ports.TaskFilter) (*domain.Task, error) {
	q, ok := taskQuery(filter)
	if !ok {
		return nil, domain.ErrTaskNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc taskDocument
	if err := r.col.FindOneAndDelete(ctx, q).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("delete task: %w", err)
	}
	return doc.toDomain(), nil
}

// EnsureIndexes creates the assignee index used by every list query.
func (r *TaskRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "assignedTo", Value: 1}},
	})
	return err
}

// taskQuery translates a TaskFilter into a Mongo filter. ok is false when any
// ID in it is not a valid ObjectID, in which case nothing can match.
func taskQuery(f ports.TaskFilter) (bson.M, bool) {
	oid, err := primitive.ObjectIDFromHex(f.ID)
	if err != nil {
		return nil, false
	}
	q := bson.M{"_id": oid}
	if f.AssignedTo != "" {
		assignee, err := primitive.ObjectIDFromHex(f.AssignedTo)
		if err != nil {
			return nil, false
		}
		q["assignedTo"] = assignee
	}
	if f.EditableBy != "" {
		editor, err := primitive.ObjectIDFromHex(f.EditableBy)
		if err != nil {
			return nil, false
		}
		q["$or"] = bson.A{bson.M{"assignedTo": editor}, bson.M{"createdBy": editor}}
	}
	return q, true
}

func taskSet(upd domain.TaskUpdate, now time.Time) (bson.M, error) {
	set := bson.M{"updatedAt": now}
	if upd.Title != nil {
		set["title"] = *upd.Title
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.DueDate != nil {
		set["dueDate"] = *upd.DueDate
	}
	if upd.Status != nil {
		set["status"] = string(*upd.Status)
	}
	if upd.Priority != nil {
		set["priority"] = string(*upd.Priority)
	}
	if upd.AssignedTo != nil {
		oid, err := primitive.ObjectIDFromHex(*upd.AssignedTo)
		if err != nil {
			return nil, domain.ErrAssigneeNotFound
		}
		set["assignedTo"] = oid
	}
	return set, nil
}
