package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/saurabh-eg/Tasksync/internal/model"
)

// MongoStore — хранилище в MongoDB, две коллекции: users и tasks.
type MongoStore struct {
	client  *mongo.Client
	db      string
	timeout time.Duration
}

func NewMongoStore(uri, db string) (*MongoStore, error) {
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	return &MongoStore{
		client:  client,
		db:      db,
		timeout: 5 * time.Second,
	}, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

type userDoc struct {
	ID             string    `bson:"_id"`
	Email          string    `bson:"email"`
	Name           string    `bson:"name"`
	CreatedAt      time.Time `bson:"created_at"`
	HashedPassword string    `bson:"hashed_password"`
}

type taskDoc struct {
	ID          string     `bson:"_id"`
	Title       string     `bson:"title"`
	Description string     `bson:"description,omitempty"`
	DueDate     *time.Time `bson:"due_date,omitempty"`
	Completed   bool       `bson:"completed"`
	CreatedAt   time.Time  `bson:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at"`
	UserID      string     `bson:"user_id"`
}

func (d userDoc) toRecord() UserRecord {
	return UserRecord{
		User: model.User{
			ID:        d.ID,
			Email:     d.Email,
			Name:      d.Name,
			CreatedAt: d.CreatedAt,
		},
		HashedPassword: d.HashedPassword,
	}
}

func recordToDoc(u UserRecord) userDoc {
	return userDoc{
		ID:             u.ID,
		Email:          u.Email,
		Name:           u.Name,
		CreatedAt:      u.CreatedAt,
		HashedPassword: u.HashedPassword,
	}
}

func (d taskDoc) toTask() model.Task {
	return model.Task{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		DueDate:     d.DueDate,
		Completed:   d.Completed,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
		UserID:      d.UserID,
	}
}

func taskToDoc(t model.Task) taskDoc {
	return taskDoc{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		UserID:      t.UserID,
	}
}

func (s *MongoStore) users() *mongo.Collection {
	return s.client.Database(s.db).Collection("users")
}

func (s *MongoStore) tasks() *mongo.Collection {
	return s.client.Database(s.db).Collection("tasks")
}

func (s *MongoStore) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func (s *MongoStore) InsertUser(ctx context.Context, u UserRecord) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	err := s.users().FindOne(ctx, bson.M{"email": u.Email}).Err()
	if err == nil {
		return ErrEmailTaken
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}
	_, err = s.users().InsertOne(ctx, recordToDoc(u))
	return err
}

func (s *MongoStore) UserByEmail(ctx context.Context, email string) (UserRecord, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var d userDoc
	err := s.users().FindOne(ctx, bson.M{"email": email}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return UserRecord{}, ErrNotFound
		}
		return UserRecord{}, err
	}
	return d.toRecord(), nil
}

func (s *MongoStore) UserByID(ctx context.Context, id string) (UserRecord, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var d userDoc
	err := s.users().FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return UserRecord{}, ErrNotFound
		}
		return UserRecord{}, err
	}
	return d.toRecord(), nil
}

func (s *MongoStore) InsertTask(ctx context.Context, t model.Task) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	_, err := s.tasks().InsertOne(ctx, taskToDoc(t))
	return err
}

func (s *MongoStore) TasksByUser(ctx context.Context, userID string) ([]model.Task, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	cur, err := s.tasks().Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	result := make([]model.Task, 0)
	for cur.Next(ctx) {
		var d taskDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		result = append(result, d.toTask())
	}
	return result, cur.Err()
}

func (s *MongoStore) TaskByID(ctx context.Context, id, userID string) (model.Task, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var d taskDoc
	err := s.tasks().FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.Task{}, ErrNotFound
		}
		return model.Task{}, err
	}
	return d.toTask(), nil
}

func (s *MongoStore) ReplaceTask(ctx context.Context, t model.Task) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	res, err := s.tasks().ReplaceOne(ctx, bson.M{"_id": t.ID}, taskToDoc(t))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) DeleteTask(ctx context.Context, id, userID string) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	res, err := s.tasks().DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
