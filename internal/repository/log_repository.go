package repository

import (
	"context"
	"sync"
	"time"

	"github.com/Ishagupta145/mcp-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type LogRepository interface {
	SaveLog(log *models.LogEntry) error
	GetRecentLogs(page, limit int) ([]*models.LogEntry, error)
}

type MongoLogRepository struct {
	collection *mongo.Collection
}

func NewMongoLogRepository(client *mongo.Client, dbName, collectionName string) LogRepository {
	collection := client.Database(dbName).Collection(collectionName)
	return &MongoLogRepository{collection: collection}
}

func (r *MongoLogRepository) SaveLog(log *models.LogEntry) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log.ID = primitive.NewObjectID()
	log.Timestamp = time.Now()
	_, err := r.collection.InsertOne(ctx, log)
	return err
}

func (r *MongoLogRepository) GetRecentLogs(page, limit int) ([]*models.LogEntry, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var logs []*models.LogEntry
	skip := (page - 1) * limit
	findOptions := options.Find().SetSort(bson.M{"timestamp": -1}).SetSkip(int64(skip)).SetLimit(int64(limit))
	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// InMemoryLogRepository keeps the most recent entries up to a fixed bound.
type InMemoryLogRepository struct {
	logs    []*models.LogEntry
	maxLogs int
	mu      sync.RWMutex
}

func NewInMemoryLogRepository(maxLogs int) LogRepository {
	if maxLogs <= 0 {
		maxLogs = 1000
	}
	return &InMemoryLogRepository{
		logs:    make([]*models.LogEntry, 0, maxLogs),
		maxLogs: maxLogs,
	}
}

func (r *InMemoryLogRepository) SaveLog(log *models.LogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	log.ID = primitive.NewObjectID()
	log.Timestamp = time.Now()
	if len(r.logs) == r.maxLogs {
		copy(r.logs, r.logs[1:])
		r.logs = r.logs[:len(r.logs)-1]
	}
	r.logs = append(r.logs, log)
	return nil
}

// GetRecentLogs returns entries newest first.
func (r *InMemoryLogRepository) GetRecentLogs(page, limit int) ([]*models.LogEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	skip := (page - 1) * limit
	out := make([]*models.LogEntry, 0, limit)
	for i := len(r.logs) - 1 - skip; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.logs[i])
	}
	return out, nil
}
