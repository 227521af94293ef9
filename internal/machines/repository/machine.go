package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	machineserrors "dormwash/internal/machines/errors"
	"dormwash/pkg/config"
	mongotx "dormwash/pkg/db/mongo"
	"dormwash/pkg/model"
)

const (
	CollectionName = "Machines"
)

type MachineRepository interface {
	Create(ctx context.Context, machine *model.Machine) error
	FindByID(ctx context.Context, id string) (*model.Machine, error)
	FindAll(ctx context.Context) ([]*model.Machine, error)
	FindByFloor(ctx context.Context, floor int) ([]*model.Machine, error)
	Update(ctx context.Context, id string, machine *model.Machine) error
	Claim(ctx context.Context, id, studentName string, durationMin int) error
	Release(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
	InsertMany(ctx context.Context, machines []*model.Machine) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoMachineRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoMachineRepository(cfg *config.Config) MachineRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoMachineRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout unless it already carries a
// transaction session, which must not be re-wrapped.
func (r *mongoMachineRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoMachineRepository) Create(ctx context.Context, machine *model.Machine) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, machine); err != nil {
		return fmt.Errorf("failed to create machine: %w", err)
	}
	return nil
}

func (r *mongoMachineRepository) FindByID(ctx context.Context, id string) (*model.Machine, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var machine model.Machine
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&machine)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, machineserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find machine: %w", err)
	}

	return &machine, nil
}

func (r *mongoMachineRepository) FindAll(ctx context.Context) ([]*model.Machine, error) {
	return r.find(ctx, bson.M{})
}

func (r *mongoMachineRepository) FindByFloor(ctx context.Context, floor int) ([]*model.Machine, error) {
	return r.find(ctx, bson.M{"floor": floor})
}

func (r *mongoMachineRepository) find(ctx context.Context, filter bson.M) ([]*model.Machine, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find machines: %w", err)
	}
	defer cursor.Close(ctx)

	var machines []*model.Machine
	if err = cursor.All(ctx, &machines); err != nil {
		return nil, fmt.Errorf("failed to decode machines: %w", err)
	}

	return machines, nil
}

func (r *mongoMachineRepository) Update(ctx context.Context, id string, machine *model.Machine) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"machine_number": machine.MachineNumber,
			"status":         machine.Status,
			"current_user":   machine.CurrentUser,
			"time_remaining": machine.TimeRemaining,
			"floor":          machine.Floor,
			"location":       machine.Location,
			"updated_at":     machine.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update machine: %w", err)
	}

	if result.MatchedCount == 0 {
		return machineserrors.ErrNotFound
	}

	return nil
}

// Claim flips an available machine to in_use. The status filter makes the
// transition a compare-and-swap: of two concurrent claims on one machine,
// exactly one matches.
func (r *mongoMachineRepository) Claim(ctx context.Context, id, studentName string, durationMin int) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{"_id": id, "status": model.MachineAvailable}
	update := bson.M{
		"$set": bson.M{
			"status":         model.MachineInUse,
			"current_user":   studentName,
			"time_remaining": durationMin,
			"updated_at":     time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to claim machine: %w", err)
	}

	if result.MatchedCount == 0 {
		// Distinguish an absent machine from one in the wrong state.
		if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Err(); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return machineserrors.ErrNotFound
			}
			return fmt.Errorf("failed to check machine existence: %w", err)
		}
		return machineserrors.ErrNotAvailable
	}

	return nil
}

// Release resets a machine to available and clears the usage pair.
func (r *mongoMachineRepository) Release(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"status":         model.MachineAvailable,
			"current_user":   nil,
			"time_remaining": nil,
			"updated_at":     time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to release machine: %w", err)
	}

	if result.MatchedCount == 0 {
		return machineserrors.ErrNotFound
	}

	return nil
}

func (r *mongoMachineRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count machines: %w", err)
	}

	return count, nil
}

func (r *mongoMachineRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate machine counts: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode machine counts: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}

	return counts, nil
}

func (r *mongoMachineRepository) InsertMany(ctx context.Context, machines []*model.Machine) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	docs := make([]any, 0, len(machines))
	for _, machine := range machines {
		docs = append(docs, machine)
	}

	if _, err := r.collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert machines: %w", err)
	}
	return nil
}

func (r *mongoMachineRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
