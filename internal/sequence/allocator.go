package sequence

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Counter scopes. Each scope owns one monotonically increasing counter
// shared by every concurrent creator.
const (
	ScopeIncident           = "incident"
	ScopeInspection         = "inspection"
	ScopeShiftReport        = "shift_report"
	ScopeCrewVehicleListing = "crew_vehicle_listing"
)

// Allocator hands out unique sequence numbers. Implementations must be safe
// under concurrent callers: two simultaneous Next calls for the same scope
// never return the same value.
type Allocator interface {
	Next(ctx context.Context, scope string) (int64, error)
}

type mongoAllocator struct {
	counters *mongo.Collection
}

// NewMongoAllocator backs the allocator with a counters collection. The
// increment happens server-side in a single findOneAndUpdate, so the
// read-max-then-increment race cannot occur.
func NewMongoAllocator(db *mongo.Database) Allocator {
	return &mongoAllocator{counters: db.Collection("counters")}
}

func (a *mongoAllocator) Next(ctx context.Context, scope string) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := a.counters.FindOneAndUpdate(
		ctx,
		bson.M{"_id": scope},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&doc)
	if err != nil {
		return 0, err
	}
	return doc.Seq, nil
}

type memoryAllocator struct {
	mu   sync.Mutex
	seqs map[string]int64
}

// NewMemoryAllocator is the in-process implementation used by tests.
func NewMemoryAllocator() Allocator {
	return &memoryAllocator{seqs: make(map[string]int64)}
}

func (a *memoryAllocator) Next(_ context.Context, scope string) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.seqs[scope]++
	return a.seqs[scope], nil
}
