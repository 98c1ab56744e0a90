package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/modules/dashboard/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProfilesCollection holds one document per client, keyed by client id
const ProfilesCollection = "clients"

type mongoProfileRepo struct {
	coll *mongo.Collection
}

// NewMongoProfileRepo returns a ProfileRepo over the clients collection
func NewMongoProfileRepo(db *mongo.Database) ProfileRepo {
	return &mongoProfileRepo{coll: db.Collection(ProfilesCollection)}
}

func (r *mongoProfileRepo) Get(ctx context.Context, clientID string) (*models.ClientProfile, error) {
	var doc models.ClientProfile
	err := r.coll.FindOne(ctx, bson.M{"_id": clientID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, wrapStoreErr("get profile", err)
	}
	return &doc, nil
}

func (r *mongoProfileRepo) CreateIfAbsent(ctx context.Context, doc *models.ClientProfile) (bool, error) {
	if doc.CreatedAt == nil {
		now := time.Now()
		doc.CreatedAt = &now
	}

	raw, err := bson.Marshal(doc)
	if err != nil {
		return false, wrapStoreErr("create profile", err)
	}
	var fields bson.M
	if err := bson.Unmarshal(raw, &fields); err != nil {
		return false, wrapStoreErr("create profile", err)
	}
	delete(fields, "_id")

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": doc.ClientID},
		bson.M{"$setOnInsert": fields},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		// A concurrent upsert on the same _id may lose the race with a
		// duplicate key; the document exists either way.
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, wrapStoreErr("create profile", err)
	}
	return res.UpsertedCount == 1, nil
}

func (r *mongoProfileRepo) Merge(ctx context.Context, clientID string, patch models.ProfilePatch) error {
	fields := patch.Fields()
	if len(fields) == 0 {
		return ErrEmptyPatch
	}

	set := bson.D{}
	for _, f := range fields {
		set = append(set, bson.E{Key: f.Key, Value: f.Value})
	}

	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": clientID},
		bson.M{"$set": set},
		options.Update().SetUpsert(true),
	)
	return wrapStoreErr("merge profile", err)
}
