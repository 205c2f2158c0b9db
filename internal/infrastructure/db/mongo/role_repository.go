package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionRoles = "roles"

// RoleRepository is the role registry: one document per (name, user),
// created on demand.
type RoleRepository struct {
	col *mongo.Collection
}

func NewRoleRepository(db *mongo.Database) *RoleRepository {
	return &RoleRepository{col: db.Collection(collectionRoles)}
}

// EnsureRole creates the role record if absent, keyed by name + user.
// Idempotent via upsert; concurrent calls settle on one document thanks to
// the unique index.
func (r *RoleRepository) EnsureRole(ctx context.Context, name string, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"name": name, "user_id": userID}
	update := bson.M{"$setOnInsert": bson.M{
		"name":       name,
		"user_id":    userID,
		"created_at": time.Now().UTC(),
	}}

	_, err := r.col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil && mongo.IsDuplicateKeyError(err) {
		// Lost the upsert race; the role exists, which is what we wanted.
		return nil
	}
	return err
}

// EnsureIndexes creates the unique (name, user_id) index.
func (r *RoleRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}, {Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
