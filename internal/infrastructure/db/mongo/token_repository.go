package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/crewlink/crewlink-api/internal/core/domain"
)

const collectionInviteTokens = "invite_tokens"

// TokenRepository is the invite-token consumption ledger. The literal signed
// token string is the lookup key; presence of a document is what makes a
// token redeemable, independent of its cryptographic expiry.
type TokenRepository struct {
	col *mongo.Collection
}

func NewTokenRepository(db *mongo.Database) *TokenRepository {
	return &TokenRepository{col: db.Collection(collectionInviteTokens)}
}

type tokenDoc struct {
	Token      string    `bson:"token"`
	Recipient  string    `bson:"recipient"`
	RootWorkID string    `bson:"root_work_id"`
	IssuedAt   time.Time `bson:"issued_at"`
}

func (r *TokenRepository) Save(ctx context.Context, token string, recipient string, rootWorkID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, tokenDoc{
		Token:      token,
		Recipient:  recipient,
		RootWorkID: rootWorkID,
		IssuedAt:   time.Now().UTC(),
	})
	return err
}

// Consume deletes the ledger entry as a single atomic find-and-remove, so
// two concurrent redemptions of the same token yield exactly one success.
func (r *TokenRepository) Consume(ctx context.Context, token string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	err := r.col.FindOneAndDelete(ctx, bson.M{"token": token}).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.ErrTokenConsumed
		}
		return err
	}
	return nil
}

// EnsureIndexes creates the token lookup index and a garbage-collection TTL.
// The TTL must stay comfortably longer than the token signing TTL so that a
// still-valid signature never finds its ledger entry expired away.
func (r *TokenRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "issued_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(60 * 24 * 60 * 60), // 60 days
		},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
