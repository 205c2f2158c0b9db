package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/crewlink/crewlink-api/internal/core/domain"
)

const collectionWorks = "work_records"

// WorkRepository persists work records. Coworker claims are stored as raw
// strings (user IDs or emails) and parsed back into identifiers at this
// boundary.
type WorkRepository struct {
	col *mongo.Collection
}

func NewWorkRepository(db *mongo.Database) *WorkRepository {
	return &WorkRepository{col: db.Collection(collectionWorks)}
}

type workDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	UserID       string             `bson:"user_id"`
	Slug         string             `bson:"slug"`
	Title        string             `bson:"title"`
	Role         string             `bson:"role"`
	Caption      string             `bson:"caption,omitempty"`
	From         time.Time          `bson:"from"`
	To           time.Time          `bson:"to"`
	Photos       []string           `bson:"photos,omitempty"`
	PinToProfile bool               `bson:"pin_to_profile"`
	AddMethod    string             `bson:"add_method"`
	Coworkers    []string           `bson:"coworkers"`
	Verifiers    []string           `bson:"verifiers"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

func toWorkDoc(w *domain.WorkRecord) workDoc {
	coworkers := make([]string, 0, len(w.Coworkers))
	for _, c := range w.Coworkers {
		coworkers = append(coworkers, c.String())
	}
	verifiers := w.Verifiers
	if verifiers == nil {
		verifiers = []string{}
	}
	return workDoc{
		UserID:       w.UserID,
		Slug:         w.Slug,
		Title:        w.Title,
		Role:         w.Role,
		Caption:      w.Caption,
		From:         w.From,
		To:           w.To,
		Photos:       w.Photos,
		PinToProfile: w.PinToProfile,
		AddMethod:    w.AddMethod,
		Coworkers:    coworkers,
		Verifiers:    verifiers,
		CreatedAt:    w.CreatedAt,
		UpdatedAt:    w.UpdatedAt,
	}
}

func fromWorkDoc(d workDoc) *domain.WorkRecord {
	coworkers := make([]domain.Identifier, 0, len(d.Coworkers))
	for _, raw := range d.Coworkers {
		coworkers = append(coworkers, domain.ParseIdentifier(raw))
	}
	return &domain.WorkRecord{
		ID:           d.ID.Hex(),
		UserID:       d.UserID,
		Slug:         d.Slug,
		Title:        d.Title,
		Role:         d.Role,
		Caption:      d.Caption,
		From:         d.From,
		To:           d.To,
		Photos:       d.Photos,
		PinToProfile: d.PinToProfile,
		AddMethod:    d.AddMethod,
		Coworkers:    coworkers,
		Verifiers:    d.Verifiers,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func (r *WorkRepository) Create(ctx context.Context, w *domain.WorkRecord) (*domain.WorkRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, toWorkDoc(w))
	if err != nil {
		return nil, err
	}

	created := *w
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

func (r *WorkRepository) FindByID(ctx context.Context, id string) (*domain.WorkRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrWorkNotFound
	}

	var d workDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrWorkNotFound
		}
		return nil, err
	}
	return fromWorkDoc(d), nil
}

func (r *WorkRepository) FindSiblings(ctx context.Context, slug string, excludeUserID string) ([]*domain.WorkRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"slug": slug, "user_id": bson.M{"$ne": excludeUserID}}
	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var records []*domain.WorkRecord
	for cur.Next(ctx) {
		var d workDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		records = append(records, fromWorkDoc(d))
	}
	return records, cur.Err()
}

func (r *WorkRepository) FindBySlugAndUser(ctx context.Context, slug string, userID string) (*domain.WorkRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d workDoc
	err := r.col.FindOne(ctx, bson.M{"slug": slug, "user_id": userID}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrWorkNotFound
		}
		return nil, err
	}
	return fromWorkDoc(d), nil
}

func (r *WorkRepository) AddCoworker(ctx context.Context, workID string, id domain.Identifier) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(workID)
	if err != nil {
		return domain.ErrWorkNotFound
	}

	update := bson.M{
		"$addToSet": bson.M{"coworkers": id.String()},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	}
	res, err := r.col.UpdateByID(ctx, oid, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrWorkNotFound
	}
	return nil
}

// ReplaceCoworker removes old from the claim set and adds replacement.
// $pull and $addToSet cannot target the same field in a single update, so
// this is two sequential writes; the intermediate state (claim briefly
// absent) is tolerated by the read-time reconciler.
func (r *WorkRepository) ReplaceCoworker(ctx context.Context, workID string, old, replacement domain.Identifier) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(workID)
	if err != nil {
		return domain.ErrWorkNotFound
	}

	res, err := r.col.UpdateByID(ctx, oid, bson.M{
		"$pull": bson.M{"coworkers": old.String()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrWorkNotFound
	}

	_, err = r.col.UpdateByID(ctx, oid, bson.M{
		"$addToSet": bson.M{"coworkers": replacement.String()},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	})
	return err
}

func (r *WorkRepository) AddVerifier(ctx context.Context, slug string, userID string, verifierID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"slug": slug, "user_id": userID}
	update := bson.M{
		"$addToSet": bson.M{"verifiers": verifierID},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	}
	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrWorkNotFound
	}
	return nil
}

func (r *WorkRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.col.CountDocuments(ctx, bson.M{"user_id": userID})
}

// CountVerificationsFor totals verifier entries across the user's records.
func (r *WorkRepository) CountVerificationsFor(ctx context.Context, userID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user_id": userID}}},
		{{Key: "$project", Value: bson.M{"n": bson.M{"$size": bson.M{"$ifNull": bson.A{"$verifiers", bson.A{}}}}}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$n"}}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	var out struct {
		Total int64 `bson:"total"`
	}
	if cur.Next(ctx) {
		if err := cur.Decode(&out); err != nil {
			return 0, err
		}
	}
	return out.Total, cur.Err()
}

// EnsureIndexes creates the indexes backing slug and owner lookups.
func (r *WorkRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "slug", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "slug", Value: 1}, {Key: "user_id", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
