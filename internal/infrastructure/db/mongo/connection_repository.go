package mongo

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/crewlink/crewlink-api/internal/core/domain"
)

const collectionConnections = "connections"

// ConnectionRepository persists relationship edges. Endpoints are stored as
// raw strings (user IDs or emails), parsed back at this boundary.
type ConnectionRepository struct {
	col *mongo.Collection
}

func NewConnectionRepository(db *mongo.Database) *ConnectionRepository {
	return &ConnectionRepository{col: db.Collection(collectionConnections)}
}

type connectionDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	From           string             `bson:"from"`
	To             string             `bson:"to"`
	Status         string             `bson:"status"`
	Type           string             `bson:"connection_type"`
	IsCoworker     bool               `bson:"is_coworker"`
	CreatedAt      time.Time          `bson:"created_at"`
	ConnectedAt    *time.Time         `bson:"connected_at,omitempty"`
	DisconnectedAt *time.Time         `bson:"disconnected_at,omitempty"`
}

func toConnectionDoc(c *domain.Connection) connectionDoc {
	return connectionDoc{
		From:           c.From.String(),
		To:             c.To.String(),
		Status:         string(c.Status),
		Type:           c.Type,
		IsCoworker:     c.IsCoworker,
		CreatedAt:      c.CreatedAt,
		ConnectedAt:    c.ConnectedAt,
		DisconnectedAt: c.DisconnectedAt,
	}
}

func fromConnectionDoc(d connectionDoc) *domain.Connection {
	return &domain.Connection{
		ID:             d.ID.Hex(),
		From:           domain.ParseIdentifier(d.From),
		To:             domain.ParseIdentifier(d.To),
		Status:         domain.ConnectionStatus(d.Status),
		Type:           d.Type,
		IsCoworker:     d.IsCoworker,
		CreatedAt:      d.CreatedAt,
		ConnectedAt:    d.ConnectedAt,
		DisconnectedAt: d.DisconnectedAt,
	}
}

func (r *ConnectionRepository) Create(ctx context.Context, c *domain.Connection) (*domain.Connection, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, toConnectionDoc(c))
	if err != nil {
		return nil, err
	}

	created := *c
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

func (r *ConnectionRepository) FindByID(ctx context.Context, id string) (*domain.Connection, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrConnectionNotFound
	}

	var d connectionDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrConnectionNotFound
		}
		return nil, err
	}
	return fromConnectionDoc(d), nil
}

func (r *ConnectionRepository) FindDirected(ctx context.Context, from, to domain.Identifier) (*domain.Connection, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d connectionDoc
	err := r.col.FindOne(ctx, bson.M{"from": from.String(), "to": to.String()}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrConnectionNotFound
		}
		return nil, err
	}
	return fromConnectionDoc(d), nil
}

func (r *ConnectionRepository) FindBetween(ctx context.Context, a, b domain.Identifier) ([]*domain.Connection, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"$or": bson.A{
		bson.M{"from": a.String(), "to": b.String()},
		bson.M{"from": b.String(), "to": a.String()},
	}}

	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var edges []*domain.Connection
	for cur.Next(ctx) {
		var d connectionDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		edges = append(edges, fromConnectionDoc(d))
	}
	return edges, cur.Err()
}

// Accept settles the edge at CONNECTED. A raw-email "to" endpoint is
// resolved to userID in the same update.
func (r *ConnectionRepository) Accept(ctx context.Context, id string, userID string, at time.Time) (*domain.Connection, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrConnectionNotFound
	}

	var current connectionDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&current); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrConnectionNotFound
		}
		return nil, err
	}

	set := bson.M{
		"status":       string(domain.ConnectionConnected),
		"connected_at": at,
	}
	if strings.Contains(current.To, "@") {
		set["to"] = userID
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated connectionDoc
	err = r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrConnectionNotFound
		}
		return nil, err
	}
	return fromConnectionDoc(updated), nil
}

func (r *ConnectionRepository) SetStatus(ctx context.Context, id string, status domain.ConnectionStatus, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrConnectionNotFound
	}

	set := bson.M{"status": string(status)}
	switch status {
	case domain.ConnectionConnected:
		set["connected_at"] = at
	case domain.ConnectionDisconnected:
		set["disconnected_at"] = at
	}

	res, err := r.col.UpdateByID(ctx, oid, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrConnectionNotFound
	}
	return nil
}

// MarkCoworkerConnected settles the edge at CONNECTED with the coworker
// flag set. The original connected_at is preserved when already stamped.
func (r *ConnectionRepository) MarkCoworkerConnected(ctx context.Context, id string, at time.Time) (*domain.Connection, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrConnectionNotFound
	}

	update := bson.M{
		"$set": bson.M{
			"status":      string(domain.ConnectionConnected),
			"is_coworker": true,
		},
		// $min sets connected_at when absent and never moves it forward.
		"$min": bson.M{"connected_at": at},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated connectionDoc
	err = r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrConnectionNotFound
		}
		return nil, err
	}
	return fromConnectionDoc(updated), nil
}

// EnsureIndexes creates the indexes backing endpoint and status lookups.
func (r *ConnectionRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "from", Value: 1}, {Key: "to", Value: 1}}},
		{Keys: bson.D{{Key: "to", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
