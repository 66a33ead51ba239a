package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/speaky/gateway/internal/core/domain"
	"github.com/speaky/gateway/internal/infrastructure/db"
)

const collectionSessions = "sessions"

type SessionRepository struct {
	col   *mongo.Collection
	codec db.SessionCodec
	now   func() time.Time
}

func NewSessionRepository(database *mongo.Database, codec db.SessionCodec) *SessionRepository {
	return &SessionRepository{col: database.Collection(collectionSessions), codec: codec, now: time.Now}
}

type sessionDoc struct {
	ClientID  string    `bson:"_id"`
	Payload   []byte    `bson:"payload"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Save upserts the record keyed by client id.
func (r *SessionRepository) Save(ctx context.Context, clientID string, user domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	blob, err := r.codec.Encode(clientID, user)
	if err != nil {
		return err
	}
	doc := sessionDoc{ClientID: clientID, Payload: blob, UpdatedAt: r.now().UTC()}
	_, err = r.col.ReplaceOne(ctx, bson.M{"_id": clientID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo save session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Load(ctx context.Context, clientID string) (domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc sessionDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": clientID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.User{}, domain.ErrSessionNotFound
		}
		return domain.User{}, fmt.Errorf("mongo load session: %w", err)
	}
	return r.codec.Decode(clientID, doc.Payload)
}

func (r *SessionRepository) Delete(ctx context.Context, clientID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.DeleteOne(ctx, bson.M{"_id": clientID}); err != nil {
		return fmt.Errorf("mongo delete session: %w", err)
	}
	return nil
}

// EnsureIndexes expires sessions that were not saved within ttl.
func (r *SessionRepository) EnsureIndexes(ctx context.Context, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "updated_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(int32(ttl.Seconds())),
	})
	return err
}
