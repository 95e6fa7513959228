package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"secondchance-backend/internal/domain"
)

const usersCollection = "users"

type mongoUser struct {
	ID           bson.ObjectID `bson:"_id,omitempty"`
	Email        string        `bson:"email"`
	FirstName    string        `bson:"firstName"`
	LastName     string        `bson:"lastName"`
	PasswordHash string        `bson:"password"`
	CreatedAt    time.Time     `bson:"createdAt"`
	UpdatedAt    time.Time     `bson:"updatedAt"`
}

func (m mongoUser) toDomain() domain.User {
	return domain.User{
		ID:           m.ID.Hex(),
		Email:        m.Email,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}

// MongoUserRepository implementa UserRepository sobre la coleccion users.
type MongoUserRepository struct {
	coll *mongo.Collection
}

func NewMongoUserRepository(database *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{coll: database.Collection(usersCollection)}
}

// EnsureIndexes crea el indice unico de email; es idempotente.
func (r *MongoUserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("users_email_unique"),
	})
	return err
}

func (r *MongoUserRepository) Create(ctx context.Context, user domain.User) (string, error) {
	doc := mongoUser{
		ID:           bson.NewObjectID(),
		Email:        user.Email,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return "", mapMongoError(err)
	}
	return doc.ID.Hex(), nil
}

func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	var doc mongoUser
	if err := r.coll.FindOne(ctx, bson.D{{Key: "email", Value: email}}).Decode(&doc); err != nil {
		return domain.User{}, mapMongoError(err)
	}
	return doc.toDomain(), nil
}

// UpdateByEmail usa FindOneAndUpdate para devolver el documento ya modificado.
func (r *MongoUserRepository) UpdateByEmail(ctx context.Context, email string, patch domain.UserPatch) (domain.User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc mongoUser
	err := r.coll.FindOneAndUpdate(ctx, bson.D{{Key: "email", Value: email}}, buildMongoUpdate(patch), opts).Decode(&doc)
	if err != nil {
		return domain.User{}, mapMongoError(err)
	}
	return doc.toDomain(), nil
}

func (r *MongoUserRepository) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, readpref.Primary())
}

func buildMongoUpdate(patch domain.UserPatch) bson.D {
	set := bson.D{{Key: "updatedAt", Value: patch.UpdatedAt}}
	if patch.FirstName != nil {
		set = append(set, bson.E{Key: "firstName", Value: *patch.FirstName})
	}
	if patch.LastName != nil {
		set = append(set, bson.E{Key: "lastName", Value: *patch.LastName})
	}
	return bson.D{{Key: "$set", Value: set}}
}

func mapMongoError(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateEmail
	}
	return err
}
