// Package mongorepo implements users.Repo on MongoDB.
//
// Allowlist mutations are expressed as single-document updates ($push, $pull,
// $set) so each issuance or revocation is atomic with respect to the user
// document. Concurrent writers to the same document still race with
// last-write-wins semantics at the field level; there is no cross-request
// coordination here.
package mongorepo

import (
	"context"
	"strings"
	"time"

	"github.com/farmers-portal/auth-service/users"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "users"

var _ users.Repo = (*Repo)(nil)

type Repo struct {
	col *mongo.Collection
}

func New(db *mongo.Database) *Repo {
	return &Repo{col: db.Collection(collectionName)}
}

// EnsureIndexes creates the unique email index. Emails are lowercased before
// storage, so a plain unique index gives case-insensitive uniqueness.
func (r *Repo) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return errors.Wrap(err, "[mongorepo.EnsureIndexes] CreateOne")
}

func (r *Repo) Insert(ctx context.Context, user *users.User) error {
	if user.ID == "" {
		user.ID = primitive.NewObjectID().Hex()
	}
	user.Email = strings.ToLower(user.Email)
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := r.col.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return users.ErrEmailInUse
		}
		return errors.Wrap(err, "[mongorepo.Insert] InsertOne")
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*users.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(email)})
}

func (r *Repo) findOne(ctx context.Context, filter bson.M) (*users.User, error) {
	var user users.User
	err := r.col.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, users.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "[mongorepo.findOne] FindOne")
	}
	return &user, nil
}

func (r *Repo) AppendTokens(ctx context.Context, id, accessToken, refreshToken string) error {
	res, err := r.col.UpdateByID(ctx, id, bson.M{
		"$push": bson.M{
			"validTokens":        accessToken,
			"validRefreshTokens": refreshToken,
		},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return errors.Wrap(err, "[mongorepo.AppendTokens] UpdateByID")
	}
	if res.MatchedCount == 0 {
		return users.ErrNotFound
	}
	return nil
}

func (r *Repo) RemoveRefreshToken(ctx context.Context, id, refreshToken string) error {
	res, err := r.col.UpdateByID(ctx, id, bson.M{
		"$pull": bson.M{"validRefreshTokens": refreshToken},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return errors.Wrap(err, "[mongorepo.RemoveRefreshToken] UpdateByID")
	}
	if res.MatchedCount == 0 {
		return users.ErrNotFound
	}
	return nil
}

func (r *Repo) ClearTokens(ctx context.Context, id string) error {
	res, err := r.col.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{
			"validTokens":        []string{},
			"validRefreshTokens": []string{},
			"updatedAt":          time.Now().UTC(),
		},
	})
	if err != nil {
		return errors.Wrap(err, "[mongorepo.ClearTokens] UpdateByID")
	}
	if res.MatchedCount == 0 {
		return users.ErrNotFound
	}
	return nil
}

func (r *Repo) UpdateProfile(ctx context.Context, id string, update users.ProfileUpdate) (*users.User, error) {
	after := options.After
	var user users.User
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"name":                   update.Name,
			"email":                  strings.ToLower(update.Email),
			"phone":                  update.Phone,
			"location":               update.Location,
			"landSize":               update.LandSize,
			"soilType":               update.SoilType,
			"crops":                  update.Crops,
			"skills":                 update.Skills,
			"profileImage":           update.ProfileImage,
			"aadharNumber":           update.AadharNumber,
			"farmRegistrationNumber": update.FarmRegistrationNumber,
			"irrigationType":         update.IrrigationType,
			"documents":              update.Documents,
			"updatedAt":              time.Now().UTC(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(after),
	).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, users.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return nil, users.ErrEmailInUse
	}
	if err != nil {
		return nil, errors.Wrap(err, "[mongorepo.UpdateProfile] FindOneAndUpdate")
	}
	return &user, nil
}
