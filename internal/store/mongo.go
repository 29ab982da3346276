// Package store provides storage backends for Salamatbot.
//
// This file implements the MongoDB-backed profile store. Mongo's partial
// update operators map directly onto the ProfileUpdate contract: field
// merges become $set, point increments become $inc, and badge additions
// become $addToSet.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/salamatyar/salamatbot/internal/models"
)

const (
	// DefaultMongoDatabase is used when no database name is configured.
	DefaultMongoDatabase = "salamatbot"
	// profilesCollection is the per-user profile document collection.
	profilesCollection = "profiles"
	// mongoConnectTimeout bounds the initial connect and ping.
	mongoConnectTimeout = 10 * time.Second
)

// MongoStore is the MongoDB-backed profile store.
type MongoStore struct {
	client   *mongo.Client
	profiles *mongo.Collection
}

// NewMongoStore creates a Mongo store based on the provided options.
func NewMongoStore(opts ...Option) (*MongoStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("MongoStore.NewMongoStore: creating Mongo store", "DSN_set", cfg.DSN != "")

	if cfg.DSN == "" {
		slog.Error("MongoStore URI not set")
		return nil, fmt.Errorf("mongo URI not set")
	}
	dbName := cfg.Database
	if dbName == "" {
		dbName = DefaultMongoDatabase
	}

	ctx, cancel := context.WithTimeout(context.Background(), mongoConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.DSN))
	if err != nil {
		slog.Error("MongoStore connect failed", "error", err)
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		slog.Error("MongoStore ping failed", "error", err)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	slog.Info("MongoStore connected", "database", dbName)

	return &MongoStore{
		client:   client,
		profiles: client.Database(dbName).Collection(profilesCollection),
	}, nil
}

// GetOrCreate reads or lazily creates the profile for userID. The create
// path uses an upsert with $setOnInsert so repeated calls never produce
// duplicate documents.
func (s *MongoStore) GetOrCreate(ctx context.Context, userID int64, username string) (*models.UserProfile, error) {
	now := time.Now().UTC()
	update := bson.M{
		"$setOnInsert": bson.M{
			"user_id":              userID,
			"first_name":           "",
			"last_name":            "",
			"age":                  0,
			"gender":               "",
			"is_club_member":       false,
			"points":               0,
			"badges":               []models.Badge{},
			"club_tip_usage_count": 0,
			"award_flags":          models.AwardFlags{},
			"registered_at":        now,
		},
		"$set": bson.M{
			"username":   username,
			"updated_at": now,
		},
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var p models.UserProfile
	err := s.profiles.FindOneAndUpdate(ctx, bson.M{"user_id": userID}, update, opts).Decode(&p)
	if err != nil {
		slog.Error("MongoStore.GetOrCreate failed", "error", err, "userID", userID)
		return nil, fmt.Errorf("failed to get or create profile for %d: %w", userID, err)
	}
	slog.Debug("MongoStore.GetOrCreate succeeded", "userID", userID)
	return ensureDefaults(&p), nil
}

// Get reads the profile for userID, returning (nil, nil) when absent.
func (s *MongoStore) Get(ctx context.Context, userID int64) (*models.UserProfile, error) {
	var p models.UserProfile
	err := s.profiles.FindOne(ctx, bson.M{"user_id": userID}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		slog.Debug("MongoStore.Get not found", "userID", userID)
		return nil, nil
	}
	if err != nil {
		slog.Error("MongoStore.Get failed", "error", err, "userID", userID)
		return nil, fmt.Errorf("failed to read profile for %d: %w", userID, err)
	}
	return ensureDefaults(&p), nil
}

// Update merges the given partial fields into the stored document in a
// single UpdateOne call.
func (s *MongoStore) Update(ctx context.Context, userID int64, upd models.ProfileUpdate) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	inc := bson.M{}

	if upd.Username != nil {
		set["username"] = *upd.Username
	}
	if upd.FirstName != nil {
		set["first_name"] = *upd.FirstName
	}
	if upd.LastName != nil {
		set["last_name"] = *upd.LastName
	}
	if upd.Age != nil {
		set["age"] = *upd.Age
	}
	if upd.Gender != nil {
		set["gender"] = *upd.Gender
	}
	if upd.IsClubMember != nil {
		set["is_club_member"] = *upd.IsClubMember
	}
	if upd.ResetIdentity {
		set["first_name"] = ""
		set["last_name"] = ""
		set["age"] = 0
		set["gender"] = ""
	}
	if upd.PointsSet != nil {
		set["points"] = *upd.PointsSet
	} else if upd.PointsDelta != 0 {
		inc["points"] = upd.PointsDelta
	}
	if upd.ClearAwardFlags {
		set["award_flags"] = models.AwardFlags{}
	} else {
		for _, flag := range upd.SetAwardFlags {
			set["award_flags."+string(flag)] = true
		}
	}
	if upd.TipCountSet != nil {
		set["club_tip_usage_count"] = *upd.TipCountSet
	} else if upd.TipCountDelta != 0 {
		inc["club_tip_usage_count"] = upd.TipCountDelta
	}

	update := bson.M{"$set": set}
	if len(inc) > 0 {
		update["$inc"] = inc
	}
	if upd.ClearBadges {
		set["badges"] = []models.Badge{}
	} else if len(upd.AddBadges) > 0 {
		update["$addToSet"] = bson.M{"badges": bson.M{"$each": upd.AddBadges}}
	}

	_, err := s.profiles.UpdateOne(ctx, bson.M{"user_id": userID}, update)
	if err != nil {
		slog.Error("MongoStore.Update failed", "error", err, "userID", userID)
		return fmt.Errorf("failed to update profile for %d: %w", userID, err)
	}
	slog.Debug("MongoStore.Update succeeded", "userID", userID)
	return nil
}

// Close disconnects from Mongo.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), mongoConnectTimeout)
	defer cancel()
	if err := s.client.Disconnect(ctx); err != nil {
		slog.Error("MongoStore.Close failed", "error", err)
		return err
	}
	slog.Debug("MongoStore connection closed")
	return nil
}
