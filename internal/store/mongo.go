// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/tomtom215/marquee/internal/apperr"
	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/models"
)

// Index names double as the discriminator for duplicate-key errors.
const (
	emailIndex    = "email_unique"
	usernameIndex = "username_unique"

	duplicateKeyCode = 11000
)

// entryDoc is the persisted form of a watchlist entry.
type entryDoc struct {
	TitleID   string `bson:"titleId"`
	Title     string `bson:"title"`
	Year      string `bson:"year"`
	Kind      string `bson:"kind"`
	PosterURL string `bson:"posterUrl"`
}

// accountDoc is the persisted form of an account.
type accountDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Username   string             `bson:"username"`
	Email      string             `bson:"email"`
	SecretHash string             `bson:"password"`
	Watchlist  []entryDoc         `bson:"watchlist"`
	CreatedAt  time.Time          `bson:"createdAt"`
}

func (d *accountDoc) toModel() *models.Account {
	return &models.Account{
		ID:         d.ID.Hex(),
		Username:   d.Username,
		Email:      d.Email,
		SecretHash: d.SecretHash,
		Watchlist:  entriesToModel(d.Watchlist),
		CreatedAt:  d.CreatedAt,
	}
}

func entriesToModel(docs []entryDoc) []models.WatchlistEntry {
	out := make([]models.WatchlistEntry, 0, len(docs))
	for _, e := range docs {
		out = append(out, models.WatchlistEntry(e))
	}
	return out
}

// MongoStore is the MongoDB-backed AccountStore. The client can be replaced
// by Reconnect while requests are in flight.
type MongoStore struct {
	cfg *config.StoreConfig

	mu     sync.RWMutex
	client *mongo.Client
	coll   *mongo.Collection

	indexesReady atomic.Bool
}

// NewMongoStore connects to MongoDB and ensures the unique indexes exist.
// A store that is unreachable at startup is returned with the error so the
// connector can keep retrying; callers decide whether that is fatal.
func NewMongoStore(ctx context.Context, cfg *config.StoreConfig) (*MongoStore, error) {
	s := &MongoStore{cfg: cfg}

	client, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}
	s.client = client
	s.coll = client.Database(cfg.Database).Collection(cfg.Collection)

	if err := s.EnsureIndexes(ctx); err != nil {
		return s, err
	}
	return s, nil
}

func (s *MongoStore) connect(ctx context.Context) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(s.cfg.URI).
		SetConnectTimeout(s.cfg.ConnectTimeout).
		SetSocketTimeout(s.cfg.SocketTimeout).
		SetServerSelectionTimeout(s.cfg.ServerSelectionTimeout)
	if s.cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(s.cfg.MaxPoolSize)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	return client, nil
}

func (s *MongoStore) collection() *mongo.Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.coll
}

// EnsureIndexes creates the unique email and username indexes.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(emailIndex),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(usernameIndex),
		},
	})
	if err != nil {
		return fmt.Errorf("ensure indexes: %w", classify(err))
	}
	s.indexesReady.Store(true)
	return nil
}

// Prepare creates the unique indexes if no earlier attempt succeeded. The
// connector calls it before reporting the store available, so a store that
// was unreachable at startup gets its indexes on first contact.
func (s *MongoStore) Prepare(ctx context.Context) error {
	if s.indexesReady.Load() {
		return nil
	}
	return s.EnsureIndexes(ctx)
}

// Reconnect replaces the client with a fresh one and re-creates indexes.
// The previous client is disconnected in the background.
func (s *MongoStore) Reconnect(ctx context.Context) error {
	client, err := s.connect(ctx)
	if err != nil {
		return classify(err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("ping after reconnect: %w", classify(err))
	}

	s.mu.Lock()
	old := s.client
	s.client = client
	s.coll = client.Database(s.cfg.Database).Collection(s.cfg.Collection)
	s.mu.Unlock()

	if old != nil {
		go func() {
			dctx, cancel := context.WithTimeout(context.Background(), s.cfg.ConnectTimeout)
			defer cancel()
			if err := old.Disconnect(dctx); err != nil {
				logging.Debug().Err(err).Msg("disconnect previous mongo client")
			}
		}()
	}

	return s.EnsureIndexes(ctx)
}

func (s *MongoStore) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { observe(opPing, start, err) }()

	s.mu.RLock()
	client := s.client
	s.mu.RUnlock()
	if client == nil {
		return fmt.Errorf("%w: client closed", apperr.ErrStoreUnavailable)
	}

	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		err = classify(err)
	}
	return err
}

func (s *MongoStore) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		return nil
	}
	err := s.client.Disconnect(ctx)
	s.client = nil
	return err
}

func (s *MongoStore) CreateAccount(ctx context.Context, account *models.Account) (_ *models.Account, err error) {
	start := time.Now()
	defer func() { observe(opCreate, start, err) }()

	doc := accountDoc{
		ID:         primitive.NewObjectID(),
		Username:   account.Username,
		Email:      account.Email,
		SecretHash: account.SecretHash,
		Watchlist:  []entryDoc{},
		CreatedAt:  time.Now().UTC().Truncate(time.Millisecond),
	}

	if _, err = s.collection().InsertOne(ctx, doc); err != nil {
		return nil, classify(err)
	}
	return doc.toModel(), nil
}

func (s *MongoStore) FindByID(ctx context.Context, id string) (_ *models.Account, err error) {
	start := time.Now()
	defer func() { observe(opFindByID, start, err) }()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.ErrNotFound
	}
	return s.findOne(ctx, bson.M{"_id": oid})
}

func (s *MongoStore) FindByEmail(ctx context.Context, email string) (_ *models.Account, err error) {
	start := time.Now()
	defer func() { observe(opFindByEmail, start, err) }()
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *MongoStore) FindByUsername(ctx context.Context, username string) (_ *models.Account, err error) {
	start := time.Now()
	defer func() { observe(opFindByUsername, start, err) }()
	return s.findOne(ctx, bson.M{"username": username})
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.M) (*models.Account, error) {
	var doc accountDoc
	if err := s.collection().FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, classify(err)
	}
	return doc.toModel(), nil
}

// AddEntry pushes entry guarded by a $ne filter on the title ID, so two
// concurrent adds of the same title can never both succeed.
func (s *MongoStore) AddEntry(ctx context.Context, accountID string, entry models.WatchlistEntry) (_ []models.WatchlistEntry, err error) {
	start := time.Now()
	defer func() { observe(opAddEntry, start, err) }()

	oid, err := primitive.ObjectIDFromHex(accountID)
	if err != nil {
		return nil, apperr.ErrNotFound
	}

	filter := bson.M{"_id": oid, "watchlist.titleId": bson.M{"$ne": entry.TitleID}}
	update := bson.M{"$push": bson.M{"watchlist": entryDoc(entry)}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc accountDoc
	err = s.collection().FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err == nil {
		return entriesToModel(doc.Watchlist), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, classify(err)
	}

	// No match: either the account is gone or the title is already listed.
	if _, err = s.findOne(ctx, bson.M{"_id": oid}); err != nil {
		return nil, err
	}
	return nil, apperr.ErrAlreadyInList
}

func (s *MongoStore) RemoveEntry(ctx context.Context, accountID, titleID string) (_ []models.WatchlistEntry, err error) {
	start := time.Now()
	defer func() { observe(opRemoveEntry, start, err) }()

	oid, err := primitive.ObjectIDFromHex(accountID)
	if err != nil {
		return nil, apperr.ErrNotFound
	}

	update := bson.M{"$pull": bson.M{"watchlist": bson.M{"titleId": titleID}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc accountDoc
	if err = s.collection().FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		return nil, classify(err)
	}
	return entriesToModel(doc.Watchlist), nil
}

// classify translates driver errors into apperr sentinels.
func classify(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.ErrNotFound
	}

	var serverErr mongo.ServerError
	if errors.As(err, &serverErr) {
		switch {
		case serverErr.HasErrorCodeWithMessage(duplicateKeyCode, emailIndex):
			return apperr.ErrDuplicateEmail
		case serverErr.HasErrorCodeWithMessage(duplicateKeyCode, usernameIndex):
			return apperr.ErrDuplicateUsername
		}
	}

	if isUnavailable(err) {
		return fmt.Errorf("%w: %v", apperr.ErrStoreUnavailable, err)
	}
	return err
}

func isUnavailable(err error) bool {
	switch {
	case mongo.IsTimeout(err), mongo.IsNetworkError(err):
		return true
	case errors.Is(err, mongo.ErrClientDisconnected):
		return true
	case errors.Is(err, context.DeadlineExceeded):
		return true
	}
	return strings.Contains(err.Error(), "server selection")
}
