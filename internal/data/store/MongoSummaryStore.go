package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/akolanti/GoSummary/internal/config"
	"github.com/akolanti/GoSummary/internal/domain/summaryModel"
	"github.com/akolanti/GoSummary/pkg/logger_i"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoSummaryStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *logger_i.Logger
}

func OpenMongoSummaryStore(ctx context.Context, settings config.StoreSettings) (*MongoSummaryStore, error) {
	clientOptions := options.Client().
		ApplyURI(settings.DSN).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, config.RedisPingTimeout)
	defer cancel()
	if err = client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	return &MongoSummaryStore{
		client:     client,
		collection: client.Database(settings.Database).Collection(settings.Collection),
		logger:     logger_i.NewLogger("SummaryStore mongodb"),
	}, nil
}

// StoreSummary upserts with $setOnInsert so an existing document is never touched.
func (s *MongoSummaryStore) StoreSummary(ctx context.Context, record summaryModel.StoredSummaryRecord) (string, bool, error) {
	log := s.logger.WithTrace(ctx, config.TRACE_ID_KEY).With("summaryId", record.ID)
	update := bson.M{
		"$setOnInsert": bson.M{
			"metadata":                   record.Metadata,
			"summary":                    record.Summary,
			"original_document_in_bytes": record.OriginalDocument,
			"feedback":                   nil,
		},
	}
	res, err := s.collection.UpdateOne(ctx, bson.M{"_id": record.ID}, update, options.Update().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		// a concurrent upsert with the same id won
		log.Debug("summary already stored")
		return record.ID, false, nil
	}
	if err != nil {
		return "", false, summaryModel.WrapError(summaryModel.ErrTemporary, "mongo store summary", err)
	}
	if res.UpsertedCount == 0 {
		log.Debug("summary already stored")
		return record.ID, false, nil
	}
	log.Debug("saved summary")
	return record.ID, true, nil
}

func (s *MongoSummaryStore) StoreSummaryFeedback(ctx context.Context, feedback summaryModel.FeedbackRecord) error {
	res, err := s.collection.UpdateOne(ctx,
		bson.M{"_id": feedback.DocumentID},
		bson.M{"$set": bson.M{"feedback": feedback.ToFeedback()}},
	)
	if err != nil {
		return summaryModel.WrapError(summaryModel.ErrTemporary, "mongo store feedback", err)
	}
	if res.MatchedCount == 0 {
		return summaryModel.NotFound(feedback.DocumentID)
	}
	return nil
}

func (s *MongoSummaryStore) GetSummary(ctx context.Context, id string) (summaryModel.StoredSummaryRecord, error) {
	var record summaryModel.StoredSummaryRecord
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return summaryModel.StoredSummaryRecord{}, summaryModel.NotFound(id)
	}
	if err != nil {
		return summaryModel.StoredSummaryRecord{}, summaryModel.WrapError(summaryModel.ErrTemporary, "mongo get summary", err)
	}
	return record, nil
}

func (s *MongoSummaryStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
