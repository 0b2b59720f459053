package historyRepo

import (
	"context"
	"fmt"
	"time"

	"carebook/database"
	"carebook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoHistoryRepo reads appointment history and daily aggregates written by
// the booking and analytics collaborators.
type MongoHistoryRepo struct {
	historyColl   *mongo.Collection
	aggregateColl *mongo.Collection
}

func NewMongoHistoryRepo() *MongoHistoryRepo {
	db := database.DB()
	return &MongoHistoryRepo{
		historyColl:   db.Collection("appointment_history"),
		aggregateColl: db.Collection("daily_aggregates"),
	}
}

func (repo *MongoHistoryRepo) GetAppointmentHistory(ctx context.Context, partyID string, limit int) ([]models.HistoricalAppointment, error) {
	callCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"$or": bson.A{
		bson.M{"userId": partyID},
		bson.M{"providerId": partyID},
	}}
	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}, {Key: "start", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := repo.historyColl.Find(callCtx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch appointment history for %s: %w", partyID, err)
	}
	defer cursor.Close(callCtx)

	var history []models.HistoricalAppointment
	if err := cursor.All(callCtx, &history); err != nil {
		return nil, fmt.Errorf("failed to decode appointment history: %w", err)
	}
	return history, nil
}

func (repo *MongoHistoryRepo) GetDailyAggregates(ctx context.Context, providerID, fromDate, toDate string) ([]models.DailyAggregate, error) {
	callCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"providerId": providerID,
		"date":       bson.M{"$gte": fromDate, "$lte": toDate},
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})

	cursor, err := repo.aggregateColl.Find(callCtx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch daily aggregates for provider %s: %w", providerID, err)
	}
	defer cursor.Close(callCtx)

	var aggregates []models.DailyAggregate
	if err := cursor.All(callCtx, &aggregates); err != nil {
		return nil, fmt.Errorf("failed to decode daily aggregates: %w", err)
	}
	return aggregates, nil
}
