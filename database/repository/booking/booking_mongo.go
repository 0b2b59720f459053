package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"carebook/database"
	"carebook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var activeStatuses = bson.A{models.BookingPending, models.BookingScheduled}

// MongoBookingRepo is the production booking store.
type MongoBookingRepo struct {
	bookingColl *mongo.Collection
}

func NewMongoBookingRepo() *MongoBookingRepo {
	return &MongoBookingRepo{
		bookingColl: database.DB().Collection("bookings"),
	}
}

func (repo *MongoBookingRepo) GetBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	callCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	err := repo.bookingColl.FindOne(callCtx, bson.M{"id": bookingID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch booking %s: %w", bookingID, err)
	}
	return &booking, nil
}

func (repo *MongoBookingRepo) GetActiveBookings(ctx context.Context, providerID, fromDate, toDate string) ([]models.Booking, error) {
	callCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"providerId": providerID,
		"date":       bson.M{"$gte": fromDate, "$lte": toDate},
		"status":     bson.M{"$in": activeStatuses},
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "start", Value: 1}})

	cursor, err := repo.bookingColl.Find(callCtx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch active bookings for provider %s: %w", providerID, err)
	}
	defer cursor.Close(callCtx)

	var bookings []models.Booking
	if err := cursor.All(callCtx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode active bookings: %w", err)
	}
	return bookings, nil
}

func (repo *MongoBookingRepo) FindActiveAt(ctx context.Context, providerID, date string, start int) (*models.Booking, error) {
	callCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"providerId": providerID,
		"date":       date,
		"start":      start,
		"status":     bson.M{"$in": activeStatuses},
	}
	var booking models.Booking
	err := repo.bookingColl.FindOne(callCtx, filter).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to check slot occupancy: %w", err)
	}
	return &booking, nil
}

func (repo *MongoBookingRepo) CancelBooking(ctx context.Context, bookingID string) error {
	callCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := repo.bookingColl.UpdateOne(callCtx,
		bson.M{"id": bookingID},
		bson.M{"$set": bson.M{"status": models.BookingCancelled}},
	)
	if err != nil {
		return fmt.Errorf("failed to cancel booking %s: %w", bookingID, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
