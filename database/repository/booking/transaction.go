package bookingRepo

import (
	"context"
	"errors"
	"fmt"

	"carebook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// CreateBooking inserts the booking inside a session transaction. The insert
// is guarded by a read for an active booking on the same (provider, date,
// time) slot, so losing an optimistic race surfaces as ErrSlotTaken instead
// of a double booking. The unique partial index from EnsureIndexes backs the
// same invariant for deployments without replica-set transactions.
func (repo *MongoBookingRepo) CreateBooking(ctx context.Context, booking *models.Booking) error {
	client := repo.bookingColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnFn := func(sc mongo.SessionContext) error {
		filter := bson.M{
			"providerId": booking.ProviderID,
			"date":       booking.Date,
			"start":      booking.Start,
			"status":     bson.M{"$in": activeStatuses},
		}
		count, err := repo.bookingColl.CountDocuments(sc, filter)
		if err != nil {
			return fmt.Errorf("slot occupancy check failed: %w", err)
		}
		if count > 0 {
			return ErrSlotTaken
		}
		if _, err := repo.bookingColl.InsertOne(sc, booking); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return ErrSlotTaken
			}
			return fmt.Errorf("insert booking failed: %w", err)
		}
		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		if errors.Is(err, ErrSlotTaken) {
			return ErrSlotTaken
		}
		return fmt.Errorf("booking transaction failed: %w", err)
	}

	return nil
}
