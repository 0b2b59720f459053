package calendarRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"carebook/database"
	"carebook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoCalendarRepo reads working-hours templates and overrides maintained by
// the facility-administration collaborator.
type MongoCalendarRepo struct {
	templateColl *mongo.Collection
	overrideColl *mongo.Collection
}

func NewMongoCalendarRepo() *MongoCalendarRepo {
	db := database.DB()
	return &MongoCalendarRepo{
		templateColl: db.Collection("working_hours"),
		overrideColl: db.Collection("availability_overrides"),
	}
}

func (repo *MongoCalendarRepo) GetWorkingHours(ctx context.Context, providerID, fromDate, toDate string) (models.WorkingHoursTemplate, []models.AvailabilityOverride, error) {
	callCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var tmpl models.WorkingHoursTemplate
	err := repo.templateColl.FindOne(callCtx, bson.M{"providerId": providerID}).Decode(&tmpl)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.WorkingHoursTemplate{}, nil, fmt.Errorf("no working hours configured for provider %s", providerID)
		}
		return models.WorkingHoursTemplate{}, nil, fmt.Errorf("failed to fetch working hours for provider %s: %w", providerID, err)
	}

	// An override is relevant when its date range intersects [fromDate, toDate].
	filter := bson.M{
		"providerId": providerID,
		"startDate":  bson.M{"$lte": toDate},
		"endDate":    bson.M{"$gte": fromDate},
	}
	cursor, err := repo.overrideColl.Find(callCtx, filter)
	if err != nil {
		return models.WorkingHoursTemplate{}, nil, fmt.Errorf("failed to fetch overrides for provider %s: %w", providerID, err)
	}
	defer cursor.Close(callCtx)

	var overrides []models.AvailabilityOverride
	if err := cursor.All(callCtx, &overrides); err != nil {
		return models.WorkingHoursTemplate{}, nil, fmt.Errorf("failed to decode overrides: %w", err)
	}

	return tmpl, overrides, nil
}
