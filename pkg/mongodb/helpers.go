package mongodb

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Now returns the current time in UTC
func Now() time.Time {
	return time.Now().UTC()
}

// SortAscending creates an ascending sort option
func SortAscending(field string) bson.D {
	return bson.D{{Key: field, Value: 1}}
}

// SortDescending creates a descending sort option
func SortDescending(field string) bson.D {
	return bson.D{{Key: field, Value: -1}}
}

// Upsert returns replace options with upsert enabled
func Upsert() *options.ReplaceOptions {
	return options.Replace().SetUpsert(true)
}

// UpsertUpdate returns update options with upsert enabled
func UpsertUpdate() *options.UpdateOptions {
	return options.Update().SetUpsert(true)
}
