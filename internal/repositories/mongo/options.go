package mongo

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func optionsFindSorted(field string, limit int64) *options.FindOptions {
	return options.Find().
		SetSort(bson.D{{Key: field, Value: 1}}).
		SetLimit(limit)
}
