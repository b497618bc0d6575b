package validators

import "go.mongodb.org/mongo-driver/bson"

var PropertyValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"host_id", "title", "description", "price", "location", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":         bson.M{"bsonType": "objectId"},
			"host_id":     bson.M{"bsonType": "string", "minLength": 1},
			"title":       bson.M{"bsonType": "string", "minLength": 3, "maxLength": 200},
			"description": bson.M{"bsonType": "string", "minLength": 10, "maxLength": 5000},
			"price":       bson.M{"bsonType": []string{"double", "int", "long", "decimal"}, "exclusiveMinimum": true, "minimum": 0},
			"location":    bson.M{"bsonType": "string", "minLength": 3, "maxLength": 200},
			"images": bson.M{
				"bsonType": "array",
				"items":    bson.M{"bsonType": "string"},
			},
			"created_at": bson.M{"bsonType": "date"},
			"updated_at": bson.M{"bsonType": "date"},
		},
	},
}
