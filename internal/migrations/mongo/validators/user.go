package validators

import "go.mongodb.org/mongo-driver/bson"

var UserValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"email", "role", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":        bson.M{"bsonType": "objectId"},
			"name":       bson.M{"bsonType": "string", "maxLength": 200},
			"email":      bson.M{"bsonType": "string", "minLength": 3},
			"avatar":     bson.M{"bsonType": "string"},
			"role":       bson.M{"bsonType": "string", "enum": []string{"RENTER", "HOST", "ADMIN"}},
			"verified":   bson.M{"bsonType": "bool"},
			"created_at": bson.M{"bsonType": "date"},
			"updated_at": bson.M{"bsonType": "date"},
		},
	},
}
