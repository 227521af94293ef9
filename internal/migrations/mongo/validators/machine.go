package validators

import "go.mongodb.org/mongo-driver/bson"

var MachineValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"machine_number",
			"status",
			"floor",
			"location",
			"created_at",
			"updated_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},

			"machine_number": bson.M{
				"bsonType": "int",
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"available",
					"in_use",
					"out_of_order",
				},
			},

			"current_user": bson.M{
				"bsonType": []string{"string", "null"},
			},

			"time_remaining": bson.M{
				"bsonType": []string{"int", "null"},
				"minimum":  0,
			},

			"floor": bson.M{
				"bsonType": "int",
			},

			"location": bson.M{
				"bsonType": "string",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
