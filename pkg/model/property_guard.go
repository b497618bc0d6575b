package model

import "time"

// PropertyGuard is written inside every booking admission transaction for a
// property. Concurrent admissions on the same property write the same
// document, so the database serializes them through a write conflict.
type PropertyGuard struct {
	ID        string    `bson:"_id" json:"property_id"`
	Version   int64     `bson:"version" json:"version"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
