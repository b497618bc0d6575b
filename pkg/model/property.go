package model

import "time"

type Property struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty"`
	HostID      string    `json:"host_id" bson:"host_id"`
	Title       string    `json:"title" bson:"title" validate:"required,min=3,max=200"`
	Description string    `json:"description" bson:"description" validate:"required,min=10,max=5000"`
	Price       float64   `json:"price" bson:"price" validate:"required,gt=0"`
	Location    string    `json:"location" bson:"location" validate:"required,min=3,max=200"`
	Images      []string  `json:"images" bson:"images"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

type PropertyUpdate struct {
	Title       *string  `json:"title,omitempty" validate:"omitempty,min=3,max=200"`
	Description *string  `json:"description,omitempty" validate:"omitempty,min=10,max=5000"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gt=0"`
	Location    *string  `json:"location,omitempty" validate:"omitempty,min=3,max=200"`
}

func (p *Property) OwnedBy(userID string) bool {
	return p.HostID != "" && p.HostID == userID
}
