package model

import (
	"strings"
	"time"
)

type Role string

const (
	RoleRenter Role = "RENTER"
	RoleHost   Role = "HOST"
	RoleAdmin  Role = "ADMIN"
)

func ParseRole(s string) (Role, bool) {
	role := Role(strings.ToUpper(strings.TrimSpace(s)))
	switch role {
	case RoleRenter, RoleHost, RoleAdmin:
		return role, true
	}
	return role, false
}

type User struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty"`
	Name      string    `json:"name" bson:"name"`
	Email     string    `json:"email" bson:"email"`
	Avatar    string    `json:"avatar,omitempty" bson:"avatar,omitempty"`
	Role      Role      `json:"role" bson:"role"`
	Verified  bool      `json:"verified" bson:"verified"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

type RoleUpdate struct {
	Role string `json:"role" validate:"required,oneof=RENTER HOST ADMIN renter host admin"`
}
