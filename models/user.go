package models

import "go.mongodb.org/mongo-driver/bson/primitive"

const (
	RoleCEO    = "CEO"
	RoleWorker = "Worker"
)

// User is the slice of the user directory this service reads: identity,
// role, and organizational membership. User management itself lives in
// another service.
type User struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	FullName  string             `json:"fullName" bson:"fullName"`
	Role      string             `json:"role" bson:"role"`
	Sector    primitive.ObjectID `json:"sector" bson:"sector,omitempty"`
	Subsector primitive.ObjectID `json:"subsector" bson:"subsector,omitempty"`
}
