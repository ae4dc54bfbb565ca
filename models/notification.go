package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ReferencePlan        = "plan"
	ReferencePerformance = "performance"
	ReferenceMeasure     = "measure"
)

// Notification is a message dropped into the notification collection for
// another service to deliver. Writes are fire-and-forget.
type Notification struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	RecipientID   primitive.ObjectID `json:"recipientId" bson:"recipientId"`
	SenderID      primitive.ObjectID `json:"senderId" bson:"senderId,omitempty"`
	SenderName    string             `json:"senderName" bson:"senderName"`
	Title         string             `json:"title" bson:"title"`
	Module        string             `json:"module" bson:"module"`
	Message       string             `json:"message" bson:"message"`
	IsRead        bool               `json:"isRead" bson:"isRead"`
	ReferenceType string             `json:"referenceType" bson:"referenceType"`
	ReferenceID   primitive.ObjectID `json:"referenceId" bson:"referenceId"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
}
