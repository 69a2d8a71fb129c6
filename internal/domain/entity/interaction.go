package entity

import "time"

const InteractionMessage = "message"

// Interaction records that a user engaged with a property. It feeds the
// recommendation engine, which lives outside this service.
type Interaction struct {
	UserID     string    `json:"userId" gorm:"primaryKey;size:128"`
	PropertyID string    `json:"propertyId" gorm:"primaryKey;size:128"`
	Type       string    `json:"type" gorm:"primaryKey;size:32"`
	Timestamp  time.Time `json:"timestamp" gorm:"not null"`
}
