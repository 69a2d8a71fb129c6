package entity

import "time"

// ChatRoom is a conversation about one property between exactly two users.
// ParticipantLow/High hold the sorted participant pair so that the
// (property, pair) uniqueness can be enforced by the database.
type ChatRoom struct {
	ID              string    `json:"id" gorm:"primaryKey;size:36"`
	PropertyID      string    `json:"propertyId" gorm:"size:128;not null;uniqueIndex:idx_chat_rooms_pair,priority:1"`
	ParticipantLow  string    `json:"-" gorm:"size:128;not null;uniqueIndex:idx_chat_rooms_pair,priority:2"`
	ParticipantHigh string    `json:"-" gorm:"size:128;not null;uniqueIndex:idx_chat_rooms_pair,priority:3"`
	LastMessageAt   time.Time `json:"lastMessageAt" gorm:"not null;index"`
	CreatedAt       time.Time `json:"createdAt"`

	Participants []ChatParticipant `json:"participants,omitempty" gorm:"foreignKey:ChatRoomID"`
}

type ChatParticipant struct {
	ChatRoomID string    `json:"chatId" gorm:"primaryKey;size:36"`
	UserID     string    `json:"userId" gorm:"primaryKey;size:128;index"`
	CreatedAt  time.Time `json:"createdAt"`
}

// SortedPair orders two participant ids the way ChatRoom stores them.
func SortedPair(userA, userB string) (string, string) {
	if userA <= userB {
		return userA, userB
	}
	return userB, userA
}

// Peer returns the participant of the room that is not userID.
func (r *ChatRoom) Peer(userID string) string {
	if r.ParticipantLow == userID {
		return r.ParticipantHigh
	}
	return r.ParticipantLow
}

// HasParticipant reports whether userID is one of the room's two participants.
func (r *ChatRoom) HasParticipant(userID string) bool {
	return r.ParticipantLow == userID || r.ParticipantHigh == userID
}
