package entity

// User is the slice of the account record the chat layer displays.
type User struct {
	ID        string `json:"id" firestore:"id"`
	Name      string `json:"name" firestore:"name"`
	AvatarURL string `json:"avatarUrl,omitempty" firestore:"avatarURL,omitempty"`
}

// Property is the slice of a listing the chat layer displays.
type Property struct {
	ID         string `json:"id" firestore:"id"`
	Title      string `json:"title" firestore:"title"`
	LandlordID string `json:"landlordId,omitempty" firestore:"landlordId,omitempty"`
}
