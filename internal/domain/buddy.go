package domain

// BuddyStatus is the presence indicator shown next to a buddy.
type BuddyStatus string

const (
	BuddyOnline  BuddyStatus = "online"
	BuddyOffline BuddyStatus = "offline"
)

// Buddy is another patient who cheers the user on.
type Buddy struct {
	ID          string      `yaml:"id" json:"id"`
	Name        string      `yaml:"name" json:"name"`
	LastMessage string      `yaml:"lastMessage" json:"lastMessage,omitempty"`
	Status      BuddyStatus `yaml:"status" json:"status"`
	Color       string      `yaml:"color" json:"color,omitempty"` // Avatar accent, passed through to the client
}
