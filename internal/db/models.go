package db

import (
	"slices"
	"time"

	"gorm.io/datatypes"
)

// Profile is the public card of a user. UserID is the subject id issued
// by the identity provider.
type Profile struct {
	UserID   string                      `gorm:"primaryKey;size:128" json:"user_id"`
	Username string                      `gorm:"size:64" json:"username"`
	Name     string                      `gorm:"size:128" json:"name"`
	Age      int                         `json:"age"`
	Gender   string                      `gorm:"size:32;index" json:"gender"`
	Bio      string                      `gorm:"type:text" json:"bio"`
	Images   datatypes.JSONSlice[string] `json:"images"`
	// Premium is server-managed; profile saves never touch it.
	Premium   bool      `gorm:"not null" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// UserDetails is upserted as a unit next to the profile.
type UserDetails struct {
	UserID     string `gorm:"primaryKey;size:128" json:"user_id"`
	HeightCM   int    `gorm:"column:height_cm" json:"height"`
	WeightKG   int    `gorm:"column:weight_kg" json:"weight"`
	Location   string `gorm:"size:128" json:"location"`
	Sexuality  string `gorm:"size:32" json:"sexuality"`
	LookingFor string `gorm:"size:32" json:"looking_for"`
}

func (UserDetails) TableName() string { return "user_details" }

// MatchSet holds every user id the owner liked.
type MatchSet struct {
	UserID  string                      `gorm:"primaryKey;size:128"`
	Matches datatypes.JSONSlice[string] `gorm:"not null"`
}

func (MatchSet) TableName() string { return "match" }

// DismatchSet holds every user id the owner passed on.
type DismatchSet struct {
	UserID     string                      `gorm:"primaryKey;size:128"`
	Dismatches datatypes.JSONSlice[string] `gorm:"not null"`
}

func (DismatchSet) TableName() string { return "dismatch" }

// FriendSet holds confirmed mutual matches. Both sides are always
// written in the same transaction.
type FriendSet struct {
	UserID  string                      `gorm:"primaryKey;size:128"`
	Friends datatypes.JSONSlice[string] `gorm:"not null"`
}

func (FriendSet) TableName() string { return "friends" }

// Notification types.
const NotificationTypeMatch = "match"

// Notification is a durable notice to UserID about FromUserID.
//
// Indexes:
//   - idx_notifications_pair(user_id, from_user_id) UNIQUE
//     At most one notification per direction.
//   - idx_notifications_user_created(user_id, created_at)
//     Newest-first listing.
type Notification struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     string    `gorm:"size:128;not null;uniqueIndex:idx_notifications_pair,priority:1;index:idx_notifications_user_created,priority:1" json:"user_id"`
	FromUserID string    `gorm:"size:128;not null;uniqueIndex:idx_notifications_pair,priority:2" json:"from_user_id"`
	Type       string    `gorm:"size:32;not null" json:"type"`
	Message    string    `gorm:"size:255" json:"message"`
	IsRead     bool      `gorm:"not null" json:"is_read"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index:idx_notifications_user_created,priority:2" json:"created_at"`
}

// Message types.
const (
	MessageNormal    = "normal"
	MessageOnce      = "once"
	MessageScheduled = "scheduled"
	MessageBomb      = "bomb"
	MessageAudio     = "audio"
	MessageImage     = "image"
	MessageLocation  = "location"
	MessageGift      = "gift"
)

// Message rows. Sent is false only for scheduled messages that have not
// been promoted yet.
type Message struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	SenderID    string     `gorm:"size:128;not null;index:idx_messages_sender_receiver,priority:1;index:idx_messages_due,priority:1" json:"sender_id"`
	ReceiverID  string     `gorm:"size:128;not null;index:idx_messages_sender_receiver,priority:2" json:"receiver_id"`
	Content     string     `gorm:"type:text;not null" json:"content"`
	Timestamp   time.Time  `gorm:"index" json:"timestamp"`
	Type        string     `gorm:"size:16;not null" json:"type"`
	Sent        bool       `gorm:"not null;index:idx_messages_due,priority:2" json:"sent"`
	ScheduledAt *time.Time `gorm:"index:idx_messages_due,priority:3" json:"scheduled_at,omitempty"`
}

// Comment on a video. Stored inline as a JSON list.
type Comment struct {
	User string `json:"user"`
	Name string `json:"name"`
	Text string `json:"text"`
}

type Video struct {
	ID          string                       `gorm:"primaryKey;size:36" json:"id"`
	UserID      string                       `gorm:"size:128;not null;index" json:"user_id"`
	VideoURL    string                       `gorm:"size:1024;not null" json:"video_url"`
	Description string                       `gorm:"type:text" json:"description"`
	Likes       int                          `gorm:"not null" json:"likes"`
	LikedBy     datatypes.JSONSlice[string]  `gorm:"not null" json:"liked_by"`
	Shares      int                          `gorm:"not null" json:"shares"`
	SharedBy    datatypes.JSONSlice[string]  `gorm:"not null" json:"shared_by"`
	Comments    datatypes.JSONSlice[Comment] `gorm:"not null" json:"comments"`
	CreatedAt   time.Time                    `gorm:"autoCreateTime;index" json:"created_at"`
}

// Models lists every table the service owns, in migration order.
func Models() []any {
	return []any{
		&Profile{},
		&UserDetails{},
		&MatchSet{},
		&DismatchSet{},
		&FriendSet{},
		&Notification{},
		&Message{},
		&Video{},
	}
}

// AddToSet appends id unless it is already present. Reports whether the set changed.
func AddToSet(set datatypes.JSONSlice[string], id string) (datatypes.JSONSlice[string], bool) {
	if slices.Contains(set, id) {
		return set, false
	}
	return append(set, id), true
}

// RemoveFromSet drops id. Reports whether the set changed.
func RemoveFromSet(set datatypes.JSONSlice[string], id string) (datatypes.JSONSlice[string], bool) {
	i := slices.Index(set, id)
	if i < 0 {
		return set, false
	}
	return slices.Delete(set, i, i+1), true
}

// IDSet is implemented by the per-user set tables (match, dismatch, friends).
type IDSet interface {
	SetColumn() string
	IDs() *datatypes.JSONSlice[string]
	SetOwner(userID string)
}

func (m *MatchSet) SetColumn() string { return "matches" }
func (m *MatchSet) IDs() *datatypes.JSONSlice[string] { return &m.Matches }
func (m *MatchSet) SetOwner(userID string) { m.UserID = userID }
func (d *DismatchSet) SetColumn() string { return "dismatches" }
func (d *DismatchSet) IDs() *datatypes.JSONSlice[string] { return &d.Dismatches }
func (d *DismatchSet) SetOwner(userID string) { d.UserID = userID }
func (f *FriendSet) SetColumn() string { return "friends" }
func (f *FriendSet) IDs() *datatypes.JSONSlice[string] { return &f.Friends }
func (f *FriendSet) SetOwner(userID string) { f.UserID = userID }
