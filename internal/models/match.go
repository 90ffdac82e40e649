package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	MatchStatusPending   = "pending"
	MatchStatusAccepted  = "accepted"
	MatchStatusRejected  = "rejected"
	MatchStatusCompleted = "completed"
)

// Match is a proposed or active skill exchange between two users. The
// requester initiates; only the receiver may accept or reject. Completion
// requires a confirmation from each party, tracked by the two confirmed
// columns so the second confirmation can flip status atomically.
type Match struct {
	ID                 uint           `json:"id" gorm:"primaryKey"`
	RequesterID        uint           `json:"requester_id" gorm:"not null;index"`
	ReceiverID         uint           `json:"receiver_id" gorm:"not null;index"`
	SkillOffered       string         `json:"skill_offered" gorm:"not null"`
	SkillRequested     string         `json:"skill_requested" gorm:"not null"`
	Message            *string        `json:"message,omitempty"`
	Status             string         `json:"status" gorm:"default:pending;index"`
	RequesterConfirmed bool           `json:"requester_confirmed" gorm:"default:false"`
	ReceiverConfirmed  bool           `json:"receiver_confirmed" gorm:"default:false"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `json:"-" gorm:"index"`
	Requester          User           `json:"requester,omitempty" gorm:"foreignKey:RequesterID"`
	Receiver           User           `json:"receiver,omitempty" gorm:"foreignKey:ReceiverID"`
}

// CompletionRequests lists the parties who have asked to mark the exchange
// complete, at most one entry per party.
func (m *Match) CompletionRequests() []uint {
	ids := make([]uint, 0, 2)
	if m.RequesterConfirmed {
		ids = append(ids, m.RequesterID)
	}
	if m.ReceiverConfirmed {
		ids = append(ids, m.ReceiverID)
	}
	return ids
}

// Terminal reports whether the match allows no further transitions.
func (m *Match) Terminal() bool {
	return m.Status == MatchStatusRejected || m.Status == MatchStatusCompleted
}

type Conversation struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	MatchID   uint           `json:"match_id" gorm:"not null;uniqueIndex"`
	IsActive  bool           `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
	Match     Match          `json:"match,omitempty" gorm:"foreignKey:MatchID"`
	Messages  []Message      `json:"messages,omitempty"`
}

type Message struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	ConversationID uint           `json:"conversation_id" gorm:"not null;index"`
	SenderID       uint           `json:"sender_id" gorm:"not null"`
	Content        string         `json:"content" gorm:"not null"`
	MessageType    string         `json:"message_type" gorm:"default:text"` // text, image, emoji
	IsRead         bool           `json:"is_read" gorm:"default:false"`
	ReadAt         *time.Time     `json:"read_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
	Sender         User           `json:"sender,omitempty" gorm:"foreignKey:SenderID"`
}

type Notification struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	Type      string    `json:"type" gorm:"not null"` // match_request, match_accepted, match_completed, message
	Title     string    `json:"title" gorm:"not null"`
	Body      string    `json:"body" gorm:"not null"`
	Data      string    `json:"data" gorm:"type:jsonb"`
	IsRead    bool      `json:"is_read" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`
	User      User      `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
