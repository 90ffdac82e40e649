package models

import (
	"time"

	"gorm.io/gorm"
)

type Admin struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"user_id" gorm:"uniqueIndex;not null"`
	Role      string         `json:"role" gorm:"not null"` // super_admin, moderator
	IsActive  bool           `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
	User      User           `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

type Analytics struct {
	TotalUsers       int64     `json:"total_users"`
	ActiveUsers      int64     `json:"active_users"`
	NewUsersToday    int64     `json:"new_users_today"`
	TotalMatches     int64     `json:"total_matches"`
	CompletedMatches int64     `json:"completed_matches"`
	MatchesToday     int64     `json:"matches_today"`
	TotalMessages    int64     `json:"total_messages"`
	MessagesToday    int64     `json:"messages_today"`
	TotalReviews     int64     `json:"total_reviews"`
	AverageRating    float64   `json:"average_rating"`
	Date             time.Time `json:"date"`
}

type UserActivity struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	Action    string    `json:"action" gorm:"not null"` // login, logout, status_updated, etc.
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	User      User      `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
