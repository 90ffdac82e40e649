package models

import (
	"time"

	"gorm.io/gorm"
)

// Review is feedback left by one party of a completed exchange about the
// other. At most one review exists per (reviewer, reviewee, match).
type Review struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	ReviewerID uint           `json:"reviewer_id" gorm:"not null;index"`
	RevieweeID uint           `json:"reviewee_id" gorm:"not null;index"`
	MatchID    *uint          `json:"match_id,omitempty" gorm:"index"`
	Rating     int            `json:"rating" gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Comment    string         `json:"comment" gorm:"not null"`
	IsEdited   bool           `json:"is_edited" gorm:"default:false"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
	Reviewer   User           `json:"reviewer,omitempty" gorm:"foreignKey:ReviewerID"`
	Reviewee   User           `json:"reviewee,omitempty" gorm:"foreignKey:RevieweeID"`
	Match      *Match         `json:"match,omitempty" gorm:"foreignKey:MatchID"`
}

// ReviewStats is the aggregate the review listing endpoint returns alongside
// the reviews themselves.
type ReviewStats struct {
	Average      float64       `json:"average"`
	Count        int64         `json:"count"`
	Distribution map[int]int64 `json:"distribution"`
}
