package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

type User struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Email        string         `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string         `json:"-" gorm:"not null"`
	FirstName    string         `json:"first_name" gorm:"not null"`
	LastName     string         `json:"last_name" gorm:"not null"`
	Bio          *string        `json:"bio,omitempty"`
	Location     *string        `json:"location,omitempty"`
	AvatarURL    *string        `json:"avatar_url,omitempty"`
	IsActive     bool           `json:"is_active" gorm:"default:true"`
	IsOnline     bool           `json:"is_online" gorm:"default:false"`
	LastSeen     *time.Time     `json:"last_seen,omitempty"`
	Skills       []UserSkill    `json:"skills,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

// Skill is a catalog entry users attach to their profile, either as
// something they can teach or something they want to learn.
type Skill struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"uniqueIndex;not null"`
	Category  string         `json:"category" gorm:"not null"`
	Tags      pq.StringArray `json:"tags,omitempty" gorm:"type:text[]"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

const (
	SkillKindTeach = "teach"
	SkillKindLearn = "learn"
)

type UserSkill struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	UserID      uint           `json:"user_id" gorm:"not null;index"`
	SkillID     uint           `json:"skill_id" gorm:"not null;index"`
	Kind        string         `json:"kind" gorm:"not null"` // teach, learn
	Level       string         `json:"level" gorm:"default:beginner"`
	Description *string        `json:"description,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
	User        User           `json:"-" gorm:"foreignKey:UserID"`
	Skill       Skill          `json:"skill,omitempty" gorm:"foreignKey:SkillID"`
}
