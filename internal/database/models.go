package database

import (
	"time"

	"github.com/uptrace/bun"
)

// User is the persisted user row. Email is unique (lowercased before
// storage), GoogleID is unique when present. PasswordHash is nil for
// accounts created through an external identity provider.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           int64      `bun:"id,pk,autoincrement"`
	Email        string     `bun:"email,notnull,unique"`
	PasswordHash *string    `bun:"password_hash"`
	Name         *string    `bun:"name"`
	FirstName    *string    `bun:"first_name"`
	LastName     *string    `bun:"last_name"`
	Profession   *string    `bun:"profession"`
	Birthdate    *time.Time `bun:"birthdate"`
	Image        *string    `bun:"image"`
	GoogleID     *string    `bun:"google_id,unique,nullzero"`
	LastActiveAt *time.Time `bun:"last_active_at"`
	CreatedAt    time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt    time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// Mentor is the persisted mentor row. UserID is a unique foreign key to
// users(id) with on-delete cascade, so a user owns at most one mentor
// profile and the profile disappears with the account.
type Mentor struct {
	bun.BaseModel `bun:"table:mentors,alias:m"`

	ID              int64      `bun:"id,pk,autoincrement"`
	UserID          int64      `bun:"user_id,notnull,unique"`
	Title           string     `bun:"title,notnull"`
	Bio             *string    `bun:"bio"`
	Image           *string    `bun:"image"`
	YearsExperience *int       `bun:"years_experience"`
	Timezone        *string    `bun:"timezone"`
	HourlyRate      float64    `bun:"hourly_rate"`
	Currency        *string    `bun:"currency"`
	Languages       []Language `bun:"languages,type:jsonb"`
	IsApproved      bool       `bun:"is_approved,notnull,default:false"`
	IsActive        bool       `bun:"is_active,notnull,default:true"`
	CreatedAt       time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt       time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp"`

	User *User `bun:"rel:belongs-to,join:user_id=id"`
}

// Language is one proficiency entry in a mentor's languages document.
type Language struct {
	Code     string `json:"code"`
	Language string `json:"language"`
	Level    string `json:"level"`
}
