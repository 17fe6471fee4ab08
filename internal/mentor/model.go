// Package mentor implements the mentor directory: public listings with
// filtering, and owner-only mutation of a user's single mentor profile.
package mentor

import (
	"strings"
	"time"

	"github.com/anisurarzu/goBeyondServer/internal/user"
)

// Language is one proficiency entry in a mentor's language list.
type Language struct {
	Code     string `json:"code"`
	Language string `json:"language"`
	Level    string `json:"level"`
}

// Mentor is the domain mentor record, joined with the owning user's
// public fields for listings.
type Mentor struct {
	ID              int64      `json:"id"`
	UserID          int64      `json:"userId"`
	Title           string     `json:"title"`
	Bio             *string    `json:"bio"`
	Image           *string    `json:"image"`
	YearsExperience *int       `json:"yearsExperience"`
	Timezone        *string    `json:"timezone"`
	HourlyRate      float64    `json:"hourlyRate"`
	Currency        *string    `json:"currency"`
	Languages       []Language `json:"languages"`
	IsApproved      bool       `json:"isApproved"`
	IsActive        bool       `json:"isActive"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	User *user.Public `json:"user,omitempty"`
}

// HasLanguage reports whether the mentor's language list matches the
// query: exact match on code, or case-insensitive match on language name.
func (m *Mentor) HasLanguage(query string) bool {
	for _, l := range m.Languages {
		if l.Code == query || strings.EqualFold(l.Language, query) {
			return true
		}
	}
	return false
}

// NewMentor describes the mentor fields of a create call.
type NewMentor struct {
	Title           string
	Bio             *string
	Image           *string
	YearsExperience *int
	Timezone        *string
	HourlyRate      float64
	Currency        *string
	Languages       []Language
}

// Filters are the independently optional listing filters.
type Filters struct {
	Approved *bool
	Active   *bool
	MinRate  *float64
	MaxRate  *float64
	Search   string // case-insensitive substring over title and bio
	Language string // matched against the language list after the query
}

// Patch is a sparse mentor update: nil slots are left untouched.
// IsApproved is deliberately absent; only an administrative path (not
// present here) may set it.
type Patch struct {
	Title           *string
	Bio             *string
	Image           *string
	ClearImage      bool
	YearsExperience *int
	Timezone        *string
	HourlyRate      *float64
	Currency        *string
	Languages       *[]Language
	IsActive        *bool
}

// IsEmpty reports whether the patch would write nothing.
func (p *Patch) IsEmpty() bool {
	return p.Title == nil &&
		p.Bio == nil &&
		p.Image == nil &&
		!p.ClearImage &&
		p.YearsExperience == nil &&
		p.Timezone == nil &&
		p.HourlyRate == nil &&
		p.Currency == nil &&
		p.Languages == nil &&
		p.IsActive == nil
}
