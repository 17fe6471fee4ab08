package user

import (
	"time"
)

// User is the domain user record.
type User struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	PasswordHash *string    `json:"-"` // Never expose password hash in JSON; nil for external-identity-only accounts
	Name         *string    `json:"name"`
	FirstName    *string    `json:"firstName"`
	LastName     *string    `json:"lastName"`
	Profession   *string    `json:"profession"`
	Birthdate    *time.Time `json:"birthdate"`
	Image        *string    `json:"image"`
	GoogleID     *string    `json:"-"`
	LastActiveAt *time.Time `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// HasPassword reports whether password-based login is possible for this
// account. External-identity-only accounts have no hash at all.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// Profile is the fixed field projection returned by profile endpoints.
type Profile struct {
	ID         int64      `json:"id"`
	Email      string     `json:"email"`
	Name       *string    `json:"name"`
	FirstName  *string    `json:"firstName"`
	LastName   *string    `json:"lastName"`
	Profession *string    `json:"profession"`
	Birthdate  *time.Time `json:"birthdate"`
	Image      *string    `json:"image"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// ToProfile projects a user onto its public profile fields.
func (u *User) ToProfile() *Profile {
	return &Profile{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Profession: u.Profession,
		Birthdate:  u.Birthdate,
		Image:      u.Image,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// Public is the projection embedded in mentor listings.
type Public struct {
	ID         int64   `json:"id"`
	Email      string  `json:"email"`
	Name       *string `json:"name"`
	FirstName  *string `json:"firstName"`
	LastName   *string `json:"lastName"`
	Image      *string `json:"image"`
	Profession *string `json:"profession"`
}

// ToPublic projects a user onto the fields safe to show next to a
// mentor listing.
func (u *User) ToPublic() *Public {
	return &Public{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Image:      u.Image,
		Profession: u.Profession,
	}
}

// ProfilePatch is a sparse update: nil slots are left untouched.
// ClearImage wins over Image and sets the column to NULL.
type ProfilePatch struct {
	Name       *string
	FirstName  *string
	LastName   *string
	Profession *string
	Birthdate  *time.Time
	Image      *string
	ClearImage bool
}

// IsEmpty reports whether the patch would write nothing.
func (p *ProfilePatch) IsEmpty() bool {
	return p.Name == nil &&
		p.FirstName == nil &&
		p.LastName == nil &&
		p.Profession == nil &&
		p.Birthdate == nil &&
		p.Image == nil &&
		!p.ClearImage
}
