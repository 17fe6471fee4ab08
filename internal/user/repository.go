package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/anisurarzu/goBeyondServer/internal/database"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// Repository handles user data persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// NewUser describes the fields of a user row to insert. Email must
// already be normalized to lowercase by the caller.
type NewUser struct {
	Email        string
	PasswordHash *string
	Name         *string
	FirstName    *string
	LastName     *string
	Image        *string
	GoogleID     *string
}

// Create inserts a new user into the database. The store's unique
// constraint on email is the authoritative duplicate check; a violation
// surfaces as ErrDuplicateEmail.
func (r *Repository) Create(ctx context.Context, nu NewUser) (*User, error) {
	dbUser := &database.User{
		Email:        nu.Email,
		PasswordHash: nu.PasswordHash,
		Name:         nu.Name,
		FirstName:    nu.FirstName,
		LastName:     nu.LastName,
		Image:        nu.Image,
		GoogleID:     nu.GoogleID,
	}

	_, err := r.db.NewInsert().
		Model(dbUser).
		Returning("*").
		Exec(ctx)

	if err != nil {
		if IsUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByEmail retrieves a user by email. The email must already be lowercased.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("email = ?", email).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByID retrieves a user by ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByGoogleID retrieves a user by its linked external identity id
func (r *Repository) GetByGoogleID(ctx context.Context, googleID string) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("google_id = ?", googleID).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by google id: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// UpdatePassword updates a user's password hash
func (r *Repository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("password_hash = ?", passwordHash).
		Set("updated_at = NOW()").
		Where("id = ?", userID).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return requireRowsAffected(result)
}

// TouchLastActive updates the last-active timestamp. Callers treat a
// failure as best-effort: it is logged, never returned to the client.
func (r *Repository) TouchLastActive(ctx context.Context, userID int64) error {
	_, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("last_active_at = ?", time.Now()).
		Where("id = ?", userID).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to touch last active: %w", err)
	}

	return nil
}

// LinkGoogleID attaches an external identity to an existing account.
// The image is filled only when the row has none yet, so linking never
// overwrites a picture the user chose.
func (r *Repository) LinkGoogleID(ctx context.Context, userID int64, googleID string, image *string) error {
	q := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("google_id = ?", googleID).
		Set("updated_at = NOW()").
		Where("id = ?", userID)

	if image != nil {
		q = q.Set("image = COALESCE(image, ?)", *image)
	}

	result, err := q.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to link google id: %w", err)
	}

	return requireRowsAffected(result)
}

// UpdateProfile applies a sparse patch and returns the updated user.
func (r *Repository) UpdateProfile(ctx context.Context, userID int64, patch ProfilePatch) (*User, error) {
	dbUser := new(database.User)
	q := r.db.NewUpdate().
		Model(dbUser).
		Set("updated_at = NOW()").
		Where("id = ?", userID).
		Returning("*")

	if patch.Name != nil {
		q = q.Set("name = ?", *patch.Name)
	}
	if patch.FirstName != nil {
		q = q.Set("first_name = ?", *patch.FirstName)
	}
	if patch.LastName != nil {
		q = q.Set("last_name = ?", *patch.LastName)
	}
	if patch.Profession != nil {
		q = q.Set("profession = ?", *patch.Profession)
	}
	if patch.Birthdate != nil {
		q = q.Set("birthdate = ?", *patch.Birthdate)
	}
	if patch.ClearImage {
		q = q.Set("image = NULL")
	} else if patch.Image != nil {
		q = q.Set("image = ?", *patch.Image)
	}

	result, err := q.Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	if err := requireRowsAffected(result); err != nil {
		return nil, err
	}

	return mapDBUserToModel(dbUser), nil
}

// ClearImage unconditionally removes the profile image and returns the
// updated user. Clearing an already-empty image is a no-op, not an error.
func (r *Repository) ClearImage(ctx context.Context, userID int64) (*User, error) {
	return r.UpdateProfile(ctx, userID, ProfilePatch{ClearImage: true})
}

// IsUniqueViolation reports whether err is the store's unique-constraint
// error. The constraint itself is the correctness guarantee against
// concurrent duplicate inserts; application-level pre-checks are only a
// fast path.
func IsUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "duplicate key value violates unique constraint")
}

func requireRowsAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// mapDBUserToModel converts database model to domain model
func mapDBUserToModel(dbu *database.User) *User {
	return &User{
		ID:           dbu.ID,
		Email:        dbu.Email,
		PasswordHash: dbu.PasswordHash,
		Name:         dbu.Name,
		FirstName:    dbu.FirstName,
		LastName:     dbu.LastName,
		Profession:   dbu.Profession,
		Birthdate:    dbu.Birthdate,
		Image:        dbu.Image,
		GoogleID:     dbu.GoogleID,
		LastActiveAt: dbu.LastActiveAt,
		CreatedAt:    dbu.CreatedAt,
		UpdatedAt:    dbu.UpdatedAt,
	}
}
