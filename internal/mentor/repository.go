package mentor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/anisurarzu/goBeyondServer/internal/database"
	"github.com/anisurarzu/goBeyondServer/internal/user"
)

var (
	ErrNotFound        = errors.New("mentor not found")
	ErrDuplicateMentor = errors.New("user already has a mentor profile")
)

// Repository handles mentor data persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// List returns mentors matching the relational filters, newest first,
// each joined with the owning user. The language filter is NOT applied
// here: languages live in a jsonb document, so the service filters them
// after the query returns.
func (r *Repository) List(ctx context.Context, f Filters) ([]*Mentor, error) {
	var dbMentors []database.Mentor

	q := r.db.NewSelect().
		Model(&dbMentors).
		Relation("User").
		Order("m.created_at DESC")

	if f.Approved != nil {
		q = q.Where("m.is_approved = ?", *f.Approved)
	}
	if f.Active != nil {
		q = q.Where("m.is_active = ?", *f.Active)
	}
	if f.MinRate != nil {
		q = q.Where("m.hourly_rate >= ?", *f.MinRate)
	}
	if f.MaxRate != nil {
		q = q.Where("m.hourly_rate <= ?", *f.MaxRate)
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("m.title ILIKE ?", pattern).WhereOr("m.bio ILIKE ?", pattern)
		})
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list mentors: %w", err)
	}

	mentors := make([]*Mentor, 0, len(dbMentors))
	for i := range dbMentors {
		mentors = append(mentors, mapDBMentorToModel(&dbMentors[i]))
	}

	return mentors, nil
}

// GetByID retrieves a mentor by ID, joined with the owning user
func (r *Repository) GetByID(ctx context.Context, id int64) (*Mentor, error) {
	return r.getOne(ctx, "m.id = ?", id)
}

// GetByUserID retrieves a mentor by its owning user's ID
func (r *Repository) GetByUserID(ctx context.Context, userID int64) (*Mentor, error) {
	return r.getOne(ctx, "m.user_id = ?", userID)
}

func (r *Repository) getOne(ctx context.Context, where string, arg any) (*Mentor, error) {
	dbMentor := new(database.Mentor)
	err := r.db.NewSelect().
		Model(dbMentor).
		Relation("User").
		Where(where, arg).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get mentor: %w", err)
	}

	return mapDBMentorToModel(dbMentor), nil
}

// Create inserts a mentor profile for an existing user. The unique
// constraint on user_id enforces one profile per user; a violation
// surfaces as ErrDuplicateMentor.
func (r *Repository) Create(ctx context.Context, userID int64, nm NewMentor) (*Mentor, error) {
	dbMentor := newDBMentor(userID, nm)

	_, err := r.db.NewInsert().
		Model(dbMentor).
		Returning("*").
		Exec(ctx)

	if err != nil {
		if user.IsUniqueViolation(err) {
			return nil, ErrDuplicateMentor
		}
		return nil, fmt.Errorf("failed to create mentor: %w", err)
	}

	return mapDBMentorToModel(dbMentor), nil
}

// CreateWithUser creates a user and its mentor profile in one
// transaction: both inserts commit or both roll back, so no orphan user
// is ever observable. A duplicate email rolls the whole operation back
// as user.ErrDuplicateEmail.
func (r *Repository) CreateWithUser(ctx context.Context, nu user.NewUser, nm NewMentor) (*user.User, *Mentor, error) {
	dbUser := &database.User{
		Email:        nu.Email,
		PasswordHash: nu.PasswordHash,
		Name:         nu.Name,
		FirstName:    nu.FirstName,
		LastName:     nu.LastName,
		Image:        nu.Image,
		GoogleID:     nu.GoogleID,
	}
	var dbMentor *database.Mentor

	err := r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(dbUser).Returning("*").Exec(ctx); err != nil {
			return err
		}

		dbMentor = newDBMentor(dbUser.ID, nm)
		if _, err := tx.NewInsert().Model(dbMentor).Returning("*").Exec(ctx); err != nil {
			return err
		}

		return nil
	})

	if err != nil {
		if user.IsUniqueViolation(err) {
			return nil, nil, user.ErrDuplicateEmail
		}
		return nil, nil, fmt.Errorf("failed to create mentor with user: %w", err)
	}

	createdUser := &user.User{
		ID:           dbUser.ID,
		Email:        dbUser.Email,
		PasswordHash: dbUser.PasswordHash,
		Name:         dbUser.Name,
		FirstName:    dbUser.FirstName,
		LastName:     dbUser.LastName,
		Image:        dbUser.Image,
		GoogleID:     dbUser.GoogleID,
		CreatedAt:    dbUser.CreatedAt,
		UpdatedAt:    dbUser.UpdatedAt,
	}

	return createdUser, mapDBMentorToModel(dbMentor), nil
}

// Update applies a sparse patch and returns the updated mentor.
func (r *Repository) Update(ctx context.Context, id int64, patch Patch) (*Mentor, error) {
	dbMentor := new(database.Mentor)
	q := r.db.NewUpdate().
		Model(dbMentor).
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Returning("*")

	if patch.Title != nil {
		q = q.Set("title = ?", *patch.Title)
	}
	if patch.Bio != nil {
		q = q.Set("bio = ?", *patch.Bio)
	}
	if patch.ClearImage {
		q = q.Set("image = NULL")
	} else if patch.Image != nil {
		q = q.Set("image = ?", *patch.Image)
	}
	if patch.YearsExperience != nil {
		q = q.Set("years_experience = ?", *patch.YearsExperience)
	}
	if patch.Timezone != nil {
		q = q.Set("timezone = ?", *patch.Timezone)
	}
	if patch.HourlyRate != nil {
		q = q.Set("hourly_rate = ?", *patch.HourlyRate)
	}
	if patch.Currency != nil {
		q = q.Set("currency = ?", *patch.Currency)
	}
	if patch.Languages != nil {
		q = q.Set("languages = ?", mapLanguagesToDB(*patch.Languages))
	}
	if patch.IsActive != nil {
		q = q.Set("is_active = ?", *patch.IsActive)
	}

	result, err := q.Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update mentor: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	return mapDBMentorToModel(dbMentor), nil
}

// Delete removes a mentor row. The owning user stays; only the cascade
// direction user -> mentor exists in the schema.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.NewDelete().
		Model((*database.Mentor)(nil)).
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to delete mentor: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func newDBMentor(userID int64, nm NewMentor) *database.Mentor {
	return &database.Mentor{
		UserID:          userID,
		Title:           nm.Title,
		Bio:             nm.Bio,
		Image:           nm.Image,
		YearsExperience: nm.YearsExperience,
		Timezone:        nm.Timezone,
		HourlyRate:      nm.HourlyRate,
		Currency:        nm.Currency,
		Languages:       mapLanguagesToDB(nm.Languages),
		IsApproved:      false,
		IsActive:        true,
	}
}

func mapDBMentorToModel(dbm *database.Mentor) *Mentor {
	m := &Mentor{
		ID:              dbm.ID,
		UserID:          dbm.UserID,
		Title:           dbm.Title,
		Bio:             dbm.Bio,
		Image:           dbm.Image,
		YearsExperience: dbm.YearsExperience,
		Timezone:        dbm.Timezone,
		HourlyRate:      dbm.HourlyRate,
		Currency:        dbm.Currency,
		Languages:       mapLanguagesFromDB(dbm.Languages),
		IsApproved:      dbm.IsApproved,
		IsActive:        dbm.IsActive,
		CreatedAt:       dbm.CreatedAt,
		UpdatedAt:       dbm.UpdatedAt,
	}

	if dbm.User != nil {
		m.User = &user.Public{
			ID:         dbm.User.ID,
			Email:      dbm.User.Email,
			Name:       dbm.User.Name,
			FirstName:  dbm.User.FirstName,
			LastName:   dbm.User.LastName,
			Image:      dbm.User.Image,
			Profession: dbm.User.Profession,
		}
	}

	return m
}

func mapLanguagesToDB(langs []Language) []database.Language {
	if langs == nil {
		return nil
	}
	out := make([]database.Language, len(langs))
	for i, l := range langs {
		out[i] = database.Language{Code: l.Code, Language: l.Language, Level: l.Level}
	}
	return out
}

func mapLanguagesFromDB(langs []database.Language) []Language {
	if langs == nil {
		return nil
	}
	out := make([]Language, len(langs))
	for i, l := range langs {
		out[i] = Language{Code: l.Code, Language: l.Language, Level: l.Level}
	}
	return out
}
