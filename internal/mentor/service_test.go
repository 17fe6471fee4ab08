package mentor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anisurarzu/goBeyondServer/internal/auth"
	"github.com/anisurarzu/goBeyondServer/internal/logging"
	"github.com/anisurarzu/goBeyondServer/internal/user"
)

const testSecret = "mentor-test-secret-32-bytes-long"

type mockStore struct {
	listFunc           func(ctx context.Context, f Filters) ([]*Mentor, error)
	getByIDFunc        func(ctx context.Context, id int64) (*Mentor, error)
	getByUserIDFunc    func(ctx context.Context, userID int64) (*Mentor, error)
	createFunc         func(ctx context.Context, userID int64, nm NewMentor) (*Mentor, error)
	createWithUserFunc func(ctx context.Context, nu user.NewUser, nm NewMentor) (*user.User, *Mentor, error)
	updateFunc         func(ctx context.Context, id int64, patch Patch) (*Mentor, error)
	deleteFunc         func(ctx context.Context, id int64) error
}

func (m *mockStore) List(ctx context.Context, f Filters) ([]*Mentor, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, f)
	}
	return nil, errors.New("not implemented")
}

func (m *mockStore) GetByID(ctx context.Context, id int64) (*Mentor, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, ErrNotFound
}

func (m *mockStore) GetByUserID(ctx context.Context, userID int64) (*Mentor, error) {
	if m.getByUserIDFunc != nil {
		return m.getByUserIDFunc(ctx, userID)
	}
	return nil, ErrNotFound
}

func (m *mockStore) Create(ctx context.Context, userID int64, nm NewMentor) (*Mentor, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, userID, nm)
	}
	return nil, errors.New("not implemented")
}

func (m *mockStore) CreateWithUser(ctx context.Context, nu user.NewUser, nm NewMentor) (*user.User, *Mentor, error) {
	if m.createWithUserFunc != nil {
		return m.createWithUserFunc(ctx, nu, nm)
	}
	return nil, nil, errors.New("not implemented")
}

func (m *mockStore) Update(ctx context.Context, id int64, patch Patch) (*Mentor, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, patch)
	}
	return nil, errors.New("not implemented")
}

func (m *mockStore) Delete(ctx context.Context, id int64) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return errors.New("not implemented")
}

func newTestService(t *testing.T, store Store) *Service {
	t.Helper()

	tokenService, err := auth.NewJWTService(testSecret, testSecret, 15*time.Minute, 168*time.Hour)
	require.NoError(t, err)

	return NewService(store, tokenService, logging.NewLogger(true))
}

func strPtr(s string) *string {
	return &s
}

func TestListLanguageFilter(t *testing.T) {
	mentors := []*Mentor{
		{ID: 1, Languages: []Language{{Code: "en", Language: "English", Level: "native"}}},
		{ID: 2, Languages: []Language{{Code: "de", Language: "German", Level: "fluent"}}},
		{ID: 3, Languages: []Language{
			{Code: "en", Language: "English", Level: "fluent"},
			{Code: "fr", Language: "French", Level: "basic"},
		}},
	}
	store := &mockStore{
		listFunc: func(ctx context.Context, f Filters) ([]*Mentor, error) {
			return mentors, nil
		},
	}
	svc := newTestService(t, store)

	tests := []struct {
		name     string
		language string
		wantIDs  []int64
	}{
		{name: "no filter returns all", language: "", wantIDs: []int64{1, 2, 3}},
		{name: "code match is exact", language: "en", wantIDs: []int64{1, 3}},
		{name: "code match is case sensitive", language: "EN", wantIDs: nil},
		{name: "name match ignores case", language: "english", wantIDs: []int64{1, 3}},
		{name: "name match uppercase", language: "GERMAN", wantIDs: []int64{2}},
		{name: "no match", language: "es", wantIDs: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.List(context.Background(), Filters{Language: tt.language})
			require.NoError(t, err)

			var ids []int64
			for _, m := range got {
				ids = append(ids, m.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestCreateStandaloneValidation(t *testing.T) {
	svc := newTestService(t, &mockStore{})

	tests := []struct {
		name    string
		nm      NewMentor
		wantErr error
	}{
		{name: "missing title", nm: NewMentor{HourlyRate: 50}, wantErr: ErrTitleRequired},
		{name: "whitespace title", nm: NewMentor{Title: "   "}, wantErr: ErrTitleRequired},
		{name: "negative rate", nm: NewMentor{Title: "Go Mentor", HourlyRate: -1}, wantErr: ErrNegativeRate},
		{
			name: "incomplete language entry",
			nm: NewMentor{
				Title:     "Go Mentor",
				Languages: []Language{{Code: "en", Language: "", Level: "native"}},
			},
			wantErr: ErrInvalidLanguages,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateStandalone(context.Background(), 1, tt.nm)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCreateStandaloneDuplicate(t *testing.T) {
	store := &mockStore{
		createFunc: func(ctx context.Context, userID int64, nm NewMentor) (*Mentor, error) {
			return nil, ErrDuplicateMentor
		},
	}
	svc := newTestService(t, store)

	_, err := svc.CreateStandalone(context.Background(), 1, NewMentor{Title: "Go Mentor", HourlyRate: 50})
	assert.ErrorIs(t, err, ErrDuplicateMentor)
}

func TestCreateWithNewUser(t *testing.T) {
	var gotUser user.NewUser
	var gotMentor NewMentor
	store := &mockStore{
		createWithUserFunc: func(ctx context.Context, nu user.NewUser, nm NewMentor) (*user.User, *Mentor, error) {
			gotUser = nu
			gotMentor = nm
			u := &user.User{ID: 10, Email: nu.Email, PasswordHash: nu.PasswordHash, Name: nu.Name}
			return u, &Mentor{ID: 20, UserID: 10, Title: nm.Title, HourlyRate: nm.HourlyRate}, nil
		},
	}
	svc := newTestService(t, store)

	result, err := svc.CreateWithNewUser(context.Background(), " New@Example.COM ", "password123", strPtr("Ada"),
		NewMentor{Title: "  Go Mentor  ", HourlyRate: 75})
	require.NoError(t, err)

	assert.Equal(t, "new@example.com", gotUser.Email)
	require.NotNil(t, gotUser.PasswordHash)
	assert.True(t, auth.CheckPassword("password123", *gotUser.PasswordHash))
	assert.Equal(t, "Go Mentor", gotMentor.Title)

	assert.Equal(t, int64(10), result.User.ID)
	assert.Equal(t, int64(20), result.Mentor.ID)
	assert.Equal(t, "Bearer", result.Tokens.TokenType)
	assert.NotEmpty(t, result.Tokens.AccessToken)
	assert.NotEmpty(t, result.Tokens.RefreshToken)
}

func TestCreateWithNewUserValidation(t *testing.T) {
	svc := newTestService(t, &mockStore{})
	ctx := context.Background()

	_, err := svc.CreateWithNewUser(ctx, "", "password123", nil, NewMentor{Title: "Go Mentor"})
	assert.ErrorIs(t, err, auth.ErrEmailRequired)

	_, err = svc.CreateWithNewUser(ctx, "a@b.com", "", nil, NewMentor{Title: "Go Mentor"})
	assert.ErrorIs(t, err, auth.ErrPasswordRequired)

	_, err = svc.CreateWithNewUser(ctx, "a@b.com", "short", nil, NewMentor{Title: "Go Mentor"})
	assert.ErrorIs(t, err, auth.ErrPasswordTooShort)

	_, err = svc.CreateWithNewUser(ctx, "a@b.com", "password123", nil, NewMentor{})
	assert.ErrorIs(t, err, ErrTitleRequired)
}

func TestCreateWithNewUserDuplicateEmail(t *testing.T) {
	store := &mockStore{
		createWithUserFunc: func(ctx context.Context, nu user.NewUser, nm NewMentor) (*user.User, *Mentor, error) {
			// The transaction rolled back; neither row exists.
			return nil, nil, user.ErrDuplicateEmail
		},
	}
	svc := newTestService(t, store)

	_, err := svc.CreateWithNewUser(context.Background(), "taken@example.com", "password123", nil,
		NewMentor{Title: "Go Mentor"})
	assert.ErrorIs(t, err, user.ErrDuplicateEmail)
}

func TestUpdateOwnership(t *testing.T) {
	store := &mockStore{
		getByIDFunc: func(ctx context.Context, id int64) (*Mentor, error) {
			return &Mentor{ID: id, UserID: 1, Title: "Go Mentor"}, nil
		},
	}
	svc := newTestService(t, store)

	_, err := svc.Update(context.Background(), 5, 2, Patch{Title: strPtr("Rust Mentor")})
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestUpdateSparsePatch(t *testing.T) {
	var gotPatch Patch
	store := &mockStore{
		getByIDFunc: func(ctx context.Context, id int64) (*Mentor, error) {
			return &Mentor{ID: id, UserID: 1, Title: "Go Mentor", HourlyRate: 50}, nil
		},
		updateFunc: func(ctx context.Context, id int64, patch Patch) (*Mentor, error) {
			gotPatch = patch
			return &Mentor{ID: id, UserID: 1, Title: "Go Mentor", HourlyRate: *patch.HourlyRate}, nil
		},
	}
	svc := newTestService(t, store)

	rate := 80.0
	m, err := svc.Update(context.Background(), 5, 1, Patch{HourlyRate: &rate})
	require.NoError(t, err)

	require.NotNil(t, gotPatch.HourlyRate)
	assert.Equal(t, 80.0, *gotPatch.HourlyRate)
	assert.Nil(t, gotPatch.Title)
	assert.Equal(t, 80.0, m.HourlyRate)
}

func TestUpdateValidation(t *testing.T) {
	store := &mockStore{
		getByIDFunc: func(ctx context.Context, id int64) (*Mentor, error) {
			return &Mentor{ID: id, UserID: 1, Title: "Go Mentor"}, nil
		},
	}
	svc := newTestService(t, store)
	ctx := context.Background()

	_, err := svc.Update(ctx, 5, 1, Patch{})
	assert.ErrorIs(t, err, ErrEmptyPatch)

	// A whitespace-only title counts as omitted, leaving the patch empty.
	_, err = svc.Update(ctx, 5, 1, Patch{Title: strPtr("   ")})
	assert.ErrorIs(t, err, ErrEmptyPatch)

	rate := -10.0
	_, err = svc.Update(ctx, 5, 1, Patch{HourlyRate: &rate})
	assert.ErrorIs(t, err, ErrNegativeRate)

	langs := []Language{{Code: "en", Language: "English", Level: ""}}
	_, err = svc.Update(ctx, 5, 1, Patch{Languages: &langs})
	assert.ErrorIs(t, err, ErrInvalidLanguages)
}

func TestUpdateNotFound(t *testing.T) {
	svc := newTestService(t, &mockStore{})

	_, err := svc.Update(context.Background(), 99, 1, Patch{Title: strPtr("Go Mentor")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteOwnership(t *testing.T) {
	deleted := false
	store := &mockStore{
		getByIDFunc: func(ctx context.Context, id int64) (*Mentor, error) {
			return &Mentor{ID: id, UserID: 1}, nil
		},
		deleteFunc: func(ctx context.Context, id int64) error {
			deleted = true
			return nil
		},
	}
	svc := newTestService(t, store)

	err := svc.Delete(context.Background(), 5, 2)
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.False(t, deleted)

	require.NoError(t, svc.Delete(context.Background(), 5, 1))
	assert.True(t, deleted)
}

func TestDeleteImage(t *testing.T) {
	var gotPatch Patch
	store := &mockStore{
		getByUserIDFunc: func(ctx context.Context, userID int64) (*Mentor, error) {
			return &Mentor{ID: 5, UserID: userID, Image: strPtr("https://example.com/a.png")}, nil
		},
		updateFunc: func(ctx context.Context, id int64, patch Patch) (*Mentor, error) {
			gotPatch = patch
			return &Mentor{ID: id, Image: nil}, nil
		},
	}
	svc := newTestService(t, store)

	m, err := svc.DeleteImage(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, gotPatch.ClearImage)
	assert.Nil(t, m.Image)
}

func TestDeleteImageAlreadyEmpty(t *testing.T) {
	store := &mockStore{
		getByUserIDFunc: func(ctx context.Context, userID int64) (*Mentor, error) {
			return &Mentor{ID: 5, UserID: userID, Image: nil}, nil
		},
	}
	svc := newTestService(t, store)

	_, err := svc.DeleteImage(context.Background(), 1)
	assert.ErrorIs(t, err, ErrImageAlreadyEmpty)
}

func TestHasLanguage(t *testing.T) {
	m := &Mentor{Languages: []Language{
		{Code: "en", Language: "English", Level: "native"},
		{Code: "pt", Language: "Portuguese", Level: "fluent"},
	}}

	assert.True(t, m.HasLanguage("en"))
	assert.True(t, m.HasLanguage("English"))
	assert.True(t, m.HasLanguage("PORTUGUESE"))
	assert.False(t, m.HasLanguage("EN"))
	assert.False(t, m.HasLanguage("es"))
	assert.False(t, (&Mentor{}).HasLanguage("en"))
}
