package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakeproof/stakeproof/internal/model"
	"github.com/stakeproof/stakeproof/internal/repository"
)

type fakeProfileRepo struct {
	repository.ProfileRepository

	byUser map[string]*model.Profile

	upsertErr error
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{byUser: make(map[string]*model.Profile)}
}

func (f *fakeProfileRepo) ByUserID(userID string) (*model.Profile, error) {
	profile, ok := f.byUser[userID]
	if !ok {
		return nil, repository.ErrProfileNotFound
	}
	return profile, nil
}

func (f *fakeProfileRepo) Upsert(profile *model.Profile) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.byUser[profile.UserID] = profile
	return nil
}

func strPtr(s string) *string { return &s }

func TestProfileGetReturnsNilWhenUnset(t *testing.T) {
	svc := NewProfileService(newFakeProfileRepo())

	profile, err := svc.Get("user-1")
	require.NoError(t, err)
	assert.Nil(t, profile)
}

func TestProfileUpdateCreatesRowOnFirstUse(t *testing.T) {
	repo := newFakeProfileRepo()
	svc := NewProfileService(repo)

	profile, err := svc.Update("user-1", UpdateProfileInput{
		Username:    strPtr("alexruns"),
		VenmoHandle: strPtr("@alex-runs"),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, profile.ID)
	assert.Equal(t, "user-1", profile.UserID)
	require.NotNil(t, profile.Username)
	assert.Equal(t, "alexruns", *profile.Username)
	require.NotNil(t, profile.VenmoHandle)
	assert.Equal(t, "@alex-runs", *profile.VenmoHandle)

	got, err := svc.Get("user-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, profile.ID, got.ID)
}

func TestProfileUpdateKeepsIDAcrossWrites(t *testing.T) {
	svc := NewProfileService(newFakeProfileRepo())

	first, err := svc.Update("user-1", UpdateProfileInput{Username: strPtr("alexruns")})
	require.NoError(t, err)

	second, err := svc.Update("user-1", UpdateProfileInput{Username: strPtr("alexlifts")})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "alexlifts", *second.Username)
}

func TestProfileUpdateClearsEmptyFields(t *testing.T) {
	svc := NewProfileService(newFakeProfileRepo())

	_, err := svc.Update("user-1", UpdateProfileInput{
		Username:    strPtr("alexruns"),
		VenmoHandle: strPtr("@alex-runs"),
	})
	require.NoError(t, err)

	profile, err := svc.Update("user-1", UpdateProfileInput{
		Username:    strPtr("alexruns"),
		VenmoHandle: strPtr("  "),
	})
	require.NoError(t, err)
	assert.Nil(t, profile.VenmoHandle, "whitespace clears the field")
}

func TestProfileUpdateValidation(t *testing.T) {
	tests := []struct {
		name    string
		input   UpdateProfileInput
		wantErr error
	}{
		{"username too short", UpdateProfileInput{Username: strPtr("ab")}, ErrUsernameTooShort},
		{"username too long", UpdateProfileInput{Username: strPtr("abcdefghijklmnopqrstuvwxyz01234")}, ErrUsernameTooLong},
		{"venmo handle without @", UpdateProfileInput{VenmoHandle: strPtr("alex-runs")}, ErrBadVenmoHandle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewProfileService(newFakeProfileRepo())

			_, err := svc.Update("user-1", tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestProfileUpdateUsernameTaken(t *testing.T) {
	repo := newFakeProfileRepo()
	repo.upsertErr = repository.ErrUsernameTaken
	svc := NewProfileService(repo)

	_, err := svc.Update("user-1", UpdateProfileInput{Username: strPtr("alexruns")})
	assert.ErrorIs(t, err, repository.ErrUsernameTaken)
}
