package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unidesk/uniadmin/internal/apperrors"
	"github.com/unidesk/uniadmin/internal/models"
	"github.com/unidesk/uniadmin/internal/testutil"
	"golang.org/x/crypto/bcrypt"
)

func TestCreateUserHashesPassword(t *testing.T) {
	svc := NewUserService(testutil.NewUsers())

	user, err := svc.CreateUser(context.Background(), CreateUserInput{
		Name:     "Noor Haddad",
		Email:    " Noor@Uni.Test ",
		Password: "correct horse",
		Role:     models.RoleStudent,
	})
	require.NoError(t, err)

	assert.Equal(t, "noor@uni.test", user.Email)
	assert.Empty(t, user.AdminType)
	assert.NotEqual(t, "correct horse", user.HashedPassword)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte("correct horse")))
}

func TestCreateUserValidation(t *testing.T) {
	svc := NewUserService(testutil.NewUsers())
	ctx := context.Background()

	cases := map[string]CreateUserInput{
		"missing name":       {Email: "a@uni.test", Password: "longenough", Role: models.RoleStudent},
		"bad email":          {Name: "A", Email: "not-an-email", Password: "longenough", Role: models.RoleStudent},
		"short password":     {Name: "A", Email: "a@uni.test", Password: "short", Role: models.RoleStudent},
		"unknown role":       {Name: "A", Email: "a@uni.test", Password: "longenough", Role: "dean"},
		"unknown admin type": {Name: "A", Email: "a@uni.test", Password: "longenough", Role: models.RoleAdmin, AdminType: "bursar"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.CreateUser(ctx, in)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}

func TestCreateUserAdminTypeDefaultsToRegistrar(t *testing.T) {
	svc := NewUserService(testutil.NewUsers())

	user, err := svc.CreateUser(context.Background(), CreateUserInput{
		Name: "Registry", Email: "registry@uni.test", Password: "longenough", Role: models.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, models.AdminTypeRegistrar, user.AdminType)

	lecturer, err := svc.CreateUser(context.Background(), CreateUserInput{
		Name: "L", Email: "l@uni.test", Password: "longenough", Role: models.RoleLecturer, AdminType: models.AdminTypeMedicalOfficer,
	})
	require.NoError(t, err)
	assert.Empty(t, lecturer.AdminType)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	svc := NewUserService(testutil.NewUsers())
	in := CreateUserInput{Name: "A", Email: "a@uni.test", Password: "longenough", Role: models.RoleStudent}

	_, err := svc.CreateUser(context.Background(), in)
	require.NoError(t, err)
	_, err = svc.CreateUser(context.Background(), in)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestAuthenticateUser(t *testing.T) {
	svc := NewUserService(testutil.NewUsers())
	ctx := context.Background()
	created, err := svc.CreateUser(ctx, CreateUserInput{Name: "A", Email: "a@uni.test", Password: "longenough", Role: models.RoleLecturer})
	require.NoError(t, err)

	user, err := svc.AuthenticateUser(ctx, "A@uni.test", "longenough")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	_, err = svc.AuthenticateUser(ctx, "a@uni.test", "wrong password")
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	_, err = svc.AuthenticateUser(ctx, "nobody@uni.test", "longenough")
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestEnsureAdmin(t *testing.T) {
	users := testutil.NewUsers()
	svc := NewUserService(users)
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdmin(ctx, "Medical Office", "medical@uni.test", "bootstrap-pass", models.AdminTypeMedicalOfficer))
	admin, err := users.GetUserByEmail(ctx, "medical@uni.test")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.Equal(t, models.AdminTypeMedicalOfficer, admin.AdminType)

	// A second run leaves the existing account alone.
	require.NoError(t, svc.EnsureAdmin(ctx, "Other", "medical@uni.test", "different-pass", models.AdminTypeRegistrar))
	again, err := users.GetUserByEmail(ctx, "medical@uni.test")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, again.ID)
	assert.Equal(t, models.AdminTypeMedicalOfficer, again.AdminType)

	assert.NoError(t, svc.EnsureAdmin(ctx, "", "", "", ""))
}

func TestGetUser(t *testing.T) {
	users := testutil.NewUsers()
	svc := NewUserService(users)
	u := users.Add("kim", models.RoleStudent, "")

	got, err := svc.GetUser(context.Background(), &Actor{ID: u.ID, Role: u.Role})
	require.NoError(t, err)
	assert.Equal(t, "kim@uni.test", got.Email)

	_, err = svc.GetUser(context.Background(), nil)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestNewActor(t *testing.T) {
	u := testutil.NewUsers().Add("kim", models.RoleAdmin, models.AdminTypeMedicalOfficer)

	a, err := NewActor(u.ID.Hex(), models.RoleAdmin, models.AdminTypeMedicalOfficer)
	require.NoError(t, err)
	assert.True(t, a.IsMedicalOfficer())
	assert.True(t, a.IsAdmin())

	_, err = NewActor("zzz", models.RoleAdmin, "")
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	_, err = NewActor(u.ID.Hex(), "janitor", "")
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}
