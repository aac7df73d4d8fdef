package service

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"wavenote-api/internal/repository"
	"wavenote-api/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthServiceForTests(t *testing.T) *authService {
	t.Helper()
	jwt, err := utils.NewTokenManager("test-secret", time.Hour, "wavenote-test")
	require.NoError(t, err)

	svc := NewAuthService(
		repository.NewMemoryUserRepository(),
		repository.NewMemoryTokenRepository(),
		jwt,
		log.New(io.Discard, "", 0),
	).(*authService)
	svc.cost = bcrypt.MinCost
	return svc
}

func TestAuthService_SignUpValidation(t *testing.T) {
	svc := newAuthServiceForTests(t)
	ctx := context.Background()

	testCases := []struct {
		name     string
		email    string
		password string
		want     error
	}{
		{name: "empty email", email: "", password: "secret1", want: ErrMissingCredentials},
		{name: "empty password", email: "a@example.com", password: "", want: ErrMissingCredentials},
		{name: "bad email", email: "not-an-email", password: "secret1", want: ErrInvalidEmail},
		{name: "short password", email: "a@example.com", password: "12345", want: ErrWeakPassword},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.SignUp(ctx, tc.email, tc.password)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	assert.Equal(t, "Please fill in both fields", ErrMissingCredentials.Error())
}

func TestAuthService_SignUpThenLogIn(t *testing.T) {
	svc := newAuthServiceForTests(t)
	ctx := context.Background()

	user, token, err := svc.SignUp(ctx, "  Reader@Example.com ", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", user.Email)
	assert.NotEmpty(t, token)
	assert.NotEqual(t, "hunter22", user.PasswordHash)

	_, _, err = svc.SignUp(ctx, "reader@example.com", "another1")
	assert.ErrorIs(t, err, ErrEmailInUse)

	_, _, err = svc.LogIn(ctx, "reader@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.LogIn(ctx, "nobody@example.com", "hunter22")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	loggedIn, loginToken, err := svc.LogIn(ctx, "READER@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	current, err := svc.CurrentUser(ctx, loginToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, current.ID)
}

func TestAuthService_LogOutRevokesToken(t *testing.T) {
	svc := newAuthServiceForTests(t)
	ctx := context.Background()

	_, token, err := svc.SignUp(ctx, "bye@example.com", "secret1")
	require.NoError(t, err)

	require.NoError(t, svc.LogOut(ctx, token))

	current, err := svc.CurrentUser(ctx, token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Nil(t, current)

	_, err = svc.CurrentUser(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.ErrorIs(t, svc.LogOut(ctx, "garbage"), ErrUnauthenticated)
}

func TestAuthService_OnAuthStateChange(t *testing.T) {
	svc := newAuthServiceForTests(t)
	ctx := context.Background()

	var events []AuthEventType
	unsubscribe := svc.OnAuthStateChange(func(e AuthEvent) {
		events = append(events, e.Type)
	})

	_, token, err := svc.SignUp(ctx, "events@example.com", "secret1")
	require.NoError(t, err)
	_, _, err = svc.LogIn(ctx, "events@example.com", "secret1")
	require.NoError(t, err)
	require.NoError(t, svc.LogOut(ctx, token))

	unsubscribe()
	_, _, err = svc.LogIn(ctx, "events@example.com", "secret1")
	require.NoError(t, err)

	assert.Equal(t, []AuthEventType{AuthSignedUp, AuthLoggedIn, AuthLoggedOut}, events)
}
