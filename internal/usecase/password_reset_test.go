package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pattarapol/jotter-api/internal/apperrors"
)

type passwordResetFixture struct {
	userRepo *fakeUserRepository
	keyRepo  *fakeOneTimeKeyRepository
	notifier *fakeNotifier
	auth     AuthUsecase
	usecase  PasswordResetUsecase
}

func newPasswordResetFixture(t *testing.T) *passwordResetFixture {
	t.Helper()

	userRepo := newFakeUserRepository()
	keyRepo := newFakeOneTimeKeyRepository()
	notifier := newFakeNotifier()
	issuer := newTestIssuer()

	f := &passwordResetFixture{
		userRepo: userRepo,
		keyRepo:  keyRepo,
		notifier: notifier,
		auth:     NewAuthUsecase(userRepo, issuer, nil, notifier),
		usecase:  NewPasswordResetUsecase(userRepo, keyRepo, notifier),
	}

	tokens, err := f.auth.SignUp(context.Background(), SignUpParams{
		Name: "Jane", Email: "jane@example.com", Password: "password123",
	})
	require.NoError(t, err)

	claims, err := issuer.ParseAccess(tokens.AccessToken)
	require.NoError(t, err)

	require.NoError(t, userRepo.MarkVerified(context.Background(), claims.UserID))

	return f
}

func TestPasswordResetUsecase_ForgotAndReset(t *testing.T) {
	f := newPasswordResetFixture(t)

	require.NoError(t, f.usecase.ForgotPassword(context.Background(), "jane@example.com"))

	key, ok := f.notifier.resetKeys["jane@example.com"]
	require.True(t, ok)
	require.NotEmpty(t, key)

	require.NoError(t, f.usecase.ResetPassword(context.Background(), key, "new-password"))
	assert.Equal(t, []string{"jane@example.com"}, f.notifier.resetEmails)

	// The old password is gone, the new one works.
	_, err := f.auth.SignIn(context.Background(), SignInParams{
		Email: "jane@example.com", Password: "password123",
	})
	require.Error(t, err)

	_, err = f.auth.SignIn(context.Background(), SignInParams{
		Email: "jane@example.com", Password: "new-password",
	})
	require.NoError(t, err)

	// The consumed key cannot reset twice.
	err = f.usecase.ResetPassword(context.Background(), key, "another-password")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotAcceptable, apperrors.KindOf(err))
}

func TestPasswordResetUsecase_Reset_InvalidatesRefreshTokens(t *testing.T) {
	f := newPasswordResetFixture(t)

	tokens, err := f.auth.SignIn(context.Background(), SignInParams{
		Email: "jane@example.com", Password: "password123",
	})
	require.NoError(t, err)

	claims, err := newTestIssuer().ParseRefresh(tokens.RefreshToken)
	require.NoError(t, err)

	require.NoError(t, f.usecase.ForgotPassword(context.Background(), "jane@example.com"))
	key := f.notifier.resetKeys["jane@example.com"]
	require.NoError(t, f.usecase.ResetPassword(context.Background(), key, "new-password"))

	user, err := f.userRepo.GetUser(context.Background(), claims.UserID)
	require.NoError(t, err)
	assert.Nil(t, user.RefreshTokenHash)
}

func TestPasswordResetUsecase_Forgot_UnknownEmail(t *testing.T) {
	f := newPasswordResetFixture(t)

	err := f.usecase.ForgotPassword(context.Background(), "nobody@example.com")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
	assert.Equal(t, "email", apperrors.FieldOf(err))
}

func TestPasswordResetUsecase_Forgot_UnverifiedEmail(t *testing.T) {
	userRepo := newFakeUserRepository()
	notifier := newFakeNotifier()
	a := NewAuthUsecase(userRepo, newTestIssuer(), nil, notifier)
	u := NewPasswordResetUsecase(userRepo, newFakeOneTimeKeyRepository(), notifier)

	_, err := a.SignUp(context.Background(), SignUpParams{
		Name: "Jane", Email: "jane@example.com", Password: "password123",
	})
	require.NoError(t, err)

	err = u.ForgotPassword(context.Background(), "jane@example.com")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotAcceptable, apperrors.KindOf(err))
	assert.Equal(t, "email", apperrors.FieldOf(err))
}

func TestPasswordResetUsecase_Forgot_DuplicateInProgress(t *testing.T) {
	f := newPasswordResetFixture(t)

	require.NoError(t, f.usecase.ForgotPassword(context.Background(), "jane@example.com"))

	err := f.usecase.ForgotPassword(context.Background(), "jane@example.com")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotAcceptable, apperrors.KindOf(err))
	assert.Equal(t, "key", apperrors.FieldOf(err))
}
