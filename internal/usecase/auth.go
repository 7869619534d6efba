package usecase

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/pattarapol/jotter-api/internal/apperrors"
	"github.com/pattarapol/jotter-api/internal/model"
	"github.com/pattarapol/jotter-api/internal/repository"
	"github.com/pattarapol/jotter-api/shared/auth"
	"github.com/pattarapol/jotter-api/shared/provider"
	"github.com/pattarapol/jotter-api/shared/security"
)

// AuthUsecase defines the interface for authentication-related use cases.
type AuthUsecase interface {
	SignUp(ctx context.Context, params SignUpParams) (*auth.TokenPair, error)
	SignIn(ctx context.Context, params SignInParams) (*auth.TokenPair, error)
	Refresh(ctx context.Context, userID, refreshToken string) (*auth.TokenPair, error)
	SignOut(ctx context.Context, userID string) error
	ProviderSignIn(ctx context.Context, providerName, accessToken string) (*auth.TokenPair, error)
}

// SignUpParams defines the parameters for user registration.
type SignUpParams struct {
	Name     string
	Email    string
	Password string
}

// SignInParams defines the parameters for user login.
type SignInParams struct {
	Email    string
	Password string
}

type authUsecase struct {
	userRepo  repository.UserRepository
	issuer    *auth.TokenIssuer
	verifiers map[string]provider.Verifier
	notifier  Notifier
}

// NewAuthUsecase creates a new instance of AuthUsecase.
func NewAuthUsecase(
	userRepo repository.UserRepository,
	issuer *auth.TokenIssuer,
	verifiers map[string]provider.Verifier,
	notifier Notifier,
) AuthUsecase {
	return &authUsecase{
		userRepo:  userRepo,
		issuer:    issuer,
		verifiers: verifiers,
		notifier:  notifier,
	}
}

func (u *authUsecase) SignUp(ctx context.Context, params SignUpParams) (*auth.TokenPair, error) {
	email := params.Email
	user, err := u.userRepo.CreateUserWithPassword(ctx, &model.User{
		Name:  params.Name,
		Email: &email,
	}, params.Password)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.Conflict("email", "email is already in use")
		}

		return nil, err
	}

	tokens, err := u.issueAndStore(ctx, user.ID.Hex())
	if err != nil {
		return nil, err
	}

	u.notifier.SignupSuccess(email, params.Name)

	return tokens, nil
}

func (u *authUsecase) SignIn(ctx context.Context, params SignInParams) (*auth.TokenPair, error) {
	user, err := u.userRepo.GetUserByEmail(ctx, params.Email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("email", "no account with this email")
		}

		return nil, err
	}

	if user.PasswordHash == nil {
		return nil, apperrors.BadRequest("password", "password is incorrect")
	}

	if ok, err := security.VerifyPassword(params.Password, *user.PasswordHash); err != nil {
		return nil, err
	} else if !ok {
		return nil, apperrors.BadRequest("password", "password is incorrect")
	}

	return u.issueAndStore(ctx, user.ID.Hex())
}

func (u *authUsecase) Refresh(ctx context.Context, userID, refreshToken string) (*auth.TokenPair, error) {
	// Missing user, null stored hash, and hash mismatch all collapse into
	// one outward signal.
	user, err := u.userRepo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.Unauthorized("refresh_token", "refresh token is invalid")
		}

		return nil, err
	}

	if user.RefreshTokenHash == nil {
		return nil, apperrors.Unauthorized("refresh_token", "refresh token is invalid")
	}

	if ok, err := security.VerifyPassword(refreshToken, *user.RefreshTokenHash); err != nil {
		return nil, err
	} else if !ok {
		return nil, apperrors.Unauthorized("refresh_token", "refresh token is invalid")
	}

	return u.issueAndStore(ctx, userID)
}

func (u *authUsecase) SignOut(ctx context.Context, userID string) error {
	matched, err := u.userRepo.ClearRefreshToken(ctx, userID)
	if err != nil {
		return err
	}

	if !matched {
		return apperrors.Unauthorized("refresh_token", "not signed in")
	}

	return nil
}

func (u *authUsecase) ProviderSignIn(ctx context.Context, providerName, accessToken string) (*auth.TokenPair, error) {
	verifier, ok := u.verifiers[providerName]
	if !ok {
		return nil, apperrors.BadRequest("provider", "unsupported provider")
	}

	identity, err := verifier.Verify(ctx, accessToken)
	if err != nil || identity == nil {
		return nil, apperrors.BadRequest("access_token", "provider access token is invalid")
	}

	// Lookup before any write; creation happens only when the identity is
	// unknown.
	user, err := u.userRepo.GetUserByProviderID(ctx, providerName, identity.ID)
	if err == nil {
		return u.issueAndStore(ctx, user.ID.Hex())
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	newUser := &model.User{Name: identity.Name}
	setProviderLink(newUser, providerName, &model.ProviderLink{
		ProviderID:    identity.ID,
		ProviderEmail: identity.Email,
	})

	user, err = u.userRepo.CreateUser(ctx, newUser)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Lost a race with a concurrent first sign-in; the identity
			// now exists.
			user, err = u.userRepo.GetUserByProviderID(ctx, providerName, identity.ID)
			if err != nil {
				return nil, err
			}
			return u.issueAndStore(ctx, user.ID.Hex())
		}

		return nil, err
	}

	return u.issueAndStore(ctx, user.ID.Hex())
}

// issueAndStore signs a fresh token pair and rotates the stored
// refresh-token hash, invalidating any previously issued refresh token.
func (u *authUsecase) issueAndStore(ctx context.Context, userID string) (*auth.TokenPair, error) {
	tokens, err := u.issuer.Issue(userID)
	if err != nil {
		return nil, err
	}

	if err := u.userRepo.SaveRefreshToken(ctx, userID, tokens.RefreshToken); err != nil {
		return nil, err
	}

	return tokens, nil
}

func setProviderLink(user *model.User, providerName string, link *model.ProviderLink) {
	switch providerName {
	case provider.Google:
		user.Google = link
	case provider.Facebook:
		user.Facebook = link
	}
}
