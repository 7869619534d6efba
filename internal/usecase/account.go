package usecase

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/pattarapol/jotter-api/internal/apperrors"
	"github.com/pattarapol/jotter-api/internal/model"
	"github.com/pattarapol/jotter-api/internal/repository"
	"github.com/pattarapol/jotter-api/shared/provider"
	"github.com/pattarapol/jotter-api/shared/security"
)

// Unlinkable sign-in methods.
const (
	MethodEmail    = "email"
	MethodGoogle   = provider.Google
	MethodFacebook = provider.Facebook
)

// AccountUsecase defines account management: password changes,
// multi-provider linking and unlinking, and account deletion.
type AccountUsecase interface {
	GetAccount(ctx context.Context, userID string) (*model.User, error)
	UpdatePassword(ctx context.Context, userID, oldPassword, newPassword string) error
	ConnectProvider(ctx context.Context, userID, providerName, accessToken string) error
	ConnectEmail(ctx context.Context, userID, email, password string) error
	UnlinkAccount(ctx context.Context, userID, method string) error
	DeleteAccount(ctx context.Context, userID, password string) error
}

type accountUsecase struct {
	userRepo  repository.UserRepository
	verifiers map[string]provider.Verifier
	notifier  Notifier
}

// NewAccountUsecase creates a new instance of AccountUsecase.
func NewAccountUsecase(
	userRepo repository.UserRepository,
	verifiers map[string]provider.Verifier,
	notifier Notifier,
) AccountUsecase {
	return &accountUsecase{
		userRepo:  userRepo,
		verifiers: verifiers,
		notifier:  notifier,
	}
}

func (u *accountUsecase) GetAccount(ctx context.Context, userID string) (*model.User, error) {
	user, err := u.userRepo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("user", "user not found")
		}

		return nil, err
	}

	return user, nil
}

func (u *accountUsecase) UpdatePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := u.userRepo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperrors.NotFound("user", "user not found")
		}

		return err
	}

	if user.PasswordHash == nil {
		return apperrors.NotAcceptable("old_password", "old password is incorrect")
	}

	if ok, err := security.VerifyPassword(oldPassword, *user.PasswordHash); err != nil {
		return err
	} else if !ok {
		return apperrors.NotAcceptable("old_password", "old password is incorrect")
	}

	// SetPassword also nulls the refresh-token hash, forcing re-login.
	if err := u.userRepo.SetPassword(ctx, userID, newPassword); err != nil {
		return err
	}

	if user.Email != nil {
		u.notifier.PasswordUpdated(*user.Email)
	}

	return nil
}

func (u *accountUsecase) ConnectProvider(ctx context.Context, userID, providerName, accessToken string) error {
	verifier, ok := u.verifiers[providerName]
	if !ok {
		return apperrors.BadRequest("provider", "unsupported provider")
	}

	user, err := u.userRepo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperrors.NotFound("user", "user not found")
		}

		return err
	}

	// Already-linked-on-this-account wins over every later check.
	if providerLinkOf(user, providerName) != nil {
		return apperrors.Conflict("provider", "this account already has a "+providerName+" link")
	}

	identity, err := verifier.Verify(ctx, accessToken)
	if err != nil || identity == nil {
		return apperrors.BadRequest("access_token", "provider access token is invalid")
	}

	if _, err := u.userRepo.GetUserByProviderID(ctx, providerName, identity.ID); err == nil {
		return apperrors.BadRequest("access_token", "this identity is already linked to another account")
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}

	matched, err := u.userRepo.AttachProvider(ctx, userID, providerName, model.ProviderLink{
		ProviderID:    identity.ID,
		ProviderEmail: identity.Email,
	})
	if err != nil {
		// The unique index on the provider id backs the lookup above
		// against races.
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.BadRequest("access_token", "this identity is already linked to another account")
		}

		return err
	}

	if !matched {
		return apperrors.Conflict("provider", "this account already has a "+providerName+" link")
	}

	return nil
}

func (u *accountUsecase) ConnectEmail(ctx context.Context, userID, email, password string) error {
	user, err := u.userRepo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperrors.NotFound("user", "user not found")
		}

		return err
	}

	if user.Email != nil {
		return apperrors.Conflict("email", "this account already has an email")
	}

	if _, err := u.userRepo.GetUserByEmail(ctx, email); err == nil {
		return apperrors.BadRequest("email", "email is already in use by another account")
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}

	matched, err := u.userRepo.SetEmailIdentity(ctx, userID, email, password)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.BadRequest("email", "email is already in use by another account")
		}

		return err
	}

	if !matched {
		return apperrors.Conflict("email", "this account already has an email")
	}

	return nil
}

func (u *accountUsecase) UnlinkAccount(ctx context.Context, userID, method string) error {
	user, err := u.userRepo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperrors.NotFound("user", "user not found")
		}

		return err
	}

	attached := false
	switch method {
	case MethodEmail:
		attached = user.Email != nil
	case MethodGoogle:
		attached = user.Google != nil
	case MethodFacebook:
		attached = user.Facebook != nil
	default:
		return apperrors.BadRequest("method", "unknown sign-in method")
	}

	if !attached {
		return apperrors.NotAcceptable("method", "this sign-in method is not linked")
	}

	// At least one sign-in method must remain attached.
	if user.AuthMethodCount() < 2 {
		return apperrors.NotAcceptable("method", "at least one sign-in method must remain")
	}

	var matched bool
	if method == MethodEmail {
		matched, err = u.userRepo.RemoveEmailIdentity(ctx, userID)
	} else {
		matched, err = u.userRepo.DetachProvider(ctx, userID, method)
	}
	if err != nil {
		return err
	}

	// The detach filter re-checks that another method remains, so a
	// concurrent unlink racing past the count above still cannot strip
	// the last one.
	if !matched {
		return apperrors.NotAcceptable("method", "at least one sign-in method must remain")
	}

	return nil
}

func (u *accountUsecase) DeleteAccount(ctx context.Context, userID, password string) error {
	user, err := u.userRepo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperrors.NotFound("user", "user not found")
		}

		return err
	}

	if user.PasswordHash == nil {
		return apperrors.NotAcceptable("password", "password is incorrect")
	}

	if ok, err := security.VerifyPassword(password, *user.PasswordHash); err != nil {
		return err
	} else if !ok {
		return apperrors.NotAcceptable("password", "password is incorrect")
	}

	if _, err := u.userRepo.DeleteUser(ctx, userID); err != nil {
		return err
	}

	return nil
}

func providerLinkOf(user *model.User, providerName string) *model.ProviderLink {
	switch providerName {
	case provider.Google:
		return user.Google
	case provider.Facebook:
		return user.Facebook
	default:
		return nil
	}
}
