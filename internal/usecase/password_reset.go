package usecase

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/pattarapol/jotter-api/internal/apperrors"
	"github.com/pattarapol/jotter-api/internal/model"
	"github.com/pattarapol/jotter-api/internal/repository"
)

// PasswordResetUsecase defines the business logic for the password reset
// flow.
type PasswordResetUsecase interface {
	// ForgotPassword issues a one-time reset key for a verified account
	// and mails the reset link.
	ForgotPassword(ctx context.Context, email string) error

	// ResetPassword consumes the key and replaces the user's password.
	// The stored refresh-token hash is nulled so every outstanding
	// session has to sign in again.
	ResetPassword(ctx context.Context, key, newPassword string) error
}

type passwordResetUsecase struct {
	userRepo repository.UserRepository
	keyRepo  repository.OneTimeKeyRepository
	notifier Notifier
}

// NewPasswordResetUsecase creates a new instance of PasswordResetUsecase.
func NewPasswordResetUsecase(
	userRepo repository.UserRepository,
	keyRepo repository.OneTimeKeyRepository,
	notifier Notifier,
) PasswordResetUsecase {
	return &passwordResetUsecase{
		userRepo: userRepo,
		keyRepo:  keyRepo,
		notifier: notifier,
	}
}

func (u *passwordResetUsecase) ForgotPassword(ctx context.Context, email string) error {
	user, err := u.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperrors.NotFound("email", "no account with this email")
		}

		return err
	}

	if !user.IsVerify {
		return apperrors.NotAcceptable("email", "email is not verified")
	}

	key, err := generateOneTimeKey()
	if err != nil {
		return err
	}

	if _, err := u.keyRepo.CreateKey(ctx, &model.OneTimeKey{
		Key:     key,
		UserID:  user.ID,
		Purpose: model.KeyPurposePasswordReset,
	}); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.NotAcceptable("key", "a password reset request is already in progress")
		}

		return err
	}

	u.notifier.PasswordReset(email, key)

	return nil
}

func (u *passwordResetUsecase) ResetPassword(ctx context.Context, key, newPassword string) error {
	oneTimeKey, err := u.keyRepo.ConsumeKey(ctx, key, model.KeyPurposePasswordReset)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperrors.NotAcceptable("key", "key is invalid or has expired")
		}

		return err
	}

	user, err := u.userRepo.GetUser(ctx, oneTimeKey.UserID.Hex())
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperrors.NotAcceptable("key", "key is invalid or has expired")
		}

		return err
	}

	if err := u.userRepo.SetPassword(ctx, user.ID.Hex(), newPassword); err != nil {
		return err
	}

	if user.Email != nil {
		u.notifier.ResetSuccess(*user.Email)
	}

	return nil
}
