package usecase

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/pattarapol/jotter-api/internal/apperrors"
	"github.com/pattarapol/jotter-api/internal/model"
	"github.com/pattarapol/jotter-api/internal/repository"
)

// VerificationUsecase defines the email verification flow: request issues
// a one-time key and mails it, confirm consumes the key and marks the
// user verified.
type VerificationUsecase interface {
	RequestVerifyEmail(ctx context.Context, userID string) error
	ConfirmVerifyEmail(ctx context.Context, key string) error
}

type verificationUsecase struct {
	userRepo repository.UserRepository
	keyRepo  repository.OneTimeKeyRepository
	notifier Notifier
}

// NewVerificationUsecase creates a new instance of VerificationUsecase.
func NewVerificationUsecase(
	userRepo repository.UserRepository,
	keyRepo repository.OneTimeKeyRepository,
	notifier Notifier,
) VerificationUsecase {
	return &verificationUsecase{
		userRepo: userRepo,
		keyRepo:  keyRepo,
		notifier: notifier,
	}
}

func (u *verificationUsecase) RequestVerifyEmail(ctx context.Context, userID string) error {
	user, err := u.userRepo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperrors.NotFound("user", "user not found")
		}

		return err
	}

	if user.Email == nil {
		return apperrors.Conflict("email", "no email address on this account")
	}

	if user.IsVerify {
		return apperrors.Conflict("email", "email is already verified")
	}

	key, err := generateOneTimeKey()
	if err != nil {
		return err
	}

	if _, err := u.keyRepo.CreateKey(ctx, &model.OneTimeKey{
		Key:     key,
		UserID:  user.ID,
		Purpose: model.KeyPurposeVerifyEmail,
	}); err != nil {
		// The unique (user_id, purpose) index rejects a second request
		// while a live key exists.
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.NotAcceptable("key", "a verification request is already in progress")
		}

		return err
	}

	u.notifier.VerifyEmail(*user.Email, key)

	return nil
}

func (u *verificationUsecase) ConfirmVerifyEmail(ctx context.Context, key string) error {
	// Never-existed and TTL-expired keys are indistinguishable here.
	oneTimeKey, err := u.keyRepo.ConsumeKey(ctx, key, model.KeyPurposeVerifyEmail)
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

	if err := u.userRepo.MarkVerified(ctx, user.ID.Hex()); err != nil {
		return err
	}

	if user.Email != nil {
		u.notifier.VerifySuccess(*user.Email)
	}

	return nil
}
