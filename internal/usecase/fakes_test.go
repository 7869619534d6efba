package usecase

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/pattarapol/jotter-api/internal/model"
	"github.com/pattarapol/jotter-api/internal/repository"
	"github.com/pattarapol/jotter-api/shared/provider"
	"github.com/pattarapol/jotter-api/shared/security"
)

// errDuplicateKey mimics the server-side unique index violation so the
// use cases exercise the same mongo.IsDuplicateKeyError path they hit in
// production.
var errDuplicateKey error = mongo.WriteException{
	WriteErrors: mongo.WriteErrors{{Code: 11000}},
}

type fakeUserRepository struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: make(map[string]*model.User)}
}

func (r *fakeUserRepository) CreateUserWithPassword(_ context.Context, user *model.User, password string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.Email != nil && r.findByEmail(*user.Email) != nil {
		return nil, errDuplicateKey
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user.ID = bson.NewObjectID()
	user.PasswordHash = &hash
	r.users[user.ID.Hex()] = user

	return user, nil
}

func (r *fakeUserRepository) CreateUser(_ context.Context, user *model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.Google != nil && r.findByProviderID(provider.Google, user.Google.ProviderID) != nil {
		return nil, errDuplicateKey
	}
	if user.Facebook != nil && r.findByProviderID(provider.Facebook, user.Facebook.ProviderID) != nil {
		return nil, errDuplicateKey
	}

	user.ID = bson.NewObjectID()
	r.users[user.ID.Hex()] = user

	return user, nil
}

func (r *fakeUserRepository) GetUser(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}

	return user, nil
}

func (r *fakeUserRepository) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user := r.findByEmail(email); user != nil {
		return user, nil
	}

	return nil, mongo.ErrNoDocuments
}

func (r *fakeUserRepository) GetUserByProviderID(_ context.Context, providerName, providerID string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user := r.findByProviderID(providerName, providerID); user != nil {
		return user, nil
	}

	return nil, mongo.ErrNoDocuments
}

func (r *fakeUserRepository) SetPassword(_ context.Context, id, password string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return mongo.ErrNoDocuments
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return err
	}

	user.PasswordHash = &hash
	user.RefreshTokenHash = nil

	return nil
}

func (r *fakeUserRepository) SaveRefreshToken(_ context.Context, id, refreshToken string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return mongo.ErrNoDocuments
	}

	hash, err := security.HashPassword(refreshToken)
	if err != nil {
		return err
	}

	user.RefreshTokenHash = &hash

	return nil
}

func (r *fakeUserRepository) ClearRefreshToken(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok || user.RefreshTokenHash == nil {
		return false, nil
	}

	user.RefreshTokenHash = nil

	return true, nil
}

func (r *fakeUserRepository) MarkVerified(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return mongo.ErrNoDocuments
	}

	user.IsVerify = true

	return nil
}

func (r *fakeUserRepository) AttachProvider(_ context.Context, id, providerName string, link model.ProviderLink) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.findByProviderID(providerName, link.ProviderID) != nil {
		return false, errDuplicateKey
	}

	user, ok := r.users[id]
	if !ok {
		return false, nil
	}

	switch providerName {
	case provider.Google:
		if user.Google != nil {
			return false, nil
		}
		user.Google = &link
	case provider.Facebook:
		if user.Facebook != nil {
			return false, nil
		}
		user.Facebook = &link
	default:
		return false, nil
	}

	return true, nil
}

func (r *fakeUserRepository) DetachProvider(_ context.Context, id, providerName string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return false, nil
	}

	switch providerName {
	case provider.Google:
		if user.Google == nil || !anotherMethodRemains(user, provider.Google) {
			return false, nil
		}
		user.Google = nil
	case provider.Facebook:
		if user.Facebook == nil || !anotherMethodRemains(user, provider.Facebook) {
			return false, nil
		}
		user.Facebook = nil
	default:
		return false, nil
	}

	return true, nil
}

func (r *fakeUserRepository) SetEmailIdentity(_ context.Context, id, email, password string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.findByEmail(email) != nil {
		return false, errDuplicateKey
	}

	user, ok := r.users[id]
	if !ok || user.Email != nil {
		return false, nil
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return false, err
	}

	user.Email = &email
	user.PasswordHash = &hash
	user.IsVerify = false

	return true, nil
}

func (r *fakeUserRepository) RemoveEmailIdentity(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok || user.Email == nil || !anotherMethodRemains(user, "email") {
		return false, nil
	}

	user.Email = nil
	user.PasswordHash = nil
	user.IsVerify = false

	return true, nil
}

// anotherMethodRemains mirrors the detach guard filter: some sign-in
// method other than the one being detached must survive.
func anotherMethodRemains(user *model.User, detaching string) bool {
	if detaching != "email" && user.Email != nil && user.PasswordHash != nil {
		return true
	}
	if detaching != provider.Google && user.Google != nil {
		return true
	}
	if detaching != provider.Facebook && user.Facebook != nil {
		return true
	}
	return false
}

func (r *fakeUserRepository) DeleteUser(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}

	delete(r.users, id)

	return user, nil
}

func (r *fakeUserRepository) findByEmail(email string) *model.User {
	for _, user := range r.users {
		if user.Email != nil && *user.Email == email {
			return user
		}
	}
	return nil
}

func (r *fakeUserRepository) findByProviderID(providerName, providerID string) *model.User {
	for _, user := range r.users {
		switch providerName {
		case provider.Google:
			if user.Google != nil && user.Google.ProviderID == providerID {
				return user
			}
		case provider.Facebook:
			if user.Facebook != nil && user.Facebook.ProviderID == providerID {
				return user
			}
		}
	}
	return nil
}

var _ repository.UserRepository = (*fakeUserRepository)(nil)

type fakeOneTimeKeyRepository struct {
	mu   sync.Mutex
	keys map[string]*model.OneTimeKey
}

func newFakeOneTimeKeyRepository() *fakeOneTimeKeyRepository {
	return &fakeOneTimeKeyRepository{keys: make(map[string]*model.OneTimeKey)}
}

func (r *fakeOneTimeKeyRepository) CreateKey(_ context.Context, key *model.OneTimeKey) (*model.OneTimeKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.keys {
		if existing.UserID == key.UserID && existing.Purpose == key.Purpose {
			return nil, errDuplicateKey
		}
	}

	key.ID = bson.NewObjectID()
	r.keys[key.Key] = key

	return key, nil
}

func (r *fakeOneTimeKeyRepository) ConsumeKey(_ context.Context, key, purpose string) (*model.OneTimeKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.keys[key]
	if !ok || existing.Purpose != purpose {
		return nil, mongo.ErrNoDocuments
	}

	delete(r.keys, key)

	return existing, nil
}

var _ repository.OneTimeKeyRepository = (*fakeOneTimeKeyRepository)(nil)

type fakeNotifier struct {
	mu             sync.Mutex
	signupEmails   []string
	updatedEmails  []string
	verifyKeys     map[string]string
	verifiedEmails []string
	resetKeys      map[string]string
	resetEmails    []string
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{
		verifyKeys: make(map[string]string),
		resetKeys:  make(map[string]string),
	}
}

func (n *fakeNotifier) SignupSuccess(email, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.signupEmails = append(n.signupEmails, email)
}

func (n *fakeNotifier) PasswordUpdated(email string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.updatedEmails = append(n.updatedEmails, email)
}

func (n *fakeNotifier) VerifyEmail(email, key string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.verifyKeys[email] = key
}

func (n *fakeNotifier) VerifySuccess(email string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.verifiedEmails = append(n.verifiedEmails, email)
}

func (n *fakeNotifier) PasswordReset(email, key string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.resetKeys[email] = key
}

func (n *fakeNotifier) ResetSuccess(email string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.resetEmails = append(n.resetEmails, email)
}

var _ Notifier = (*fakeNotifier)(nil)

// fakeVerifier resolves access tokens from a fixed table; unknown tokens
// fail verification.
type fakeVerifier struct {
	identities map[string]*provider.Identity
}

func (v *fakeVerifier) Verify(_ context.Context, accessToken string) (*provider.Identity, error) {
	identity, ok := v.identities[accessToken]
	if !ok {
		return nil, provider.ErrVerificationFailed
	}

	return identity, nil
}
