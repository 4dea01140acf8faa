package repofake

import (
	"context"
	"strings"
	"sync"

	"github.com/farmers-portal/auth-service/users"
	"github.com/google/uuid"
)

var _ users.Repo = (*FakeUserRepo)(nil)

// FakeUserRepo is an in-memory users.Repo used by tests.
type FakeUserRepo struct {
	users    map[string]*users.User
	emailIds map[string]string // lowercased email to user id
	lock     sync.RWMutex
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		users:    make(map[string]*users.User),
		emailIds: make(map[string]string),
	}
}

func (ur *FakeUserRepo) Insert(_ context.Context, user *users.User) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	email := strings.ToLower(user.Email)
	if _, exists := ur.emailIds[email]; exists {
		return users.ErrEmailInUse
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	stored := *user
	ur.users[user.ID] = &stored
	ur.emailIds[email] = user.ID
	return nil
}

func (ur *FakeUserRepo) GetByID(_ context.Context, id string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	user, ok := ur.users[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (ur *FakeUserRepo) GetByEmail(_ context.Context, email string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	id, ok := ur.emailIds[strings.ToLower(email)]
	if !ok {
		return nil, users.ErrNotFound
	}
	copied := *ur.users[id]
	return &copied, nil
}

func (ur *FakeUserRepo) AppendTokens(_ context.Context, id, accessToken, refreshToken string) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	user, ok := ur.users[id]
	if !ok {
		return users.ErrNotFound
	}
	user.ValidTokens = append(user.ValidTokens, accessToken)
	user.ValidRefreshTokens = append(user.ValidRefreshTokens, refreshToken)
	return nil
}

func (ur *FakeUserRepo) RemoveRefreshToken(_ context.Context, id, refreshToken string) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	user, ok := ur.users[id]
	if !ok {
		return users.ErrNotFound
	}
	kept := user.ValidRefreshTokens[:0]
	for _, t := range user.ValidRefreshTokens {
		if t != refreshToken {
			kept = append(kept, t)
		}
	}
	user.ValidRefreshTokens = kept
	return nil
}

func (ur *FakeUserRepo) ClearTokens(_ context.Context, id string) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	user, ok := ur.users[id]
	if !ok {
		return users.ErrNotFound
	}
	user.ValidTokens = []string{}
	user.ValidRefreshTokens = []string{}
	return nil
}

func (ur *FakeUserRepo) UpdateProfile(_ context.Context, id string, update users.ProfileUpdate) (*users.User, error) {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	user, ok := ur.users[id]
	if !ok {
		return nil, users.ErrNotFound
	}

	oldEmail := strings.ToLower(user.Email)
	newEmail := strings.ToLower(update.Email)
	if oldEmail != newEmail {
		if _, taken := ur.emailIds[newEmail]; taken {
			return nil, users.ErrEmailInUse
		}
		delete(ur.emailIds, oldEmail)
		ur.emailIds[newEmail] = id
	}

	user.Name = update.Name
	user.Email = newEmail
	user.Phone = update.Phone
	user.Location = update.Location
	user.LandSize = update.LandSize
	user.SoilType = update.SoilType
	user.Crops = update.Crops
	user.Skills = update.Skills
	user.ProfileImage = update.ProfileImage
	user.AadharNumber = update.AadharNumber
	user.FarmRegistrationNumber = update.FarmRegistrationNumber
	user.IrrigationType = update.IrrigationType
	user.Documents = update.Documents

	copied := *user
	return &copied, nil
}
