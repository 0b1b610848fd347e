// Package domain defines the business logic for the litterbox service.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrDuplicateUser indicates the username or email is already taken.
	ErrDuplicateUser = errors.New("user already exists")
	// ErrInvalidCredentials is returned on a failed login attempt.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrNotFound is returned when a referenced entity cannot be located.
	ErrNotFound = errors.New("not found")
	// ErrNotOwner indicates the caller does not own the referenced entity.
	ErrNotOwner = errors.New("not owned by caller")
)

// Repository captures persistence operations required by the service.
type Repository interface {
	CreateUser(ctx context.Context, user User) error
	UserByUsername(ctx context.Context, username string) (*User, error)
	UserExists(ctx context.Context, username, email string) (bool, error)

	CreateCat(ctx context.Context, cat Cat) error
	GetCat(ctx context.Context, id string) (*Cat, error)
	ListCatsByOwner(ctx context.Context, ownerID string) ([]Cat, error)

	CreateLitterbox(ctx context.Context, box Litterbox) error
	GetLitterbox(ctx context.Context, id string) (*Litterbox, error)

	CreateEdgeDevice(ctx context.Context, device EdgeDevice) error

	ListUsageByCat(ctx context.Context, catID string, start, end time.Time, limit int) ([]UsageRecord, error)
}

// Service orchestrates ownership-checked workflows over the repository.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// RegisterUser creates an account with a bcrypt-hashed password.
func (s *Service) RegisterUser(ctx context.Context, username, email, password string) (*User, error) {
	exists, err := s.repo.UserExists(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateUser
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Authenticate verifies the credentials and returns the matching user.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	user, err := s.repo.UserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// CreateCat registers a cat owned by the caller.
func (s *Service) CreateCat(ctx context.Context, ownerID, name, breed string, age int) (*Cat, error) {
	cat := Cat{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Name:      name,
		Breed:     breed,
		Age:       age,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.CreateCat(ctx, cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

// ListCats returns all cats belonging to the caller.
func (s *Service) ListCats(ctx context.Context, ownerID string) ([]Cat, error) {
	return s.repo.ListCatsByOwner(ctx, ownerID)
}

// CreateLitterbox attaches a litterbox to one of the caller's cats.
func (s *Service) CreateLitterbox(ctx context.Context, ownerID, catID, name string) (*Litterbox, error) {
	if err := s.checkCatOwner(ctx, ownerID, catID); err != nil {
		return nil, err
	}

	box := Litterbox{
		ID:        uuid.NewString(),
		CatID:     catID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.CreateLitterbox(ctx, box); err != nil {
		return nil, err
	}
	return &box, nil
}

// RegisterEdgeDevice attaches a vendor-assigned device to a litterbox the
// caller owns through the cat chain.
func (s *Service) RegisterEdgeDevice(ctx context.Context, ownerID, deviceID, litterboxID, deviceName, deviceType string) (*EdgeDevice, error) {
	box, err := s.repo.GetLitterbox(ctx, litterboxID)
	if err != nil {
		return nil, err
	}
	if box == nil {
		return nil, ErrNotFound
	}
	if err := s.checkCatOwner(ctx, ownerID, box.CatID); err != nil {
		return nil, err
	}

	device := EdgeDevice{
		ID:          deviceID,
		LitterboxID: litterboxID,
		DeviceName:  deviceName,
		DeviceType:  deviceType,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.CreateEdgeDevice(ctx, device); err != nil {
		return nil, err
	}
	return &device, nil
}

// ListUsage returns visit records for one of the caller's cats within the
// expanded timestamp range [start, end].
func (s *Service) ListUsage(ctx context.Context, ownerID, catID string, start, end time.Time, limit int) ([]UsageRecord, error) {
	if err := s.checkCatOwner(ctx, ownerID, catID); err != nil {
		return nil, err
	}
	return s.repo.ListUsageByCat(ctx, catID, start, end, limit)
}

func (s *Service) checkCatOwner(ctx context.Context, ownerID, catID string) error {
	cat, err := s.repo.GetCat(ctx, catID)
	if err != nil {
		return err
	}
	if cat == nil {
		return ErrNotFound
	}
	if cat.OwnerID != ownerID {
		return ErrNotOwner
	}
	return nil
}
