package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-user-soap/internal/user/entity"
	userrepo "github.com/ovaphlow/pitchfork/service-user-soap/internal/user/repo"
)

// Repository is the persistence contract the store depends on. Implementations
// report userrepo.ErrNotFound and userrepo.ErrDuplicateEmail.
type Repository interface {
	List(ctx context.Context) ([]entity.User, error)
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	Create(ctx context.Context, f entity.Fields) (*entity.User, error)
	Update(ctx context.Context, id int64, f entity.Fields) (*entity.User, error)
	Delete(ctx context.Context, id int64) error
}

// DefaultOperationTimeout bounds a single store call, connection wait included.
const DefaultOperationTimeout = 10 * time.Second

// UserService is the entity store. Every method returns a Result; storage
// errors never cross this boundary.
type UserService struct {
	repo    Repository
	logger  *zap.SugaredLogger
	timeout time.Duration
}

func NewUserService(r Repository, logger *zap.SugaredLogger, timeout time.Duration) *UserService {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if timeout <= 0 {
		timeout = DefaultOperationTimeout
	}
	return &UserService{repo: r, logger: logger, timeout: timeout}
}

// List returns all users, most recently created first.
func (s *UserService) List(ctx context.Context) Result {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	users, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Errorw("list users failed", "err", err)
		return fail(fmt.Sprintf("Error retrieving users: %v", err))
	}
	if users == nil {
		users = []entity.User{}
	}
	return ok(users, "Users retrieved successfully")
}

// Get returns one user by id.
func (s *UserService) Get(ctx context.Context, id int64) Result {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return NotFound()
		}
		s.logger.Errorw("get user failed", "id", id, "err", err)
		return fail(fmt.Sprintf("Error retrieving user: %v", err))
	}
	return ok(u, "User retrieved successfully")
}

// Create validates presence of name and email, then inserts.
func (s *UserService) Create(ctx context.Context, f entity.Fields) Result {
	if !hasRequired(f) {
		return fail(MsgFieldsRequired)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	u, err := s.repo.Create(ctx, f)
	if err != nil {
		if errors.Is(err, userrepo.ErrDuplicateEmail) {
			return fail(MsgDuplicateEmail)
		}
		s.logger.Errorw("create user failed", "email", f.Email, "err", err)
		return fail(fmt.Sprintf("Error creating user: %v", err))
	}
	return ok(u, "User created successfully")
}

// Update replaces name, email and phone of an existing user. A missing user
// is reported before missing fields; nothing is written when fields are missing.
func (s *UserService) Update(ctx context.Context, id int64, f entity.Fields) Result {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if !hasRequired(f) {
		if _, err := s.repo.GetByID(ctx, id); errors.Is(err, userrepo.ErrNotFound) {
			return NotFound()
		}
		return fail(MsgFieldsRequired)
	}
	u, err := s.repo.Update(ctx, id, f)
	if err != nil {
		switch {
		case errors.Is(err, userrepo.ErrNotFound):
			return NotFound()
		case errors.Is(err, userrepo.ErrDuplicateEmail):
			return fail(MsgDuplicateEmail)
		}
		s.logger.Errorw("update user failed", "id", id, "err", err)
		return fail(fmt.Sprintf("Error updating user: %v", err))
	}
	return ok(u, "User updated successfully")
}

// Delete hard-deletes a user and returns {id} as receipt.
func (s *UserService) Delete(ctx context.Context, id int64) Result {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return NotFound()
		}
		s.logger.Errorw("delete user failed", "id", id, "err", err)
		return fail(fmt.Sprintf("Error deleting user: %v", err))
	}
	return ok(entity.DeleteReceipt{ID: id}, "User deleted successfully")
}

func hasRequired(f entity.Fields) bool {
	return strings.TrimSpace(f.Name) != "" && strings.TrimSpace(f.Email) != ""
}
