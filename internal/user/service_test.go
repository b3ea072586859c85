package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/service-user-soap/internal/user/entity"
	userrepo "github.com/ovaphlow/pitchfork/service-user-soap/internal/user/repo"
)

// failingRepo returns err from every method and counts calls and writes.
type failingRepo struct {
	err         error
	calls       int
	writes      int
	sawDeadline bool
}

func (f *failingRepo) record(ctx context.Context) {
	f.calls++
	_, f.sawDeadline = ctx.Deadline()
}

func (f *failingRepo) List(ctx context.Context) ([]entity.User, error) {
	f.record(ctx)
	return nil, f.err
}

func (f *failingRepo) GetByID(ctx context.Context, _ int64) (*entity.User, error) {
	f.record(ctx)
	return nil, f.err
}

func (f *failingRepo) Create(ctx context.Context, _ entity.Fields) (*entity.User, error) {
	f.record(ctx)
	f.writes++
	return nil, f.err
}

func (f *failingRepo) Update(ctx context.Context, _ int64, _ entity.Fields) (*entity.User, error) {
	f.record(ctx)
	f.writes++
	return nil, f.err
}

func (f *failingRepo) Delete(ctx context.Context, _ int64) error {
	f.record(ctx)
	f.writes++
	return f.err
}

func newMemoryService() *UserService {
	return NewUserService(userrepo.NewMemoryRepo(), nil, time.Second)
}

func TestServiceCreateAndGet(t *testing.T) {
	s := newMemoryService()
	ctx := context.Background()

	res := s.Create(ctx, entity.Fields{Name: "Ann", Email: "ann@x.com"})
	require.True(t, res.Success, res.Message)
	assert.Equal(t, "User created successfully", res.Message)
	created, isUser := res.User()
	require.True(t, isUser)
	assert.Equal(t, int64(1), created.ID)
	assert.Nil(t, created.Phone)

	res = s.Get(ctx, created.ID)
	require.True(t, res.Success)
	assert.Equal(t, "User retrieved successfully", res.Message)
	got, _ := res.User()
	assert.Equal(t, "ann@x.com", got.Email)
}

func TestServiceListEmptyIsEmptySlice(t *testing.T) {
	res := newMemoryService().List(context.Background())
	require.True(t, res.Success)
	assert.Equal(t, "Users retrieved successfully", res.Message)
	users, isList := res.Users()
	require.True(t, isList)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestServiceRequiresNameAndEmail(t *testing.T) {
	repo := &failingRepo{}
	s := NewUserService(repo, nil, 0)
	ctx := context.Background()

	for _, f := range []entity.Fields{
		{Name: "", Email: "a@x.com"},
		{Name: "Ann", Email: ""},
		{Name: "   ", Email: "a@x.com"},
	} {
		res := s.Create(ctx, f)
		assert.False(t, res.Success)
		assert.Equal(t, MsgFieldsRequired, res.Message)
		assert.Nil(t, res.Data)

		res = s.Update(ctx, 1, f)
		assert.False(t, res.Success)
		assert.Equal(t, MsgFieldsRequired, res.Message)
	}
	assert.Zero(t, repo.writes, "validation failures never write")
}

func TestServiceDuplicateEmail(t *testing.T) {
	s := newMemoryService()
	ctx := context.Background()
	require.True(t, s.Create(ctx, entity.Fields{Name: "Ann", Email: "ann@x.com"}).Success)

	res := s.Create(ctx, entity.Fields{Name: "Other", Email: "ann@x.com"})
	assert.False(t, res.Success)
	assert.Equal(t, MsgDuplicateEmail, res.Message)

	bob := s.Create(ctx, entity.Fields{Name: "Bob", Email: "bob@x.com"})
	u, _ := bob.User()
	res = s.Update(ctx, u.ID, entity.Fields{Name: "Bob", Email: "ann@x.com"})
	assert.False(t, res.Success)
	assert.Equal(t, MsgDuplicateEmail, res.Message)

	first, isUser := s.Get(ctx, 1).User()
	require.True(t, isUser)
	assert.Equal(t, "Ann", first.Name)
	assert.Equal(t, "ann@x.com", first.Email)
	again, _ := s.Get(ctx, u.ID).User()
	assert.Equal(t, "bob@x.com", again.Email, "rejected update leaves the row untouched")
}

func TestServiceUpdateMissingUserWinsOverMissingFields(t *testing.T) {
	s := newMemoryService()
	ctx := context.Background()

	res := s.Update(ctx, 999, entity.Fields{Name: "Ann"})
	assert.False(t, res.Success)
	assert.Equal(t, MsgNotFound, res.Message)

	created, _ := s.Create(ctx, entity.Fields{Name: "Ann", Email: "ann@x.com"}).User()
	res = s.Update(ctx, created.ID, entity.Fields{Name: "Ann"})
	assert.Equal(t, MsgFieldsRequired, res.Message)
	got, _ := s.Get(ctx, created.ID).User()
	assert.Equal(t, "ann@x.com", got.Email)
}

func TestServiceCreateThenGetIsEqual(t *testing.T) {
	s := newMemoryService()
	ctx := context.Background()

	created, isUser := s.Create(ctx, entity.Fields{Name: "Ann", Email: "ann@x.com", Phone: "123"}).User()
	require.True(t, isUser)
	got, isUser := s.Get(ctx, created.ID).User()
	require.True(t, isUser)
	assert.Equal(t, *created, *got)
}

func TestServiceWhitespaceOnlyFieldsAreMissing(t *testing.T) {
	res := newMemoryService().Create(context.Background(), entity.Fields{Name: " \t", Email: "ann@x.com"})
	assert.False(t, res.Success)
	assert.Equal(t, MsgFieldsRequired, res.Message)
}

func TestServiceNotFound(t *testing.T) {
	s := newMemoryService()
	ctx := context.Background()

	for _, res := range []Result{
		s.Get(ctx, 999),
		s.Update(ctx, 999, entity.Fields{Name: "X", Email: "x@x.com"}),
		s.Delete(ctx, 999),
	} {
		assert.False(t, res.Success)
		assert.Equal(t, MsgNotFound, res.Message)
		assert.Nil(t, res.Data)
	}
}

func TestServiceUpdateKeepsCreatedAt(t *testing.T) {
	s := newMemoryService()
	ctx := context.Background()
	created, _ := s.Create(ctx, entity.Fields{Name: "Ann", Email: "ann@x.com", Phone: "1"}).User()

	res := s.Update(ctx, created.ID, entity.Fields{Name: "Ann B", Email: "annb@x.com", Phone: "2"})
	require.True(t, res.Success)
	assert.Equal(t, "User updated successfully", res.Message)
	updated, _ := res.User()
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.False(t, updated.UpdatedAt.Before(updated.CreatedAt))
	assert.Equal(t, "Ann B", updated.Name)
	require.NotNil(t, updated.Phone)
	assert.Equal(t, "2", *updated.Phone)
}

func TestServiceDeleteReturnsReceipt(t *testing.T) {
	s := newMemoryService()
	ctx := context.Background()
	created, _ := s.Create(ctx, entity.Fields{Name: "Ann", Email: "ann@x.com"}).User()

	res := s.Delete(ctx, created.ID)
	require.True(t, res.Success)
	assert.Equal(t, "User deleted successfully", res.Message)
	assert.Equal(t, entity.DeleteReceipt{ID: created.ID}, res.Data)

	assert.Equal(t, MsgNotFound, s.Get(ctx, created.ID).Message)
	assert.Equal(t, MsgNotFound, s.Delete(ctx, created.ID).Message)
}

func TestServiceStorageErrorsBecomeResults(t *testing.T) {
	repo := &failingRepo{err: errors.New("connection refused")}
	s := NewUserService(repo, nil, time.Second)
	ctx := context.Background()
	f := entity.Fields{Name: "Ann", Email: "ann@x.com"}

	cases := map[string]Result{
		"Error retrieving users: connection refused": s.List(ctx),
		"Error retrieving user: connection refused":  s.Get(ctx, 1),
		"Error creating user: connection refused":    s.Create(ctx, f),
		"Error updating user: connection refused":    s.Update(ctx, 1, f),
		"Error deleting user: connection refused":    s.Delete(ctx, 1),
	}
	for msg, res := range cases {
		assert.False(t, res.Success)
		assert.Equal(t, msg, res.Message)
		assert.Nil(t, res.Data)
	}
	assert.Equal(t, 5, repo.calls)
}

func TestServiceBoundsEachCallWithTimeout(t *testing.T) {
	repo := &failingRepo{err: context.DeadlineExceeded}
	s := NewUserService(repo, nil, 50*time.Millisecond)

	res := s.List(context.Background())
	assert.True(t, repo.sawDeadline)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "Error retrieving users")
}
