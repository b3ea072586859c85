package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ovaphlow/pitchfork/service-user-soap/internal/user/entity"
)

// MemoryRepo is an in-process users table with the same contract as UserRepo:
// ids are assigned from 1 and never reused, email is unique,
// timestamps are managed by the repo.
type MemoryRepo struct {
	mu     sync.RWMutex
	rows   map[int64]entity.User
	nextID int64
	now    func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{rows: make(map[int64]entity.User), nextID: 1, now: func() time.Time { return time.Now().UTC() }}
}

// WithClock replaces the timestamp source.
func (r *MemoryRepo) WithClock(now func() time.Time) *MemoryRepo {
	r.now = now
	return r
}

func (r *MemoryRepo) List(ctx context.Context) ([]entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entity.User, 0, len(r.rows))
	for _, u := range r.rows {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := cloneUser(u)
	return &c, nil
}

func (r *MemoryRepo) Create(ctx context.Context, f entity.Fields) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.emailTaken(f.Email, 0) {
		return nil, ErrDuplicateEmail
	}
	ts := r.now()
	u := entity.User{
		ID:        r.nextID,
		Name:      f.Name,
		Email:     f.Email,
		Phone:     f.PhoneOrNil(),
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	r.nextID++
	r.rows[u.ID] = u
	c := cloneUser(u)
	return &c, nil
}

func (r *MemoryRepo) Update(ctx context.Context, id int64, f entity.Fields) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	if r.emailTaken(f.Email, id) {
		return nil, ErrDuplicateEmail
	}
	u.Name = f.Name
	u.Email = f.Email
	u.Phone = f.PhoneOrNil()
	u.UpdatedAt = r.now()
	if u.UpdatedAt.Before(u.CreatedAt) {
		u.UpdatedAt = u.CreatedAt
	}
	r.rows[id] = u
	c := cloneUser(u)
	return &c, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

// emailTaken must be called with the lock held.
func (r *MemoryRepo) emailTaken(email string, except int64) bool {
	for id, u := range r.rows {
		if id != except && u.Email == email {
			return true
		}
	}
	return false
}

func cloneUser(u entity.User) entity.User {
	if u.Phone != nil {
		p := *u.Phone
		u.Phone = &p
	}
	return u
}
