package services

import (
	"context"
	"sort"
	"sync"

	"github.com/brgy-records/apiserver/internal/mq"
	"github.com/brgy-records/apiserver/internal/store"
	"github.com/brgy-records/apiserver/types"
)

type fakeUserRepo struct {
	users  map[int]types.User
	nextID int
}

func newFakeUserRepo(users ...types.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: map[int]types.User{}, nextID: 1}
	for _, u := range users {
		repo.users[u.ID] = u
		if u.ID >= repo.nextID {
			repo.nextID = u.ID + 1
		}
	}
	return repo
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int) (types.User, error) {
	u, ok := f.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetActiveByID(ctx context.Context, id int) (types.User, error) {
	u, err := f.GetByID(ctx, id)
	if err != nil || !u.IsActive {
		return types.User{}, store.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetActiveByUsername(_ context.Context, username string) (types.User, error) {
	for _, u := range f.users {
		if u.Username == username && u.IsActive {
			return u, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (f *fakeUserRepo) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, bool, error) {
	var usernameTaken, emailTaken bool
	for _, u := range f.users {
		usernameTaken = usernameTaken || u.Username == username
		emailTaken = emailTaken || u.Email == email
	}
	return usernameTaken, emailTaken, nil
}

func (f *fakeUserRepo) ListActive(_ context.Context) ([]types.User, error) {
	var out []types.User
	for _, u := range f.users {
		if u.IsActive {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	user.ID = f.nextID
	user.IsActive = true
	f.nextID++
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) Update(_ context.Context, id int, fields store.Fields) error {
	u, ok := f.users[id]
	if !ok {
		return store.ErrNotFound
	}
	for _, other := range f.users {
		if other.ID != id && fields["username"] == other.Username {
			return &store.ConstraintError{Kind: store.ErrConflict, Constraint: "users_username_key"}
		}
	}
	if v, ok := fields["username"].(string); ok {
		u.Username = v
	}
	if v, ok := fields["email"].(string); ok {
		u.Email = v
	}
	if v, ok := fields["role"].(string); ok {
		u.Role = types.Role(v)
	}
	if v, ok := fields["is_active"].(bool); ok {
		u.IsActive = v
	}
	f.users[id] = u
	return nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, id int, passwordHash string) error {
	u, ok := f.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.PasswordHash = passwordHash
	f.users[id] = u
	return nil
}

func (f *fakeUserRepo) Deactivate(ctx context.Context, id int) error {
	return f.Update(ctx, id, store.Fields{"is_active": false})
}

type fakeLimiter struct {
	failures map[string]int
	max      int
}

func (f *fakeLimiter) Allow(_ context.Context, key string) (bool, error) {
	return f.failures[key] < f.max, nil
}

func (f *fakeLimiter) Fail(_ context.Context, key string) error {
	f.failures[key]++
	return nil
}

func (f *fakeLimiter) Reset(_ context.Context, key string) error {
	delete(f.failures, key)
	return nil
}

func (f *fakeLimiter) Close() error { return nil }

type fakeBroker struct {
	mu        sync.Mutex
	published [][]byte
}

func (f *fakeBroker) Publish(_ context.Context, _ string, data []byte, _ map[string]string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, data)
	return "1", nil
}

func (f *fakeBroker) Subscribe(context.Context, string, mq.Handler) error { return nil }
func (f *fakeBroker) Close() error                                       { return nil }

type countingRecorder map[string]int

func (c countingRecorder) RecordCreated(recordType string) { c[recordType]++ }
