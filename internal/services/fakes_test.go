package services

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cbthost/voter-registry/internal/auth"
	"github.com/cbthost/voter-registry/internal/store"
	"github.com/cbthost/voter-registry/types"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// memAdminRepo enforces username/email uniqueness inside its lock, standing in
// for the database's unique indexes.
type memAdminRepo struct {
	mu     sync.Mutex
	admins map[string]types.Admin
}

func newMemAdminRepo() *memAdminRepo {
	return &memAdminRepo{admins: map[string]types.Admin{}}
}

func (r *memAdminRepo) conflicts(admin types.Admin) bool {
	for id, existing := range r.admins {
		if id == admin.ID {
			continue
		}
		if existing.Username == admin.Username {
			return true
		}
		if admin.Email != nil && existing.Email != nil && strings.EqualFold(*admin.Email, *existing.Email) {
			return true
		}
	}
	return false
}

func (r *memAdminRepo) GetByID(_ context.Context, id string) (types.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	admin, ok := r.admins[id]
	if !ok {
		return types.Admin{}, store.ErrNotFound
	}
	return admin, nil
}

func (r *memAdminRepo) GetByUsername(_ context.Context, username string) (types.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, admin := range r.admins {
		if admin.Username == username {
			return admin, nil
		}
	}
	return types.Admin{}, store.ErrNotFound
}

func (r *memAdminRepo) List(_ context.Context) ([]types.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]types.Admin, 0, len(r.admins))
	for _, admin := range r.admins {
		out = append(out, admin)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memAdminRepo) Create(_ context.Context, admin types.Admin) (types.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	admin.ID = uuid.NewString()
	if r.conflicts(admin) {
		return types.Admin{}, &store.DuplicateKeyError{Constraint: "admins_username_key"}
	}
	admin.CreatedAt = time.Now()
	admin.UpdatedAt = admin.CreatedAt
	r.admins[admin.ID] = admin
	return admin, nil
}

func (r *memAdminRepo) Update(_ context.Context, admin types.Admin) (types.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.admins[admin.ID]; !ok {
		return types.Admin{}, store.ErrNotFound
	}
	if r.conflicts(admin) {
		return types.Admin{}, &store.DuplicateKeyError{Constraint: "admins_username_key"}
	}
	admin.UpdatedAt = time.Now()
	r.admins[admin.ID] = admin
	return admin, nil
}

func (r *memAdminRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.admins[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.admins, id)
	return nil
}

// memVoterRepo enforces NIN/email uniqueness inside its lock.
type memVoterRepo struct {
	mu     sync.Mutex
	voters map[string]types.Voter
	clock  time.Time
}

func newMemVoterRepo() *memVoterRepo {
	return &memVoterRepo{
		voters: map[string]types.Voter{},
		clock:  time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (r *memVoterRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.voters)
}

func (r *memVoterRepo) FindByNINOrEmail(_ context.Context, nin, email string) (types.Voter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, voter := range r.voters {
		if voter.NIN == nin || strings.EqualFold(voter.Email, email) {
			return voter, nil
		}
	}
	return types.Voter{}, store.ErrNotFound
}

func (r *memVoterRepo) GetByID(_ context.Context, id string) (types.Voter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	voter, ok := r.voters[id]
	if !ok {
		return types.Voter{}, store.ErrNotFound
	}
	return voter, nil
}

func (r *memVoterRepo) List(_ context.Context) ([]types.Voter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]types.Voter, 0, len(r.voters))
	for _, voter := range r.voters {
		out = append(out, voter)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RegistrationDate.After(out[j].RegistrationDate) })
	return out, nil
}

func (r *memVoterRepo) Create(_ context.Context, voter types.Voter) (types.Voter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.voters {
		if existing.NIN == voter.NIN || strings.EqualFold(existing.Email, voter.Email) {
			return types.Voter{}, &store.DuplicateKeyError{Constraint: "voters_nin_key"}
		}
	}
	voter.ID = uuid.NewString()
	r.clock = r.clock.Add(time.Minute)
	voter.RegistrationDate = r.clock
	r.voters[voter.ID] = voter
	return voter, nil
}

func (r *memVoterRepo) SetVerified(_ context.Context, id string, verified bool) (types.Voter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	voter, ok := r.voters[id]
	if !ok {
		return types.Voter{}, store.ErrNotFound
	}
	voter.IsVerified = verified
	r.voters[id] = voter
	return voter, nil
}

// countingHasher wraps a fast bcrypt hasher and counts Hash calls.
type countingHasher struct {
	inner  *auth.PasswordHasher
	hashes atomic.Int32
}

func newCountingHasher() *countingHasher {
	return &countingHasher{inner: auth.NewPasswordHasherWithCost(bcrypt.MinCost)}
}

func (h *countingHasher) Hash(plaintext string) (string, error) {
	h.hashes.Add(1)
	return h.inner.Hash(plaintext)
}

func (h *countingHasher) Verify(plaintext, hash string) bool {
	return h.inner.Verify(plaintext, hash)
}

type recordedEvent struct {
	kind    string
	voterID string
}

type fakeEvents struct {
	mu     sync.Mutex
	events []recordedEvent
	err    error
}

func (f *fakeEvents) record(kind string, voter types.Voter) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recordedEvent{kind: kind, voterID: voter.ID})
	return f.err
}

func (f *fakeEvents) VoterRegistered(_ context.Context, voter types.Voter) error {
	return f.record("registered", voter)
}

func (f *fakeEvents) VoterVerified(_ context.Context, voter types.Voter) error {
	return f.record("verified", voter)
}

type memRosterStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func newMemRosterStorage() *memRosterStorage {
	return &memRosterStorage{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memRosterStorage) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	m.types[key] = contentType
	return nil
}

func (m *memRosterStorage) Get(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}
