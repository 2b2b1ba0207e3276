package handlers

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cbthost/voter-registry/internal/store"
	"github.com/cbthost/voter-registry/types"
	"github.com/google/uuid"
)

type memAdminRepo struct {
	mu     sync.Mutex
	admins map[string]types.Admin
}

func newMemAdminRepo() *memAdminRepo {
	return &memAdminRepo{admins: map[string]types.Admin{}}
}

func (r *memAdminRepo) taken(admin types.Admin) bool {
	for id, existing := range r.admins {
		if id != admin.ID && existing.Username == admin.Username {
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
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r *memAdminRepo) Create(_ context.Context, admin types.Admin) (types.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.taken(admin) {
		return types.Admin{}, &store.DuplicateKeyError{Constraint: "admins_username_key"}
	}
	admin.ID = uuid.NewString()
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
	if r.taken(admin) {
		return types.Admin{}, &store.DuplicateKeyError{Constraint: "admins_username_key"}
	}
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
