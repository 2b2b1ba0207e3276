package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cbthost/voter-registry/internal/metrics"
	"github.com/cbthost/voter-registry/internal/store"
	"github.com/cbthost/voter-registry/types"
)

// VoterRepository defines persistence operations for voters.
type VoterRepository interface {
	FindByNINOrEmail(ctx context.Context, nin, email string) (types.Voter, error)
	GetByID(ctx context.Context, id string) (types.Voter, error)
	List(ctx context.Context) ([]types.Voter, error)
	Create(ctx context.Context, voter types.Voter) (types.Voter, error)
	SetVerified(ctx context.Context, id string, verified bool) (types.Voter, error)
}

// VoterEvents is notified after voter records are committed.
type VoterEvents interface {
	VoterRegistered(ctx context.Context, voter types.Voter) error
	VoterVerified(ctx context.Context, voter types.Voter) error
}

// Registration is the self-service registration input.
type Registration struct {
	Name        string
	Gender      string
	DateOfBirth string
	NIN         string
	Address     string
	Phone       string
	Email       string
}

// VoterService encapsulates voter registration and review use-cases.
type VoterService struct {
	repo    VoterRepository
	events  VoterEvents
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// VoterOption customizes a VoterService.
type VoterOption func(*VoterService)

// WithVoterClock sets the time source used for the eligibility check.
func WithVoterClock(now func() time.Time) VoterOption {
	return func(s *VoterService) {
		s.now = now
	}
}

// WithVoterEvents sets the publisher notified of registrations and verifications.
func WithVoterEvents(events VoterEvents) VoterOption {
	return func(s *VoterService) {
		s.events = events
	}
}

func NewVoterService(repo VoterRepository, logger *slog.Logger, m *metrics.Metrics, opts ...VoterOption) *VoterService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &VoterService{
		repo:    repo,
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *VoterService) GetByID(ctx context.Context, id string) (types.Voter, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns all voters, most recently registered first.
func (s *VoterService) List(ctx context.Context) ([]types.Voter, error) {
	return s.repo.List(ctx)
}

// Register validates the input, rejects duplicates and under-age applicants,
// and stores the voter. Nothing is written unless every check passes.
func (s *VoterService) Register(ctx context.Context, input Registration) (types.Voter, error) {
	candidate, err := s.buildCandidate(input)
	if err != nil {
		s.metrics.RegistrationOutcome(metrics.OutcomeInvalid)
		return types.Voter{}, err
	}

	if _, err := s.repo.FindByNINOrEmail(ctx, candidate.NIN, candidate.Email); err == nil {
		s.metrics.RegistrationOutcome(metrics.OutcomeDuplicate)
		return types.Voter{}, ErrDuplicateVoter
	} else if !errors.Is(err, store.ErrNotFound) {
		s.metrics.RegistrationOutcome(metrics.OutcomeError)
		return types.Voter{}, fmt.Errorf("check existing voter: %w", err)
	}

	// Dates of birth are UTC calendar dates; compare on the same calendar.
	if !types.IsEligible(candidate.AgeAt(s.now().UTC())) {
		s.metrics.RegistrationOutcome(metrics.OutcomeIneligible)
		return types.Voter{}, ErrIneligible
	}

	// The unique indexes settle races between concurrent registrations that
	// both passed the lookup above.
	voter, err := s.repo.Create(ctx, candidate)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			s.metrics.RegistrationOutcome(metrics.OutcomeDuplicate)
			return types.Voter{}, ErrDuplicateVoter
		}
		s.metrics.RegistrationOutcome(metrics.OutcomeError)
		return types.Voter{}, fmt.Errorf("store voter: %w", err)
	}

	s.metrics.RegistrationOutcome(metrics.OutcomeSuccess)
	s.logger.InfoContext(ctx, "voter registered", "voter_id", voter.ID)
	if s.events != nil {
		if err := s.events.VoterRegistered(ctx, voter); err != nil {
			s.logger.WarnContext(ctx, "failed to publish voter registration", "voter_id", voter.ID, "error", err)
		}
	}
	return voter, nil
}

// Verify sets the verification flag. Eligibility is not re-checked.
func (s *VoterService) Verify(ctx context.Context, id string, verified bool) (types.Voter, error) {
	voter, err := s.repo.SetVerified(ctx, id, verified)
	if err != nil {
		return types.Voter{}, err
	}

	s.logger.InfoContext(ctx, "voter verification updated", "voter_id", voter.ID, "verified", verified)
	if s.events != nil {
		if err := s.events.VoterVerified(ctx, voter); err != nil {
			s.logger.WarnContext(ctx, "failed to publish voter verification", "voter_id", voter.ID, "error", err)
		}
	}
	return voter, nil
}

func (s *VoterService) buildCandidate(input Registration) (types.Voter, error) {
	name, err := requireText("name", input.Name, "Name is required")
	if err != nil {
		return types.Voter{}, err
	}
	gender := types.Gender(input.Gender)
	if input.Gender == "" {
		return types.Voter{}, invalid("gender", "Gender is required")
	}
	if !gender.Valid() {
		return types.Voter{}, invalid("gender", "Gender must be Male, Female or Other")
	}
	dob, err := parseDateOfBirth(input.DateOfBirth)
	if err != nil {
		return types.Voter{}, err
	}
	nin, err := requireText("nin", input.NIN, "NIN is required")
	if err != nil {
		return types.Voter{}, err
	}
	address, err := requireText("address", input.Address, "Address is required")
	if err != nil {
		return types.Voter{}, err
	}
	phone, err := validatePhone(input.Phone)
	if err != nil {
		return types.Voter{}, err
	}
	email, err := validateVoterEmail(input.Email)
	if err != nil {
		return types.Voter{}, err
	}

	return types.Voter{
		Name:        name,
		Gender:      gender,
		DateOfBirth: dob,
		NIN:         nin,
		Address:     address,
		Phone:       phone,
		Email:       email,
	}, nil
}
