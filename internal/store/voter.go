package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/cbthost/voter-registry/types"
	"github.com/google/uuid"
)

const voterColumns = `id, name, gender, date_of_birth, nin, address, phone, email, is_verified, registration_date`

// VoterRepository handles persistence for voters. NIN and email uniqueness
// are enforced by the voters table's unique indexes.
type VoterRepository struct {
	db *sql.DB
}

func NewVoterRepository(db *sql.DB) *VoterRepository {
	return &VoterRepository{db: db}
}

func scanVoter(row rowScanner) (types.Voter, error) {
	var voter types.Voter
	err := row.Scan(
		&voter.ID,
		&voter.Name,
		&voter.Gender,
		&voter.DateOfBirth,
		&voter.NIN,
		&voter.Address,
		&voter.Phone,
		&voter.Email,
		&voter.IsVerified,
		&voter.RegistrationDate,
	)
	if err != nil {
		return types.Voter{}, err
	}
	voter.DateOfBirth = voter.DateOfBirth.UTC()
	return voter, nil
}

// FindByNINOrEmail returns any voter holding nin or email.
func (r *VoterRepository) FindByNINOrEmail(ctx context.Context, nin, email string) (types.Voter, error) {
	query := `SELECT ` + voterColumns + ` FROM voters WHERE nin = $1 OR lower(email) = lower($2) LIMIT 1`
	voter, err := scanVoter(r.db.QueryRowContext(ctx, query, nin, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Voter{}, ErrNotFound
		}
		return types.Voter{}, err
	}
	return voter, nil
}

func (r *VoterRepository) GetByID(ctx context.Context, id string) (types.Voter, error) {
	if !validID(id) {
		return types.Voter{}, ErrNotFound
	}
	query := `SELECT ` + voterColumns + ` FROM voters WHERE id = $1`
	voter, err := scanVoter(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Voter{}, ErrNotFound
		}
		return types.Voter{}, err
	}
	return voter, nil
}

// List returns all voters, most recently registered first.
func (r *VoterRepository) List(ctx context.Context) ([]types.Voter, error) {
	query := `SELECT ` + voterColumns + ` FROM voters ORDER BY registration_date DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	voters := make([]types.Voter, 0)
	for rows.Next() {
		voter, err := scanVoter(rows)
		if err != nil {
			return nil, err
		}
		voters = append(voters, voter)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return voters, nil
}

// Create inserts voter with a fresh identity and registration timestamp.
// A NIN or email collision surfaces as ErrDuplicateKey from the insert.
func (r *VoterRepository) Create(ctx context.Context, voter types.Voter) (types.Voter, error) {
	voter.ID = uuid.NewString()
	voter.RegistrationDate = time.Now().UTC()

	const query = `
		INSERT INTO voters (id, name, gender, date_of_birth, nin, address, phone, email, is_verified, registration_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.ExecContext(
		ctx,
		query,
		voter.ID,
		voter.Name,
		voter.Gender,
		voter.DateOfBirth,
		voter.NIN,
		voter.Address,
		voter.Phone,
		voter.Email,
		voter.IsVerified,
		voter.RegistrationDate,
	)
	if err != nil {
		return types.Voter{}, translateError(err)
	}
	return voter, nil
}

func (r *VoterRepository) SetVerified(ctx context.Context, id string, verified bool) (types.Voter, error) {
	if !validID(id) {
		return types.Voter{}, ErrNotFound
	}
	query := `UPDATE voters SET is_verified = $1 WHERE id = $2 RETURNING ` + voterColumns
	voter, err := scanVoter(r.db.QueryRowContext(ctx, query, verified, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Voter{}, ErrNotFound
		}
		return types.Voter{}, err
	}
	return voter, nil
}
