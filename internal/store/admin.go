package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/cbthost/voter-registry/types"
	"github.com/google/uuid"
)

const adminColumns = `id, username, email, role, password_hash, created_at, updated_at`

// AdminRepository handles persistence for administrators. Username and
// email uniqueness are enforced by the admins table's unique indexes.
type AdminRepository struct {
	db *sql.DB
}

func NewAdminRepository(db *sql.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAdmin(row rowScanner) (types.Admin, error) {
	var admin types.Admin
	var email sql.NullString
	err := row.Scan(
		&admin.ID,
		&admin.Username,
		&email,
		&admin.Role,
		&admin.PasswordHash,
		&admin.CreatedAt,
		&admin.UpdatedAt,
	)
	if err != nil {
		return types.Admin{}, err
	}
	if email.Valid {
		admin.Email = &email.String
	}
	return admin, nil
}

func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func (r *AdminRepository) GetByID(ctx context.Context, id string) (types.Admin, error) {
	if !validID(id) {
		return types.Admin{}, ErrNotFound
	}
	query := `SELECT ` + adminColumns + ` FROM admins WHERE id = $1`
	admin, err := scanAdmin(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Admin{}, ErrNotFound
		}
		return types.Admin{}, err
	}
	return admin, nil
}

func (r *AdminRepository) GetByUsername(ctx context.Context, username string) (types.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE username = $1`
	admin, err := scanAdmin(r.db.QueryRowContext(ctx, query, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Admin{}, ErrNotFound
		}
		return types.Admin{}, err
	}
	return admin, nil
}

func (r *AdminRepository) List(ctx context.Context) ([]types.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	admins := make([]types.Admin, 0)
	for rows.Next() {
		admin, err := scanAdmin(rows)
		if err != nil {
			return nil, err
		}
		admins = append(admins, admin)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return admins, nil
}

// Create inserts admin with a fresh identity. A username or email collision
// surfaces as ErrDuplicateKey from the insert itself.
func (r *AdminRepository) Create(ctx context.Context, admin types.Admin) (types.Admin, error) {
	now := time.Now().UTC()
	admin.ID = uuid.NewString()
	admin.CreatedAt = now
	admin.UpdatedAt = now

	const query = `
		INSERT INTO admins (id, username, email, role, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(
		ctx,
		query,
		admin.ID,
		admin.Username,
		nullableString(admin.Email),
		admin.Role,
		admin.PasswordHash,
		admin.CreatedAt,
		admin.UpdatedAt,
	)
	if err != nil {
		return types.Admin{}, translateError(err)
	}
	return admin, nil
}

func (r *AdminRepository) Update(ctx context.Context, admin types.Admin) (types.Admin, error) {
	if !validID(admin.ID) {
		return types.Admin{}, ErrNotFound
	}
	admin.UpdatedAt = time.Now().UTC()

	const query = `
		UPDATE admins
		SET username = $1,
			email = $2,
			role = $3,
			password_hash = $4,
			updated_at = $5
		WHERE id = $6
		RETURNING created_at`
	err := r.db.QueryRowContext(
		ctx,
		query,
		admin.Username,
		nullableString(admin.Email),
		admin.Role,
		admin.PasswordHash,
		admin.UpdatedAt,
		admin.ID,
	).Scan(&admin.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Admin{}, ErrNotFound
		}
		return types.Admin{}, translateError(err)
	}
	return admin, nil
}

func (r *AdminRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	const query = `DELETE FROM admins WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
