package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/sleephaven/sleephaven/internal/model"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	var sessionID sql.NullString
	err := scanner.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.HasPaidPlan, &sessionID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if sessionID.Valid {
		u.PaymentSessionID = &sessionID.String
	}
	return &u, nil
}

const userCols = `id, name, email, password_hash, has_paid_plan, payment_session_id, created_at, updated_at`

// Create inserts a new user with a generated id. The UNIQUE constraint on
// email is the authoritative uniqueness check; a duplicate insert fails here
// and IsDuplicateEmail reports it.
func (s *UserStore) Create(name, email, passwordHash string, hasPaidPlan bool, paymentSessionID *string) (*model.User, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO users (id, name, email, password_hash, has_paid_plan, payment_session_id) VALUES (?, ?, ?, ?, ?, ?)`,
		id, name, email, passwordHash, hasPaidPlan, paymentSessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) GetByID(id string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByEmail(email string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (s *UserStore) Update(id, name, email, passwordHash string) (*model.User, error) {
	_, err := s.db.Exec(
		`UPDATE users SET name = ?, email = ?, password_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		name, email, passwordHash, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// IsDuplicateEmail reports whether err is the users.email UNIQUE violation.
func IsDuplicateEmail(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: users.email")
}
