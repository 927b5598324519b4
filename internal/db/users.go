package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/BasantaParajuli22/auth-mail-service/internal/db/queries"
	"github.com/BasantaParajuli22/auth-mail-service/internal/models"
	"github.com/BasantaParajuli22/auth-mail-service/pkg/debug"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// uniqueViolation is the PostgreSQL error code for unique constraint breaches
const uniqueViolation = "23505"

// scanUser scans one user row in the canonical column order
func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.IsVerified,
		&user.VerificationToken,
		&user.VerificationTokenExpires,
		&user.OtpCode,
		&user.OtpCodeExpires,
		&user.ResetToken,
		&user.ResetTokenExpires,
		&user.WantsEmails,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// CreateUser inserts a new user. Returns models.ErrDuplicateEmail when the
// email uniqueness constraint rejects the row.
func (db *DB) CreateUser(ctx context.Context, user *models.User) error {
	err := db.QueryRowContext(ctx, queries.CreateUser,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.IsVerified,
		user.VerificationToken,
		user.VerificationTokenExpires,
		user.WantsEmails,
	).Scan(&user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
			return models.ErrDuplicateEmail
		}
		debug.Error("Failed to create user: %v", err)
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByEmail retrieves a user by email
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := scanUser(db.QueryRowContext(ctx, queries.GetUserByEmail, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrUserNotFound
		}
		debug.Error("Failed to get user by email: %v", err)
		return nil, err
	}
	return user, nil
}

// GetUserByID retrieves a user by ID
func (db *DB) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := scanUser(db.QueryRowContext(ctx, queries.GetUserByID, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrUserNotFound
		}
		debug.Error("Failed to get user by ID: %v", err)
		return nil, err
	}
	return user, nil
}

// RefreshVerificationToken installs a new verification secret if and only
// if the user is unverified and has no live secret. A nil user with nil
// error means the precondition did not hold; the caller classifies why.
func (db *DB) RefreshVerificationToken(ctx context.Context, email, token string, expires time.Time) (*models.User, error) {
	user, err := scanUser(db.QueryRowContext(ctx, queries.RefreshVerificationToken, email, token, expires))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		debug.Error("Failed to refresh verification token: %v", err)
		return nil, err
	}
	return user, nil
}

// ConsumeVerificationToken marks the user verified and clears the secret
// in one conditional update. Nil user, nil error means no row matched.
func (db *DB) ConsumeVerificationToken(ctx context.Context, email, token string) (*models.User, error) {
	user, err := scanUser(db.QueryRowContext(ctx, queries.ConsumeVerificationToken, email, token))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		debug.Error("Failed to consume verification token: %v", err)
		return nil, err
	}
	return user, nil
}

// SetOtpCode installs a new OTP code unless a live one exists
func (db *DB) SetOtpCode(ctx context.Context, email, code string, expires time.Time) (*models.User, error) {
	user, err := scanUser(db.QueryRowContext(ctx, queries.SetOtpCode, email, code, expires))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		debug.Error("Failed to set OTP code: %v", err)
		return nil, err
	}
	return user, nil
}

// ConsumeOtpCode clears a matching live OTP code
func (db *DB) ConsumeOtpCode(ctx context.Context, email, code string) (*models.User, error) {
	user, err := scanUser(db.QueryRowContext(ctx, queries.ConsumeOtpCode, email, code))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		debug.Error("Failed to consume OTP code: %v", err)
		return nil, err
	}
	return user, nil
}

// SetResetToken installs a new password-reset secret unless a live one exists
func (db *DB) SetResetToken(ctx context.Context, email, token string, expires time.Time) (*models.User, error) {
	user, err := scanUser(db.QueryRowContext(ctx, queries.SetResetToken, email, token, expires))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		debug.Error("Failed to set reset token: %v", err)
		return nil, err
	}
	return user, nil
}

// ConsumeResetToken replaces the password and clears a matching live reset
// secret. Lookup is by token alone.
func (db *DB) ConsumeResetToken(ctx context.Context, token, passwordHash string) (*models.User, error) {
	user, err := scanUser(db.QueryRowContext(ctx, queries.ConsumeResetToken, token, passwordHash))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		debug.Error("Failed to consume reset token: %v", err)
		return nil, err
	}
	return user, nil
}

// UpdateEmailPreference sets the wants_emails flag for a user
func (db *DB) UpdateEmailPreference(ctx context.Context, id uuid.UUID, wantsEmails bool) (*models.User, error) {
	user, err := scanUser(db.QueryRowContext(ctx, queries.UpdateEmailPreference, id, wantsEmails))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrUserNotFound
		}
		debug.Error("Failed to update email preference: %v", err)
		return nil, err
	}
	return user, nil
}

// Subscriber is the projection used for bulk update mail
type Subscriber struct {
	Email    string
	Username string
}

// ListSubscribedUsers returns email and username of every user who
// accepts update mail
func (db *DB) ListSubscribedUsers(ctx context.Context) ([]Subscriber, error) {
	rows, err := db.QueryContext(ctx, queries.ListSubscribedUsers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subscribers []Subscriber
	for rows.Next() {
		var s Subscriber
		if err := rows.Scan(&s.Email, &s.Username); err != nil {
			return nil, err
		}
		subscribers = append(subscribers, s)
	}
	return subscribers, rows.Err()
}

// ClearExpiredSecrets nulls out every lapsed token/expiry pair and returns
// how many rows were touched in total
func (db *DB) ClearExpiredSecrets(ctx context.Context) (int64, error) {
	var total int64
	for _, query := range []string{
		queries.ClearExpiredVerificationTokens,
		queries.ClearExpiredOtpCodes,
		queries.ClearExpiredResetTokens,
	} {
		result, err := db.ExecContext(ctx, query)
		if err != nil {
			return total, err
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return total, err
		}
		total += rows
	}
	return total, nil
}
