package db

import (
	"context"
	"testing"
	"time"

	"github.com/BasantaParajuli22/auth-mail-service/internal/models"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userTestColumns = []string{
	"id", "username", "email", "password_hash", "role", "is_verified",
	"verification_token", "verification_token_expires",
	"otp_code", "otp_code_expires",
	"reset_token", "reset_token_expires",
	"wants_emails", "created_at", "updated_at",
}

// Expectation patterns pin the liveness predicates of the conditional
// updates, not just their SET fragments: a transition that stopped
// checking expiry against NOW() must fail these tests.
const (
	refreshVerificationPattern = `(?s)SET verification_token = \$2.*WHERE email = \$1.*is_verified = false.*verification_token_expires IS NULL OR verification_token_expires <= NOW\(\)`
	consumeVerificationPattern = `(?s)SET is_verified = true.*WHERE email = \$1.*is_verified = false.*verification_token = \$2.*verification_token_expires > NOW\(\)`
	setOtpPattern              = `(?s)SET otp_code = \$2.*WHERE email = \$1.*otp_code_expires IS NULL OR otp_code_expires <= NOW\(\)`
	consumeOtpPattern          = `(?s)SET otp_code = NULL.*WHERE email = \$1.*is_verified = true.*otp_code = \$2.*otp_code_expires > NOW\(\)`
	setResetPattern            = `(?s)SET reset_token = \$2.*WHERE email = \$1.*reset_token_expires IS NULL OR reset_token_expires <= NOW\(\)`
	consumeResetPattern        = `(?s)SET password_hash = \$2.*WHERE reset_token = \$1.*reset_token_expires > NOW\(\)`
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return NewDB(mockDB), mock
}

func sampleRow(id uuid.UUID) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(userTestColumns).AddRow(
		id, "alice", "alice@example.com", "hash", models.RoleReader, true,
		nil, nil, nil, nil, nil, nil, true, now, now,
	)
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("populates timestamps from the insert", func(t *testing.T) {
		database, mock := newMockDB(t)
		user := models.NewUser("alice", "alice@example.com")

		now := time.Now()
		mock.ExpectQuery("INSERT INTO users").
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

		require.NoError(t, database.CreateUser(ctx, user))
		assert.Equal(t, now, user.CreatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps unique violation to duplicate email", func(t *testing.T) {
		database, mock := newMockDB(t)
		user := models.NewUser("alice", "taken@example.com")

		mock.ExpectQuery("INSERT INTO users").
			WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

		err := database.CreateUser(ctx, user)
		assert.ErrorIs(t, err, models.ErrDuplicateEmail)
	})
}

func TestGetUserByEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		database, mock := newMockDB(t)
		id := uuid.New()

		mock.ExpectQuery("SELECT id, username").
			WithArgs("alice@example.com").
			WillReturnRows(sampleRow(id))

		user, err := database.GetUserByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
		assert.Nil(t, user.VerificationToken)
	})

	t.Run("missing row maps to user not found", func(t *testing.T) {
		database, mock := newMockDB(t)

		mock.ExpectQuery("SELECT id, username").
			WithArgs("ghost@example.com").
			WillReturnRows(sqlmock.NewRows(userTestColumns))

		_, err := database.GetUserByEmail(ctx, "ghost@example.com")
		assert.ErrorIs(t, err, models.ErrUserNotFound)
	})
}

// Conditional transitions report an unmatched precondition as (nil, nil),
// never as an error; the service layer decides what the miss means.
func TestConditionalTransitionsReturnNilOnNoMatch(t *testing.T) {
	ctx := context.Background()
	expires := time.Now().Add(15 * time.Minute)

	t.Run("refresh verification token", func(t *testing.T) {
		database, mock := newMockDB(t)
		mock.ExpectQuery(refreshVerificationPattern).
			WithArgs("a@example.com", "tok", expires).
			WillReturnRows(sqlmock.NewRows(userTestColumns))

		user, err := database.RefreshVerificationToken(ctx, "a@example.com", "tok", expires)
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("consume verification token", func(t *testing.T) {
		database, mock := newMockDB(t)
		mock.ExpectQuery(consumeVerificationPattern).
			WithArgs("a@example.com", "tok").
			WillReturnRows(sqlmock.NewRows(userTestColumns))

		user, err := database.ConsumeVerificationToken(ctx, "a@example.com", "tok")
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("set otp code while one is live", func(t *testing.T) {
		database, mock := newMockDB(t)
		mock.ExpectQuery(setOtpPattern).
			WithArgs("a@example.com", "123456", expires).
			WillReturnRows(sqlmock.NewRows(userTestColumns))

		user, err := database.SetOtpCode(ctx, "a@example.com", "123456", expires)
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("set reset token while one is live", func(t *testing.T) {
		database, mock := newMockDB(t)
		mock.ExpectQuery(setResetPattern).
			WithArgs("a@example.com", "tok", expires).
			WillReturnRows(sqlmock.NewRows(userTestColumns))

		user, err := database.SetResetToken(ctx, "a@example.com", "tok", expires)
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("consume otp code", func(t *testing.T) {
		database, mock := newMockDB(t)
		mock.ExpectQuery(consumeOtpPattern).
			WithArgs("a@example.com", "123456").
			WillReturnRows(sqlmock.NewRows(userTestColumns))

		user, err := database.ConsumeOtpCode(ctx, "a@example.com", "123456")
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("consume reset token", func(t *testing.T) {
		database, mock := newMockDB(t)
		mock.ExpectQuery(consumeResetPattern).
			WithArgs("tok", "newhash").
			WillReturnRows(sqlmock.NewRows(userTestColumns))

		user, err := database.ConsumeResetToken(ctx, "tok", "newhash")
		require.NoError(t, err)
		assert.Nil(t, user)
	})
}

func TestConsumeVerificationTokenReturnsUpdatedRow(t *testing.T) {
	ctx := context.Background()
	database, mock := newMockDB(t)
	id := uuid.New()

	mock.ExpectQuery(consumeVerificationPattern).
		WithArgs("alice@example.com", "tok").
		WillReturnRows(sampleRow(id))

	user, err := database.ConsumeVerificationToken(ctx, "alice@example.com", "tok")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.True(t, user.IsVerified)
	assert.Nil(t, user.VerificationToken)
	assert.Nil(t, user.VerificationTokenExpires)
}

func TestUpdateEmailPreference(t *testing.T) {
	ctx := context.Background()
	database, mock := newMockDB(t)
	id := uuid.New()

	mock.ExpectQuery("SET wants_emails = ").
		WithArgs(id, false).
		WillReturnRows(sampleRow(id))

	user, err := database.UpdateEmailPreference(ctx, id, false)
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
}

func TestListSubscribedUsers(t *testing.T) {
	ctx := context.Background()
	database, mock := newMockDB(t)

	mock.ExpectQuery("SELECT email, username").
		WillReturnRows(sqlmock.NewRows([]string{"email", "username"}).
			AddRow("a@example.com", "a").
			AddRow("b@example.com", "b"))

	subscribers, err := database.ListSubscribedUsers(ctx)
	require.NoError(t, err)
	require.Len(t, subscribers, 2)
	assert.Equal(t, "a@example.com", subscribers[0].Email)
	assert.Equal(t, "b", subscribers[1].Username)
}

func TestClearExpiredSecrets(t *testing.T) {
	ctx := context.Background()
	database, mock := newMockDB(t)

	mock.ExpectExec("SET verification_token = NULL").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("SET otp_code = NULL").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("SET reset_token = NULL").
		WillReturnResult(sqlmock.NewResult(0, 0))

	cleared, err := database.ClearExpiredSecrets(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), cleared)
	assert.NoError(t, mock.ExpectationsWereMet())
}
