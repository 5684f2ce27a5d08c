package identity

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// CredentialStore is the persistence boundary the authenticator depends on.
//
// All operations are atomic at single-record granularity. Writes that touch
// an identifying field (Insert, UpdateEmail, UpdateUsername) enforce
// uniqueness at the store; concurrent writers targeting the same value
// resolve so that exactly one succeeds, the loser receiving a conflict
// error. The authenticator treats that signal as authoritative and never
// synthesizes uniqueness from separate read and write calls.
type CredentialStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	// GetByIdentifier resolves an email (case-insensitive) or username.
	GetByIdentifier(ctx context.Context, identifier string) (*User, error)
	GetByResetToken(ctx context.Context, token string) (*User, error)

	// Insert stores a new record, failing on duplicate identifying fields.
	Insert(ctx context.Context, user *User) (*User, error)

	UpdateEmail(ctx context.Context, id uuid.UUID, email string) (*User, error)
	UpdateUsername(ctx context.Context, id uuid.UUID, username string) (*User, error)

	// SetResetToken overwrites any previously issued token.
	SetResetToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error

	// ConsumeResetToken stores the new hash and clears the token fields in
	// one conditional write; it fails with a not found error when the token
	// no longer matches the record.
	ConsumeResetToken(ctx context.Context, id uuid.UUID, token, passwordHash string) error

	TrackAttemptedLogin(ctx context.Context, user *User) error
	TrackSuccessfulLogin(ctx context.Context, user *User) error
}

var setResetTokenSQL = `UPDATE "users" AS "usr"
SET
	"reset_token" = ?,
	"reset_token_expires_at" = ?,
	"updated_at" = ?
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."id" = ?
) RETURNING *;`

var consumeResetTokenSQL = `UPDATE "users" AS "usr"
SET
	"password_hash" = ?,
	"reset_token" = NULL,
	"reset_token_expires_at" = NULL,
	"updated_at" = ?
WHERE
	"usr"."deleted_at" IS NULL
AND "usr"."id" = ?
AND "usr"."reset_token" = ?
RETURNING *;`

// Users is the repository-level name for the credential store. The generic
// repository surface stays internal: its GetByID/GetByIdentifier signatures
// differ from the credential lookups, so it is composed into the struct,
// not the interface.
type Users interface {
	CredentialStore
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ Users           = (*users)(nil)
	_ CredentialStore = (*users)(nil)
)

// NewUsersRepository builds the bun-backed credential store.
func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return a.getOne(ctx, "?TableAlias.id = ?", id.String())
}

func (a *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	return a.getOne(ctx, "LOWER(?TableAlias.email) = LOWER(?)", strings.TrimSpace(email))
}

func (a *users) GetByUsername(ctx context.Context, username string) (*User, error) {
	return a.getOne(ctx, "?TableAlias.username = ?", strings.TrimSpace(username))
}

func (a *users) GetByResetToken(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, notFoundError("reset token not found")
	}
	return a.getOne(ctx, "?TableAlias.reset_token = ?", token)
}

func (a *users) GetByIdentifier(ctx context.Context, identifier string) (*User, error) {
	for _, opt := range resolveUserIdentifier(identifier) {
		record, err := a.getOne(ctx, fmt.Sprintf("%s = ?", opt.column), opt.value)
		if err != nil {
			if goerrors.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		return record, nil
	}

	return nil, notFoundError("user not found").
		WithMetadata(map[string]any{
			"identifier": identifier,
		})
}

func (a *users) getOne(ctx context.Context, where string, value any) (*User, error) {
	record := &User{}
	err := a.db.NewSelect().Model(record).
		Where(where, value).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, notFoundError("user not found")
		}
		return nil, err
	}
	return record, nil
}

func (a *users) Insert(ctx context.Context, record *User) (*User, error) {
	prepareUserDefaults(record)

	created, err := a.Repository.CreateTx(ctx, a.db, record)
	if err != nil {
		if isUniqueViolation(err) {
			field := conflictField(err)
			value := record.Email
			if field == "username" {
				value = record.Username
			}
			return nil, conflictError(field, value)
		}
		return nil, err
	}
	return created, nil
}

func (a *users) UpdateEmail(ctx context.Context, id uuid.UUID, email string) (*User, error) {
	return a.updateIdentifier(ctx, id, "email", NormalizeEmail(email))
}

func (a *users) UpdateUsername(ctx context.Context, id uuid.UUID, username string) (*User, error) {
	return a.updateIdentifier(ctx, id, "username", strings.TrimSpace(username))
}

func (a *users) updateIdentifier(ctx context.Context, id uuid.UUID, column, value string) (*User, error) {
	sql := fmt.Sprintf(`UPDATE "users" AS "usr"
SET
	%q = ?,
	"updated_at" = ?
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."id" = ?
) RETURNING *;`, column)

	res, err := a.Repository.RawTx(ctx, a.db, sql, value, time.Now(), id.String())
	if err != nil {
		if isUniqueViolation(err) {
			return nil, conflictError(column, value)
		}
		return nil, err
	}

	if len(res) == 0 {
		return nil, notFoundError("user not found").
			WithMetadata(map[string]any{"id": id.String()})
	}

	return res[0], nil
}

func (a *users) SetResetToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error {
	res, err := a.Repository.RawTx(ctx, a.db, setResetTokenSQL, token, expiresAt, time.Now(), id.String())
	if err != nil {
		return err
	}

	if len(res) == 0 {
		return notFoundError("user not found").
			WithMetadata(map[string]any{"id": id.String()})
	}

	return nil
}

func (a *users) ConsumeResetToken(ctx context.Context, id uuid.UUID, token, passwordHash string) error {
	res, err := a.Repository.RawTx(ctx, a.db, consumeResetTokenSQL, passwordHash, time.Now(), id.String(), token)
	if err != nil {
		return err
	}

	if len(res) == 0 {
		return notFoundError("user not found").
			WithMetadata(map[string]any{"id": id.String()})
	}

	return nil
}

func (a *users) TrackSuccessfulLogin(ctx context.Context, user *User) error {
	// NOTE: Updating using the ORM fails due to a bug, it wont reset
	// login_attempt_at, login_attempts fields.
	loggedInAt := time.Now()
	_, err := a.db.NewRaw(`
		UPDATE "users" AS "usr"
		SET
			"loggedin_at" = ?,
			"login_attempt_at" = NULL,
			"login_attempts" = 0
		WHERE
			("usr".id = ?)
			AND "usr"."deleted_at" IS NULL;
	`, loggedInAt, user.ID.String()).Exec(ctx)

	return err
}

func (a *users) TrackAttemptedLogin(ctx context.Context, user *User) error {
	criteria := []repository.UpdateCriteria{
		repository.UpdateByID(user.ID.String()),
	}

	record := &User{}
	record.ID = user.ID
	record.LoginAttempts = user.LoginAttempts + 1
	now := time.Now()
	record.LoginAttemptAt = &now

	_, err := a.Repository.UpdateTx(ctx, a.db, record, criteria...)

	return err
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	record.Email = NormalizeEmail(record.Email)
	record.Username = strings.TrimSpace(record.Username)
}

type identifierOption struct {
	column string
	value  string
}

func resolveUserIdentifier(identifier string) []identifierOption {
	trimmed := strings.TrimSpace(identifier)
	if trimmed == "" {
		return nil
	}

	options := make([]identifierOption, 0, 2)

	if isEmail(trimmed) {
		options = append(options, identifierOption{
			column: "LOWER(?TableAlias.email)",
			value:  strings.ToLower(trimmed),
		})
	}

	options = append(options, identifierOption{
		column: "?TableAlias.username",
		value:  trimmed,
	})

	return options
}

func isEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}

func isNoRows(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "no rows in result set")
}

// isUniqueViolation recognizes the unique constraint errors of the sqlite,
// postgres, and mysql drivers bun fronts.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint") ||
		strings.Contains(msg, "Error 1062")
}

func conflictField(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "email"):
		return "email"
	case strings.Contains(msg, "username"):
		return "username"
	default:
		return "identifier"
	}
}
