package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/user"
)

var userColumns = []string{
	"id", "name", "email", "password_hash", "email_verified", "role", "created_at", "updated_at", "archived_at",
}

type userRow struct {
	ID            string    `db:"id"`
	Name          string    `db:"name"`
	Email         string    `db:"email"`
	PasswordHash  string    `db:"password_hash"`
	EmailVerified bool      `db:"email_verified"`
	Role          string    `db:"role"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
	ArchivedAt    null.Time `db:"archived_at"`
}

func (row userRow) toUser() user.User {
	return user.User{
		ID:            row.ID,
		Name:          row.Name,
		Email:         row.Email,
		EmailVerified: row.EmailVerified,
		Role:          user.Role(row.Role),
		PasswordHash:  []byte(row.PasswordHash),
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
		ArchivedAt:    row.ArchivedAt.Ptr(),
	}
}

type userRepository struct {
	repository
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(exec core.DBExecutor) *userRepository {
	return &userRepository{repository{exec: exec}}
}

// trapCreateErr maps a violation of the email unique index to user.ErrEmailExists
func (repo userRepository) trapCreateErr(err error, msg string) error {
	if isUniqueViolation(err, "users_email_key") {
		return user.ErrEmailExists
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	usr.ID = uuid.New().String()
	qb := psql.Insert("users").
		Columns(userColumns...).
		Values(
			usr.ID, usr.Name, usr.Email, string(usr.PasswordHash), usr.EmailVerified, string(usr.Role),
			usr.CreatedAt, usr.UpdatedAt, null.TimeFromPtr(usr.ArchivedAt),
		)
	if _, err := execute(ctx, repo.getExec(exec), qb); err != nil {
		return user.User{}, repo.trapCreateErr(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) GetUser(ctx context.Context, filter user.GetFilter, exec ...core.DBExecutor) (user.User, error) {
	qb := psql.Select(userColumns...).From("users").Limit(1)
	switch {
	case filter.ID != "":
		if _, err := uuid.Parse(filter.ID); err != nil {
			return user.User{}, user.ErrNotFound
		}
		qb = qb.Where(sq.Eq{"id": filter.ID})
	case filter.Email != "":
		qb = qb.Where(sq.Eq{"email": filter.Email})
	default:
		return user.User{}, user.ErrNotFound
	}

	var rows []userRow
	if err := selectAll(ctx, repo.getExec(exec), qb, &rows); err != nil {
		return user.User{}, errors.Wrap(err, "finding user")
	}
	if len(rows) == 0 {
		return user.User{}, user.ErrNotFound
	}
	return rows[0].toUser(), nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	qb := psql.Update("users").
		SetMap(map[string]interface{}{
			"name":           usr.Name,
			"email":          usr.Email,
			"password_hash":  string(usr.PasswordHash),
			"email_verified": usr.EmailVerified,
			"role":           string(usr.Role),
			"updated_at":     usr.UpdatedAt,
			"archived_at":    null.TimeFromPtr(usr.ArchivedAt),
		}).
		Where(sq.Eq{"id": usr.ID})

	res, err := execute(ctx, repo.getExec(exec), qb)
	if err != nil {
		return user.User{}, repo.trapCreateErr(err, "updating user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}
