package user

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/kazi/core"
)

// PasswordHashCost is the bcrypt cost used for every stored password.
const PasswordHashCost = 12

type Role string

// Roles
const (
	RoleStudent  Role = "STUDENT"
	RoleEducator Role = "EDUCATOR"
	RoleAdmin    Role = "ADMIN"
)

var AllRoles = []Role{RoleStudent, RoleEducator, RoleAdmin}

func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleEducator, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	EmailVerified bool       `json:"emailVerified"`
	Role          Role       `json:"role"`
	PasswordHash  []byte     `json:"-"`
	CreatedAt     time.Time  `json:"createdAt"` // UTC
	UpdatedAt     time.Time  `json:"updatedAt"` // UTC
	ArchivedAt    *time.Time `json:"-"`
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), PasswordHashCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u User) IsArchived() bool { return u.ArchivedAt != nil }
func (u User) IsAdmin() bool    { return u.Role == RoleAdmin }
func (u User) IsEducator() bool { return u.Role == RoleEducator }
func (u User) IsStudent() bool  { return u.Role == RoleStudent }

// NewUser contains information needed to register a new User.
type NewUser struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required"`
	Role     Role   `json:"role" validate:"omitempty,signuprole"`
}

func (nu *NewUser) Clean() {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	if nu.Role == "" {
		nu.Role = RoleStudent
	}
}

// Credentials are the sign in inputs.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// VerifyEmail carries the link parameters sent in the welcome email.
type VerifyEmail struct {
	UID   string `json:"uid" validate:"required"`
	Token string `json:"token" validate:"required"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Clean()
	return validate.Struct(nu)
}

func (c *Credentials) Validate(validate *validator.Validate) error {
	c.Email = core.CleanString(c.Email, true /* lower */)
	return validate.Struct(c)
}

func (ve *VerifyEmail) Validate(validate *validator.Validate) error {
	ve.UID = core.CleanString(ve.UID)
	ve.Token = core.CleanString(ve.Token)
	return validate.Struct(ve)
}

// GetFilter selects a single User; the first non-empty field wins.
type GetFilter struct {
	ID    string
	Email string
}
