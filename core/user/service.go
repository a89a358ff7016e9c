package user

import (
	"context"
	"errors"
	"net/mail"
	"net/url"

	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/kazi/core"
)

var (
	// errors
	ErrNotFound           = errors.New("user not found")
	ErrEmailExists        = errors.New("a user with this email already exists")
	ErrInvalidCredentials = errors.New("Invalid email or password")
	ErrInvalidLink        = errors.New("verification link is invalid or has expired")
)

type (
	Repository interface {
		CreateUser(ctx context.Context, usr User, exec ...core.DBExecutor) (User, error)
		GetUser(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (User, error)
		UpdateUser(ctx context.Context, usr User, exec ...core.DBExecutor) (User, error)
	}

	Service struct {
		repo     Repository
		mailSvc  core.EmailService
		tokenGen *TokenGenerator
		conf     *core.Config
	}
)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{
		repo:     repo,
		mailSvc:  mailSvc,
		tokenGen: NewTokenGenerator(conf.SecretKey, conf.EmailVerificationTimeoutDelta),
		conf:     conf,
	}
}

func emailExistsErr() error {
	return core.NewValidationError(ErrEmailExists, core.FieldError{Field: "email", Error: ErrEmailExists.Error()})
}

// Register creates a STUDENT or EDUCATOR account from a validated NewUser and sends the welcome email.
func (svc *Service) Register(ctx context.Context, nu NewUser) (User, error) {
	if _, err := svc.repo.GetUser(ctx, GetFilter{Email: nu.Email}); err == nil {
		return User{}, emailExistsErr()
	} else if err != ErrNotFound {
		return User{}, pkgerrors.Wrap(err, "checking email uniqueness")
	}

	now := core.Now()
	usr := User{
		Name:      nu.Name,
		Email:     nu.Email,
		Role:      nu.Role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, pkgerrors.Wrap(err, "hashing password")
	}

	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		// lost a race against a concurrent registration
		if pkgerrors.Cause(err) == ErrEmailExists {
			return User{}, emailExistsErr()
		}
		return User{}, pkgerrors.Wrap(err, "creating user")
	}

	svc.sendWelcomeMail(usr)
	return usr, nil
}

// Authenticate returns the active User matching creds.
// Unknown emails, wrong passwords and archived accounts all yield ErrInvalidCredentials.
func (svc *Service) Authenticate(ctx context.Context, creds Credentials) (User, error) {
	usr, err := svc.repo.GetUser(ctx, GetFilter{Email: creds.Email})
	if err != nil {
		if err == ErrNotFound {
			return User{}, ErrInvalidCredentials
		}
		return User{}, pkgerrors.Wrap(err, "finding user by email")
	}
	if usr.IsArchived() {
		return User{}, ErrInvalidCredentials
	}
	if err = usr.CheckPassword(creds.Password); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return usr, nil
}

// GetByID returns the active User with the given id.
func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	usr, err := svc.repo.GetUser(ctx, GetFilter{ID: id})
	if err != nil {
		return User{}, err
	}
	if usr.IsArchived() {
		return User{}, ErrNotFound
	}
	return usr, nil
}

// VerifyEmail marks the User's email as verified when the link parameters are valid.
func (svc *Service) VerifyEmail(ctx context.Context, data VerifyEmail) (User, error) {
	id, err := DecodeUID(data.UID)
	if err != nil {
		return User{}, ErrInvalidLink
	}
	usr, err := svc.GetByID(ctx, id)
	if err != nil {
		if err == ErrNotFound {
			return User{}, ErrInvalidLink
		}
		return User{}, pkgerrors.Wrap(err, "finding user by ID")
	}
	if usr.EmailVerified {
		return usr, nil
	}
	if err = svc.tokenGen.VerifyToken(usr, data.Token); err != nil {
		return User{}, ErrInvalidLink
	}

	usr.EmailVerified = true
	usr.UpdatedAt = core.Now()
	usr, err = svc.repo.UpdateUser(ctx, usr)
	return usr, pkgerrors.Wrap(err, "updating user")
}

type welcomeMailData struct {
	Name      string
	Role      Role
	VerifyURL string
}

func (svc *Service) sendWelcomeMail(usr User) {
	token, err := svc.tokenGen.MakeToken(usr)
	if err != nil {
		return
	}
	q := make(url.Values)
	q.Set("uid", EncodeUID(usr))
	q.Set("token", token)

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Welcome to " + svc.conf.AppName,
		TemplateName: "welcome",
		TemplateData: welcomeMailData{
			Name:      usr.Name,
			Role:      usr.Role,
			VerifyURL: svc.conf.FrontendBaseURL + "/auth/verify-email?" + q.Encode(),
		},
	})
}
