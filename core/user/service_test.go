package user_test

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/user"
	"github.com/trezcool/kazi/fs"
	"github.com/trezcool/kazi/tests"
)

const testPwd = "s3cure-Passw0rd"

func setup(t *testing.T) *testutil.Stack {
	st := testutil.NewInmemStack(t)
	core.ParseEmailTemplates(appfs.FS, appfs.EmailTemplatesDir, st.Logger)
	return st
}

func TestService_Register(t *testing.T) {
	st := setup(t)
	ctx := context.Background()

	usr, err := st.UserSvc.Register(ctx, user.NewUser{Name: "Awe", Email: "awe@test.cd", Password: testPwd, Role: user.RoleEducator})
	require.NoError(t, err)
	assert.NotEmpty(t, usr.ID)
	assert.Equal(t, user.RoleEducator, usr.Role)
	assert.False(t, usr.EmailVerified)
	assert.NoError(t, usr.CheckPassword(testPwd))

	msgs := st.Mail.SentMessages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "awe@test.cd", msgs[0].To[0].Address)
	assert.Contains(t, msgs[0].TextContent, "/auth/verify-email?")

	t.Run("duplicate email", func(t *testing.T) {
		_, err := st.UserSvc.Register(ctx, user.NewUser{Name: "Other", Email: "awe@test.cd", Password: testPwd, Role: user.RoleStudent})
		require.Error(t, err)
		verr, ok := err.(*core.ValidationError)
		require.True(t, ok, "want *core.ValidationError, got %T", err)
		assert.Equal(t, user.ErrEmailExists, verr.Err)
		assert.Equal(t, "email", verr.Fields[0].Field)
	})
}

func TestService_Authenticate(t *testing.T) {
	st := setup(t)
	ctx := context.Background()

	usr := testutil.CreateUser(t, st.UserRepo, "Awe", "awe@test.cd", testPwd, user.RoleStudent)
	archived := testutil.CreateUser(t, st.UserRepo, "Old", "old@test.cd", testPwd, user.RoleStudent)
	now := core.Now()
	archived.ArchivedAt = &now
	_, err := st.UserRepo.UpdateUser(ctx, archived)
	require.NoError(t, err)

	tests := []struct {
		name    string
		creds   user.Credentials
		wantErr error
	}{
		{name: "unknown email", creds: user.Credentials{Email: "lol@test.cd", Password: testPwd}, wantErr: user.ErrInvalidCredentials},
		{name: "wrong password", creds: user.Credentials{Email: usr.Email, Password: "wrong"}, wantErr: user.ErrInvalidCredentials},
		{name: "archived", creds: user.Credentials{Email: archived.Email, Password: testPwd}, wantErr: user.ErrInvalidCredentials},
		{name: "ok", creds: user.Credentials{Email: usr.Email, Password: testPwd}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := st.UserSvc.Authenticate(ctx, tt.creds)
			assert.Equal(t, tt.wantErr, err)
			if tt.wantErr == nil {
				assert.Equal(t, usr.ID, got.ID)
			}
		})
	}

	t.Run("archived users are not found by id", func(t *testing.T) {
		_, err := st.UserSvc.GetByID(ctx, archived.ID)
		assert.Equal(t, user.ErrNotFound, err)
	})
}

func TestService_VerifyEmail(t *testing.T) {
	st := setup(t)
	ctx := context.Background()

	_, err := st.UserSvc.Register(ctx, user.NewUser{Name: "Awe", Email: "awe@test.cd", Password: testPwd, Role: user.RoleStudent})
	require.NoError(t, err)

	msgs := st.Mail.SentMessages()
	require.Len(t, msgs, 1)
	link := msgs[0].TextContent[strings.Index(msgs[0].TextContent, "?")+1:]
	if i := strings.IndexAny(link, " \r\n"); i >= 0 {
		link = link[:i]
	}
	q, err := url.ParseQuery(link)
	require.NoError(t, err)

	tests := []struct {
		name    string
		data    user.VerifyEmail
		wantErr error
	}{
		{name: "bad uid", data: user.VerifyEmail{UID: "!!!", Token: q.Get("token")}, wantErr: user.ErrInvalidLink},
		{name: "unknown uid", data: user.VerifyEmail{UID: user.EncodeUID(user.User{ID: "nope"}), Token: q.Get("token")}, wantErr: user.ErrInvalidLink},
		{name: "bad token", data: user.VerifyEmail{UID: q.Get("uid"), Token: "lol-lol"}, wantErr: user.ErrInvalidLink},
		{name: "ok", data: user.VerifyEmail{UID: q.Get("uid"), Token: q.Get("token")}},
		{name: "already verified", data: user.VerifyEmail{UID: q.Get("uid"), Token: "lol-lol"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			usr, err := st.UserSvc.VerifyEmail(ctx, tt.data)
			assert.Equal(t, tt.wantErr, err)
			if tt.wantErr == nil {
				assert.True(t, usr.EmailVerified)
				assert.WithinDuration(t, time.Now(), usr.UpdatedAt, time.Minute)
			}
		})
	}
}
