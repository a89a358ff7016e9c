package user

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/kazi/core"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

var _ core.Logger = nopLogger{}

func TestPasswordPolicyViolation(t *testing.T) {
	LoadCommonPasswords(fstest.MapFS{
		"pwds.txt": {Data: []byte("password123\nqwertyuiop\n")},
	}, "pwds.txt", nopLogger{})
	defer func() {
		commonPasswordsMu.Lock()
		commonPasswords = nil
		commonPasswordsMu.Unlock()
	}()

	tests := []struct {
		name  string
		pwd   string
		attrs []string
		want  string
	}{
		{name: "too short", pwd: "s3cure", want: pwdMinLenTag},
		{name: "whitespace", pwd: "s3cure Passw0rd", want: pwdNoSpaceTag},
		{name: "all numeric", pwd: "1234567890", want: pwdNotAllNumTag},
		{name: "similar to email", pwd: "john.doe@test.cd", attrs: []string{"John Doe", "john.doe@test.cd"}, want: pwdAttrSimTag},
		{name: "common", pwd: "Password123", want: pwdNoCommonTag},
		{name: "ok", pwd: "s3cure-Passw0rd", attrs: []string{"John Doe", "john.doe@test.cd"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PasswordPolicyViolation(tt.pwd, tt.attrs...))
		})
	}
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("s3cure-Passw0rd"))
	assert.EqualError(t, ValidatePassword("short"), "password must contain at least 8 characters")
	assert.EqualError(t, ValidatePassword(strings.Repeat("1", 9)), "password cannot be entirely numeric")
}

func TestUser_SetPassword(t *testing.T) {
	var usr User
	assert.NoError(t, usr.SetPassword("s3cure-Passw0rd"))
	assert.NotEqual(t, "s3cure-Passw0rd", string(usr.PasswordHash))
	assert.NoError(t, usr.CheckPassword("s3cure-Passw0rd"))
	assert.Error(t, usr.CheckPassword("wrong"))
}
