package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/kazi/core"
)

func TestManager_GenerateVerify(t *testing.T) {
	conf := core.NewTestConfig()
	m := NewManager(conf)
	userID := "6b1f1d6e-3c39-4a43-9d8a-0f2b8c1c9e11"

	valid, err := m.Generate(userID)
	require.NoError(t, err)

	// issued 8 days ago, past the 7 days lifetime
	m.nowFunc = func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) }
	expired, err := m.Generate(userID)
	require.NoError(t, err)
	m.nowFunc = time.Now // reset

	otherConf := core.NewTestConfig()
	otherConf.SecretKey = "another-secret"
	otherSecret, err := NewManager(otherConf).Generate(userID)
	require.NoError(t, err)

	otherIssuerConf := core.NewTestConfig()
	otherIssuerConf.AppName = "NotKazi"
	otherIssuer, err := NewManager(otherIssuerConf).Generate(userID)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: userID}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: conf.AppName},
		UserID:           userID,
	}).SignedString([]byte(conf.SecretKey))
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "empty", wantErr: ErrInvalidToken},
		{name: "garbage", token: "lol.lol.lol", wantErr: ErrInvalidToken},
		{name: "tampered", token: valid + "x", wantErr: ErrInvalidToken},
		{name: "expired", token: expired, wantErr: ErrInvalidToken},
		{name: "other secret", token: otherSecret, wantErr: ErrInvalidToken},
		{name: "other issuer", token: otherIssuer, wantErr: ErrInvalidToken},
		{name: "unsigned", token: none, wantErr: ErrInvalidToken},
		{name: "no expiry", token: noExpiry, wantErr: ErrInvalidToken},
		{name: "valid", token: valid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Verify(tt.token)
			assert.Equal(t, tt.wantErr, err)
			if tt.wantErr == nil {
				assert.Equal(t, userID, got)
			}
		})
	}
}

func TestManager_TTL(t *testing.T) {
	assert.Equal(t, 7*24*time.Hour, NewManager(core.NewTestConfig()).TTL())
}
