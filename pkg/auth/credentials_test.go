package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialsFromEnv(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    Credentials
		wantErr error
	}{
		{
			name:  "valid pair",
			value: "client-123:secret-456",
			want:  Credentials{ClientID: "client-123", ClientSecret: "secret-456"},
		},
		{
			name:    "unset",
			value:   "",
			wantErr: ErrMissingAPIKey,
		},
		{
			name:    "no separator",
			value:   "client-123",
			wantErr: ErrInvalidAPIKey,
		},
		{
			name:    "too many separators",
			value:   "a:b:c",
			wantErr: ErrInvalidAPIKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvAPIKey, tt.value)

			creds, err := CredentialsFromEnv()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, creds)
		})
	}
}

func TestCredentialsValidate(t *testing.T) {
	assert.NoError(t, Credentials{ClientID: "id", ClientSecret: "secret"}.Validate())
	assert.ErrorIs(t, Credentials{ClientID: "id"}.Validate(), ErrMissingCredentials)
	assert.ErrorIs(t, Credentials{ClientSecret: "secret"}.Validate(), ErrMissingCredentials)
	assert.ErrorIs(t, Credentials{}.Validate(), ErrMissingCredentials)
}

func TestCredentialsStringRedactsSecret(t *testing.T) {
	creds := Credentials{ClientID: "client-123", ClientSecret: "super-secret"}

	assert.Equal(t, "client-123:<redacted>", creds.String())
	assert.NotContains(t, creds.String(), "super-secret")
}
