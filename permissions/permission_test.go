package permissions_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kodesha/permissions"
	"kodesha/shared/constant"
)

func TestGet(t *testing.T) {
	data := permissions.Get()
	require.NotNil(t, data)

	tests := []struct {
		name     string
		path     string
		method   string
		wantSkip bool
		wantRole []string
	}{
		{name: "callbacks are public", path: "/v1/payments/callbacks/{method}", method: http.MethodPost, wantSkip: true},
		{name: "admin listing", path: "/v1/bookings/", method: http.MethodGet, wantRole: []string{constant.RoleAdmin}},
		{name: "sweep is admin only", path: "/v1/admin/bookings/complete", method: http.MethodPost, wantRole: []string{constant.RoleAdmin}},
		{name: "unknown route", path: "/v1/unknown", method: http.MethodGet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			permission := data.FindPermissions(tt.path, tt.method)

			assert.Equal(t, tt.wantSkip, permission.Skip)

			if tt.wantRole != nil {
				assert.Equal(t, tt.wantRole, permission.Permissions)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{
			name: "valid",
			data: `{"endpoints":[{"path":"/v1/x","method":"GET","permissions":["host"]}]}`,
		},
		{
			name:    "duplicate route",
			data:    `{"endpoints":[{"path":"/v1/x","method":"GET"},{"path":"/v1/x","method":"GET"}]}`,
			wantErr: "duplicate permission for GET /v1/x",
		},
		{
			name:    "unknown role",
			data:    `{"endpoints":[{"path":"/v1/x","method":"GET","permissions":["superuser"]}]}`,
			wantErr: `unknown role "superuser" on GET /v1/x`,
		},
		{
			name:    "malformed",
			data:    `{"endpoints":`,
			wantErr: "decode permissions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := permissions.Parse([]byte(tt.data))

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.True(t, data.FindPermissions("/v1/x", http.MethodGet).Allows(constant.RoleHost))
			assert.False(t, data.FindPermissions("/v1/x", http.MethodGet).Allows(constant.RoleGuest))
		})
	}
}

func TestPermission_Allows(t *testing.T) {
	open := permissions.Permission{}
	assert.True(t, open.Allows(constant.RoleGuest))
	assert.True(t, open.Allows(""))

	hostOnly := permissions.Permission{Permissions: []string{constant.RoleHost}}
	assert.True(t, hostOnly.Allows(constant.RoleHost))
	assert.False(t, hostOnly.Allows(constant.RoleAdmin))
}
