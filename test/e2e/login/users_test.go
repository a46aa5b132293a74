package login_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUsersPersistAcrossLogins(t *testing.T) {
	client, _ := setupLoginService(t, "api")

	first := login(t, client, 6001)
	require.Empty(t, first.Warnings)
	login(t, client, 6002)
	login(t, client, 6001)

	users, err := client.ListUsers(t.Context())
	require.NoError(t, err)

	var ids []int64
	for _, u := range users.Users {
		if u.ID == 6001 || u.ID == 6002 {
			ids = append(ids, u.ID)
		}
	}
	require.Equal(t, []int64{6001, 6002}, ids, "most recent login first")

	got, err := client.GetUser(t.Context(), 6001)
	require.NoError(t, err)
	require.True(t, got.User.LastLogin.After(got.User.CreatedAt))
}

func TestDeleteUser(t *testing.T) {
	client, _ := setupLoginService(t, "api")
	login(t, client, 6101)

	_, err := client.DeleteUser(t.Context(), 6101)
	require.NoError(t, err)

	_, err = client.GetUser(t.Context(), 6101)
	assertStatus(t, err, http.StatusNotFound)

	_, err = client.DeleteUser(t.Context(), 6101)
	assertStatus(t, err, http.StatusNotFound)

	// The session survives removal of the stored row.
	me, err := client.CurrentUser(t.Context())
	require.NoError(t, err)
	require.Equal(t, int64(6101), me.User.ID)
}
