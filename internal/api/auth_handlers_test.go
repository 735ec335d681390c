package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignup_Success(t *testing.T) {
	server := setupTestServer(t)

	w := doJSON(t, server, http.MethodPost, "/api/auth/signup", "", SignupRequest{
		Email:       "reader@example.com",
		Password:    "correct-horse-battery",
		DisplayName: "Avid Reader",
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())

	env := decodeEnvelope[AuthResponse](t, w)
	assert.True(t, env.Success)
	assert.Equal(t, "reader@example.com", env.Data.User.Email)
	assert.Equal(t, "Avid Reader", env.Data.User.DisplayName)
	assert.NotEmpty(t, env.Data.User.ID)
	assert.NotEmpty(t, env.Data.Tokens.AccessToken)
	assert.NotEmpty(t, env.Data.Tokens.RefreshToken)
	assert.Equal(t, "Bearer", env.Data.Tokens.TokenType)
	assert.NotEmpty(t, env.Data.Tokens.SessionID)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	server := setupTestServer(t)
	signupUser(t, server, "reader@example.com", "Avid Reader")

	w := doJSON(t, server, http.MethodPost, "/api/auth/signup", "", SignupRequest{
		Email:       "Reader@Example.COM",
		Password:    "another-password-here",
		DisplayName: "Impostor",
	})
	require.Equal(t, http.StatusConflict, w.Code)

	env := decodeEnvelope[struct{}](t, w)
	assert.False(t, env.Success)
	assert.Equal(t, "ALREADY_EXISTS", env.Code)
}

func TestSignup_ShortPassword(t *testing.T) {
	server := setupTestServer(t)

	w := doJSON(t, server, http.MethodPost, "/api/auth/signup", "", SignupRequest{
		Email:       "reader@example.com",
		Password:    "short",
		DisplayName: "Avid Reader",
	})
	require.GreaterOrEqual(t, w.Code, 400)
	require.Less(t, w.Code, 500)

	env := decodeEnvelope[struct{}](t, w)
	assert.False(t, env.Success)
}

func TestLogin_Success(t *testing.T) {
	server := setupTestServer(t)
	signupUser(t, server, "reader@example.com", "Avid Reader")

	w := doJSON(t, server, http.MethodPost, "/api/auth/login", "", LoginRequest{
		Email:    "reader@example.com",
		Password: "correct-horse-battery",
	})
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	env := decodeEnvelope[AuthResponse](t, w)
	assert.True(t, env.Success)
	assert.Equal(t, "reader@example.com", env.Data.User.Email)
	assert.NotEmpty(t, env.Data.Tokens.AccessToken)
}

func TestLogin_WrongPassword(t *testing.T) {
	server := setupTestServer(t)
	signupUser(t, server, "reader@example.com", "Avid Reader")

	w := doJSON(t, server, http.MethodPost, "/api/auth/login", "", LoginRequest{
		Email:    "reader@example.com",
		Password: "not-the-password",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	env := decodeEnvelope[struct{}](t, w)
	assert.False(t, env.Success)
	assert.Equal(t, "INVALID_CREDENTIALS", env.Code)
}

func TestLogin_UnknownEmail(t *testing.T) {
	server := setupTestServer(t)

	w := doJSON(t, server, http.MethodPost, "/api/auth/login", "", LoginRequest{
		Email:    "ghost@example.com",
		Password: "whatever-password",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Same code as a wrong password so the response doesn't reveal
	// whether the account exists.
	env := decodeEnvelope[struct{}](t, w)
	assert.Equal(t, "INVALID_CREDENTIALS", env.Code)
}

func TestRefresh_RotatesToken(t *testing.T) {
	server := setupTestServer(t)

	w := doJSON(t, server, http.MethodPost, "/api/auth/signup", "", SignupRequest{
		Email:       "reader@example.com",
		Password:    "correct-horse-battery",
		DisplayName: "Avid Reader",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	signup := decodeEnvelope[AuthResponse](t, w)
	oldRefresh := signup.Data.Tokens.RefreshToken

	w = doJSON(t, server, http.MethodPost, "/api/auth/refresh", "", RefreshRequest{
		RefreshToken: oldRefresh,
	})
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	refreshed := decodeEnvelope[AuthResponse](t, w)
	assert.True(t, refreshed.Success)
	assert.NotEqual(t, oldRefresh, refreshed.Data.Tokens.RefreshToken)
	assert.Equal(t, signup.Data.Tokens.SessionID, refreshed.Data.Tokens.SessionID)

	// The old refresh token is dead after rotation.
	w = doJSON(t, server, http.MethodPost, "/api/auth/refresh", "", RefreshRequest{
		RefreshToken: oldRefresh,
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	env := decodeEnvelope[struct{}](t, w)
	assert.Equal(t, "TOKEN_EXPIRED", env.Code)
}

func TestMe(t *testing.T) {
	server := setupTestServer(t)
	token, userID := signupUser(t, server, "reader@example.com", "Avid Reader")

	w := doJSON(t, server, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope[MeResponse](t, w)
	assert.True(t, env.Success)
	assert.Equal(t, userID, env.Data.User.ID)
	assert.Equal(t, "Avid Reader", env.Data.User.DisplayName)
}

func TestMe_RequiresAuth(t *testing.T) {
	server := setupTestServer(t)

	w := doJSON(t, server, http.MethodGet, "/api/auth/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	env := decodeEnvelope[struct{}](t, w)
	assert.False(t, env.Success)
	assert.Equal(t, "UNAUTHORIZED", env.Code)
}

func TestMe_GarbageToken(t *testing.T) {
	server := setupTestServer(t)

	w := doJSON(t, server, http.MethodGet, "/api/auth/me", "not-a-real-token", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogout(t *testing.T) {
	server := setupTestServer(t)

	w := doJSON(t, server, http.MethodPost, "/api/auth/signup", "", SignupRequest{
		Email:       "reader@example.com",
		Password:    "correct-horse-battery",
		DisplayName: "Avid Reader",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	signup := decodeEnvelope[AuthResponse](t, w)
	token := signup.Data.Tokens.AccessToken
	sessionID := signup.Data.Tokens.SessionID

	w = doJSON(t, server, http.MethodPost, "/api/auth/logout", token, LogoutRequest{
		SessionID: sessionID,
	})
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	// The session's refresh token no longer works.
	w = doJSON(t, server, http.MethodPost, "/api/auth/refresh", "", RefreshRequest{
		RefreshToken: signup.Data.Tokens.RefreshToken,
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogout_OtherUsersSession(t *testing.T) {
	server := setupTestServer(t)

	w := doJSON(t, server, http.MethodPost, "/api/auth/signup", "", SignupRequest{
		Email:       "owner@example.com",
		Password:    "correct-horse-battery",
		DisplayName: "Session Owner",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	owner := decodeEnvelope[AuthResponse](t, w)

	intruderToken, _ := signupUser(t, server, "intruder@example.com", "Intruder")

	w = doJSON(t, server, http.MethodPost, "/api/auth/logout", intruderToken, LogoutRequest{
		SessionID: owner.Data.Tokens.SessionID,
	})
	require.Equal(t, http.StatusForbidden, w.Code)

	env := decodeEnvelope[struct{}](t, w)
	assert.Equal(t, "FORBIDDEN", env.Code)
}
