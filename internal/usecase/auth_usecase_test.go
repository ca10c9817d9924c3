package usecase_test

import (
	"context"
	"testing"

	"restaurant/internal/domain/model"
	"restaurant/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func register(t *testing.T, env *testEnv, userName string, email string) usecase.UserDTO {
	t.Helper()
	u, err := env.auth.Register(context.Background(), usecase.AuthRegisterRequest{
		UserName: userName, Email: email, Password: "password1", FullName: "Test User",
	})
	require.NoError(t, err)
	return u
}

func TestAuthUsecase_RegisterAndLogin(t *testing.T) {
	env := newEnv(t, false)
	ctx := context.Background()

	u := register(t, env, "alice", "alice@example.com")
	assert.Equal(t, []string{string(model.RoleCustomer)}, u.Roles)
	assert.True(t, u.IsActive)

	//email
	res, err := env.auth.Login(ctx, usecase.AuthLoginRequest{EmailOrUserName: "alice@example.com", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", res.TokenType)
	assert.Equal(t, 3600, res.ExpiresIn)

	p, err := env.issuer.Parse(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, p.UserID)
	assert.Equal(t, model.RoleCustomer, p.Role)

	//user_name
	_, err = env.auth.Login(ctx, usecase.AuthLoginRequest{EmailOrUserName: "alice", Password: "password1"})
	require.NoError(t, err)

	_, err = env.auth.Login(ctx, usecase.AuthLoginRequest{EmailOrUserName: "alice", Password: "wrong-pass"})
	assertKind(t, err, usecase.KindUnauthorized)

	_, err = env.auth.Login(ctx, usecase.AuthLoginRequest{EmailOrUserName: "nobody@example.com", Password: "password1"})
	assertKind(t, err, usecase.KindUnauthorized)

	me, err := env.auth.Me(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, me.LastLoginAt)
}

func TestAuthUsecase_Register_Rejects(t *testing.T) {
	env := newEnv(t, false)
	ctx := context.Background()

	register(t, env, "bob", "bob@example.com")

	_, err := env.auth.Register(ctx, usecase.AuthRegisterRequest{UserName: "bob2", Email: "bob@example.com", Password: "password1"})
	assertKind(t, err, usecase.KindConflict)

	_, err = env.auth.Register(ctx, usecase.AuthRegisterRequest{UserName: "bob", Email: "other@example.com", Password: "password1"})
	assertKind(t, err, usecase.KindConflict)

	_, err = env.auth.Register(ctx, usecase.AuthRegisterRequest{UserName: "carl", Email: "carl@example.com", Password: "123"})
	assertKind(t, err, usecase.KindValidation)

	_, err = env.auth.Register(ctx, usecase.AuthRegisterRequest{UserName: "carl", Email: "not-an-email", Password: "password1"})
	assertKind(t, err, usecase.KindValidation)
}

func TestAuthUsecase_ChangePassword(t *testing.T) {
	env := newEnv(t, false)
	ctx := context.Background()

	u := register(t, env, "dana", "dana@example.com")

	_, err := env.auth.ChangePassword(ctx, u.ID, usecase.ChangePasswordRequest{CurrentPassword: "bad-pass", NewPassword: "password2"})
	assertKind(t, err, usecase.KindValidation)

	res, err := env.auth.ChangePassword(ctx, u.ID, usecase.ChangePasswordRequest{CurrentPassword: "password1", NewPassword: "password2"})
	require.NoError(t, err)
	assert.Equal(t, "password changed", res.Message)

	_, err = env.auth.Login(ctx, usecase.AuthLoginRequest{EmailOrUserName: "dana", Password: "password1"})
	assertKind(t, err, usecase.KindUnauthorized)
	_, err = env.auth.Login(ctx, usecase.AuthLoginRequest{EmailOrUserName: "dana", Password: "password2"})
	require.NoError(t, err)

	_, err = env.auth.ChangePassword(ctx, 0, usecase.ChangePasswordRequest{CurrentPassword: "x", NewPassword: "password3"})
	assertKind(t, err, usecase.KindUnauthorized)
}

func TestAuthUsecase_ForceLogout(t *testing.T) {
	env := newEnv(t, false)
	ctx := context.Background()

	u := register(t, env, "erin", "erin@example.com")
	res, err := env.auth.Login(ctx, usecase.AuthLoginRequest{EmailOrUserName: "erin", Password: "password1"})
	require.NoError(t, err)
	p, err := env.issuer.Parse(res.AccessToken)
	require.NoError(t, err)

	out, err := env.auth.ForceLogout(ctx, 1, u.ID)
	require.NoError(t, err)
	assert.Equal(t, p.TokenVersion+1, out.NewTokenVersion)

	logs, err := env.audit.List(ctx, usecase.ListAuditLogsInput{Action: "force_logout"})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, u.ID, logs[0].ResourceID)
	assert.JSONEq(t, `{"token_version":0}`, logs[0].BeforeJSON)
	assert.JSONEq(t, `{"token_version":1}`, logs[0].AfterJSON)

	_, err = env.auth.ForceLogout(ctx, 1, 9999)
	assertKind(t, err, usecase.KindNotFound)
}

func TestAuthUsecase_EnsureAdmin(t *testing.T) {
	env := newEnv(t, false)
	ctx := context.Background()

	//未設定なら何もしない
	require.NoError(t, env.auth.EnsureAdmin(ctx, "", ""))

	require.NoError(t, env.auth.EnsureAdmin(ctx, "root@example.com", "rootpass"))
	res, err := env.auth.Login(ctx, usecase.AuthLoginRequest{EmailOrUserName: "root", Password: "rootpass"})
	require.NoError(t, err)
	assert.Equal(t, []string{string(model.RoleAdmin)}, res.Roles)

	//既存ユーザーは昇格
	u := register(t, env, "frank", "frank@example.com")
	require.NoError(t, env.auth.EnsureAdmin(ctx, "frank@example.com", "ignored"))
	me, err := env.auth.Me(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{string(model.RoleAdmin)}, me.Roles)

	//二回目は何も変わらない
	require.NoError(t, env.auth.EnsureAdmin(ctx, "root@example.com", "rootpass"))
}
