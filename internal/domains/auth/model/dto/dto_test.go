package dto_test

import (
	"roombook/infras/jwt"
	"roombook/internal/domains/auth/model/dto"
	userModel "roombook/internal/domains/user/model"
	"roombook/shared"
	"roombook/shared/constant"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoginResponse_FromTokenPair(t *testing.T) {
	tokenPair := &jwt.TokenPair{
		AccessToken:  "test-access-token",
		RefreshToken: "test-refresh-token",
		TokenType:    "Bearer",
		ExpiresIn:    900,
	}

	var response dto.LoginResponse
	response.FromTokenPair(tokenPair)
	response.FromUser(userModel.User{ID: "u-1", Username: "alice", Email: "alice@example.com", Role: "customer", Password: "hash"})

	assert.Equal(t, tokenPair.AccessToken, response.AccessToken)
	assert.Equal(t, tokenPair.RefreshToken, response.RefreshToken)
	assert.Equal(t, "Bearer", response.TokenType)
	assert.Equal(t, dto.LoginUser{ID: "u-1", Username: "alice", Email: "alice@example.com", Role: "customer"}, response.User)
}

func TestRefreshTokenResponse_FromTokenPair(t *testing.T) {
	tokenPair := &jwt.TokenPair{
		AccessToken:  "new-access-token",
		RefreshToken: "new-refresh-token",
	}

	var response dto.RefreshTokenResponse
	response.FromTokenPair(tokenPair)

	assert.Equal(t, tokenPair.AccessToken, response.AccessToken)
	assert.Equal(t, tokenPair.RefreshToken, response.RefreshToken)
}

func TestRegisterRequest_ToUserModel(t *testing.T) {
	req := dto.RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "secret"}

	user := req.ToUserModel("customer", "hashed")

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "hashed", user.Password)
	assert.Equal(t, "customer", user.Role)
	assert.Equal(t, user.ID, user.CreatedBy)
}

func TestUpdatePasswordRequest_Fields(t *testing.T) {
	fields := shared.TransformFields(dto.UpdatePasswordRequest{Password: "hashed"}, "u-1")

	assert.Equal(t, "hashed", fields["password"])
	assert.Equal(t, "u-1", fields[constant.FieldModifiedBy])
	assert.Contains(t, fields, constant.FieldModifiedAt)
}
