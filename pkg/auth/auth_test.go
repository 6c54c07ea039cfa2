package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestJWTValidator_ValidateToken(t *testing.T) {
	gen, err := NewJWTGenerator("secret", "lifelog", []string{DefaultAudience}, time.Hour)
	require.NoError(t, err)
	validator, err := NewJWTValidator(JWTConfig{
		SigningMethod: "HS256",
		SecretKey:     "secret",
		Issuer:        "lifelog",
		Audience:      []string{DefaultAudience},
	})
	require.NoError(t, err)

	token, err := gen.GenerateToken("user-1", "a@b.c", []string{"authenticated"})
	require.NoError(t, err)

	otherIssuer, _ := NewJWTGenerator("secret", "someone-else", []string{DefaultAudience}, time.Hour)
	wrongIssuer, _ := otherIssuer.GenerateToken("user-1", "", nil)
	otherKey, _ := NewJWTGenerator("other", "lifelog", []string{DefaultAudience}, time.Hour)
	wrongKey, _ := otherKey.GenerateToken("user-1", "", nil)
	expiredGen, _ := NewJWTGenerator("secret", "lifelog", []string{DefaultAudience}, -2*time.Minute)
	expired, _ := expiredGen.GenerateToken("user-1", "", nil)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "valid", token: token},
		{name: "valid with bearer prefix", token: "Bearer " + token},
		{name: "missing", token: "", wantErr: ErrMissingToken},
		{name: "wrong issuer", token: wrongIssuer, wantErr: ErrInvalidClaims},
		{name: "wrong key", token: wrongKey, wantErr: ErrInvalidSignature},
		{name: "expired", token: expired, wantErr: ErrExpiredToken},
		{name: "garbage", token: "not-a-token", wantErr: ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := validator.ValidateToken(tt.token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "user-1", claims.UserID)
			assert.Equal(t, []string{"authenticated"}, claims.Roles)
		})
	}
}

func TestNewJWTValidator_Errors(t *testing.T) {
	_, err := NewJWTValidator(JWTConfig{SigningMethod: "HS256"})
	assert.Error(t, err)

	_, err = NewJWTValidator(JWTConfig{SigningMethod: "ES512", SecretKey: "x"})
	assert.Error(t, err)

	_, err = NewJWTValidator(JWTConfig{SigningMethod: "RS256"})
	assert.Error(t, err)
}

func TestUserContext(t *testing.T) {
	_, err := GetUserFromContext(context.Background())
	assert.Error(t, err)

	ctx := SetUserInContext(context.Background(), &UserContext{UserID: "u"})
	user, err := GetUserFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u", user.UserID)
}

func TestSlidingWindowLimiter(t *testing.T) {
	// Arrange
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewSlidingWindowLimiter(2, time.Minute)
	limiter.now = func() time.Time { return now }
	ctx := context.Background()

	// Act & Assert
	ok, _ := limiter.Allow(ctx, "k")
	assert.True(t, ok)
	ok, _ = limiter.Allow(ctx, "k")
	assert.True(t, ok)
	ok, _ = limiter.Allow(ctx, "k")
	assert.False(t, ok)

	ok, _ = limiter.Allow(ctx, "other")
	assert.True(t, ok, "keys are independent")

	now = now.Add(61 * time.Second)
	ok, _ = limiter.Allow(ctx, "k")
	assert.True(t, ok, "window slides")

	require.NoError(t, limiter.Reset(ctx, "k"))
	ok, _ = limiter.Allow(ctx, "k")
	assert.True(t, ok)
}

type MockCounterAPI struct {
	mock.Mock
}

func (m *MockCounterAPI) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*dynamodb.UpdateItemOutput)
	return out, args.Error(1)
}

func (m *MockCounterAPI) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*dynamodb.DeleteItemOutput)
	return out, args.Error(1)
}

func TestDistributedRateLimiter_Allow(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 30, 0, time.UTC)

	tests := []struct {
		name      string
		out       *dynamodb.UpdateItemOutput
		err       error
		wantAllow bool
		wantErr   bool
	}{
		{
			name: "under limit",
			out: &dynamodb.UpdateItemOutput{Attributes: map[string]types.AttributeValue{
				"Count": &types.AttributeValueMemberN{Value: "3"},
			}},
			wantAllow: true,
		},
		{
			name:      "limit reached",
			err:       &types.ConditionalCheckFailedException{},
			wantAllow: false,
		},
		{
			name:      "storage error fails open",
			err:       errors.New("throttled"),
			wantAllow: true,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			api := new(MockCounterAPI)
			api.On("UpdateItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.UpdateItemInput) bool {
				pk := in.Key["PK"].(*types.AttributeValueMemberS).Value
				sk := in.Key["SK"].(*types.AttributeValueMemberS).Value
				return pk == "RATELIMIT#USER#u1" && sk == "WINDOW#1709294400"
			})).Return(tt.out, tt.err)
			limiter := NewDistributedUserRateLimiter(api, "lifelog", 5)
			limiter.now = func() time.Time { return now }

			// Act
			allowed, err := limiter.Allow(context.Background(), "u1")

			// Assert
			assert.Equal(t, tt.wantAllow, allowed)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			api.AssertExpectations(t)
		})
	}
}

func TestDistributedRateLimiter_NilClientAllows(t *testing.T) {
	limiter := NewDistributedIPRateLimiter(nil, "lifelog", 1)
	ok, err := limiter.Allow(context.Background(), "1.2.3.4")
	assert.True(t, ok)
	assert.NoError(t, err)
	assert.NoError(t, limiter.Reset(context.Background(), "1.2.3.4"))
}
