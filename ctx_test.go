package identity

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestFromContext(t *testing.T) {
	tests := []struct {
		name     string
		setupCtx func() context.Context
		wantOK   bool
	}{
		{
			name: "should return account when present in context",
			setupCtx: func() context.Context {
				account := &Account{ID: uuid.New(), Email: "test@example.com"}
				return WithContext(context.Background(), account)
			},
			wantOK: true,
		},
		{
			name: "should return false when no account in context",
			setupCtx: func() context.Context {
				return context.Background()
			},
			wantOK: false,
		},
		{
			name: "should return false when context has wrong type",
			setupCtx: func() context.Context {
				return context.WithValue(context.Background(), accountCtxKey, "not-an-account")
			},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotAccount, gotOK := FromContext(tt.setupCtx())

			assert.Equal(t, tt.wantOK, gotOK)
			if tt.wantOK {
				assert.NotNil(t, gotAccount)
			} else {
				assert.Nil(t, gotAccount)
			}
		})
	}
}

func TestGetClaims(t *testing.T) {
	tests := []struct {
		name     string
		setupCtx func() context.Context
		wantOK   bool
	}{
		{
			name: "should return claims when present in context",
			setupCtx: func() context.Context {
				claims := &SessionClaims{
					RegisteredClaims: jwt.RegisteredClaims{
						Subject: "account-123",
					},
					AID: "account-123",
				}
				return WithClaimsContext(context.Background(), claims)
			},
			wantOK: true,
		},
		{
			name: "should return false when no claims in context",
			setupCtx: func() context.Context {
				return context.Background()
			},
			wantOK: false,
		},
		{
			name: "should return false when context has wrong type",
			setupCtx: func() context.Context {
				return context.WithValue(context.Background(), claimsCtxKey, "not-a-claims-object")
			},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotClaims, gotOK := GetClaims(tt.setupCtx())

			assert.Equal(t, tt.wantOK, gotOK)
			if gotOK {
				assert.Equal(t, "account-123", gotClaims.AccountID())
			}
		})
	}
}
