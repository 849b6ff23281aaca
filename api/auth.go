package api

import (
	"fmt"
	"net/http"
	"time"

	"gambler/challenge-service/domain/entities"

	"github.com/go-chi/jwtauth"
	"github.com/google/uuid"
)

const tokenTTL = 7 * 24 * time.Hour

// NewTokenAuth builds the HS256 signer and verifier for account tokens
func NewTokenAuth(secret string) *jwtauth.JWTAuth {
	return jwtauth.New("HS256", []byte(secret), nil)
}

// IssueToken signs a token whose subject is the account ID
func IssueToken(tokenAuth *jwtauth.JWTAuth, accountID uuid.UUID, now time.Time) (string, error) {
	_, tokenString, err := tokenAuth.Encode(map[string]interface{}{
		"sub": accountID.String(),
		"iat": now.Unix(),
		"exp": now.Add(tokenTTL).Unix(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// currentUserID returns the account ID carried by the verified token
func currentUserID(r *http.Request) (uuid.UUID, error) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", errUnauthorized, err)
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: token has no subject", errUnauthorized)
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: subject is not an account id", errUnauthorized)
	}
	return id, nil
}

// pathUUID parses a uuid URL parameter
func pathUUID(value, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s must be a uuid", entities.ErrInvalidInput, name)
	}
	return id, nil
}
