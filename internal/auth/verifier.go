package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates HS256 bearer tokens.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a verifier for tokens signed with secret.
func NewVerifier(secret string) (*Verifier, error) {
	if secret == "" {
		return nil, fmt.Errorf("HS256 requires secret key")
	}
	return &Verifier{secret: []byte(secret)}, nil
}

// VerifyToken verifies the token signature and expiry and extracts its claims.
func (v *Verifier) VerifyToken(tokenString string) (*Claims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, fmt.Errorf("token cannot be empty")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	return extractClaims(claims)
}

func extractClaims(claims jwt.MapClaims) (*Claims, error) {
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, fmt.Errorf("missing or invalid 'sub' claim")
	}

	scopes, err := extractScopes(claims)
	if err != nil {
		return nil, err
	}
	for _, scope := range scopes {
		if scope != ScopeRead && scope != ScopeControl {
			return nil, fmt.Errorf("invalid scope: %s", scope)
		}
	}

	return &Claims{Subject: sub, Scopes: scopes}, nil
}

// extractScopes accepts either a "scopes" array or an OAuth style
// space-delimited "scope" string.
func extractScopes(claims jwt.MapClaims) ([]string, error) {
	if value, ok := claims["scopes"]; ok {
		list, ok := value.([]interface{})
		if !ok {
			return nil, errors.New("invalid scopes claim: not a string array")
		}
		scopes := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, errors.New("invalid scopes claim: not a string")
			}
			scopes = append(scopes, s)
		}
		if len(scopes) == 0 {
			return nil, errors.New("empty scopes claim")
		}
		return scopes, nil
	}

	if value, ok := claims["scope"]; ok {
		s, ok := value.(string)
		if !ok || strings.TrimSpace(s) == "" {
			return nil, errors.New("invalid scope claim")
		}
		return strings.Fields(s), nil
	}

	return nil, errors.New("missing scope claim")
}

// IssueToken signs an HS256 token for subject with the given scopes. A zero
// ttl issues a token without expiry.
func IssueToken(secret, subject string, scopes []string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("HS256 requires secret key")
	}
	if subject == "" {
		return "", fmt.Errorf("subject is required")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":    subject,
		"scopes": scopes,
		"iat":    now.Unix(),
	}
	if ttl > 0 {
		claims["exp"] = now.Add(ttl).Unix()
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
