package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carried by a session token: sub is the user id, jti the session id.
type Claims struct {
	jwt.RegisteredClaims
}

// SignToken creates a compact HS256 JWT bound to the given session.
func SignToken(session Session, secret []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.UserID,
			ID:        session.ID,
			IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	})
	return token.SignedString(secret)
}

// ParseToken verifies the signature and, unless allowExpired is set, the
// time-based claims. It returns the embedded claims.
func ParseToken(tokenString string, secret []byte, allowExpired bool) (Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if allowExpired {
		opts = append(opts, jwt.WithoutClaimsValidation())
	} else {
		opts = append(opts, jwt.WithExpirationRequired(), jwt.WithLeeway(5*time.Second))
	}

	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	}, opts...)
	if err != nil {
		return Claims{}, err
	}
	if !token.Valid {
		return Claims{}, errors.New("invalid token")
	}
	if claims.Subject == "" || claims.ID == "" {
		return Claims{}, errors.New("token missing subject or id")
	}
	return claims, nil
}
