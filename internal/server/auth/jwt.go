// Package auth issues and validates the HS256 bearer tokens handed to panel
// clients at login.
package auth

import (
	"errors"
	"time"

	"github.com/dkarlovs/tacpanel/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims extends the registered claim set with the panel user identity.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string
	Username string
}

// GenerateToken mints a signed token for the given user. Token expiry equals
// the negotiated session timeout, so a JWT outliving the client-side session
// record is impossible.
func GenerateToken(userID, username string, secretKey []byte, validityDuration time.Duration) (string, error) {
	jti, err := common.MakeRandHexString(8)
	if err != nil {
		return "", err
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		UserID:   userID,
		Username: username,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken validates a token string and returns its claims. An expired
// token yields common.ErrTokenExpired; any other validation failure yields
// common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
