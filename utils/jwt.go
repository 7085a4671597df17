package utils

import (
	"errors"
	"fmt"
	"time"

	"skillbridge/models"

	"github.com/golang-jwt/jwt"
)

// ErrEmptySigningKey is returned when a token would be signed or verified without a key.
var ErrEmptySigningKey = errors.New("jwt signing key is empty")

// ActorClaims is the identity a caller presents. Tokens are issued elsewhere.
type ActorClaims struct {
	Name string      `json:"name"`
	Role models.Role `json:"role"`
	jwt.StandardClaims
}

// GenerateActorToken signs an HS256 token for actor. Used by tests and local tooling.
func GenerateActorToken(secret []byte, actor models.Actor, duration time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", ErrEmptySigningKey
	}
	now := time.Now()
	claims := ActorClaims{
		Name: actor.Name,
		Role: actor.Role,
		StandardClaims: jwt.StandardClaims{
			Subject:   actor.ID,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(duration).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseActorToken validates tokenString and returns the actor it names.
// Only provider and buyer roles are accepted; admins use the admin token.
func ParseActorToken(secret []byte, tokenString string) (models.Actor, error) {
	if len(secret) == 0 {
		return models.Actor{}, ErrEmptySigningKey
	}
	var claims ActorClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return models.Actor{}, err
	}
	if !token.Valid {
		return models.Actor{}, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return models.Actor{}, errors.New("token does not contain a valid 'sub' claim")
	}
	if claims.Role != models.RoleProvider && claims.Role != models.RoleBuyer {
		return models.Actor{}, fmt.Errorf("token role %q is not allowed", claims.Role)
	}
	return models.Actor{ID: claims.Subject, Name: claims.Name, Role: claims.Role}, nil
}
