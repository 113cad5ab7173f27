package auth

import (
	"crypto/rsa"
	"errors"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Validator checks tokens issued by the auth service. RS256 verifies against
// the issuer's public key; HS256 against a shared secret.
type Validator struct {
	alg    string
	pub    *rsa.PublicKey
	secret []byte
}

func NewValidator(alg, publicKeyPath, hsSecret string) (*Validator, error) {
	switch strings.ToUpper(alg) {
	case "RS256":
		b, err := os.ReadFile(publicKeyPath)
		if err != nil {
			return nil, err
		}
		pub, err := jwt.ParseRSAPublicKeyFromPEM(b)
		if err != nil {
			return nil, err
		}
		return &Validator{alg: "RS256", pub: pub}, nil
	case "HS256":
		if hsSecret == "" {
			return nil, errors.New("hs secret required")
		}
		return &Validator{alg: "HS256", secret: []byte(hsSecret)}, nil
	default:
		return nil, errors.New("unsupported jwt alg")
	}
}

// Validate returns the authenticated user id carried in the token.
func (v *Validator) Validate(tokenStr string) (string, error) {
	tok, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if v.alg == "RS256" {
			return v.pub, nil
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{v.alg}))
	if err != nil {
		return "", err
	}
	if claims, ok := tok.Claims.(jwt.MapClaims); ok && tok.Valid {
		if sub, ok := claims["sub"].(string); ok && sub != "" {
			return sub, nil
		}
		if userID, ok := claims["user_id"].(string); ok && userID != "" {
			return userID, nil
		}
	}
	return "", errors.New("invalid token")
}
