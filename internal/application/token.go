package application

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// MintAPIToken signs the administrative API token the service will later
// trust. The claim set is exactly {sub, iss, aud} under HS256 with the shared
// secret; the service's verifier accepts nothing else, and the token carries
// no expiry on purpose. It is never validated by calling the service.
func MintAPIToken(ownerID, issuer, audience, secret string) (string, error) {
	claims := jwt.MapClaims{
		"sub": ownerID,
		"iss": issuer,
		"aud": audience,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign api token for user %q: %w", ownerID, err)
	}
	return token, nil
}
