package jwt

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	jwtgo "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func generateKeys(t *testing.T) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	assert.NoError(t, err)

	privateKey = key
	publicKey = &key.PublicKey
}

func TestSignAndValidUserID(t *testing.T) {
	generateKeys(t)
	a := assert.New(t)

	signed, err := Sign("user-1")
	a.NoError(err)
	a.NotEmpty(signed)

	userID, err := ValidUserID(signed)
	a.NoError(err)
	a.Equal("user-1", userID)
}

func TestValidUserID_badIssuer(t *testing.T) {
	generateKeys(t)
	a := assert.New(t)

	token := jwtgo.NewWithClaims(jwtgo.SigningMethodRS256, jwtgo.RegisteredClaims{
		Audience: jwtgo.ClaimStrings{Audience},
		IssuedAt: jwtgo.NewNumericDate(time.Now()),
		Issuer:   "someone-else",
		Subject:  "user-1",
	})

	signed, err := token.SignedString(privateKey)
	a.NoError(err)

	_, err = ValidUserID(signed)
	a.EqualError(err, "invalid issuer")
}

func TestValidUserID_garbage(t *testing.T) {
	generateKeys(t)

	_, err := ValidUserID("not-a-token")
	assert.Error(t, err)
}
