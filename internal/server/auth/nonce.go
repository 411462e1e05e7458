package auth

import (
	"strconv"
	"time"

	"github.com/dmitrijs2005/featureimage/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const nonceAudience = "nonce"

// NonceClaims binds a nonce to an action name and, through Subject, to a viewer.
type NonceClaims struct {
	jwt.RegisteredClaims
	Action string `json:"act"`
}

// Nonces issues and verifies action nonces. Each Create call yields a new
// token (random jti); Verify accepts a token any number of times until it
// expires.
type Nonces struct {
	secret   []byte
	validity time.Duration
}

func NewNonces(secret []byte, validity time.Duration) *Nonces {
	return &Nonces{secret: secret, validity: validity}
}

// Create returns a nonce for action bound to userID (0 for anonymous viewers).
func (n *Nonces) Create(action string, userID int64) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, NonceClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(userID, 10),
			Audience:  jwt.ClaimStrings{nonceAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(n.validity)),
		},
		Action: action,
	})
	return token.SignedString(n.secret)
}

// Verify checks that token was issued by Create for the same action and viewer.
func (n *Nonces) Verify(token, action string, userID int64) error {
	if token == "" {
		return common.ErrInvalidToken
	}

	claims := &NonceClaims{}
	if err := parse(token, claims, n.secret, nonceAudience); err != nil {
		return err
	}

	if claims.Action != action || claims.Subject != strconv.FormatInt(userID, 10) {
		return common.ErrInvalidToken
	}
	return nil
}
