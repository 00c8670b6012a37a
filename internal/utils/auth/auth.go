package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/talx-hub/gopher-users/internal/model"
	"github.com/talx-hub/gopher-users/internal/serviceerrs"
)

const DefaultTokenExpire = 8 * 24 * time.Hour

type Claims struct {
	jwt.RegisteredClaims
	Scope string `json:"scope"`
}

// TokenData is the decoded content of an access token.
type TokenData struct {
	ExpiresAt time.Time
	ID        string
	Scopes    []string
	UserID    int64
}

func (d TokenData) HasScope(scope string) bool {
	for _, s := range d.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

func CreateAccessToken(data TokenData, secret []byte, expiresIn time.Duration,
) (string, error) {
	if expiresIn <= 0 {
		expiresIn = DefaultTokenExpire
	}
	id := data.ID
	if id == "" {
		id = uuid.NewString()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256,
		Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   strconv.FormatInt(data.UserID, 10),
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
				IssuedAt:  jwt.NewNumericDate(time.Now()),
				ID:        id,
			},
			Scope: strings.Join(data.Scopes, " "),
		},
	)
	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("JWT signing: %w", err)
	}
	return tokenString, nil
}

func DecodeAccessToken(tokenString string, secret []byte) (TokenData, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(
		tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			return secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return TokenData{}, serviceerrs.ErrTokenExpired
		}
		return TokenData{}, fmt.Errorf("failed to parse token: %w: %w",
			serviceerrs.ErrInvalidToken, err)
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return TokenData{}, fmt.Errorf("bad subject %q: %w",
			claims.Subject, serviceerrs.ErrInvalidToken)
	}

	return TokenData{
		UserID:    userID,
		Scopes:    strings.Fields(claims.Scope),
		ID:        claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, error) {
	header := r.Header.Get(model.HeaderAuthorization)
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", serviceerrs.ErrNoToken
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", serviceerrs.ErrNoToken
	}
	return token, nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// DummyHash is a valid hash of a random password. Checking against it when
// the user is missing keeps login timing independent of the account existing.
var DummyHash = sync.OnceValue(func() string {
	hash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		panic(fmt.Sprintf("failed to hash dummy password: %v", err))
	}
	return string(hash)
})

func VerifyPassword(plainPassword, hashedPassword string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword))
	return err == nil
}
