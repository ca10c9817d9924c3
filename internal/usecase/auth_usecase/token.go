package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"restaurant/internal/domain/model"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

// アクセストークンのclaims
type AccessClaims struct {
	Role         string `json:"role"`
	TokenVersion int    `json:"tv"`
	jwt.RegisteredClaims
}

// 検証済みトークンから取り出した値
type Principal struct {
	UserID       int64
	Role         model.Role
	TokenVersion int
}

// HS256でJWTを発行・検証する
type JWTIssuer struct {
	secret    []byte
	issuer    string
	audience  string
	accessTTL time.Duration
}

func NewJWTIssuer(secret string, issuer string, audience string, accessTTL time.Duration) *JWTIssuer {
	return &JWTIssuer{
		secret:    []byte(secret),
		issuer:    issuer,
		audience:  audience,
		accessTTL: accessTTL,
	}
}

// jtiはuuid
func (i *JWTIssuer) Issue(user model.User, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := AccessClaims{
		Role:         string(user.Role),
		TokenVersion: user.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(user.ID, 10),
			Issuer:    i.issuer,
			Audience:  jwt.ClaimStrings{i.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Parse は署名・期限・iss・audを確認してPrincipalを返す
func (i *JWTIssuer) Parse(raw string) (Principal, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil || token == nil || !token.Valid {
		return Principal{}, ErrInvalidToken
	}

	if !claims.VerifyIssuer(i.issuer, true) || !claims.VerifyAudience(i.audience, true) {
		return Principal{}, ErrInvalidToken
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return Principal{}, ErrInvalidToken
	}
	role := model.Role(claims.Role)
	if !role.Valid() || claims.TokenVersion < 0 {
		return Principal{}, ErrInvalidToken
	}

	return Principal{UserID: userID, Role: role, TokenVersion: claims.TokenVersion}, nil
}

func (i *JWTIssuer) AccessTTL() time.Duration {
	return i.accessTTL
}

// 現在の時間
type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}
