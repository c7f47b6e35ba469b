package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	subjectAccess       = "access"
	subjectTelegramLink = "telegram_link"

	// LinkTokenTTL ограничивает время жизни ссылки /start <token>
	LinkTokenTTL = 15 * time.Minute
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Claims carry the authenticated user. Identity itself is owned by the
// campus identity provider, we only verify what it signed.
type Claims struct {
	UserID int64 `json:"user_id,string"`
	jwt.RegisteredClaims
}

// Authenticator issues and validates HS256 tokens
type Authenticator struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewAuthenticator(secret, issuer string) *Authenticator {
	return &Authenticator{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}
}

// IssueAccessToken подписывает access токен пользователя
func (a *Authenticator) IssueAccessToken(userID int64, ttl time.Duration) (string, error) {
	return a.issue(userID, subjectAccess, ttl)
}

// IssueLinkToken подписывает короткоживущий токен для привязки Telegram
func (a *Authenticator) IssueLinkToken(userID int64) (string, error) {
	return a.issue(userID, subjectTelegramLink, LinkTokenTTL)
}

// ValidateAccessToken returns the user id of a valid access token
func (a *Authenticator) ValidateAccessToken(token string) (int64, error) {
	return a.validate(token, subjectAccess)
}

// ValidateLinkToken returns the user id of a valid Telegram link token
func (a *Authenticator) ValidateLinkToken(token string) (int64, error) {
	return a.validate(token, subjectTelegramLink)
}

func (a *Authenticator) issue(userID int64, subject string, ttl time.Duration) (string, error) {
	now := a.now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        strconv.FormatInt(now.UnixNano(), 36),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (a *Authenticator) validate(tokenString, subject string) (int64, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	},
		jwt.WithIssuer(a.issuer),
		jwt.WithSubject(subject),
		jwt.WithTimeFunc(a.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID <= 0 {
		return 0, ErrInvalidToken
	}
	return claims.UserID, nil
}
