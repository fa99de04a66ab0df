package auth

import (
	"strings"
	"time"

	"VidTube.com/pkg/errno"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TokenClaims access token 的声明
type TokenClaims struct {
	ID       string `json:"_id"`
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

// TokenResolver 校验 HS256 access token 并解析出当前用户
type TokenResolver struct {
	secret []byte
	issuer string
}

func NewTokenResolver(secret, issuer string) *TokenResolver {
	return &TokenResolver{secret: []byte(secret), issuer: issuer}
}

// Sign 签发 access token
func (r *TokenResolver) Sign(userID primitive.ObjectID, username string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		ID:       userID.Hex(),
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    r.issuer,
			Subject:   userID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(r.secret)
}

// Resolve 校验 token 并返回 Principal; 任何失败都视为未认证
func (r *TokenResolver) Resolve(token string) (*Principal, error) {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return nil, errno.UnauthenticatedErr
	}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if r.issuer != "" {
		opts = append(opts, jwt.WithIssuer(r.issuer))
	}
	claims := &TokenClaims{}
	if _, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return r.secret, nil
	}, opts...); err != nil {
		return nil, errno.UnauthenticatedErr.WithMessage("Invalid access token")
	}
	id, err := primitive.ObjectIDFromHex(claims.ID)
	if err != nil {
		return nil, errno.UnauthenticatedErr.WithMessage("Invalid access token")
	}
	return NewPrincipal(id), nil
}
