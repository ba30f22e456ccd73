package service

import (
	"errors"
	"time"

	"github.com/akiranaka1984/affiliate/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

// AuthService 推广用户令牌服务
type AuthService struct {
	cfg *config.Config
}

// NewAuthService 创建令牌服务
func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{cfg: cfg}
}

// AffiliateJWTClaims 推广用户 JWT 声明
type AffiliateJWTClaims struct {
	AffiliateUserID uint `json:"affiliate_user_id"`
	jwt.RegisteredClaims
}

// GenerateJWT 签发推广用户 JWT Token
func (s *AuthService) GenerateJWT(affiliateUserID uint) (string, time.Time, error) {
	expireHours := s.cfg.JWT.ExpireHours
	if expireHours <= 0 {
		expireHours = 24
	}
	expiresAt := time.Now().Add(time.Duration(expireHours) * time.Hour)
	claims := AffiliateJWTClaims{
		AffiliateUserID: affiliateUserID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseJWT 解析推广用户 JWT Token
func (s *AuthService) ParseJWT(tokenString string) (*AffiliateJWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &AffiliateJWTClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*AffiliateJWTClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("无效的 token")
}
