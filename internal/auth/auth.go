package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// CurrentUser is the authenticated identity handed to view models at
// construction. UID is the user's store key, Email the login email.
type CurrentUser struct {
	UID   string
	Email string
}

// JWTClaims defines the payload for the JWT.
type JWTClaims struct {
	UID      string `json:"uid"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Facility string `json:"facility,omitempty"`
	jwt.RegisteredClaims
}

// Hashing
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// JwtSecret is overwritten from config at startup.
var JwtSecret = []byte("YOUR_SUPER_SECRET_KEY")

func GenerateJWT(uid, email, role, facility string, expiration time.Duration) (string, error) {
	if expiration <= 0 {
		expiration = 24 * time.Hour
	}
	claims := &JWTClaims{
		UID:      uid,
		Email:    email,
		Role:     role,
		Facility: facility,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(JwtSecret)
}

// ParseJWT validates a token string and returns its claims.
func ParseJWT(tokenString string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return JwtSecret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
