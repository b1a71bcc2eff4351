package jwttoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	id "bioclock/pkg/domain"
	dErrors "bioclock/pkg/domain-errors"
)

// RoleOperator lets a caller record attendance on behalf of other subjects.
const RoleOperator = "operator"

// Claims represents the JWT claims of a bearer token. Tokens are issued by an
// external identity service; SubjectID is preferred and the registered
// "sub" claim is the fallback.
type Claims struct {
	SubjectID string `json:"subject_id,omitempty"`
	Role      string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Subject returns the subject the token was issued for.
func (c *Claims) Subject() string {
	if c.SubjectID != "" {
		return c.SubjectID
	}
	return c.RegisteredClaims.Subject
}

// JWTService handles JWT validation, and creation for development tooling.
type JWTService struct {
	signingKey []byte
	issuer     string
	audience   string
}

// NewJWTService builds an HS256 service. Empty issuer or audience disables
// the corresponding check on validation.
func NewJWTService(signingKey string, issuer string, audience string) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
	}
}

func (s *JWTService) GenerateAccessToken(
	subject id.SubjectID,
	role string,
	expiresIn time.Duration) (string, error) {
	now := time.Now()
	registered := jwt.RegisteredClaims{
		Subject:   subject.String(),
		ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
		IssuedAt:  jwt.NewNumericDate(now),
		Issuer:    s.issuer,
		ID:        uuid.NewString(),
	}
	if s.audience != "" {
		registered.Audience = []string{s.audience}
	}
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		SubjectID:        subject.String(),
		Role:             role,
		RegisteredClaims: registered,
	})

	signedToken, err := newToken.SignedString(s.signingKey)
	if err != nil {
		return "", err
	}
	return signedToken, nil
}

func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	var opts []jwt.ParserOption
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	if s.audience != "" {
		opts = append(opts, jwt.WithAudience(s.audience))
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, opts...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	if claims.Subject() == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token has no subject")
	}

	return claims, nil
}
