package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const sessionAudience = "ouvidoria-portal"

// ErrInvalidToken indica cookie de sessão ausente, adulterado ou expirado.
var ErrInvalidToken = errors.New("token de sessão inválido")

// Claims representa as informações do token de sessão. O subject é o id da sessão.
type Claims struct {
	Funcionario bool `json:"fun,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager assina e valida os tokens guardados no cookie do portal.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager cria o gerenciador com segredo e TTL configurados.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL devolve a validade dos tokens emitidos.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Sign cria um JWT HS256 apontando para a sessão.
func (m *TokenManager) Sign(sessionID string, funcionario bool) (string, error) {
	now := m.now().UTC()
	claims := Claims{
		Funcionario: funcionario,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			Audience:  jwt.ClaimStrings{sessionAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Parse verifica assinatura, audiência e expiração e devolve o id da sessão.
func (m *TokenManager) Parse(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(sessionAudience),
		jwt.WithTimeFunc(m.now),
	)

	token, err := parser.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
