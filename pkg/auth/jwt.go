package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrSigningDisabled is returned by GenerateToken when the service only holds
// a public key.
var ErrSigningDisabled = errors.New("token signing disabled: no private key configured")

// JWTConfig selects the key material for API bearer tokens. The first of
// PrivateKeyPEM, PublicKeyPEM and Secret that is set wins.
type JWTConfig struct {
	Secret        string
	PrivateKeyPEM string
	PublicKeyPEM  string

	// Issuer is stamped on issued tokens and, when set, required on
	// validated ones.
	Issuer     string
	Expiration time.Duration
}

// JWTService issues and validates bearer tokens for the fraud API. In
// deployment it usually runs validation-only with an RS256 public key.
type JWTService struct {
	issuer     string
	expiration time.Duration

	method    jwt.SigningMethod
	signKey   any
	verifyKey any
}

// NewJWTService builds a JWTService from cfg.
func NewJWTService(cfg JWTConfig) (*JWTService, error) {
	svc := &JWTService{issuer: cfg.Issuer, expiration: cfg.Expiration}

	switch {
	case cfg.PrivateKeyPEM != "":
		key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(cfg.PrivateKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("failed to parse RSA private key: %w", err)
		}
		svc.method, svc.signKey, svc.verifyKey = jwt.SigningMethodRS256, key, &key.PublicKey
	case cfg.PublicKeyPEM != "":
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cfg.PublicKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("failed to parse RSA public key: %w", err)
		}
		svc.method, svc.verifyKey = jwt.SigningMethodRS256, key
	case cfg.Secret != "":
		secret := []byte(cfg.Secret)
		svc.method, svc.signKey, svc.verifyKey = jwt.SigningMethodHS256, secret, secret
	default:
		return nil, errors.New("jwt configuration requires a private key, a public key or a secret")
	}

	return svc, nil
}

// GenerateToken signs a token for userID carrying roles.
func (s *JWTService) GenerateToken(userID uuid.UUID, roles []string) (string, error) {
	if s.signKey == nil {
		return "", ErrSigningDisabled
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
		UserID: userID,
		Roles:  roles,
	}

	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.signKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses tokenString and checks its signature, algorithm,
// lifetime and issuer.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{s.method.Alg()})}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.verifyKey, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	return claims, nil
}

// LoadKeyFromFile reads a PEM-encoded key from a file path.
func LoadKeyFromFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file %q: %w", path, err)
	}
	return data, nil
}

// GenerateKeyPair returns a PEM-encoded 2048-bit RSA keypair for local
// token issuance.
func GenerateKeyPair() (privateKeyPEM, publicKeyPEM []byte, err error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate RSA key: %w", err)
	}
	pub, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal public key: %w", err)
	}

	privateKeyPEM = pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	publicKeyPEM = pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pub})
	return privateKeyPEM, publicKeyPEM, nil
}
