package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/noah-isme/backend-loja/internal/common"
)

const defaultAccessTTL = 15 * time.Minute

// Service authenticates the single store administrator. The admin identity
// comes from the environment: an email plus an argon2id hash of the password.
type Service struct {
	adminEmail string
	adminHash  string
	secret     []byte
	accessTTL  time.Duration
	now        func() time.Time
	signer     jwa.SignatureAlgorithm
	validator  TokenValidator
	issuer     string
	audience   string
	clockSkew  time.Duration
}

// Config configures the auth service.
type Config struct {
	AdminEmail        string
	AdminPasswordHash string
	Secret            string
	AccessTokenTTL    time.Duration
	Issuer            string
	Audience          string
	ClockSkew         time.Duration
}

// LoginResult bundles token material returned after a successful login.
type LoginResult struct {
	AccessToken  string    `json:"accessToken"`
	AccessExpiry time.Time `json:"accessExpiresAt"`
}

// NewService constructs a Service instance with sane defaults.
func NewService(cfg Config) (*Service, error) {
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, errors.New("auth: secret is required")
	}
	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))
	if email == "" {
		return nil, errors.New("auth: admin email is required")
	}
	if strings.TrimSpace(cfg.AdminPasswordHash) == "" {
		return nil, errors.New("auth: admin password hash is required")
	}
	accessTTL := cfg.AccessTokenTTL
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	issuer := strings.TrimSpace(cfg.Issuer)
	if issuer == "" {
		issuer = "backend-loja"
	}
	audience := strings.TrimSpace(cfg.Audience)
	if audience == "" {
		audience = "loja-admin"
	}
	clockSkew := cfg.ClockSkew
	if clockSkew < 0 {
		clockSkew = 0
	}

	return &Service{
		adminEmail: email,
		adminHash:  strings.TrimSpace(cfg.AdminPasswordHash),
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		now:        time.Now,
		signer:     jwa.HS256,
		validator: TokenValidator{
			Issuer:    issuer,
			Audience:  audience,
			ClockSkew: clockSkew,
			Algorithm: jwa.HS256,
		},
		issuer:    issuer,
		audience:  audience,
		clockSkew: clockSkew,
	}, nil
}

// Login verifies the admin credentials and issues an access token.
func (s *Service) Login(email, password string) (LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return LoginResult{}, common.NewAppError("UNAUTHORIZED", "invalid credentials", http.StatusUnauthorized, nil)
	}
	if email != s.adminEmail {
		// burn a comparison anyway so the timing profile matches
		_, _ = argon2id.ComparePasswordAndHash(password, s.adminHash)
		return LoginResult{}, common.NewAppError("UNAUTHORIZED", "invalid credentials", http.StatusUnauthorized, nil)
	}
	ok, err := argon2id.ComparePasswordAndHash(password, s.adminHash)
	if err != nil {
		return LoginResult{}, fmt.Errorf("auth: compare hash: %w", err)
	}
	if !ok {
		return LoginResult{}, common.NewAppError("UNAUTHORIZED", "invalid credentials", http.StatusUnauthorized, nil)
	}
	token, expiresAt, err := s.signAccessToken(s.adminEmail)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{AccessToken: token, AccessExpiry: expiresAt}, nil
}

// ParseAccessToken validates an access token and returns the subject (admin identifier).
func (s *Service) ParseAccessToken(token string) (string, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return "", common.NewAppError("UNAUTHORIZED", "missing token", http.StatusUnauthorized, nil)
	}
	algorithm, err := extractTokenAlgorithm(trimmed)
	if err != nil {
		return "", common.NewAppError("UNAUTHORIZED", "invalid token", http.StatusUnauthorized, err)
	}
	if s.validator.Algorithm != "" && algorithm != s.validator.Algorithm {
		return "", common.NewAppError("UNAUTHORIZED", "invalid token", http.StatusUnauthorized, fmt.Errorf("unexpected token algorithm %s", algorithm))
	}
	parsed, err := jwt.ParseString(trimmed, jwt.WithKey(algorithm, s.secret))
	if err != nil {
		return "", common.NewAppError("UNAUTHORIZED", "invalid token", http.StatusUnauthorized, err)
	}
	if err := s.validator.Validate(parsed, algorithm, s.now()); err != nil {
		return "", common.NewAppError("UNAUTHORIZED", "invalid token", http.StatusUnauthorized, err)
	}
	return parsed.Subject(), nil
}

func extractTokenAlgorithm(token string) (jwa.SignatureAlgorithm, error) {
	message, err := jws.ParseString(token)
	if err != nil {
		return "", err
	}
	signatures := message.Signatures()
	if len(signatures) == 0 {
		return "", errors.New("auth: token contains no signatures")
	}
	var algorithm jwa.SignatureAlgorithm
	for _, sig := range signatures {
		headers := sig.ProtectedHeaders()
		if headers == nil {
			return "", errors.New("auth: token missing protected headers")
		}
		alg := headers.Algorithm()
		if alg == "" {
			return "", errors.New("auth: token missing algorithm")
		}
		if alg == jwa.NoSignature {
			return "", errors.New("auth: token uses none algorithm")
		}
		if algorithm == "" {
			algorithm = alg
		} else if algorithm != alg {
			return "", fmt.Errorf("auth: mixed token algorithms detected")
		}
	}
	return algorithm, nil
}

func (s *Service) signAccessToken(subject string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.accessTTL)
	builder := jwt.NewBuilder().
		Subject(subject).
		Issuer(s.issuer).
		Audience([]string{s.audience}).
		IssuedAt(now).
		NotBefore(now.Add(-s.clockSkew)).
		Expiration(expiresAt)
	token, err := builder.Build()
	if err != nil {
		return "", time.Time{}, err
	}
	signed, err := jwt.Sign(token, jwt.WithKey(s.signer, s.secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return string(signed), expiresAt, nil
}
