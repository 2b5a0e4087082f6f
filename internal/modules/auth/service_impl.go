package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/storefrontlabs/catalog-backend/internal/modules/user"
	"github.com/storefrontlabs/catalog-backend/internal/validate"
)

type service struct {
	users  user.Repository
	tokens TokenRepository
	secret []byte
	ttl    time.Duration
	log    *logrus.Logger
}

// NewService creates a new auth service.
func NewService(users user.Repository, tokens TokenRepository, secret string, ttl time.Duration, log *logrus.Logger) Service {
	return &service{
		users:  users,
		tokens: tokens,
		secret: []byte(secret),
		ttl:    ttl,
		log:    log,
	}
}

func (s *service) Login(ctx context.Context, email, password string) (*Credentials, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		// An unknown email is an input validation failure, not a bad
		// credential pair: the email field must reference an existing user.
		if errors.Is(err, user.ErrNotFound) {
			return nil, validate.NewError("email", "The selected email is invalid.")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	record := &Token{
		ID:        uuid.New(),
		UserID:    u.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.tokens.Insert(ctx, record); err != nil {
		return nil, err
	}

	claims := &jwt.StandardClaims{
		Id:        record.ID.String(),
		Subject:   u.ID.String(),
		IssuedAt:  now.Unix(),
		ExpiresAt: record.ExpiresAt.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, err
	}

	s.log.WithField("user_id", u.ID).Info("issued access token")
	return &Credentials{Name: u.Name, Email: u.Email, AccessToken: signed}, nil
}

func (s *service) Authenticate(ctx context.Context, bearer string) (*Principal, error) {
	claims := &jwt.StandardClaims{}
	parsed, err := jwt.ParseWithClaims(bearer, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrTokenInvalid
	}

	tokenID, err := uuid.Parse(claims.Id)
	if err != nil {
		return nil, ErrTokenInvalid
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	// The record is the revocation source of truth: a valid signature on
	// a deleted token is still a rejected token.
	record, err := s.tokens.Get(ctx, tokenID)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, err
	}
	if time.Now().After(record.ExpiresAt) {
		return nil, ErrTokenInvalid
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, err
	}

	return &Principal{UserID: u.ID, TokenID: tokenID, Name: u.Name, Email: u.Email}, nil
}

func (s *service) Logout(ctx context.Context, tokenID uuid.UUID) error {
	return s.tokens.Delete(ctx, tokenID)
}
