package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/HSouheill/salon_backend/middleware"
	"github.com/HSouheill/salon_backend/models"
	"github.com/HSouheill/salon_backend/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTooManyAttempts    = errors.New("too many failed login attempts, try again later")
)

const (
	maxLoginAttempts = 5
	loginLockout     = 30 * time.Minute
)

// OperatorStore persists operator accounts
type OperatorStore interface {
	FindOperatorByEmail(ctx context.Context, email string) (*models.Operator, error)
	CountOperators(ctx context.Context) (int64, error)
	CreateOperator(ctx context.Context, op *models.Operator) error
	TouchLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error
}

type loginAttempt struct {
	count       int
	lastAttempt time.Time
}

// OperatorAuth checks operator passwords and issues JWTs
type OperatorAuth struct {
	store     OperatorStore
	jwtSecret string
	tokenTTL  time.Duration
	now       func() time.Time

	attemptsMu sync.Mutex
	attempts   map[string]loginAttempt
}

// NewOperatorAuth creates the login service
func NewOperatorAuth(store OperatorStore, jwtSecret string, tokenTTL time.Duration) *OperatorAuth {
	if tokenTTL <= 0 {
		tokenTTL = 12 * time.Hour
	}
	return &OperatorAuth{
		store:     store,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		now:       time.Now,
		attempts:  make(map[string]loginAttempt),
	}
}

// HashPassword returns the bcrypt hash stored on an operator
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// Login verifies the password and returns a signed token.
// Five failures for one email lock it out for thirty minutes.
func (a *OperatorAuth) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	a.attemptsMu.Lock()
	attempt, seen := a.attempts[email]
	a.attemptsMu.Unlock()
	if seen && attempt.count >= maxLoginAttempts && a.now().Sub(attempt.lastAttempt) < loginLockout {
		return nil, ErrTooManyAttempts
	}

	op, err := a.store.FindOperatorByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			a.recordFailure(email)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find operator: %w", err)
	}
	if !op.IsActive || (op.UserType != middleware.UserTypeAdmin && op.UserType != middleware.UserTypeManager) {
		a.recordFailure(email)
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(op.Password), []byte(password)); err != nil {
		a.recordFailure(email)
		return nil, ErrInvalidCredentials
	}

	a.attemptsMu.Lock()
	delete(a.attempts, email)
	a.attemptsMu.Unlock()

	token, err := middleware.GenerateJWT(a.jwtSecret, op.ID.Hex(), op.Email, op.UserType, a.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	now := a.now()
	if err := a.store.TouchLastLogin(ctx, op.ID, now); err != nil {
		log.Printf("Failed to update last login operatorId=%s err=%v", op.ID.Hex(), err)
	}
	op.LastLoginAt = &now

	return &models.LoginResponse{
		Token:     token,
		ExpiresAt: now.Add(a.tokenTTL),
		Operator:  *op,
	}, nil
}

// EnsureBootstrapOperator creates the first admin when the operators collection is empty
func (a *OperatorAuth) EnsureBootstrapOperator(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	count, err := a.store.CountOperators(ctx)
	if err != nil {
		return fmt.Errorf("count operators: %w", err)
	}
	if count > 0 {
		return nil
	}

	hashed, err := HashPassword(password)
	if err != nil {
		return err
	}
	op := &models.Operator{
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Password:  hashed,
		Name:      "Administrator",
		UserType:  middleware.UserTypeAdmin,
		IsActive:  true,
		CreatedAt: a.now(),
	}
	if err := a.store.CreateOperator(ctx, op); err != nil && !errors.Is(err, repositories.ErrDuplicate) {
		return fmt.Errorf("create bootstrap operator: %w", err)
	}
	log.Printf("✅ bootstrap admin created email=%s", op.Email)
	return nil
}

func (a *OperatorAuth) recordFailure(email string) {
	a.attemptsMu.Lock()
	defer a.attemptsMu.Unlock()
	attempt := a.attempts[email]
	attempt.count++
	attempt.lastAttempt = a.now()
	a.attempts[email] = attempt
}
