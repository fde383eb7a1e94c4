package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/HammerMeetNail/fittrack/internal/config"
	"github.com/HammerMeetNail/fittrack/internal/models"
)

type fakeUserService struct {
	CreateFunc        func(ctx context.Context, params models.CreateUserParams) (*models.User, error)
	GetByIDFunc       func(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmailFunc    func(ctx context.Context, email string) (*models.User, error)
	UpdateProfileFunc func(ctx context.Context, userID uuid.UUID, params models.UpdateProfileParams) error
	UpdateGoalsFunc   func(ctx context.Context, userID uuid.UUID, params models.UpdateGoalsParams) error
}

func (f *fakeUserService) Create(ctx context.Context, params models.CreateUserParams) (*models.User, error) {
	return f.CreateFunc(ctx, params)
}

func (f *fakeUserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return f.GetByIDFunc(ctx, id)
}

func (f *fakeUserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return f.GetByEmailFunc(ctx, email)
}

func (f *fakeUserService) UpdateProfile(ctx context.Context, userID uuid.UUID, params models.UpdateProfileParams) error {
	return f.UpdateProfileFunc(ctx, userID, params)
}

func (f *fakeUserService) UpdateGoals(ctx context.Context, userID uuid.UUID, params models.UpdateGoalsParams) error {
	return f.UpdateGoalsFunc(ctx, userID, params)
}

// memoryUsers is a tiny in-memory user store for end-to-end auth scenarios.
func memoryUsers() *fakeUserService {
	byEmail := map[string]*models.User{}
	return &fakeUserService{
		CreateFunc: func(ctx context.Context, params models.CreateUserParams) (*models.User, error) {
			if _, ok := byEmail[params.Email]; ok {
				return nil, ErrEmailAlreadyExists
			}
			u := &models.User{ID: uuid.New(), Name: params.Name, Email: params.Email, PasswordHash: params.PasswordHash}
			byEmail[params.Email] = u
			return u, nil
		},
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			if u, ok := byEmail[email]; ok {
				return u, nil
			}
			return nil, ErrUserNotFound
		},
	}
}

func newTestAuthService(users UserServiceInterface) *AuthService {
	return NewAuthService(users, config.JWTConfig{Secret: "test-secret", TTL: 7 * 24 * time.Hour})
}

func TestAuthService_RegisterThenLogin(t *testing.T) {
	svc := newTestAuthService(memoryUsers())
	ctx := context.Background()

	reg, err := svc.Register(ctx, "Alice", "a@x.com", "pw123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if reg.Token == "" || reg.UserID == uuid.Nil {
		t.Fatalf("expected token and user id, got %+v", reg)
	}

	login, err := svc.Login(ctx, "a@x.com", "pw123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if login.UserID != reg.UserID {
		t.Fatalf("expected user %s, got %s", reg.UserID, login.UserID)
	}

	got, err := svc.Verify(login.Token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got != reg.UserID {
		t.Fatalf("token carries %s, want %s", got, reg.UserID)
	}

	if _, err := svc.Login(ctx, "a@x.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
}

func TestAuthService_LoginUnknownEmailMatchesWrongPassword(t *testing.T) {
	svc := newTestAuthService(memoryUsers())

	_, err := svc.Login(context.Background(), "nobody@x.com", "pw123")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_LoginPropagatesStoreErrors(t *testing.T) {
	boom := errors.New("db down")
	svc := newTestAuthService(&fakeUserService{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) { return nil, boom },
	})

	if _, err := svc.Login(context.Background(), "a@x.com", "pw"); !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	svc := newTestAuthService(memoryUsers())
	ctx := context.Background()

	if _, err := svc.Register(ctx, "Alice", "a@x.com", "pw123"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, "Alice Again", " A@X.com ", "other"); !errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}
}

func TestAuthService_RegisterHashesPassword(t *testing.T) {
	var stored models.CreateUserParams
	svc := newTestAuthService(&fakeUserService{
		CreateFunc: func(ctx context.Context, params models.CreateUserParams) (*models.User, error) {
			stored = params
			return &models.User{ID: uuid.New()}, nil
		},
	})

	if _, err := svc.Register(context.Background(), "  Bob ", "Bob@Example.COM", "secret"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if stored.PasswordHash == "secret" || !strings.HasPrefix(stored.PasswordHash, "$2") {
		t.Fatalf("expected bcrypt hash, got %q", stored.PasswordHash)
	}
	if !svc.VerifyPassword(stored.PasswordHash, "secret") {
		t.Fatal("stored hash does not verify")
	}
	if stored.Email != "bob@example.com" || stored.Name != "Bob" {
		t.Fatalf("expected normalized name/email, got %q %q", stored.Name, stored.Email)
	}
}

func TestAuthService_RegisterRejectsPasswordOverBcryptLimit(t *testing.T) {
	svc := newTestAuthService(&fakeUserService{
		CreateFunc: func(ctx context.Context, params models.CreateUserParams) (*models.User, error) {
			t.Fatal("user must not be created")
			return nil, nil
		},
	})

	_, err := svc.Register(context.Background(), "Bob", "bob@example.com", strings.Repeat("é", 40))
	if !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("expected ErrPasswordTooLong, got %v", err)
	}
}

func TestAuthService_VerifyRejectsExpiredToken(t *testing.T) {
	svc := newTestAuthService(memoryUsers())
	issuedAt := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issuedAt }

	res, err := svc.IssueToken(uuid.New())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	svc.now = func() time.Time { return issuedAt.Add(6 * 24 * time.Hour) }
	if _, err := svc.Verify(res.Token); err != nil {
		t.Fatalf("token should still be valid after 6 days: %v", err)
	}

	svc.now = func() time.Time { return issuedAt.Add(8 * 24 * time.Hour) }
	if _, err := svc.Verify(res.Token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken after expiry, got %v", err)
	}
}

func TestAuthService_VerifyRejectsBadTokens(t *testing.T) {
	svc := newTestAuthService(memoryUsers())
	userID := uuid.New()

	good, err := svc.IssueToken(userID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	otherSecret := NewAuthService(memoryUsers(), config.JWTConfig{Secret: "other", TTL: time.Hour})
	foreign, err := otherSecret.IssueToken(userID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims := tokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{UserID: userID}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	// Another user's claims under the original signature.
	other, err := svc.IssueToken(uuid.New())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	goodParts := strings.Split(good.Token, ".")
	otherParts := strings.Split(other.Token, ".")
	tampered := goodParts[0] + "." + otherParts[1] + "." + goodParts[2]

	tests := map[string]string{
		"empty":           "",
		"garbage":         "not-a-token",
		"tampered":        tampered,
		"foreign secret":  foreign.Token,
		"wrong algorithm": hs512,
		"none algorithm":  unsigned,
		"missing exp":     noExpiry,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.Verify(token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}
