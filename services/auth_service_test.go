package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/fantasy-arena/backend/models"
	"github.com/fantasy-arena/backend/repositories"
)

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[int]*models.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int]*models.User), nextID: 1}
}

func (r *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return repositories.ErrUserEmailConflict
		}
	}
	u.ID = r.nextID
	r.nextID++
	stored := *u
	r.users[u.ID] = &stored
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func TestRegisterAndLogin(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), "test-secret")

	user, token, err := svc.Register(context.Background(), RegisterInput{
		Email:    "manager@example.com",
		Nickname: "manager",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if token == "" {
		t.Error("Register() returned an empty token")
	}
	if user.PasswordHash != "" {
		t.Error("password hash leaked in the returned user")
	}
	if user.Role != models.RoleManager {
		t.Errorf("role = %s, want manager", user.Role)
	}

	loggedIn, token, err := svc.Login(context.Background(), LoginInput{
		Email:    "manager@example.com",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if token == "" {
		t.Error("Login() returned an empty token")
	}
	if loggedIn.ID != user.ID {
		t.Errorf("logged in as user %d, want %d", loggedIn.ID, user.ID)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), "test-secret")

	if _, _, err := svc.Register(context.Background(), RegisterInput{
		Email: "manager@example.com", Nickname: "m", Password: "short",
	}); !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("short password error = %v, want ErrPasswordTooShort", err)
	}

	if _, _, err := svc.Register(context.Background(), RegisterInput{
		Email: "not-an-email", Nickname: "m", Password: "long enough",
	}); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("bad email error = %v, want ErrValidationFailed", err)
	}

	if _, _, err := svc.Register(context.Background(), RegisterInput{
		Email: "manager@example.com", Nickname: "", Password: "long enough",
	}); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("missing nickname error = %v, want ErrValidationFailed", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), "test-secret")
	input := RegisterInput{Email: "manager@example.com", Nickname: "m", Password: "long enough"}

	if _, _, err := svc.Register(context.Background(), input); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}
	if _, _, err := svc.Register(context.Background(), input); !errors.Is(err, ErrUserEmailConflict) {
		t.Errorf("duplicate email error = %v, want ErrUserEmailConflict", err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), "test-secret")
	if _, _, err := svc.Register(context.Background(), RegisterInput{
		Email: "manager@example.com", Nickname: "m", Password: "long enough",
	}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if _, _, err := svc.Login(context.Background(), LoginInput{
		Email: "manager@example.com", Password: "wrong password",
	}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := svc.Login(context.Background(), LoginInput{
		Email: "nobody@example.com", Password: "long enough",
	}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email error = %v, want ErrInvalidCredentials", err)
	}
}
