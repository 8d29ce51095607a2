package session

import (
	"errors"
	"testing"
)

// memoryKeeper is an in-memory Keeper for service tests.
type memoryKeeper struct {
	user       *User
	onboarded  bool
	loadErr    error
	saveCalled int
}

func (k *memoryKeeper) SaveUser(user *User) error {
	k.saveCalled++
	if user == nil {
		k.user = nil
		return nil
	}
	copied := *user
	k.user = &copied
	return nil
}

func (k *memoryKeeper) LoadUser() (*User, error) {
	if k.loadErr != nil {
		return nil, k.loadErr
	}
	return k.user, nil
}

func (k *memoryKeeper) MarkOnboardingDone() error {
	k.onboarded = true
	return nil
}

func (k *memoryKeeper) OnboardingDone() (bool, error) {
	return k.onboarded, nil
}

func TestLoginInstallsAndPersistsUser(t *testing.T) {
	keeper := &memoryKeeper{}
	service := NewService(ServiceConfig{
		Authenticator: NewAuthenticator(testCredentials()),
		Keeper:        keeper,
	})

	user, err := service.Login(RoleAdmin, "edgar2026", "believe2026")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Role != RoleAdmin {
		t.Fatalf("expected admin session, got %+v", user)
	}

	current := service.Current()
	if current == nil || current.Name != "edgar2026" {
		t.Fatalf("expected current session user, got %+v", current)
	}
	if keeper.user == nil || keeper.user.Name != "edgar2026" {
		t.Fatalf("expected user persisted, got %+v", keeper.user)
	}
}

func TestLoginFailureLeavesSessionUntouched(t *testing.T) {
	keeper := &memoryKeeper{}
	service := NewService(ServiceConfig{
		Authenticator: NewAuthenticator(testCredentials()),
		Keeper:        keeper,
	})

	if _, err := service.Login(RoleAdmin, "edgar2026", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if service.Current() != nil {
		t.Fatalf("expected no session after failed login")
	}
	if keeper.saveCalled != 0 {
		t.Fatalf("expected no persistence after failed login")
	}
}

func TestLogoutClearsSessionAndPersistence(t *testing.T) {
	keeper := &memoryKeeper{}
	service := NewService(ServiceConfig{
		Authenticator: NewAuthenticator(testCredentials()),
		Keeper:        keeper,
	})
	if _, err := service.Login(RoleStudent, "usuario8977", "believe777"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	service.Logout()
	if service.Current() != nil {
		t.Fatalf("expected guest after logout")
	}
	if keeper.user != nil {
		t.Fatalf("expected persisted record cleared")
	}
}

func TestNewServiceRestoresPersistedSession(t *testing.T) {
	keeper := &memoryKeeper{user: &User{Role: RoleStudent, Name: "usuario8977"}}
	service := NewService(ServiceConfig{Keeper: keeper})

	current := service.Current()
	if current == nil || current.Role != RoleStudent {
		t.Fatalf("expected restored session, got %+v", current)
	}
}

func TestNewServiceSurvivesRestoreFailure(t *testing.T) {
	keeper := &memoryKeeper{loadErr: errors.New("disk gone")}
	service := NewService(ServiceConfig{Keeper: keeper})
	if service.Current() != nil {
		t.Fatalf("expected guest when restore fails")
	}
}

func TestCurrentReturnsACopy(t *testing.T) {
	service := NewService(ServiceConfig{Authenticator: NewAuthenticator(testCredentials())})
	if _, err := service.Login(RoleAdmin, "edgar2026", "believe2026"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first := service.Current()
	first.Name = "tampered"
	second := service.Current()
	if second.Name != "edgar2026" {
		t.Fatalf("expected Current to hand out copies, got %+v", second)
	}
}

func TestOnboardingFlagIsOneWay(t *testing.T) {
	keeper := &memoryKeeper{}
	service := NewService(ServiceConfig{Keeper: keeper})

	if service.OnboardingDone() {
		t.Fatalf("expected onboarding pending initially")
	}
	service.CompleteOnboarding()
	if !service.OnboardingDone() {
		t.Fatalf("expected onboarding done after completion")
	}
}
