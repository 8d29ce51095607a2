package session

import (
	"sync"

	"go.uber.org/zap"
)

// Keeper persists the session-user record and the one-time onboarding
// flag. Saving a nil user clears the record.
type Keeper interface {
	SaveUser(user *User) error
	LoadUser() (*User, error)
	MarkOnboardingDone() error
	OnboardingDone() (bool, error)
}

// ServiceConfig wires the session service dependencies. The keeper is
// optional; without one, sessions simply do not survive restarts.
type ServiceConfig struct {
	Authenticator *Authenticator
	Keeper        Keeper
	Logger        *zap.Logger
}

// Service tracks the current session user within a process lifetime and
// mirrors it to local persistence.
type Service struct {
	auth   *Authenticator
	keeper Keeper
	logger *zap.Logger

	mu      sync.RWMutex
	current *User
}

// NewService constructs the session service and restores any persisted
// session-user record.
func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	service := &Service{auth: cfg.Authenticator, keeper: cfg.Keeper, logger: logger}
	service.restore()
	return service
}

func (s *Service) restore() {
	if s.keeper == nil {
		return
	}
	user, err := s.keeper.LoadUser()
	if err != nil {
		s.logger.Warn("session restore failed", zap.Error(err))
		return
	}
	s.current = user
}

// Login authenticates the static credentials and installs the session user.
func (s *Service) Login(role Role, username, password string) (User, error) {
	if s.auth == nil {
		return User{}, ErrInvalidCredentials
	}
	user, err := s.auth.Authenticate(role, username, password)
	if err != nil {
		return User{}, err
	}
	s.mu.Lock()
	s.current = &user
	s.mu.Unlock()
	s.persist(&user)
	return user, nil
}

// Logout clears the session user.
func (s *Service) Logout() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
	s.persist(nil)
}

// Current returns the session user, nil for guests.
func (s *Service) Current() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	user := *s.current
	return &user
}

// CompleteOnboarding records that the onboarding sequence has been seen.
// The flag is one-way.
func (s *Service) CompleteOnboarding() {
	if s.keeper == nil {
		return
	}
	if err := s.keeper.MarkOnboardingDone(); err != nil {
		s.logger.Warn("onboarding flag persist failed", zap.Error(err))
	}
}

// OnboardingDone reports whether onboarding has already been completed.
func (s *Service) OnboardingDone() bool {
	if s.keeper == nil {
		return false
	}
	done, err := s.keeper.OnboardingDone()
	if err != nil {
		s.logger.Warn("onboarding flag read failed", zap.Error(err))
		return false
	}
	return done
}

func (s *Service) persist(user *User) {
	if s.keeper == nil {
		return
	}
	if err := s.keeper.SaveUser(user); err != nil {
		s.logger.Warn("session persist failed", zap.Error(err))
	}
}
