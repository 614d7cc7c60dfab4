package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"congregation-api/internal/adapters/persistence/models"
	"congregation-api/internal/adapters/persistence/repositories"
	"congregation-api/internal/config"
	"congregation-api/internal/core/domain"
	"congregation-api/internal/pkg/jwt"
	"congregation-api/internal/pkg/metrics"
	"congregation-api/internal/pkg/password"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Auth errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = domain.ErrInvalidCredentials
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrWeakPassword       = fmt.Errorf("password must be %d to %d characters", password.MinLength, password.MaxLength)
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrUserInactive       = errors.New("user account is inactive")
)

const (
	welcomeSubject = "Welcome to the congregation"
	welcomeTimeout = 10 * time.Second
)

// AuthService handles registration, login and session rotation for
// members and administrators.
type AuthService struct {
	memberRepo       repositories.MemberRepository
	adminRepo        repositories.AdminRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	credentials      *CredentialStore
	notifier         Notifier
	cfg              *config.Config

	welcomes sync.WaitGroup
}

// NewAuthService creates a new auth service
func NewAuthService(
	memberRepo repositories.MemberRepository,
	adminRepo repositories.AdminRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	credentials *CredentialStore,
	notifier Notifier,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		memberRepo:       memberRepo,
		adminRepo:        adminRepo,
		refreshTokenRepo: refreshTokenRepo,
		credentials:      credentials,
		notifier:         notifier,
		cfg:              cfg,
	}
}

// RegisterInput represents member registration input
type RegisterInput struct {
	Username    string `json:"username" validate:"required,min=3,max=50"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phone_number" validate:"required"`
	Password    string `json:"password" validate:"required,min=8"`
	FullName    string `json:"full_name"`
}

// LoginInput represents login input
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse represents authentication response. Principal holds a
// *models.MemberResponse or a *models.AdminResponse depending on Kind.
type AuthResponse struct {
	Kind         domain.PrincipalKind `json:"kind"`
	Principal    interface{}          `json:"principal"`
	AccessToken  string               `json:"access_token"`
	RefreshToken string               `json:"refresh_token"`
}

// sessionSubject is what ends up in a token pair
type sessionSubject struct {
	kind     domain.PrincipalKind
	id       uint
	username string
	role     string
	active   bool
	response interface{}
}

func memberSubject(m *models.Member) *sessionSubject {
	return &sessionSubject{
		kind:     domain.PrincipalMember,
		id:       m.ID,
		username: m.Username,
		role:     m.Role,
		active:   m.IsActive,
		response: m.ToResponse(),
	}
}

func adminSubject(a *models.Admin) *sessionSubject {
	return &sessionSubject{
		kind:     domain.PrincipalAdmin,
		id:       a.ID,
		username: a.Username,
		role:     string(domain.PrincipalAdmin),
		active:   a.IsActive,
		response: a.ToResponse(),
	}
}

// Register registers a new member and opens a session
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*AuthResponse, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.PhoneNumber = strings.TrimSpace(input.PhoneNumber)

	if input.Username == "" || input.Email == "" || input.PhoneNumber == "" {
		return nil, domain.ErrInvalidInput
	}
	if !password.ValidatePassword(input.Password) {
		return nil, ErrWeakPassword
	}

	exists, err := s.memberRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserAlreadyExists
	}

	exists, err = s.memberRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserAlreadyExists
	}

	exists, err = s.memberRepo.ExistsByPhone(ctx, input.PhoneNumber)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserAlreadyExists
	}

	member := &models.Member{
		Username:         input.Username,
		Email:            input.Email,
		PhoneNumber:      input.PhoneNumber,
		FullName:         strings.TrimSpace(input.FullName),
		MembershipStatus: "pending",
		Role:             string(domain.RoleMember),
		IsActive:         true,
	}
	if err := s.credentials.SetPassword(member, input.Password); err != nil {
		return nil, err
	}

	if err := s.memberRepo.Create(ctx, member); err != nil {
		return nil, err
	}

	resp, err := s.openSession(ctx, memberSubject(member))
	if err != nil {
		return nil, err
	}

	s.welcomes.Add(1)
	go s.sendWelcome(member.Email, member.DisplayName())

	log.Printf("✅ Member registered: %s", member.Username)
	return resp, nil
}

// sendWelcome mails a greeting to a new member outside the request.
// Failures are only logged.
func (s *AuthService) sendWelcome(email, name string) {
	defer s.welcomes.Done()

	ctx, cancel := context.WithTimeout(context.Background(), welcomeTimeout)
	defer cancel()

	body := fmt.Sprintf("Hello %s,\n\nYour account has been created. We are glad to have you with us.\n", name)
	if err := s.notifier.Send(ctx, email, welcomeSubject, body); err != nil {
		log.Printf("⚠️ Welcome email to %s not sent: %v", email, err)
	}
}

// WaitForWelcomes blocks until every queued welcome email has been attempted
func (s *AuthService) WaitForWelcomes() {
	s.welcomes.Wait()
}

// Login authenticates a member
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*AuthResponse, error) {
	member, err := s.memberRepo.GetByUsername(ctx, strings.TrimSpace(input.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.RecordLogin(string(domain.PrincipalMember), false)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	resp, err := s.login(ctx, member, input.Password, memberSubject(member))
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Member logged in: %s", member.Username)
	return resp, nil
}

// AdminLogin authenticates an administrator
func (s *AuthService) AdminLogin(ctx context.Context, input *LoginInput) (*AuthResponse, error) {
	admin, err := s.adminRepo.GetByUsername(ctx, strings.TrimSpace(input.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.RecordLogin(string(domain.PrincipalAdmin), false)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	resp, err := s.login(ctx, admin, input.Password, adminSubject(admin))
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Admin logged in: %s", admin.Username)
	return resp, nil
}

func (s *AuthService) login(ctx context.Context, p models.Principal, plaintext string, subject *sessionSubject) (*AuthResponse, error) {
	kind := string(subject.kind)

	if !subject.active {
		metrics.RecordLogin(kind, false)
		return nil, ErrUserInactive
	}

	ok, err := s.credentials.Authenticate(p, plaintext)
	if err != nil {
		// A stored hash that cannot be parsed is logged, never shown to the client
		log.Printf("❌ Unusable password hash for %s #%d: %v", kind, p.PrincipalID(), err)
		metrics.RecordLogin(kind, false)
		return nil, ErrInvalidCredentials
	}
	if !ok {
		metrics.RecordLogin(kind, false)
		return nil, ErrInvalidCredentials
	}

	metrics.RecordLogin(kind, true)
	return s.openSession(ctx, subject)
}

// RefreshToken rotates a refresh token and issues a new pair
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.cfg.JWT.RefreshSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	storedToken, err := s.refreshTokenRepo.GetByTokenHash(ctx, password.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	if storedToken.IsRevoked() {
		return nil, ErrTokenRevoked
	}
	if storedToken.IsExpired() {
		return nil, ErrTokenExpired
	}
	if storedToken.PrincipalKind != claims.Kind || storedToken.PrincipalID != claims.PrincipalID {
		return nil, ErrInvalidToken
	}

	subject, err := s.loadSubject(ctx, domain.PrincipalKind(claims.Kind), claims.PrincipalID)
	if err != nil {
		return nil, err
	}
	if !subject.active {
		return nil, ErrUserInactive
	}

	// Token rotation
	if err := s.refreshTokenRepo.Revoke(ctx, storedToken.ID); err != nil {
		return nil, err
	}

	resp, err := s.openSession(ctx, subject)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Token refreshed for %s: %s", subject.kind, subject.username)
	return resp, nil
}

// Logout revokes the refresh token
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.refreshTokenRepo.RevokeByTokenHash(ctx, password.HashToken(refreshToken)); err != nil {
		return err
	}

	log.Printf("✅ Session logged out")
	return nil
}

// LogoutAll revokes all refresh tokens of a principal
func (s *AuthService) LogoutAll(ctx context.Context, kind domain.PrincipalKind, principalID uint) error {
	if err := s.refreshTokenRepo.RevokeAllByPrincipal(ctx, string(kind), principalID); err != nil {
		return err
	}

	log.Printf("✅ All sessions revoked for %s #%d", kind, principalID)
	return nil
}

// ValidateAccessToken validates an access token
func (s *AuthService) ValidateAccessToken(accessToken string) (*jwt.Claims, error) {
	return jwt.ValidateAccessToken(accessToken, s.cfg.JWT.Secret)
}

// GetPrincipal returns the public view of the given principal
func (s *AuthService) GetPrincipal(ctx context.Context, kind domain.PrincipalKind, principalID uint) (interface{}, error) {
	subject, err := s.loadSubject(ctx, kind, principalID)
	if err != nil {
		return nil, err
	}
	return subject.response, nil
}

func (s *AuthService) loadSubject(ctx context.Context, kind domain.PrincipalKind, id uint) (*sessionSubject, error) {
	switch kind {
	case domain.PrincipalMember:
		member, err := s.memberRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
		return memberSubject(member), nil
	case domain.PrincipalAdmin:
		admin, err := s.adminRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
		return adminSubject(admin), nil
	}
	return nil, ErrInvalidToken
}

// openSession generates a token pair and stores the refresh token
func (s *AuthService) openSession(ctx context.Context, subject *sessionSubject) (*AuthResponse, error) {
	tokens, err := s.generateTokens(subject)
	if err != nil {
		return nil, err
	}

	if err := s.storeRefreshToken(ctx, subject, tokens.RefreshToken); err != nil {
		return nil, err
	}

	return &AuthResponse{
		Kind:         subject.kind,
		Principal:    subject.response,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// generateTokens generates access and refresh tokens
func (s *AuthService) generateTokens(subject *sessionSubject) (*TokenPair, error) {
	accessToken, err := jwt.GenerateAccessToken(
		subject.id,
		string(subject.kind),
		subject.username,
		subject.role,
		s.cfg.JWT.Secret,
		s.cfg.JWT.AccessTokenMins,
	)
	if err != nil {
		return nil, err
	}

	refreshToken, err := jwt.GenerateRefreshToken(
		subject.id,
		string(subject.kind),
		uuid.New().String(),
		s.cfg.JWT.RefreshSecret,
		s.cfg.JWT.RefreshTokenDays,
	)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// storeRefreshToken stores a refresh token in the database
func (s *AuthService) storeRefreshToken(ctx context.Context, subject *sessionSubject, refreshToken string) error {
	token := &models.RefreshToken{
		PrincipalKind: string(subject.kind),
		PrincipalID:   subject.id,
		TokenHash:     password.HashToken(refreshToken),
		ExpiresAt:     jwt.GetExpiryTime(s.cfg.JWT.RefreshTokenDays),
	}

	return s.refreshTokenRepo.Create(ctx, token)
}
