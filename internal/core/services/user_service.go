package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"congregation-api/internal/adapters/persistence/models"
	"congregation-api/internal/adapters/persistence/repositories"
	"congregation-api/internal/core/domain"
	"congregation-api/internal/pkg/pagination"
	"congregation-api/internal/pkg/password"

	"gorm.io/gorm"
)

// User service errors
var (
	ErrMemberNotFound      = errors.New("member not found")
	ErrEmailAlreadyExists  = errors.New("email already exists")
	ErrOldPasswordWrong    = errors.New("old password is incorrect")
	ErrInvalidRole         = errors.New("invalid role")
	ErrInvalidMemberStatus = errors.New("invalid membership status")
	ErrAdminAlreadyExists  = errors.New("administrator already exists")
)

var membershipStatuses = map[string]bool{
	"pending":  true,
	"active":   true,
	"inactive": true,
}

// UserService handles profile and member management
type UserService struct {
	memberRepo  repositories.MemberRepository
	adminRepo   repositories.AdminRepository
	credentials *CredentialStore
}

// NewUserService creates a new user service
func NewUserService(
	memberRepo repositories.MemberRepository,
	adminRepo repositories.AdminRepository,
	credentials *CredentialStore,
) *UserService {
	return &UserService{
		memberRepo:  memberRepo,
		adminRepo:   adminRepo,
		credentials: credentials,
	}
}

// ListMembersOutput represents a page of members
type ListMembersOutput struct {
	Members    []*models.MemberResponse `json:"members"`
	Pagination *pagination.Meta         `json:"pagination"`
}

// UpdateProfileInput represents update profile input (for self)
type UpdateProfileInput struct {
	Email    *string `json:"email"`
	FullName *string `json:"full_name"`
	ShortBio *string `json:"short_bio"`
}

// ChangePasswordInput represents change password input
type ChangePasswordInput struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// CreateAdminInput represents a new administrator account
type CreateAdminInput struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
}

// ListMembers lists members with pagination
func (s *UserService) ListMembers(ctx context.Context, params *pagination.Params) (*ListMembersOutput, error) {
	members, total, err := s.memberRepo.List(ctx, params.Offset, params.Limit)
	if err != nil {
		return nil, err
	}

	responses := make([]*models.MemberResponse, len(members))
	for i, member := range members {
		responses[i] = member.ToResponse()
	}

	return &ListMembersOutput{
		Members:    responses,
		Pagination: pagination.GetMeta(params, total),
	}, nil
}

// GetMember gets a member by ID
func (s *UserService) GetMember(ctx context.Context, id uint) (*models.Member, error) {
	member, err := s.memberRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return member, nil
}

// GetProfile gets own profile
func (s *UserService) GetProfile(ctx context.Context, memberID uint) (*models.MemberResponse, error) {
	member, err := s.GetMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	return member.ToResponse(), nil
}

// UpdateProfile updates own profile
func (s *UserService) UpdateProfile(ctx context.Context, memberID uint, input *UpdateProfileInput) (*models.MemberResponse, error) {
	member, err := s.GetMember(ctx, memberID)
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email != member.Email {
			exists, err := s.memberRepo.ExistsByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, ErrEmailAlreadyExists
			}
			member.Email = email
		}
	}
	if input.FullName != nil {
		member.FullName = strings.TrimSpace(*input.FullName)
	}
	if input.ShortBio != nil {
		member.ShortBio = *input.ShortBio
	}

	if err := s.memberRepo.Update(ctx, member); err != nil {
		return nil, err
	}

	return member.ToResponse(), nil
}

// ChangePassword changes a member's password
func (s *UserService) ChangePassword(ctx context.Context, memberID uint, input *ChangePasswordInput) error {
	member, err := s.GetMember(ctx, memberID)
	if err != nil {
		return err
	}

	ok, err := s.credentials.Authenticate(member, input.OldPassword)
	if err != nil {
		return err
	}
	if !ok {
		return ErrOldPasswordWrong
	}

	if !password.ValidatePassword(input.NewPassword) {
		return ErrWeakPassword
	}

	if err := s.credentials.SetPassword(member, input.NewPassword); err != nil {
		return err
	}

	if err := s.memberRepo.Update(ctx, member); err != nil {
		return err
	}

	log.Printf("✅ Password changed for member #%d", member.ID)
	return nil
}

// SetMemberRole sets a member's role
func (s *UserService) SetMemberRole(ctx context.Context, memberID uint, role string) (*models.MemberResponse, error) {
	r := domain.Role(strings.ToUpper(strings.TrimSpace(role)))
	if !r.IsValid() {
		return nil, ErrInvalidRole
	}

	member, err := s.GetMember(ctx, memberID)
	if err != nil {
		return nil, err
	}

	member.Role = string(r)
	if err := s.memberRepo.Update(ctx, member); err != nil {
		return nil, err
	}

	log.Printf("✅ Member #%d role set to %s", member.ID, member.Role)
	return member.ToResponse(), nil
}

// SetMemberStatus sets a member's membership status and active flag
func (s *UserService) SetMemberStatus(ctx context.Context, memberID uint, status string, isActive *bool) (*models.MemberResponse, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status != "" && !membershipStatuses[status] {
		return nil, ErrInvalidMemberStatus
	}

	member, err := s.GetMember(ctx, memberID)
	if err != nil {
		return nil, err
	}

	if status != "" {
		member.MembershipStatus = status
	}
	if isActive != nil {
		member.IsActive = *isActive
	}

	if err := s.memberRepo.Update(ctx, member); err != nil {
		return nil, err
	}

	return member.ToResponse(), nil
}

// CreateAdmin creates another administrator account
func (s *UserService) CreateAdmin(ctx context.Context, input *CreateAdminInput) (*models.AdminResponse, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.PhoneNumber = strings.TrimSpace(input.PhoneNumber)

	if input.Username == "" || input.Email == "" || input.PhoneNumber == "" {
		return nil, domain.ErrInvalidInput
	}
	if !password.ValidatePassword(input.Password) {
		return nil, ErrWeakPassword
	}

	exists, err := s.adminRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAdminAlreadyExists
	}

	exists, err = s.adminRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAdminAlreadyExists
	}

	exists, err = s.adminRepo.ExistsByPhone(ctx, input.PhoneNumber)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAdminAlreadyExists
	}

	admin := &models.Admin{
		Username:    input.Username,
		Email:       input.Email,
		PhoneNumber: input.PhoneNumber,
		FirstName:   strings.TrimSpace(input.FirstName),
		LastName:    strings.TrimSpace(input.LastName),
		IsActive:    true,
	}
	if err := s.credentials.SetPassword(admin, input.Password); err != nil {
		return nil, err
	}

	if err := s.adminRepo.Create(ctx, admin); err != nil {
		return nil, err
	}

	log.Printf("✅ Admin created: %s", admin.Username)
	return admin.ToResponse(), nil
}
