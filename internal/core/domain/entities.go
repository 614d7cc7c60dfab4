package domain

// PrincipalKind identifies which identity table a principal lives in
type PrincipalKind string

const (
	PrincipalMember PrincipalKind = "MEMBER"
	PrincipalAdmin  PrincipalKind = "ADMIN"
)

// Role represents a member role in the system
type Role string

const (
	RoleMember    Role = "MEMBER"
	RoleModerator Role = "MODERATOR"
)

// IsValid reports whether r is a known member role
func (r Role) IsValid() bool {
	return r == RoleMember || r == RoleModerator
}

// Actor is the authenticated principal performing a request
type Actor struct {
	Kind PrincipalKind
	ID   uint
	Role Role
}

// IsAdmin returns true for administrator principals
func (a *Actor) IsAdmin() bool {
	return a != nil && a.Kind == PrincipalAdmin
}

// IsPrivileged returns true for principals allowed to moderate content:
// administrators and moderator members.
func (a *Actor) IsPrivileged() bool {
	if a == nil {
		return false
	}
	return a.Kind == PrincipalAdmin || a.Role == RoleModerator
}

// IsMember reports whether the actor is the member with the given id
func (a *Actor) IsMember(id uint) bool {
	return a != nil && a.Kind == PrincipalMember && a.ID == id
}

// DonationStatus is the lifecycle status of a donation
type DonationStatus string

const (
	DonationPending   DonationStatus = "Pending"
	DonationCompleted DonationStatus = "Completed"
	DonationFailed    DonationStatus = "Failed"
	DonationRefunded  DonationStatus = "Refunded"
)

// IsValid reports whether s is one of the known statuses.
// No transition rules are enforced between them.
func (s DonationStatus) IsValid() bool {
	switch s {
	case DonationPending, DonationCompleted, DonationFailed, DonationRefunded:
		return true
	}
	return false
}
