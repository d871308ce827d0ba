package identity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/voyago/backend/internal/domain/access"
	"github.com/voyago/backend/internal/domain/module"
	"github.com/voyago/backend/internal/domain/shared"
)

// UserStatus represents the status of a user account
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
	UserStatusLocked   UserStatus = "locked"
)

// PermissionSet is the JSONB-stored list of per-module grants on agent users
type PermissionSet []access.ModulePermission

// Value implements driver.Valuer for JSONB storage
func (p PermissionSet) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner for JSONB retrieval
func (p *PermissionSet) Scan(value interface{}) error {
	if value == nil {
		*p = PermissionSet{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("unsupported type for PermissionSet scan")
	}
	if len(bytes) == 0 {
		*p = PermissionSet{}
		return nil
	}
	return json.Unmarshal(bytes, p)
}

// User is an account in the system. AgencyID is nil for superadmins;
// Permissions is only meaningful for agents.
type User struct {
	shared.BaseAggregateRoot
	Email        string        `gorm:"type:varchar(200);not null;uniqueIndex"`
	PasswordHash string        `gorm:"type:varchar(200);not null"`
	FullName     string        `gorm:"type:varchar(200)"`
	Role         module.Role   `gorm:"type:varchar(20);not null"`
	AgencyID     *uuid.UUID    `gorm:"type:uuid;index"`
	Permissions  PermissionSet `gorm:"type:jsonb"`
	Status       UserStatus    `gorm:"type:varchar(20);not null;default:'active'"`
	LastLoginAt  *time.Time
}

// NewUser creates an active user with a bcrypt-hashed password
func NewUser(email, password, fullName string, role module.Role, agencyID *uuid.UUID) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "A valid email is required")
	}
	if len(password) < 8 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Password must be at least 8 characters")
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Unrecognized role")
	}
	if role != module.RoleSuperadmin && (agencyID == nil || *agencyID == uuid.Nil) {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Agency users must belong to an agency")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		PasswordHash:      string(hash),
		FullName:          fullName,
		Role:              role,
		AgencyID:          agencyID,
		Permissions:       PermissionSet{},
		Status:            UserStatusActive,
	}, nil
}

// CheckPassword verifies a plaintext password against the stored hash
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// ChangePassword replaces the stored hash
func (u *User) ChangePassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError("VALIDATION_ERROR", "Password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	u.IncrementVersion()
	return nil
}

// IsActive returns true if the account may log in
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// RecordLogin stamps the last successful login
func (u *User) RecordLogin() {
	now := time.Now()
	u.LastLoginAt = &now
}

// SetPermissions replaces the agent's per-module grants
func (u *User) SetPermissions(perms []access.ModulePermission) error {
	if u.Role != module.RoleAgent {
		return shared.NewDomainError("VALIDATION_ERROR", "Only agents carry per-module permissions")
	}
	u.Permissions = perms
	u.IncrementVersion()
	return nil
}

// ToIdentity converts the user into the caller identity consumed by the
// access resolver.
func (u *User) ToIdentity() (access.Identity, error) {
	switch u.Role {
	case module.RoleSuperadmin:
		return access.Superadmin{UserID: u.ID}, nil
	case module.RoleAgence:
		if u.AgencyID == nil {
			return nil, shared.NewDomainError("INVALID_STATE", "Agency admin without agency")
		}
		return access.AgencyAdmin{UserID: u.ID, AgencyID: *u.AgencyID}, nil
	case module.RoleAgent:
		if u.AgencyID == nil {
			return nil, shared.NewDomainError("INVALID_STATE", "Agent without agency")
		}
		return access.Agent{UserID: u.ID, AgencyID: *u.AgencyID, Permissions: u.Permissions}, nil
	default:
		return nil, shared.NewDomainError("INVALID_STATE", "Unrecognized role")
	}
}
