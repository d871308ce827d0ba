package identity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/voyago/backend/internal/domain/module"
	"github.com/voyago/backend/internal/domain/shared"
)

// AgencyStatus represents the status of an agency
type AgencyStatus string

const (
	AgencyStatusActive    AgencyStatus = "active"
	AgencyStatusInactive  AgencyStatus = "inactive"
	AgencyStatusSuspended AgencyStatus = "suspended"
)

// IsValid checks if the status is a valid AgencyStatus
func (s AgencyStatus) IsValid() bool {
	switch s {
	case AgencyStatusActive, AgencyStatusInactive, AgencyStatusSuspended:
		return true
	}
	return false
}

// ModuleList is a JSONB-stored list of module identifiers
type ModuleList []module.ID

// Value implements driver.Valuer for JSONB storage
func (l ModuleList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner for JSONB retrieval
func (l *ModuleList) Scan(value interface{}) error {
	if value == nil {
		*l = ModuleList{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("unsupported type for ModuleList scan")
	}
	if len(bytes) == 0 {
		*l = ModuleList{}
		return nil
	}
	return json.Unmarshal(bytes, l)
}

// Contains reports whether the list holds the given module
func (l ModuleList) Contains(id module.ID) bool {
	for _, m := range l {
		if m == id {
			return true
		}
	}
	return false
}

func (l ModuleList) without(id module.ID) ModuleList {
	out := make(ModuleList, 0, len(l))
	for _, m := range l {
		if m != id {
			out = append(out, m)
		}
	}
	return out
}

// Agency is the tenant aggregate. ActiveModules is the single source of truth
// for what the agency may use; RequestedModules holds activation requests
// awaiting superadmin approval.
type Agency struct {
	shared.BaseAggregateRoot
	Code             string       `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name             string       `gorm:"type:varchar(200);not null"`
	Status           AgencyStatus `gorm:"type:varchar(20);not null;default:'active'"`
	ContactName      string       `gorm:"type:varchar(100)"`
	ContactPhone     string       `gorm:"type:varchar(50)"`
	ContactEmail     string       `gorm:"type:varchar(200)"`
	Address          string       `gorm:"type:text"`
	ActiveModules    ModuleList   `gorm:"type:jsonb"`
	RequestedModules ModuleList   `gorm:"type:jsonb"`
	SuspendedAt      *time.Time
	Notes            string `gorm:"type:text"`
}

// NewAgency creates an active agency with no modules beyond the essentials
// (essential modules are implicit; they are never stored in ActiveModules).
func NewAgency(code, name string) (*Agency, error) {
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)
	if code == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Agency code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Agency name cannot be empty")
	}

	return &Agency{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		Status:            AgencyStatusActive,
		ActiveModules:     ModuleList{},
		RequestedModules:  ModuleList{},
	}, nil
}

// IsActive returns true if the agency may operate
func (a *Agency) IsActive() bool {
	return a.Status == AgencyStatusActive
}

// RequestModule queues a module for superadmin approval
func (a *Agency) RequestModule(registry *module.Registry, id module.ID) error {
	m, ok := registry.Get(id)
	if !ok {
		return shared.NewDomainError("NOT_FOUND", fmt.Sprintf("Unknown module %q", id))
	}
	if m.Essential {
		return shared.NewDomainError("VALIDATION_ERROR", "Essential modules are always active")
	}
	if a.ActiveModules.Contains(id) {
		return shared.NewDomainError("ALREADY_EXISTS", fmt.Sprintf("Module %q is already active", id))
	}
	if a.RequestedModules.Contains(id) {
		return shared.NewDomainError("ALREADY_EXISTS", fmt.Sprintf("Module %q is already requested", id))
	}

	a.RequestedModules = append(a.RequestedModules, id)
	a.IncrementVersion()
	return nil
}

// ApproveModule moves a requested module to the active list
func (a *Agency) ApproveModule(id module.ID) error {
	if !a.RequestedModules.Contains(id) {
		return shared.NewDomainError("NOT_FOUND", fmt.Sprintf("Module %q was not requested", id))
	}

	a.RequestedModules = a.RequestedModules.without(id)
	a.ActiveModules = append(a.ActiveModules, id)
	a.IncrementVersion()
	return nil
}

// RejectModule drops a pending request without activating it
func (a *Agency) RejectModule(id module.ID) error {
	if !a.RequestedModules.Contains(id) {
		return shared.NewDomainError("NOT_FOUND", fmt.Sprintf("Module %q was not requested", id))
	}

	a.RequestedModules = a.RequestedModules.without(id)
	a.IncrementVersion()
	return nil
}

// DeactivateModule removes a module from the active list
func (a *Agency) DeactivateModule(id module.ID) error {
	if !a.ActiveModules.Contains(id) {
		return shared.NewDomainError("NOT_FOUND", fmt.Sprintf("Module %q is not active", id))
	}

	a.ActiveModules = a.ActiveModules.without(id)
	a.IncrementVersion()
	return nil
}

// Suspend blocks the agency
func (a *Agency) Suspend(reason string) error {
	if a.Status == AgencyStatusSuspended {
		return shared.NewDomainError("INVALID_STATE", "Agency is already suspended")
	}
	now := time.Now()
	a.Status = AgencyStatusSuspended
	a.SuspendedAt = &now
	if reason != "" {
		a.Notes = reason
	}
	a.IncrementVersion()
	return nil
}

// Activate restores a suspended or inactive agency
func (a *Agency) Activate() {
	a.Status = AgencyStatusActive
	a.SuspendedAt = nil
	a.IncrementVersion()
}
