package access

import (
	"github.com/voyago/backend/internal/domain/access"
	"github.com/voyago/backend/internal/domain/module"
)

// ModuleResponse is the read model of one module as seen by a caller
type ModuleResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Essential   bool     `json:"essential"`
	Status      string   `json:"status"`
	Actions     []string `json:"actions"`
}

// RequestModuleRequest queues a module activation for approval
type RequestModuleRequest struct {
	ModuleID string `json:"module_id"`
}

// ApproveModuleRequest approves a pending module activation
type ApproveModuleRequest struct {
	AgencyID string `json:"agency_id"`
	ModuleID string `json:"module_id"`
}

func toModuleResponse(m module.Module, status access.Status) ModuleResponse {
	actions := make([]string, 0, len(m.Actions))
	for _, a := range m.Actions {
		actions = append(actions, string(a))
	}
	return ModuleResponse{
		ID:          string(m.ID),
		Name:        m.Name,
		Description: m.Description,
		Category:    string(m.Category),
		Essential:   m.Essential,
		Status:      string(status),
		Actions:     actions,
	}
}
