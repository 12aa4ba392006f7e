package rbac

import (
	"context"
	"encoding/json"
	"os"

	"github.com/salonhq/salonhq/internal/config"
	ierr "github.com/salonhq/salonhq/internal/errors"
	"github.com/salonhq/salonhq/internal/types"
)

// Service handles permission checks with set-based lookups. The role
// matrix is static; it is passed explicitly into the services that gate
// operations rather than consulted through ambient globals.
type Service struct {
	// role -> entity -> action -> allowed (hot path - O(1))
	permissions map[string]map[string]map[string]bool

	// Full role definitions with metadata (for API responses)
	roles map[string]*Role
}

// Role represents a role with metadata
type Role struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Permissions map[string][]string `json:"permissions"`
}

// defaultRoles is the built-in role -> capability matrix for salon staff.
// A JSON file referenced by rbac.roles_config_path overrides it wholesale.
var defaultRoles = map[string]*Role{
	"owner": {
		Name: "Owner",
		Permissions: map[string][]string{
			"checkout": {"create", "read", "update", "discount", "payment", "complete"},
			"invoice":  {"read", "list"},
		},
	},
	"manager": {
		Name: "Branch Manager",
		Permissions: map[string][]string{
			"checkout": {"create", "read", "update", "discount", "payment", "complete"},
			"invoice":  {"read", "list"},
		},
	},
	"receptionist": {
		Name: "Receptionist",
		Permissions: map[string][]string{
			"checkout": {"create", "read", "update", "payment", "complete"},
			"invoice":  {"read"},
		},
	},
	"stylist": {
		Name: "Stylist",
		Permissions: map[string][]string{
			"checkout": {"read"},
		},
	},
	"accountant": {
		Name: "Accountant",
		Permissions: map[string][]string{
			"checkout": {"read"},
			"invoice":  {"read", "list"},
		},
	},
}

// NewService builds the permission tables from the built-in matrix or an
// override file
func NewService(cfg *config.Configuration) (*Service, error) {
	roles := defaultRoles

	if cfg != nil && cfg.RBAC.RolesConfigPath != "" {
		data, err := os.ReadFile(cfg.RBAC.RolesConfigPath)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to read roles config").
				Mark(ierr.ErrSystem)
		}
		var loaded map[string]*Role
		if err := json.Unmarshal(data, &loaded); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to parse roles config").
				Mark(ierr.ErrSystem)
		}
		roles = loaded
	}

	permissions := make(map[string]map[string]map[string]bool)
	for roleID, role := range roles {
		role.ID = roleID
		permissions[roleID] = make(map[string]map[string]bool)
		for entity, actions := range role.Permissions {
			permissions[roleID][entity] = make(map[string]bool)
			for _, action := range actions {
				permissions[roleID][entity][action] = true
			}
		}
	}

	return &Service{permissions: permissions, roles: roles}, nil
}

// Can reports whether any of the given roles permits the action on the entity
func (s *Service) Can(roles []string, entity, action string) bool {
	// Empty roles = internal caller, full access
	if len(roles) == 0 {
		return true
	}
	for _, role := range roles {
		if entities, ok := s.permissions[role]; ok {
			if actions, ok := entities[entity]; ok && actions[action] {
				return true
			}
		}
	}
	return false
}

// Authorize checks the context roles against the matrix and returns a
// permission error when the action is not allowed
func (s *Service) Authorize(ctx context.Context, entity, action string) error {
	roles := types.GetRoles(ctx)
	if s.Can(roles, entity, action) {
		return nil
	}
	return ierr.NewError("operation not permitted for role").
		WithHintf("Your role does not permit %s on %s", action, entity).
		WithReportableDetails(map[string]any{
			"entity": entity,
			"action": action,
			"roles":  roles,
		}).
		Mark(ierr.ErrPermission)
}

// GetRole returns the full role definition, if present
func (s *Service) GetRole(id string) (*Role, bool) {
	role, ok := s.roles[id]
	return role, ok
}
