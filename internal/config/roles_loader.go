package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"dev.cogito.requiem/internal/debate/agents"
	"dev.cogito.requiem/internal/models"
)

// RolesFile is the on-disk shape of a role configuration document.
type RolesFile struct {
	Roles []agents.RoleConfig `yaml:"roles"`
}

// RolesLoader loads agent role definitions from a YAML file, so prompt and
// budget changes do not require a rebuild.
type RolesLoader struct {
	path  string
	roles []agents.RoleConfig
}

// NewRolesLoader creates a loader for the given path. An empty path means
// the built-in defaults are used.
func NewRolesLoader(path string) *RolesLoader {
	return &RolesLoader{path: path}
}

// Load reads, substitutes, defaults, and validates the role configuration.
func (l *RolesLoader) Load() ([]agents.RoleConfig, error) {
	if l.path == "" {
		l.roles = agents.DefaultRoles()
		return l.roles, nil
	}

	if _, err := os.Stat(l.path); os.IsNotExist(err) {
		return nil, fmt.Errorf("role configuration file does not exist: %s", l.path)
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read role configuration: %w", err)
	}

	return l.LoadFromString(string(data))
}

// LoadFromString parses role configuration from a YAML document.
func (l *RolesLoader) LoadFromString(yamlContent string) ([]agents.RoleConfig, error) {
	var file RolesFile
	if err := yaml.Unmarshal([]byte(yamlContent), &file); err != nil {
		return nil, fmt.Errorf("failed to parse role configuration: %w", err)
	}

	substituteEnvVars(file.Roles)
	applyRoleDefaults(file.Roles)

	if err := validateRoles(file.Roles); err != nil {
		return nil, fmt.Errorf("role configuration validation failed: %w", err)
	}

	l.roles = file.Roles
	return l.roles, nil
}

// GetRoles returns the last successfully loaded roles.
func (l *RolesLoader) GetRoles() []agents.RoleConfig {
	return l.roles
}

// substituteEnvVars replaces ${VAR_NAME} placeholders in prompt text.
func substituteEnvVars(roles []agents.RoleConfig) {
	for i := range roles {
		roles[i].SystemPrompt = os.ExpandEnv(roles[i].SystemPrompt)
	}
}

// applyRoleDefaults backfills omitted fields from the built-in role of the
// same name, so a YAML file can override only what it cares about.
func applyRoleDefaults(roles []agents.RoleConfig) {
	for i := range roles {
		base, ok := agents.RoleByName(agents.DefaultRoles(), roles[i].Name)
		if !ok {
			continue
		}
		if roles[i].Role == "" {
			roles[i].Role = base.Role
		}
		if roles[i].MaxIterations <= 0 {
			roles[i].MaxIterations = base.MaxIterations
		}
		if roles[i].Temperature <= 0 {
			roles[i].Temperature = base.Temperature
		}
		if roles[i].MaxTokens <= 0 {
			roles[i].MaxTokens = base.MaxTokens
		}
		if roles[i].SystemPrompt == "" {
			roles[i].SystemPrompt = base.SystemPrompt
		}
	}
}

func validateRoles(roles []agents.RoleConfig) error {
	if len(roles) == 0 {
		return fmt.Errorf("at least one role is required")
	}

	seen := make(map[models.AgentName]bool)
	hasSynthesizer := false
	for _, role := range roles {
		if role.Name == "" {
			return fmt.Errorf("role name is required")
		}
		if seen[role.Name] {
			return fmt.Errorf("duplicate role name: %s", role.Name)
		}
		seen[role.Name] = true

		switch role.Role {
		case models.RolePro, models.RoleCon, models.RoleManager:
		default:
			return fmt.Errorf("role %s has invalid role kind: %s", role.Name, role.Role)
		}
		if role.Name == models.AgentSynthesizer {
			hasSynthesizer = true
		}
		if role.SystemPrompt == "" {
			return fmt.Errorf("role %s has no system prompt", role.Name)
		}
	}

	if !hasSynthesizer {
		return fmt.Errorf("a %s role is required", models.AgentSynthesizer)
	}
	return nil
}
