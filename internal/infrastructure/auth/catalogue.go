package auth

import (
	"fmt"
	"os"

	"github.com/elimu/backend/internal/domain/identity"
	"gopkg.in/yaml.v3"
)

// permissionCatalogueFile is the shape of the permissions seed file
type permissionCatalogueFile struct {
	Permissions []identity.PermissionDefinition `yaml:"permissions"`
}

// LoadPermissionCatalogue reads the permission seed file and builds the
// registry. The catalogue is the single source of truth for which
// permissions exist; roles can only grant what it lists.
func LoadPermissionCatalogue(path string) (*identity.PermissionRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read permission catalogue: %w", err)
	}

	var file permissionCatalogueFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse permission catalogue: %w", err)
	}

	registry, err := identity.NewPermissionRegistry(file.Permissions)
	if err != nil {
		return nil, fmt.Errorf("invalid permission catalogue %s: %w", path, err)
	}
	return registry, nil
}
