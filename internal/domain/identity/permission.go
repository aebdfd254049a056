package identity

import (
	"regexp"
	"sort"
	"strings"

	"github.com/elimu/backend/internal/domain/shared"
)

// Permission is a dotted capability string, e.g. "accounting.journal.post"
// or "students.read". The catalogue of valid permissions is loaded from a
// seed file at startup; nothing in the binary hard-codes it.
type Permission string

var permissionRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*(\.[a-z][a-z0-9_]*)+$`)

// Valid checks the permission string shape
func (p Permission) Valid() bool {
	return permissionRegex.MatchString(string(p))
}

// Resource returns everything before the final action segment
func (p Permission) Resource() string {
	idx := strings.LastIndex(string(p), ".")
	return string(p)[:idx]
}

// Action returns the final segment
func (p Permission) Action() string {
	idx := strings.LastIndex(string(p), ".")
	return string(p)[idx+1:]
}

// PermissionDefinition is one catalogue entry from the seed file
type PermissionDefinition struct {
	Code        Permission `yaml:"code"`
	Description string     `yaml:"description"`
}

// PermissionRegistry is the immutable catalogue of permissions the system
// recognises. It is built once at startup and never mutated; roles may
// only grant permissions the registry knows.
type PermissionRegistry struct {
	byCode map[Permission]PermissionDefinition
	codes  []Permission
}

// NewPermissionRegistry builds a registry from catalogue entries
func NewPermissionRegistry(defs []PermissionDefinition) (*PermissionRegistry, error) {
	if len(defs) == 0 {
		return nil, shared.NewDomainError("EMPTY_CATALOGUE", "Permission catalogue cannot be empty")
	}

	byCode := make(map[Permission]PermissionDefinition, len(defs))
	codes := make([]Permission, 0, len(defs))
	for _, def := range defs {
		if !def.Code.Valid() {
			return nil, shared.NewDomainError("INVALID_PERMISSION",
				"Malformed permission code: "+string(def.Code))
		}
		if _, dup := byCode[def.Code]; dup {
			return nil, shared.NewDomainError("DUPLICATE_PERMISSION",
				"Duplicate permission code: "+string(def.Code))
		}
		byCode[def.Code] = def
		codes = append(codes, def.Code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })

	return &PermissionRegistry{byCode: byCode, codes: codes}, nil
}

// Knows reports whether the permission is in the catalogue
func (r *PermissionRegistry) Knows(p Permission) bool {
	_, ok := r.byCode[p]
	return ok
}

// Lookup returns the catalogue entry for a permission
func (r *PermissionRegistry) Lookup(p Permission) (PermissionDefinition, bool) {
	def, ok := r.byCode[p]
	return def, ok
}

// All returns every permission code in sorted order
func (r *PermissionRegistry) All() []Permission {
	out := make([]Permission, len(r.codes))
	copy(out, r.codes)
	return out
}

// ForResource returns the catalogue entries under a resource prefix, so
// "accounting" covers "accounting.journal.post" as well as
// "accounting.accounts.read"
func (r *PermissionRegistry) ForResource(resource string) []PermissionDefinition {
	out := make([]PermissionDefinition, 0)
	for _, code := range r.codes {
		if code.Resource() == resource || strings.HasPrefix(string(code), resource+".") {
			out = append(out, r.byCode[code])
		}
	}
	return out
}

// Len returns the catalogue size
func (r *PermissionRegistry) Len() int {
	return len(r.codes)
}
