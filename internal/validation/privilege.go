package validation

import "regexp"

// Privilege id rules:
// - Lowercase only.
// - Colon-separated segments, e.g. "group:resource:edit-resource".
// - Each segment starts and ends with [a-z0-9]; hyphens allowed inside.
// - Length 1..128 overall.
//
// Examples valid: group:resource:edit-resource, system:group:create-group
// Examples invalid: "", Group:Resource:Edit, :lead, trail:, "a b"
var privilegeIDRe = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9:-]{0,126}[a-z0-9])?$`)

// ValidPrivilegeID reports whether id matches the allowed pattern.
func ValidPrivilegeID(id string) bool {
	return privilegeIDRe.MatchString(id)
}

// Role name rules: same shape as privilege segments, no colons.
var roleNameRe = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9_\.-]{0,62}[a-z0-9])?$`)

// ValidRoleName reports whether name is acceptable for a user-created role.
func ValidRoleName(name string) bool {
	return roleNameRe.MatchString(name)
}
