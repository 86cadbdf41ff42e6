package authz

// Privilege ids referenced by the services. The full catalog lives in the
// seeded privileges table; these are the ones checked in code.
const (
	PrivCreateResource = "group:resource:create-resource"
	PrivEditResource   = "group:resource:edit-resource"
	PrivViewResource   = "group:resource:view-resource"
	PrivDeleteResource = "group:resource:delete-resource"
	PrivCreateRole     = "group:role:create-role"
	PrivAssignRole     = "group:user:assign-role"
	PrivCreateGroup    = "system:group:create-group"
)
