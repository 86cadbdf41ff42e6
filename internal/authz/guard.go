package authz

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/dropDatabas3/gatekeeper/internal/domain/repository"
	"github.com/dropDatabas3/gatekeeper/internal/observability/logger"
)

// SystemResolver resolves the singleton resource of category "system", the
// implicit context for global, resource-less privileges.
type SystemResolver interface {
	SystemResourceID(ctx context.Context) (uuid.UUID, error)
}

// DecisionHook, when set, observes the outcome of every guard evaluation.
// Startup points it at the metrics counter.
var DecisionHook func(allowed bool)

// Guard evaluates privilege pre-checks for mutating operations. Every
// service calls the guard at the top of each write; on failure the wrapped
// operation is never executed.
type Guard struct {
	grants repository.GrantReader
	system SystemResolver
}

// NewGuard builds a Guard over the given grant reader and system resolver.
func NewGuard(grants repository.GrantReader, system SystemResolver) *Guard {
	return &Guard{grants: grants, system: system}
}

// Authorised checks that user holds all the privileges on resourceID.
// On failure it returns a *Error carrying description; the caller must not
// proceed with the guarded operation.
func (g *Guard) Authorised(ctx context.Context, user *repository.User, resourceID uuid.UUID, description string, privileges ...string) error {
	allowed, err := AuthorisedFor(ctx, g.grants, user, privileges, []uuid.UUID{resourceID})
	if err != nil {
		return err
	}
	if DecisionHook != nil {
		DecisionHook(allowed[resourceID])
	}
	if !allowed[resourceID] {
		logger.From(ctx).Debug("privilege check denied",
			logger.UserID(user.ID),
			logger.ResourceID(resourceID),
			logger.String("privileges", strings.Join(privileges, ",")))
		return Forbidden(description)
	}
	return nil
}

// AuthorisedSystem checks the privileges against the system resource.
func (g *Guard) AuthorisedSystem(ctx context.Context, user *repository.User, description string, privileges ...string) error {
	sysID, err := g.system.SystemResourceID(ctx)
	if err != nil {
		return err
	}
	return g.Authorised(ctx, user, sysID, description, privileges...)
}
