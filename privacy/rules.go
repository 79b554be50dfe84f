package privacy

import (
	"context"
	"fmt"
	"slices"

	"github.com/jvdsande/harmony/schema/crud"
)

// Viewer represents the authenticated user making a request.
// This interface should be implemented by application-specific user types.
type Viewer interface {
	// GetID returns the viewer's unique identifier.
	GetID() string
	// GetRoles returns the viewer's roles.
	GetRoles() []string
	// GetTenantID returns the viewer's tenant identifier for multi-tenancy.
	// Returns empty string if not applicable.
	GetTenantID() string
}

// viewerCtxKey is the context key for storing the viewer.
type viewerCtxKey struct{}

// WithViewer returns a new context with the viewer attached.
func WithViewer(ctx context.Context, viewer Viewer) context.Context {
	return context.WithValue(ctx, viewerCtxKey{}, viewer)
}

// ViewerFromContext retrieves the viewer from the context.
// Returns nil if no viewer is present.
func ViewerFromContext(ctx context.Context) Viewer {
	v, _ := ctx.Value(viewerCtxKey{}).(Viewer)
	return v
}

// SimpleViewer is a basic implementation of the Viewer interface.
// Use this for testing or simple use cases.
type SimpleViewer struct {
	UserID   string
	Roles    []string
	TenantID string
}

// GetID returns the user ID.
func (v *SimpleViewer) GetID() string {
	return v.UserID
}

// GetRoles returns the user's roles.
func (v *SimpleViewer) GetRoles() []string {
	return v.Roles
}

// GetTenantID returns the tenant ID.
func (v *SimpleViewer) GetTenantID() string {
	return v.TenantID
}

// DenyIfNoViewer returns a rule that denies access if no viewer is present in the context.
// This is typically used as the first rule in a policy to require authentication.
//
// Example:
//
//	privacy.Policy{
//	    privacy.DenyIfNoViewer(),
//	    privacy.HasRole("admin"),
//	    privacy.AlwaysDenyRule(),
//	}
func DenyIfNoViewer() Rule {
	return ContextRule(func(ctx context.Context) error {
		if ViewerFromContext(ctx) == nil {
			return Denyf("harmony/privacy: viewer required")
		}
		return Skip
	})
}

// HasRole returns a rule that allows access if the viewer has the specified role.
// Skips if the viewer doesn't have the role (allows next rule to evaluate).
func HasRole(role string) Rule {
	return HasAnyRole(role)
}

// HasAnyRole returns a rule that allows access if the viewer has any of the specified roles.
// Skips if the viewer doesn't have any of the roles.
//
// Example:
//
//	privacy.Policy{
//	    privacy.DenyIfNoViewer(),
//	    privacy.HasAnyRole("admin", "moderator"),
//	    privacy.AlwaysDenyRule(),
//	}
func HasAnyRole(roles ...string) Rule {
	return ContextRule(func(ctx context.Context) error {
		viewer := ViewerFromContext(ctx)
		if viewer == nil {
			return Skip
		}
		viewerRoles := viewer.GetRoles()
		for _, role := range roles {
			if slices.Contains(viewerRoles, role) {
				return Allow
			}
		}
		return Skip
	})
}

// IsOwner returns a rule that allows create and update calls whose records
// all carry the viewer ID in field. It skips other kinds, and records that
// do not set the field.
//
// Example:
//
//	privacy.Policy{
//	    privacy.DenyIfNoViewer(),
//	    privacy.IsOwner("ownerId"),
//	    privacy.AlwaysDenyRule(),
//	}
func IsOwner(field string) Rule {
	return RuleFunc(func(ctx context.Context, r *Request) error {
		viewer := ViewerFromContext(ctx)
		records := r.Records()
		if viewer == nil || len(records) == 0 {
			return Skip
		}
		for _, rec := range records {
			value, ok := rec[field]
			if !ok || !sameID(value, viewer.GetID()) {
				return Skip
			}
		}
		return Allow
	})
}

// OwnerFilter returns a rule restricting read calls to documents whose field
// holds the viewer ID. Calls without a viewer are denied.
func OwnerFilter(field string) Rule {
	return RuleFunc(func(ctx context.Context, r *Request) error {
		if !r.Filterable() {
			return Skip
		}
		viewer := ViewerFromContext(ctx)
		if viewer == nil {
			return Denyf("harmony/privacy: viewer required to read %s", field)
		}
		r.Where(field, viewer.GetID())
		return Skip
	})
}

// TenantRule returns a rule isolating tenants on field. Read calls are
// restricted to the viewer tenant. Create and update calls are denied when a
// record targets another tenant. Create records lacking the field are
// stamped with the viewer tenant.
//
// Example:
//
//	privacy.Policy{
//	    privacy.DenyIfNoViewer(),
//	    privacy.TenantRule("tenantId"),
//	}
func TenantRule(field string) Rule {
	return RuleFunc(func(ctx context.Context, r *Request) error {
		viewer := ViewerFromContext(ctx)
		if viewer == nil {
			return Skip
		}
		tenant := viewer.GetTenantID()
		if tenant == "" {
			return Skip
		}
		if r.Filterable() {
			r.Where(field, tenant)
			return Skip
		}
		for _, rec := range r.Records() {
			value, ok := rec[field]
			switch {
			case !ok && (r.Kind == crud.Create || r.Kind == crud.CreateMany):
				rec[field] = tenant
			case ok && !sameID(value, tenant):
				return Denyf("harmony/privacy: tenant mismatch on %s", field)
			}
		}
		return Skip
	})
}

func sameID(value any, id string) bool {
	switch v := value.(type) {
	case string:
		return v == id
	case fmt.Stringer:
		return v.String() == id
	case nil:
		return false
	default:
		return fmt.Sprint(v) == id
	}
}
