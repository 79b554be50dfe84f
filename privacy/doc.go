// Package privacy turns access rules into model scopes.
//
// A Policy is an ordered list of rules evaluated before a generated CRUD
// resolver runs. Each rule returns a decision:
//
//   - Allow: grants access and stops evaluation
//   - Deny: rejects the call and stops evaluation
//   - Skip (or nil): continues with the next rule
//
// When every rule skips, the call is allowed. End a policy with
// AlwaysDenyRule to deny by default.
//
// Rules see the call through a Request and may restrict it, for example by
// adding filter clauses. The restricted arguments are what the adapter
// receives:
//
//	policy := privacy.Policy{
//	    privacy.DenyIfNoViewer(),
//	    privacy.HasRole("admin"),
//	    privacy.TenantRule("tenantId"),
//	    privacy.OnKinds(privacy.IsOwner("ownerId"), crud.Update, crud.Delete),
//	}
//	model := schema.Model{
//	    Name:   "invoice",
//	    Scopes: policy.Scopes(),
//	}
//
// # Viewer
//
// Rules read the authenticated user from the context:
//
//	ctx = privacy.WithViewer(ctx, &privacy.SimpleViewer{
//	    UserID:   "user-123",
//	    Roles:    []string{"user"},
//	    TenantID: "tenant-abc",
//	})
//
// # Error Handling
//
// A Deny decision surfaces as a *ForbiddenError. Its status is 403, which
// the GraphQL error extensions report.
package privacy
