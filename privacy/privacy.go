package privacy

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"slices"

	"github.com/jvdsande/harmony/schema"
	"github.com/jvdsande/harmony/schema/crud"
)

// Policy decision sentinel errors.
//
// These errors are used as return values from rules to indicate how the
// policy evaluation should proceed. Use errors.Is() to check for them:
//
//	if errors.Is(err, privacy.Allow) { ... }
var (
	// Allow may be returned by rules to indicate that the policy
	// evaluation should terminate with an allow decision.
	Allow = errors.New("harmony/privacy: allow rule")

	// Deny may be returned by rules to indicate that the policy
	// evaluation should terminate with a deny decision.
	Deny = errors.New("harmony/privacy: deny rule")

	// Skip may be returned by rules to indicate that the policy
	// evaluation should continue to the next rule.
	Skip = errors.New("harmony/privacy: skip rule")
)

// Allowf returns a formatted wrapped Allow decision.
func Allowf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Allow)...)
}

// Denyf returns a formatted wrapped Deny decision.
func Denyf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Deny)...)
}

// Skipf returns a formatted wrapped Skip decision.
func Skipf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Skip)...)
}

// ForbiddenError is returned by scopes when a policy denies a call.
type ForbiddenError struct {
	Kind     crud.Kind
	Decision error
}

// Error implements the error interface.
func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("harmony/privacy: %s forbidden: %v", e.Kind, e.Decision)
}

// Unwrap returns the decision.
func (e *ForbiddenError) Unwrap() error { return e.Decision }

// Status returns 403.
func (e *ForbiddenError) Status() int { return http.StatusForbidden }

// Name returns the GraphQL error name.
func (e *ForbiddenError) Name() string { return "Forbidden" }

// IsForbidden reports whether err is a ForbiddenError.
func IsForbidden(err error) bool {
	var e *ForbiddenError
	return errors.As(err, &e)
}

// Request is the CRUD call evaluated by a policy. Rules may rewrite its
// arguments.
type Request struct {
	Kind crud.Kind
	// Args are the call arguments. They are a copy owned by the request.
	Args map[string]any
	// Source is the parent value of the call.
	Source any
}

// NewRequest returns a request for a call of kind k.
func NewRequest(k crud.Kind, p schema.ResolveParams) *Request {
	args := maps.Clone(p.Args)
	if args == nil {
		args = map[string]any{}
	}
	if rec, ok := args["record"].(map[string]any); ok {
		args["record"] = maps.Clone(rec)
	}
	switch list := args["records"].(type) {
	case []any:
		recs := make([]any, len(list))
		for i, v := range list {
			if rec, ok := v.(map[string]any); ok {
				v = maps.Clone(rec)
			}
			recs[i] = v
		}
		args["records"] = recs
	case []map[string]any:
		recs := make([]map[string]any, len(list))
		for i, rec := range list {
			recs[i] = maps.Clone(rec)
		}
		args["records"] = recs
	}
	return &Request{Kind: k, Args: args, Source: p.Source}
}

// Records returns the record or records arguments of write calls.
func (r *Request) Records() []map[string]any {
	switch r.Kind {
	case crud.Create, crud.Update:
		if rec, ok := r.Args["record"].(map[string]any); ok {
			return []map[string]any{rec}
		}
	case crud.CreateMany, crud.UpdateMany:
		var out []map[string]any
		switch list := r.Args["records"].(type) {
		case []any:
			for _, v := range list {
				if rec, ok := v.(map[string]any); ok {
					out = append(out, rec)
				}
			}
		case []map[string]any:
			out = list
		}
		return out
	}
	return nil
}

// Filterable reports whether the call accepts a filter argument.
func (r *Request) Filterable() bool {
	return slices.Contains(crud.Queries(), r.Kind)
}

// Where restricts the filter argument to documents whose field equals
// value. A different existing constraint on the same field is kept and
// both must hold.
func (r *Request) Where(field string, value any) {
	f, _ := r.Args["filter"].(map[string]any)
	f = maps.Clone(f)
	if f == nil {
		f = map[string]any{}
	}
	if prev, ok := f[field]; ok && prev != value {
		and, _ := f["_and"].([]any)
		f["_and"] = append(slices.Clone(and), map[string]any{field: value})
	} else {
		f[field] = value
	}
	r.Args["filter"] = f
}

// Rule decides whether a call is allowed.
type Rule interface {
	Eval(ctx context.Context, r *Request) error
}

// RuleFunc type is an adapter which allows the use of ordinary functions
// as rules.
type RuleFunc func(context.Context, *Request) error

// Eval returns f(ctx, r).
func (f RuleFunc) Eval(ctx context.Context, r *Request) error {
	return f(ctx, r)
}

// AlwaysAllowRule returns a rule that always returns an Allow decision.
func AlwaysAllowRule() Rule {
	return fixedDecision{Allow}
}

// AlwaysDenyRule returns a rule that always returns a Deny decision.
func AlwaysDenyRule() Rule {
	return fixedDecision{Deny}
}

// ContextRule creates a rule from a context evaluation function.
// Returning nil is equivalent to returning Skip.
func ContextRule(eval func(context.Context) error) Rule {
	return RuleFunc(func(ctx context.Context, _ *Request) error {
		return eval(ctx)
	})
}

// OnKinds evaluates the given rule only on the given kinds.
func OnKinds(rule Rule, kinds ...crud.Kind) Rule {
	return RuleFunc(func(ctx context.Context, r *Request) error {
		if slices.Contains(kinds, r.Kind) {
			return rule.Eval(ctx, r)
		}
		return Skip
	})
}

// DenyKindsRule returns a rule denying the given kinds.
func DenyKindsRule(kinds ...crud.Kind) Rule {
	rule := RuleFunc(func(_ context.Context, r *Request) error {
		return Denyf("harmony/privacy: operation %s is not allowed", r.Kind)
	})
	return OnKinds(rule, kinds...)
}

// Policy is an ordered list of rules.
type Policy []Rule

// Eval evaluates the rules in order. A decision attached to the context
// with DecisionContext takes precedence.
func (policy Policy) Eval(ctx context.Context, r *Request) error {
	if decision, ok := DecisionFromContext(ctx); ok {
		return decision
	}
	for _, rule := range policy {
		switch decision := rule.Eval(ctx, r); {
		case decision == nil || errors.Is(decision, Skip):
		case errors.Is(decision, Allow):
			return nil
		default:
			return decision
		}
	}
	return nil
}

// Scope returns the scope evaluating the policy for calls of kind k.
func (policy Policy) Scope(k crud.Kind) schema.ScopeFunc {
	return func(ctx context.Context, p schema.ResolveParams) (map[string]any, error) {
		r := NewRequest(k, p)
		if err := policy.Eval(ctx, r); err != nil {
			if errors.Is(err, Deny) {
				return nil, &ForbiddenError{Kind: k, Decision: err}
			}
			return nil, err
		}
		return r.Args, nil
	}
}

// Scopes returns the scopes of the given kinds, or of every kind when none
// is given.
func (policy Policy) Scopes(kinds ...crud.Kind) map[crud.Kind]schema.ScopeFunc {
	if len(kinds) == 0 {
		kinds = crud.Kinds()
	}
	out := make(map[crud.Kind]schema.ScopeFunc, len(kinds))
	for _, k := range kinds {
		out[k] = policy.Scope(k)
	}
	return out
}

type decisionCtxKey struct{}

// DecisionContext creates a new context from the given parent context with
// a policy decision attached to it.
func DecisionContext(parent context.Context, decision error) context.Context {
	if decision == nil || errors.Is(decision, Skip) {
		return parent
	}
	return context.WithValue(parent, decisionCtxKey{}, decision)
}

// DecisionFromContext retrieves the policy decision from the context.
func DecisionFromContext(ctx context.Context) (error, bool) {
	decision, ok := ctx.Value(decisionCtxKey{}).(error)
	if ok && errors.Is(decision, Allow) {
		decision = nil
	}
	return decision, ok
}

type fixedDecision struct {
	decision error
}

func (f fixedDecision) Eval(context.Context, *Request) error {
	return f.decision
}
