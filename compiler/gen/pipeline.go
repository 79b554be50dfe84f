package gen

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"

	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/jvdsande/harmony/schema"
)

// Pipeline wraps resolve with scopes and transforms.
//
// Scopes run in order; each may return rewritten arguments for the next
// one. A scope error stops the remaining scopes and resolve is not called.
// Transforms run in order over the outcome of resolve, error included, and
// may replace the value or set or clear the error. A transform error stops
// the remaining transforms and becomes the outcome error. An error that
// survives is returned as a *gqlerror.Error.
func Pipeline(resolve schema.ResolveFunc, scopes []schema.ScopeFunc, transforms []schema.TransformFunc) schema.ResolveFunc {
	if len(scopes) == 0 && len(transforms) == 0 {
		return func(ctx context.Context, p schema.ResolveParams) (any, error) {
			v, err := resolve(ctx, p)
			if err != nil {
				return nil, GraphQLError(err)
			}
			return v, nil
		}
	}
	return func(ctx context.Context, p schema.ResolveParams) (any, error) {
		for _, scope := range scopes {
			if scope == nil {
				continue
			}
			args, err := scope(ctx, p)
			if err != nil {
				return nil, GraphQLError(err)
			}
			if args != nil {
				p.Args = args
			}
		}
		out := &schema.Outcome{}
		out.Value, out.Err = resolve(ctx, p)
		for _, transform := range transforms {
			if transform == nil {
				continue
			}
			if err := transform(ctx, p, out); err != nil {
				out.Err = err
				break
			}
		}
		if out.Err != nil {
			return nil, GraphQLError(out.Err)
		}
		return out.Value, nil
	}
}

// GraphQLError converts err to a GraphQL field error. The extensions carry
// the error name, its status (from a Status() int method, 500 otherwise)
// and the stack of the conversion. Errors that already are GraphQL errors
// are returned unchanged.
func GraphQLError(err error) *gqlerror.Error {
	if err == nil {
		return nil
	}
	var gqlErr *gqlerror.Error
	if errors.As(err, &gqlErr) {
		return gqlErr
	}
	return &gqlerror.Error{
		Err:     err,
		Message: err.Error(),
		Extensions: map[string]any{
			"name":       errorName(err),
			"status":     errorStatus(err),
			"stacktrace": stacktrace(2),
		},
	}
}

func errorStatus(err error) int {
	var se interface{ Status() int }
	if errors.As(err, &se) {
		return se.Status()
	}
	return http.StatusInternalServerError
}

func errorName(err error) string {
	var named interface{ Name() string }
	if errors.As(err, &named) {
		return named.Name()
	}
	name := fmt.Sprintf("%T", err)
	name = strings.TrimLeft(name, "*")
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	if name == "" || name[0] < 'A' || name[0] > 'Z' {
		return "Error"
	}
	return name
}

func stacktrace(skip int) []string {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(skip+1, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	var out []string
	for {
		f, more := frames.Next()
		out = append(out, fmt.Sprintf("%s (%s:%d)", f.Function, f.File, f.Line))
		if !more {
			break
		}
	}
	return out
}
