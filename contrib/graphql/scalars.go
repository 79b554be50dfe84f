package graphql

import (
	"context"
	"fmt"
	"time"

	gql "github.com/99designs/gqlgen/graphql"

	"github.com/jvdsande/harmony/compiler/gen"
)

// Scalar bindings for gqlgen. The Date and Number scalars bind to the
// Marshal and Unmarshal pairs of this package.
const (
	DateModel   = "github.com/jvdsande/harmony/contrib/graphql.Date"
	NumberModel = "github.com/jvdsande/harmony/contrib/graphql.Number"
	JSONModel   = "github.com/99designs/gqlgen/graphql.Any"
	IDModel     = "github.com/99designs/gqlgen/graphql.ID"
)

// MarshalDate writes t as an RFC 3339 string.
func MarshalDate(t time.Time) gql.Marshaler {
	return gql.MarshalTime(t)
}

// UnmarshalDate reads an RFC 3339 string or a number of milliseconds since
// the Unix epoch.
func UnmarshalDate(v any) (time.Time, error) {
	switch v := v.(type) {
	case time.Time:
		return v, nil
	case string:
		return gql.UnmarshalTime(v)
	case int, int32, int64, float64:
		ms, err := gql.UnmarshalFloat(v)
		if err != nil {
			return time.Time{}, err
		}
		return time.UnixMilli(int64(ms)).UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("%T is not a date", v)
	}
}

// MarshalNumber writes f as a GraphQL float.
func MarshalNumber(f float64) gql.Marshaler {
	return gql.MarshalFloat(f)
}

// UnmarshalNumber reads any numeric input.
func UnmarshalNumber(v any) (float64, error) {
	return gql.UnmarshalFloat(v)
}

// AddError records err on the response of the current operation with the
// harmony error extensions.
func AddError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	gql.AddError(ctx, gen.GraphQLError(err))
}
