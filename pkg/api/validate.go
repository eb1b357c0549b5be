package api

import (
	"errors"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// newValidator returns a validator that names fields by their JSON keys and
// knows the request types of this package.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	})

	v.RegisterStructValidation(validateEndpoint, Endpoint{})
	return v
}

// validateEndpoint requires exactly one of node or the x/y pair, and finite
// coordinates.
func validateEndpoint(sl validator.StructLevel) {
	ep := sl.Current().Interface().(Endpoint)

	hasX, hasY := ep.X != nil, ep.Y != nil
	switch {
	case ep.Node != nil && (hasX || hasY):
		sl.ReportError(ep.Node, "node", "Node", "excluded_with", "x y")
	case ep.Node == nil && !hasX && !hasY:
		sl.ReportError(ep.Node, "node", "Node", "required_without_all", "x y")
	case hasX != hasY:
		if !hasX {
			sl.ReportError(ep.X, "x", "X", "required_with", "y")
		} else {
			sl.ReportError(ep.Y, "y", "Y", "required_with", "x")
		}
	case hasX && (math.IsNaN(*ep.X) || math.IsInf(*ep.X, 0)):
		sl.ReportError(*ep.X, "x", "X", "finite", "")
	case hasY && (math.IsNaN(*ep.Y) || math.IsInf(*ep.Y, 0)):
		sl.ReportError(*ep.Y, "y", "Y", "finite", "")
	}
}

// firstViolation returns the JSON path and a short message for the first
// validation failure in err.
func firstViolation(err error) (field, msg string) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "", err.Error()
	}
	fe := verrs[0]

	field = fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest // drop the top-level struct name
	}

	switch fe.Tag() {
	case "finite":
		msg = "must be a finite number"
	case "oneof":
		msg = "must be one of: " + fe.Param()
	case "excluded_with":
		msg = "give either a node or x and y, not both"
	case "required_without_all":
		msg = "a node or x and y is required"
	case "required_with":
		msg = "required together with " + fe.Param()
	default:
		msg = "failed " + fe.Tag() + " validation"
	}
	return field, msg
}
