package endpoint

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/smartbusiness/api2-go/pkg/sbapi"
)

// Static errors for err113 compliance.
var (
	ErrInvalidDefinition = errors.New("invalid resource definition")
)

// Route is the path template of one operation and the placeholder that
// receives the item id (Get, Update) or the joined ids (Delete).
type Route struct {
	Template    string
	Placeholder string
}

// Definition describes a REST resource: its name, the scopes it requires,
// the placeholder of its parent id (for nested resources) and one route per
// supported operation.
type Definition struct {
	Name   string
	Scopes []sbapi.Scope
	Parent string
	Routes map[sbapi.Operation]Route
}

// Supports reports whether op has a route.
func (d *Definition) Supports(op sbapi.Operation) bool {
	_, ok := d.Routes[op]

	return ok
}

// Route returns the route of op or ErrUnsupportedOperation.
func (d *Definition) Route(op sbapi.Operation) (Route, error) {
	route, ok := d.Routes[op]
	if !ok {
		return Route{}, fmt.Errorf("%w: %s %s", sbapi.ErrUnsupportedOperation, op, d.Name)
	}

	return route, nil
}

// Capabilities returns the supported operations in canonical order.
func (d *Definition) Capabilities() []sbapi.Operation {
	var ops []sbapi.Operation

	for _, op := range sbapi.Operations() {
		if d.Supports(op) {
			ops = append(ops, op)
		}
	}

	return ops
}

// Validate checks that every template contains exactly the placeholders its
// route and the parent declare, and that list/create routes take no item id.
func (d *Definition) Validate() error {
	if d.Name == "" || len(d.Routes) == 0 {
		return fmt.Errorf("%w: name and routes are required", ErrInvalidDefinition)
	}

	for op, route := range d.Routes {
		if op.Method() == "" {
			return fmt.Errorf("%w: %s: unknown operation %q", ErrInvalidDefinition, d.Name, op)
		}

		var expected []string
		if d.Parent != "" {
			expected = append(expected, "{"+d.Parent+"}")
		}

		switch op {
		case sbapi.OperationList, sbapi.OperationCreate:
			if route.Placeholder != "" {
				return fmt.Errorf("%w: %s %s: collection route has an item placeholder", ErrInvalidDefinition, d.Name, op)
			}
		default:
			if route.Placeholder == "" {
				return fmt.Errorf("%w: %s %s: item placeholder is required", ErrInvalidDefinition, d.Name, op)
			}

			expected = append(expected, "{"+route.Placeholder+"}")
		}

		actual := Placeholders(route.Template)
		slices.Sort(expected)
		slices.Sort(actual)

		if !slices.Equal(expected, actual) {
			return fmt.Errorf("%w: %s %s: template %s has placeholders [%s], want [%s]",
				ErrInvalidDefinition, d.Name, op, route.Template,
				strings.Join(actual, " "), strings.Join(expected, " "))
		}
	}

	return nil
}
