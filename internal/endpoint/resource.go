package endpoint

import (
	"context"
	"fmt"
	"strconv"

	"github.com/smartbusiness/api2-go/pkg/sbapi"
)

// Caller performs one authenticated API request against an absolute URL.
type Caller interface {
	Call(ctx context.Context, method, rawURL string, body any) (*sbapi.Response, error)
}

var gerunds = map[sbapi.Operation]string{
	sbapi.OperationList:   "listing",
	sbapi.OperationGet:    "getting",
	sbapi.OperationCreate: "creating",
	sbapi.OperationUpdate: "updating",
	sbapi.OperationDelete: "deleting",
}

// call is one operation on a resource, before URL construction.
type call struct {
	op       sbapi.Operation
	parentID *int
	id       string
	list     *sbapi.ListParameters
	get      *sbapi.GetParameters
	payload  sbapi.Payload
}

// engine turns calls into requests for one definition.
type engine struct {
	def     *Definition
	baseURL string
	caller  Caller
}

func (e *engine) url(c call) (string, error) {
	route, err := e.def.Route(c.op)
	if err != nil {
		return "", err
	}

	var rawURL string

	switch c.op {
	case sbapi.OperationList:
		rawURL = ListURL(e.baseURL, route.Template, c.list)
	case sbapi.OperationGet:
		rawURL = GetURL(e.baseURL, route.Template, c.get)
	default:
		rawURL = e.baseURL + route.Template
	}

	var replacements []Replacement
	if e.def.Parent != "" && c.parentID != nil {
		replacements = append(replacements, Replacement{Placeholder: e.def.Parent, Value: strconv.Itoa(*c.parentID)})
	}

	if route.Placeholder != "" {
		replacements = append(replacements, Replacement{Placeholder: route.Placeholder, Value: c.id})
	}

	return Resolve(rawURL, replacements...)
}

func (e *engine) do(ctx context.Context, c call) (*sbapi.Response, error) {
	rawURL, err := e.url(c)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", gerunds[c.op], e.def.Name, err)
	}

	var body any
	if c.payload != nil {
		body = c.payload
	}

	resp, err := e.caller.Call(sbapi.WithOperation(ctx, e.def.Name, c.op), c.op.Method(), rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", gerunds[c.op], e.def.Name, err)
	}

	return resp, nil
}

func deleteCall(parentID *int, ids []int) (call, error) {
	if len(ids) == 0 {
		return call{}, sbapi.ErrNoIdentifiers
	}

	return call{op: sbapi.OperationDelete, parentID: parentID, id: JoinIDs(ids)}, nil
}

// Resource is a top-level REST resource driven by its Definition.
type Resource struct {
	engine engine
}

// NewResource creates a resource. baseURL must not end with a slash.
func NewResource(def *Definition, baseURL string, caller Caller) *Resource {
	return &Resource{engine: engine{def: def, baseURL: baseURL, caller: caller}}
}

// Definition returns the resource definition.
func (r *Resource) Definition() *Definition {
	return r.engine.def
}

// List lists the collection.
func (r *Resource) List(ctx context.Context, params *sbapi.ListParameters) (*sbapi.Response, error) {
	return r.engine.do(ctx, call{op: sbapi.OperationList, list: params})
}

// Get fetches one item.
func (r *Resource) Get(ctx context.Context, id int, params *sbapi.GetParameters) (*sbapi.Response, error) {
	return r.engine.do(ctx, call{op: sbapi.OperationGet, id: strconv.Itoa(id), get: params})
}

// Create creates an item.
func (r *Resource) Create(ctx context.Context, payload sbapi.Payload) (*sbapi.Response, error) {
	return r.engine.do(ctx, call{op: sbapi.OperationCreate, payload: payload})
}

// Update replaces an item.
func (r *Resource) Update(ctx context.Context, id int, payload sbapi.Payload) (*sbapi.Response, error) {
	return r.engine.do(ctx, call{op: sbapi.OperationUpdate, id: strconv.Itoa(id), payload: payload})
}

// Delete removes every item in ids with a single request.
func (r *Resource) Delete(ctx context.Context, ids []int) (*sbapi.Response, error) {
	c, err := deleteCall(nil, ids)
	if err != nil {
		return nil, fmt.Errorf("deleting %s: %w", r.engine.def.Name, err)
	}

	return r.engine.do(ctx, c)
}

// Nested is a resource living under a parent; every call names the parent id.
type Nested struct {
	engine engine
}

// NewNested creates a nested resource. def.Parent must be set.
func NewNested(def *Definition, baseURL string, caller Caller) *Nested {
	return &Nested{engine: engine{def: def, baseURL: baseURL, caller: caller}}
}

// Definition returns the resource definition.
func (n *Nested) Definition() *Definition {
	return n.engine.def
}

// List lists the collection under parentID.
func (n *Nested) List(ctx context.Context, parentID int, params *sbapi.ListParameters) (*sbapi.Response, error) {
	return n.engine.do(ctx, call{op: sbapi.OperationList, parentID: &parentID, list: params})
}

// Get fetches one item under parentID.
func (n *Nested) Get(ctx context.Context, parentID, id int, params *sbapi.GetParameters) (*sbapi.Response, error) {
	return n.engine.do(ctx, call{op: sbapi.OperationGet, parentID: &parentID, id: strconv.Itoa(id), get: params})
}

// Create creates an item under parentID.
func (n *Nested) Create(ctx context.Context, parentID int, payload sbapi.Payload) (*sbapi.Response, error) {
	return n.engine.do(ctx, call{op: sbapi.OperationCreate, parentID: &parentID, payload: payload})
}

// Update replaces an item under parentID.
func (n *Nested) Update(ctx context.Context, parentID, id int, payload sbapi.Payload) (*sbapi.Response, error) {
	return n.engine.do(ctx, call{op: sbapi.OperationUpdate, parentID: &parentID, id: strconv.Itoa(id), payload: payload})
}

// Delete removes every item in ids under parentID with a single request.
func (n *Nested) Delete(ctx context.Context, parentID int, ids []int) (*sbapi.Response, error) {
	c, err := deleteCall(&parentID, ids)
	if err != nil {
		return nil, fmt.Errorf("deleting %s: %w", n.engine.def.Name, err)
	}

	return n.engine.do(ctx, c)
}
