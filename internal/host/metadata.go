// Package host defines the metadata and invocation surface a host resource
// framework exposes to the tool bridge. Adapters implement Domain, Resource
// and Invoker once per framework; everything upstream of them (schema
// compilation, discovery, dispatch) only ever sees these types.
package host

// Kind names a primitive or composite attribute type.
type Kind string

const (
	KindString   Kind = "string"
	KindInteger  Kind = "integer"
	KindNumber   Kind = "number"
	KindBoolean  Kind = "boolean"
	KindArray    Kind = "array"
	KindMap      Kind = "map"
	KindEnum     Kind = "enum"
	KindUUID     Kind = "uuid"
	KindDate     Kind = "date"
	KindDateTime Kind = "datetime"
)

// Type describes the shape of an attribute or argument value.
// Items is set for arrays, Fields for maps and Values for enums.
type Type struct {
	Kind   Kind     `yaml:"kind" json:"kind"`
	Items  *Type    `yaml:"items,omitempty" json:"items,omitempty"`
	Fields []Field  `yaml:"fields,omitempty" json:"fields,omitempty"`
	Values []string `yaml:"values,omitempty" json:"values,omitempty"`
}

// Field is a named member of a map type.
type Field struct {
	Name        string `yaml:"name" json:"name"`
	Type        Type   `yaml:"type" json:"type"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Required    bool   `yaml:"required,omitempty" json:"required,omitempty"`
}

// Attribute is a stored property of a resource.
type Attribute struct {
	Name        string `yaml:"name" json:"name"`
	Type        Type   `yaml:"type" json:"type"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Writable    bool   `yaml:"writable,omitempty" json:"writable,omitempty"`
	Public      bool   `yaml:"public,omitempty" json:"public,omitempty"`
}

// Argument is an input declared by an action in addition to accepted
// attributes. Only public arguments are exposed to tool callers.
type Argument struct {
	Name        string `yaml:"name" json:"name"`
	Type        Type   `yaml:"type" json:"type"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Public      bool   `yaml:"public,omitempty" json:"public,omitempty"`
}

// ActionType classifies what an action does to its resource.
type ActionType string

const (
	ActionRead    ActionType = "read"
	ActionCreate  ActionType = "create"
	ActionUpdate  ActionType = "update"
	ActionDestroy ActionType = "destroy"
	ActionGeneric ActionType = "action"
)

// Action is a typed operation declared on a resource.
type Action struct {
	Name        string     `yaml:"name" json:"name"`
	Type        ActionType `yaml:"type" json:"type"`
	Accept      []string   `yaml:"accept,omitempty" json:"accept,omitempty"`
	Arguments   []Argument `yaml:"arguments,omitempty" json:"arguments,omitempty"`
	Description string     `yaml:"description,omitempty" json:"description,omitempty"`
	// Paginated reports whether a read action supports result shaping
	// (run_query, count, exists).
	Paginated bool `yaml:"paginated,omitempty" json:"paginated,omitempty"`
}

// IsQuery reports whether the action only reads data.
func (a Action) IsQuery() bool {
	return a.Type == ActionRead
}

// IsMutation reports whether the action writes resource attributes.
func (a Action) IsMutation() bool {
	switch a.Type {
	case ActionCreate, ActionUpdate, ActionDestroy:
		return true
	}
	return false
}

// Accepts reports whether attribute name is in the action's accept list.
func (a Action) Accepts(name string) bool {
	for _, accepted := range a.Accept {
		if accepted == name {
			return true
		}
	}
	return false
}

// Resource is read-only metadata for one host resource.
type Resource interface {
	Name() string
	Attributes() []Attribute
	Action(name string) (Action, bool)
}

// ToolDefinition binds an exposed tool name to a resource action.
type ToolDefinition struct {
	Name             string
	Resource         Resource
	Action           Action
	Description      string
	ActionParameters []string
}

// Domain is a named group of tool definitions.
type Domain interface {
	Name() string
	// Tools returns the domain's tool definitions in declaration order.
	Tools() []ToolDefinition
}
