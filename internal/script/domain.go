// Package script is a host adapter whose resources are declared in YAML
// domain files and whose actions are Starlark scripts.
package script

import (
	"fmt"

	"github.com/barnabasJ/ash-ai/internal/host"
	"github.com/barnabasJ/ash-ai/internal/persistence"
)

// Default scripts for actions declared without one.
var defaultScripts = map[host.ActionType]string{
	host.ActionRead:   "result = store.all()",
	host.ActionCreate: "result = store.insert(input)",
}

// Resource is a scripted resource.
type Resource struct {
	name       string
	attributes []host.Attribute
	actions    []host.Action
	scripts    map[string]string
}

var _ host.Resource = (*Resource)(nil)

// Name implements host.Resource.
func (r *Resource) Name() string { return r.name }

// Attributes implements host.Resource.
func (r *Resource) Attributes() []host.Attribute { return r.attributes }

// Action implements host.Resource.
func (r *Resource) Action(name string) (host.Action, bool) {
	for _, action := range r.actions {
		if action.Name == name {
			return action, true
		}
	}
	return host.Action{}, false
}

// Script returns the Starlark source of the named action.
func (r *Resource) Script(action string) (string, bool) {
	code, ok := r.scripts[action]
	return code, ok
}

// Domain is a scripted domain.
type Domain struct {
	name      string
	resources []*Resource
	tools     []host.ToolDefinition
}

var _ host.Domain = (*Domain)(nil)

// Name implements host.Domain.
func (d *Domain) Name() string { return d.name }

// Tools implements host.Domain.
func (d *Domain) Tools() []host.ToolDefinition { return d.tools }

// Resources returns the domain's resources in declaration order.
func (d *Domain) Resources() []*Resource { return d.resources }

// Load builds a domain from its definition. Every tool must reference a
// declared resource and action, and every action must have a script unless
// it is a read or create action.
func Load(def *persistence.DomainDefinition) (*Domain, error) {
	d := &Domain{name: def.Name}
	byName := make(map[string]*Resource, len(def.Resources))

	for _, rd := range def.Resources {
		if rd.Name == "" {
			return nil, fmt.Errorf("domain %s: resource without a name", def.Name)
		}
		if _, dup := byName[rd.Name]; dup {
			return nil, fmt.Errorf("domain %s: duplicate resource %s", def.Name, rd.Name)
		}

		r := &Resource{
			name:       rd.Name,
			attributes: rd.Attributes,
			scripts:    make(map[string]string, len(rd.Actions)),
		}
		for _, ad := range rd.Actions {
			if _, dup := r.scripts[ad.Name]; dup {
				return nil, fmt.Errorf("domain %s: resource %s: duplicate action %s", def.Name, rd.Name, ad.Name)
			}
			code := ad.Script
			if code == "" {
				code = defaultScripts[ad.Type]
			}
			if code == "" {
				return nil, fmt.Errorf("domain %s: resource %s: action %s has no script", def.Name, rd.Name, ad.Name)
			}
			r.actions = append(r.actions, ad.Action)
			r.scripts[ad.Name] = code
		}
		byName[rd.Name] = r
		d.resources = append(d.resources, r)
	}

	for _, td := range def.Tools {
		r, ok := byName[td.Resource]
		if !ok {
			return nil, fmt.Errorf("domain %s: tool %s references unknown resource %s", def.Name, td.Name, td.Resource)
		}
		action, ok := r.Action(td.Action)
		if !ok {
			return nil, fmt.Errorf("domain %s: tool %s references unknown action %s.%s", def.Name, td.Name, td.Resource, td.Action)
		}
		d.tools = append(d.tools, host.ToolDefinition{
			Name:             td.Name,
			Resource:         r,
			Action:           action,
			Description:      td.Description,
			ActionParameters: td.ActionParameters,
		})
	}

	return d, nil
}

// LoadAll loads the named domains from store in the given order. An empty
// list loads every stored domain, sorted by name.
func LoadAll(store *persistence.Store, names []string) ([]host.Domain, error) {
	var defs []*persistence.DomainDefinition
	if len(names) == 0 {
		all, err := store.ListDomains()
		if err != nil {
			return nil, err
		}
		defs = all
	} else {
		for _, name := range names {
			def, err := store.LoadDomain(name)
			if err != nil {
				return nil, err
			}
			defs = append(defs, def)
		}
	}

	domains := make([]host.Domain, 0, len(defs))
	for _, def := range defs {
		d, err := Load(def)
		if err != nil {
			return nil, err
		}
		domains = append(domains, d)
	}
	return domains, nil
}
