package starlark

import (
	"fmt"
	"sort"

	"go.starlark.net/starlark"
)

// RecordStore is the record storage a script reaches through the store
// global. It is defined here to keep this package free of host imports.
type RecordStore interface {
	List() []map[string]any
	Get(id string) (map[string]any, bool)
	Insert(record map[string]any) map[string]any
	Update(id string, changes map[string]any) (map[string]any, error)
	Delete(id string) (map[string]any, error)
}

// StoreNamespace exposes a RecordStore as a Starlark object with one
// method per operation.
type StoreNamespace struct {
	resource string
	store    RecordStore
}

// NewStoreNamespace wraps store for the named resource.
func NewStoreNamespace(resource string, store RecordStore) *StoreNamespace {
	return &StoreNamespace{resource: resource, store: store}
}

var storeMethods = map[string]func(*StoreNamespace, starlark.Tuple, []starlark.Tuple) (starlark.Value, error){
	"all":    (*StoreNamespace).all,
	"get":    (*StoreNamespace).get,
	"insert": (*StoreNamespace).insert,
	"update": (*StoreNamespace).update,
	"delete": (*StoreNamespace).delete,
}

// String implements starlark.Value
func (s *StoreNamespace) String() string {
	return fmt.Sprintf("<%s store>", s.resource)
}

// Type implements starlark.Value
func (s *StoreNamespace) Type() string { return "store" }

// Freeze implements starlark.Value
func (s *StoreNamespace) Freeze() {}

// Truth implements starlark.Value
func (s *StoreNamespace) Truth() starlark.Bool { return starlark.True }

// Hash implements starlark.Value
func (s *StoreNamespace) Hash() (uint32, error) {
	return starlark.String(s.resource).Hash()
}

// Attr implements starlark.HasAttrs
func (s *StoreNamespace) Attr(name string) (starlark.Value, error) {
	if _, ok := storeMethods[name]; !ok {
		return nil, starlark.NoSuchAttrError(fmt.Sprintf("store has no method '%s'", name))
	}
	return &storeMethod{ns: s, name: name}, nil
}

// AttrNames implements starlark.HasAttrs
func (s *StoreNamespace) AttrNames() []string {
	names := make([]string, 0, len(storeMethods))
	for name := range storeMethods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type storeMethod struct {
	ns   *StoreNamespace
	name string
}

func (m *storeMethod) String() string        { return fmt.Sprintf("<store.%s>", m.name) }
func (m *storeMethod) Type() string          { return "builtin_function_or_method" }
func (m *storeMethod) Freeze()               {}
func (m *storeMethod) Truth() starlark.Bool  { return starlark.True }
func (m *storeMethod) Hash() (uint32, error) { return starlark.String(m.name).Hash() }
func (m *storeMethod) Name() string          { return "store." + m.name }

// CallInternal implements starlark.Callable
func (m *storeMethod) CallInternal(_ *starlark.Thread, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	return storeMethods[m.name](m.ns, args, kwargs)
}

func (s *StoreNamespace) all(args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackArgs("store.all", args, kwargs); err != nil {
		return nil, err
	}
	return GoToStarlarkValue(s.store.List())
}

func (s *StoreNamespace) get(args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var id string
	if err := starlark.UnpackArgs("store.get", args, kwargs, "id", &id); err != nil {
		return nil, err
	}
	record, ok := s.store.Get(id)
	if !ok {
		return starlark.None, nil
	}
	return GoToStarlarkValue(record)
}

func (s *StoreNamespace) insert(args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var record *starlark.Dict
	if err := starlark.UnpackArgs("store.insert", args, kwargs, "record", &record); err != nil {
		return nil, err
	}
	fields, err := dictToMap(record)
	if err != nil {
		return nil, fmt.Errorf("store.insert: %w", err)
	}
	return GoToStarlarkValue(s.store.Insert(fields))
}

func (s *StoreNamespace) update(args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		id      string
		changes *starlark.Dict
	)
	if err := starlark.UnpackArgs("store.update", args, kwargs, "id", &id, "changes", &changes); err != nil {
		return nil, err
	}
	fields, err := dictToMap(changes)
	if err != nil {
		return nil, fmt.Errorf("store.update: %w", err)
	}
	updated, err := s.store.Update(id, fields)
	if err != nil {
		return nil, fmt.Errorf("store.update: %w", err)
	}
	return GoToStarlarkValue(updated)
}

func (s *StoreNamespace) delete(args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var id string
	if err := starlark.UnpackArgs("store.delete", args, kwargs, "id", &id); err != nil {
		return nil, err
	}
	deleted, err := s.store.Delete(id)
	if err != nil {
		return nil, fmt.Errorf("store.delete: %w", err)
	}
	return GoToStarlarkValue(deleted)
}

func dictToMap(d *starlark.Dict) (map[string]any, error) {
	converted, err := StarlarkToGoValue(d)
	if err != nil {
		return nil, err
	}
	return converted.(map[string]any), nil
}
