package schema

import (
	"sort"
	"sync"

	"github.com/lk2023060901/databrief-go/pkg/util/merr"
)

// FieldDef 是字段的声明形式：字段名 + 类型表达式。
type FieldDef struct {
	Name string `mapstructure:"name" json:"name" yaml:"name"`
	Type string `mapstructure:"type" json:"type" yaml:"type"`
}

// Registry 按名称保存 Schema，并发安全。
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]*Schema
}

func NewRegistry() *Registry {
	return &Registry{schemas: make(map[string]*Schema)}
}

// Register 以 s.Name 注册 Schema，同名注册不同的 Schema 会失败。
func (r *Registry) Register(s *Schema) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.schemas[s.Name]; ok && old != s {
		return merr.WrapErrSchemaInvalid(s.Name, "schema already registered")
	}
	r.schemas[s.Name] = s
	return nil
}

func (r *Registry) Lookup(name string) (*Schema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[name]
	if !ok {
		return nil, merr.WrapErrSchemaNotFound(name)
	}
	return s, nil
}

// Names 返回已注册的 Schema 名称（已排序）。
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Define 构建并注册 defs 中的全部 Schema。
// 记录之间可以任意顺序相互引用，但不允许出现循环引用。
func (r *Registry) Define(defs map[string][]FieldDef) error {
	d := &definer{
		registry: r,
		defs:     defs,
		visiting: make(map[string]bool),
	}
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := d.resolve(name); err != nil {
			return err
		}
	}
	return nil
}

type definer struct {
	registry *Registry
	defs     map[string][]FieldDef
	visiting map[string]bool
}

func (d *definer) resolve(name string) (*Schema, error) {
	fieldDefs, ok := d.defs[name]
	if !ok {
		return d.registry.Lookup(name)
	}
	d.registry.mu.RLock()
	s, done := d.registry.schemas[name]
	d.registry.mu.RUnlock()
	if done {
		return s, nil
	}
	if d.visiting[name] {
		return nil, merr.WrapErrSchemaInvalid(name, "recursive record reference")
	}
	d.visiting[name] = true
	defer delete(d.visiting, name)

	fields := make([]Field, 0, len(fieldDefs))
	for _, fd := range fieldDefs {
		typ, err := ParseType(fd.Type, d.resolve)
		if err != nil {
			return nil, err
		}
		fields = append(fields, Field{Name: fd.Name, Type: typ})
	}
	s, err := New(name, fields...)
	if err != nil {
		return nil, err
	}
	if err := d.registry.Register(s); err != nil {
		return nil, err
	}
	return s, nil
}
