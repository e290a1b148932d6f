package datatree

import "github.com/leapstack-labs/leapviz/pkg/tag"

// Plugin decides which fields a renderer handles and creates one instance
// per matched field.
type Plugin interface {
	Name() string
	Matches(t *tag.Tag, ft FieldType) bool
	Instantiate(f Field) PluginInstance
}

// PluginInstance is a renderer bound to one field.
type PluginInstance interface {
	Name() string
}

// DataProcessor is implemented by instances that precompute from data. It is
// called once per nested table cell after its rows are built.
type DataProcessor interface {
	ProcessData(f NestField, c NestCell)
}

// Layout is the space available to a render pass.
type Layout struct {
	Width  int
	Height int
}

// RenderPreparer is implemented by instances that adjust to the layout right
// before drawing.
type RenderPreparer interface {
	BeforeRender(f Field, layout Layout)
}

// Registry maps field keys to the plugin instances matched for them. It is
// filled by a single pass over the schema and read-only afterwards.
type Registry struct {
	keys    []string
	fields  map[string][]Field
	plugins map[string][]PluginInstance
}

func newRegistry() *Registry {
	return &Registry{
		fields:  make(map[string][]Field),
		plugins: make(map[string][]PluginInstance),
	}
}

func (r *Registry) add(f Field, instances []PluginInstance) {
	key := f.Key()
	if _, seen := r.fields[key]; !seen {
		r.keys = append(r.keys, key)
	}
	r.fields[key] = append(r.fields[key], f)
	if len(instances) > 0 {
		r.plugins[key] = append(r.plugins[key], instances...)
	}
}

// Plugins returns the instances matched at key in match order.
func (r *Registry) Plugins(key string) []PluginInstance {
	return r.plugins[key]
}

// Fields returns every field registered at key.
func (r *Registry) Fields(key string) []Field {
	return r.fields[key]
}

// Keys returns the registered keys in schema pre-order.
func (r *Registry) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// BeforeRender calls every instance that implements RenderPreparer, in
// schema pre-order.
func (r *Registry) BeforeRender(layout Layout) {
	for _, key := range r.Keys() {
		fields := r.Fields(key)
		if len(fields) == 0 {
			continue
		}
		for _, inst := range r.Plugins(key) {
			if p, ok := inst.(RenderPreparer); ok {
				p.BeforeRender(fields[0], layout)
			}
		}
	}
}

// matchPlugins runs every plugin's predicate against f.
func matchPlugins(plugins []Plugin, f Field) []PluginInstance {
	var out []PluginInstance
	ft := TypeOf(f)
	for _, p := range plugins {
		if p.Matches(f.Tag(), ft) {
			out = append(out, p.Instantiate(f))
		}
	}
	return out
}
