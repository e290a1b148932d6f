// Package datatree builds the paired schema and value trees of a query
// result.
//
// A Schema is built once per result schema. It holds the Field tree and the
// plugin Registry. Each data payload is then loaded into a Cell tree whose
// nodes pair one to one with Fields; building cells accumulates per-field
// statistics as a side effect. Nothing is shared between schemas, so separate
// render passes may build concurrently.
package datatree

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/leapstack-labs/leapviz/pkg/tag"
	"github.com/leapstack-labs/leapviz/pkg/wire"
)

// DefaultRootName names the root field when the result carries no
// "query_name" metadata.
const DefaultRootName = "root"

// Options configures schema construction.
type Options struct {
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// Schema is the Field tree of one result schema with its plugin Registry.
type Schema struct {
	root     *RepeatedRecordField
	registry *Registry
	logger   *slog.Logger
	pass     string
}

// Tree is a loaded result: the schema and the root cell of its data.
type Tree struct {
	Schema *Schema
	Root   *RepeatedRecordCell
}

// Build constructs the schema of res and loads its data.
func Build(res *wire.Result, plugins []Plugin, opts Options) (*Tree, error) {
	s, err := NewSchema(res, plugins, opts)
	if err != nil {
		return nil, err
	}
	root, err := s.Load(res.Data)
	if err != nil {
		return nil, err
	}
	return &Tree{Schema: s, Root: root}, nil
}

// NewSchema builds the Field tree for res and matches plugins against every
// field in one pre-order pass.
func NewSchema(res *wire.Result, plugins []Plugin, opts Options) (*Schema, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	pass := uuid.NewString()
	logger = logger.With("render_pass", pass)

	b := &fieldBuilder{logger: logger}
	metadata := b.parseTag(nil, wire.Values(res.Annotations), tag.PrefixMetadata)
	rootName, ok := metadata.Text("query_name")
	if !ok {
		rootName = DefaultRootName
	}

	var columns []wire.FieldInfo
	for _, f := range res.Schema.Fields {
		if f.IsDimension() {
			columns = append(columns, f)
		}
	}

	info := wire.FieldInfo{
		Name: rootName,
		Type: wire.Type{
			Kind:        wire.ArrayType,
			ElementType: &wire.Type{Kind: wire.RecordType, Fields: columns},
		},
		Annotations: res.Annotations,
	}
	f, err := b.build(info, nil)
	if err != nil {
		return nil, fmt.Errorf("build schema: %w", err)
	}
	root := f.(*RepeatedRecordField)
	root.root = &rootInfo{
		modelTag:      b.parseTag(nil, wire.Values(res.ModelAnnotations), tag.PrefixModel),
		queryTimezone: res.QueryTimezone,
	}

	s := &Schema{root: root, registry: newRegistry(), logger: logger, pass: pass}
	matches := 0
	Walk(root, func(f Field) {
		instances := matchPlugins(plugins, f)
		f.base().plugins = instances
		s.registry.add(f, instances)
		for _, inst := range instances {
			matches++
			logger.Debug("matched plugin", "field", f.Key(), "plugin", inst.Name())
		}
	})

	logger.Debug("built schema",
		"root", rootName,
		"fields", b.count,
		"plugin_matches", matches,
	)
	return s, nil
}

// Root returns the root field.
func (s *Schema) Root() *RepeatedRecordField { return s.root }

// Registry returns the plugin registry.
func (s *Schema) Registry() *Registry { return s.registry }

// RenderPass returns the id logged with every message of this schema.
func (s *Schema) RenderPass() string { return s.pass }

// Load builds the Cell tree for one data payload. A bare record is treated
// as a single-row table.
func (s *Schema) Load(data wire.Cell) (*RepeatedRecordCell, error) {
	if data.Kind == wire.RecordCell {
		data = wire.Cell{Kind: wire.ArrayCell, ArrayValue: []wire.Cell{data}}
	}
	l := &cellLoader{}
	c, err := l.build(data, s.root, nil)
	if err != nil {
		return nil, fmt.Errorf("load data: %w", err)
	}
	root, ok := c.(*RepeatedRecordCell)
	if !ok {
		return nil, &TypeMismatchError{Path: s.root.Path(), FieldType: FieldRepeatedRecord, CellKind: data.Kind}
	}
	s.logger.Debug("loaded data", "rows", len(root.rows), "cells", l.count)
	return root, nil
}

type fieldBuilder struct {
	logger *slog.Logger
	count  int
}

func (b *fieldBuilder) parseTag(path []string, lines []string, prefixes ...string) *tag.Tag {
	t, err := tag.FromAnnotations(lines, prefixes...)
	if err != nil {
		b.logger.Warn("malformed annotation", "field", PathToKey(path), "error", err)
	}
	return t
}

func (b *fieldBuilder) build(info wire.FieldInfo, parent Field) (Field, error) {
	path := []string{}
	if parent != nil {
		path = append(slices.Clone(parent.base().path), info.Name)
	}

	t := info.Type
	var f Field
	switch t.Kind {
	case wire.NumberType:
		f = newNumberField(t.Subtype)
	case wire.DateType:
		f = &DateField{newTimeField(t.Timeframe, true)}
	case wire.TimestampType:
		f = &TimestampField{newTimeField(t.Timeframe, false)}
	case wire.StringType:
		f = newStringField()
	case wire.BooleanType:
		f = &BooleanField{}
	case wire.JSONType:
		f = &JSONField{}
	case wire.SQLNativeType:
		f = &SQLNativeField{SQLType: t.SQLType}
	case wire.ArrayType:
		if t.ElementType == nil {
			return nil, &MissingChildError{Path: path, Name: "element_type"}
		}
		if t.ElementType.Kind == wire.RecordType {
			f = &RepeatedRecordField{}
		} else {
			f = &ArrayField{}
		}
	case wire.RecordType:
		f = &RecordField{}
	default:
		return nil, &UnknownTypeError{Path: path, Kind: t.Kind}
	}

	fb := f.base()
	fb.self = f
	fb.name = info.Name
	fb.path = path
	fb.parent = parent
	lines := info.AnnotationValues()
	fb.tag = b.parseTag(path, lines, tag.PrefixRender, tag.PrefixRenderNS)
	fb.metadata = b.parseTag(path, lines, tag.PrefixMetadata)
	fb.loadDrillInfo()
	b.count++

	switch x := f.(type) {
	case *ArrayField:
		each, err := b.build(wire.FieldInfo{Name: EachName, Type: *t.ElementType}, x)
		if err != nil {
			return nil, err
		}
		x.each = each
	case *RepeatedRecordField:
		each, err := b.build(wire.FieldInfo{Name: EachName, Type: *t.ElementType}, x)
		if err != nil {
			return nil, err
		}
		x.each = each
	case *RecordField:
		x.fields = make([]Field, 0, len(t.Fields))
		x.byName = make(map[string]Field, len(t.Fields))
		for _, ci := range t.Fields {
			c, err := b.build(ci, x)
			if err != nil {
				return nil, err
			}
			x.fields = append(x.fields, c)
			x.byName[ci.Name] = c
		}
	}
	return f, nil
}
