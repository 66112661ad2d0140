package model

import (
	"os"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Registry is the immutable field table loaded once at startup. All lookups
// are pure functions over the loaded slice.
type Registry struct {
	fields []FieldSpec
	byPath map[string]*FieldSpec
}

var validTypes = map[FieldType]bool{
	TypeName: true, TypeDatePast: true, TypeDateFuture: true,
	TypeEmail: true, TypePhone: true, TypeState: true, TypeZip: true,
	TypePassportNumber: true, TypeSex: true, TypeText: true, TypeCheckbox: true,
}

// NewRegistry validates specs and builds the indexed registry. Every path
// must be unique, carry a known type, and resolve to a record accessor.
func NewRegistry(specs []FieldSpec) (*Registry, error) {
	r := &Registry{
		fields: make([]FieldSpec, 0, len(specs)),
		byPath: make(map[string]*FieldSpec, len(specs)),
	}
	for _, s := range specs {
		if s.Path == "" {
			return nil, eris.New("model: field spec with empty path")
		}
		if _, dup := r.byPath[s.Path]; dup {
			return nil, eris.Errorf("model: duplicate field path %q", s.Path)
		}
		if !validTypes[s.Type] {
			return nil, eris.Errorf("model: field %q has unknown type %q", s.Path, s.Type)
		}
		if _, err := AccessorFor(s.Path); err != nil {
			return nil, eris.Wrapf(err, "model: field %q does not map onto the record", s.Path)
		}
		r.fields = append(r.fields, s)
		r.byPath[s.Path] = &r.fields[len(r.fields)-1]
	}
	return r, nil
}

// LoadRegistry reads field specs from a YAML file. Used to override the
// built-in table; most deployments run with DefaultRegistry.
func LoadRegistry(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "model: read registry %s", path)
	}
	var doc struct {
		Fields []FieldSpec `yaml:"fields"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, eris.Wrapf(err, "model: parse registry %s", path)
	}
	if len(doc.Fields) == 0 {
		return nil, eris.Errorf("model: registry %s declares no fields", path)
	}
	reg, err := NewRegistry(doc.Fields)
	if err != nil {
		return nil, err
	}
	zap.L().Info("loaded field registry", zap.String("path", path), zap.Int("fields", len(doc.Fields)))
	return reg, nil
}

// DefaultRegistry returns the built-in field table. The table is validated
// by construction; a panic here means the table itself is broken.
func DefaultRegistry() *Registry {
	reg, err := NewRegistry(defaultFields())
	if err != nil {
		panic(err)
	}
	return reg
}

// Spec returns the spec for path, or nil when unknown.
func (r *Registry) Spec(path string) *FieldSpec { return r.byPath[path] }

// Label returns the human label for path, falling back to the path itself.
func (r *Registry) Label(path string) string {
	if s := r.byPath[path]; s != nil {
		return s.Label
	}
	return path
}

// Fields returns all specs in declaration order.
func (r *Registry) Fields() []FieldSpec {
	out := make([]FieldSpec, len(r.fields))
	copy(out, r.fields)
	return out
}

// ValidationFields returns the specs with rule validation enabled.
func (r *Registry) ValidationFields() []FieldSpec {
	var out []FieldSpec
	for _, s := range r.fields {
		if s.Validate {
			out = append(out, s)
		}
	}
	return out
}

// AutofillFields returns the specs with an autofill mapping, in fill order.
// Fill order matters: earlier fields consume locators first.
func (r *Registry) AutofillFields() []FieldSpec {
	var out []FieldSpec
	for _, s := range r.fields {
		if s.Autofill != nil {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Autofill.Order < out[j].Autofill.Order })
	return out
}

// Paths returns every registered path in declaration order.
func (r *Registry) Paths() []string {
	out := make([]string, len(r.fields))
	for i, s := range r.fields {
		out[i] = s.Path
	}
	return out
}
