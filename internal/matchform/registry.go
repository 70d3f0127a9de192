package matchform

import "sync"

type FieldKey string

const (
	FieldTeam1Name    FieldKey = "team1.name"
	FieldTeam1Country FieldKey = "team1.country"
	FieldTeam2Name    FieldKey = "team2.name"
	FieldTeam2Country FieldKey = "team2.country"
	FieldMatchGroup   FieldKey = "match_group"
	FieldServer       FieldKey = "server"
	FieldMap          FieldKey = "map"
	FieldKnifeConfig  FieldKey = "knife_config"
	FieldMainConfig   FieldKey = "main_config"
)

// FieldOrder is the display and validation order of the form.
var FieldOrder = []FieldKey{
	FieldTeam1Name,
	FieldTeam1Country,
	FieldTeam2Name,
	FieldTeam2Country,
	FieldMatchGroup,
	FieldServer,
	FieldMap,
	FieldKnifeConfig,
	FieldMainConfig,
}

type FieldKind int

const (
	FieldText FieldKind = iota
	FieldSelect
)

// Unset is the placeholder value of a select that has no selection.
const Unset = "false"

var fieldKinds = map[FieldKey]FieldKind{
	FieldTeam1Name:    FieldText,
	FieldTeam1Country: FieldSelect,
	FieldTeam2Name:    FieldText,
	FieldTeam2Country: FieldSelect,
	FieldMatchGroup:   FieldSelect,
	FieldServer:       FieldSelect,
	FieldMap:          FieldText,
	FieldKnifeConfig:  FieldSelect,
	FieldMainConfig:   FieldSelect,
}

// Field is a serializable view of one registry entry.
type Field struct {
	Key     FieldKey  `json:"key"`
	Kind    FieldKind `json:"kind"`
	Value   string    `json:"value"`
	Invalid bool      `json:"invalid"`
}

// Registry stores the current value and invalid flag of every form field.
// It holds no validation logic.
type Registry struct {
	mu     sync.RWMutex
	fields map[FieldKey]*Field
}

func NewRegistry() *Registry {
	r := &Registry{fields: make(map[FieldKey]*Field, len(FieldOrder))}
	for _, key := range FieldOrder {
		r.fields[key] = &Field{Key: key, Kind: fieldKinds[key], Value: placeholder(fieldKinds[key])}
	}
	return r
}

func placeholder(kind FieldKind) string {
	if kind == FieldSelect {
		return Unset
	}
	return ""
}

func IsKnown(key FieldKey) bool {
	_, ok := fieldKinds[key]
	return ok
}

func (r *Registry) Kind(key FieldKey) FieldKind {
	return fieldKinds[key]
}

func (r *Registry) Value(key FieldKey) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.fields[key]
	if !ok {
		return ""
	}
	return f.Value
}

func (r *Registry) Set(key FieldKey, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.fields[key]; ok {
		f.Value = value
	}
}

func (r *Registry) Clear(key FieldKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.fields[key]; ok {
		f.Value = placeholder(f.Kind)
	}
}

func (r *Registry) Invalid(key FieldKey) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.fields[key]
	return ok && f.Invalid
}

func (r *Registry) MarkInvalid(key FieldKey, invalid bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.fields[key]; ok {
		f.Invalid = invalid
	}
}

func (r *Registry) InvalidFields() []FieldKey {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []FieldKey{}
	for _, key := range FieldOrder {
		if r.fields[key].Invalid {
			out = append(out, key)
		}
	}
	return out
}

// Reset empties text fields and returns selects to their placeholder.
// Invalid flags are left as they are.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.fields {
		f.Value = placeholder(f.Kind)
	}
}

func (r *Registry) Fields() []Field {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Field, 0, len(FieldOrder))
	for _, key := range FieldOrder {
		out = append(out, *r.fields[key])
	}
	return out
}
