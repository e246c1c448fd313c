package dmx

import "strings"

// Column is a column definition declared by the export.
type Column struct {
	Name string
	Type string
}

// LegacyTable is one parsed DMX export unit.
// Name is empty when the root element carries no name attribute.
type LegacyTable struct {
	Name    string
	Columns []Column
	Rows    []Row
}

// Label returns the table name, or fallback when the export does not name itself.
func (t *LegacyTable) Label(fallback string) string {
	if t.Name != "" {
		return t.Name
	}
	return fallback
}

// Attributes returns every attribute name in the table: declared columns first,
// then attributes that only appear on rows, in order of first appearance.
func (t *LegacyTable) Attributes() []string {
	seen := make(map[string]bool)
	var names []string
	for _, c := range t.Columns {
		if c.Name == "" || seen[c.Name] {
			continue
		}
		seen[c.Name] = true
		names = append(names, c.Name)
	}
	for _, r := range t.Rows {
		for _, name := range r.keys {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}

// ColumnType returns the declared DMX type for an attribute, or "" if undeclared.
func (t *LegacyTable) ColumnType(name string) string {
	for _, c := range t.Columns {
		if c.Name == name {
			return c.Type
		}
	}
	return ""
}

// SQLiteAffinity maps a declared DMX type (SVR_INT64, SVR_STRING, ...) to a SQLite column type.
func SQLiteAffinity(dmxType string) string {
	t := strings.ToUpper(dmxType)
	switch {
	case strings.Contains(t, "INT"):
		return "INTEGER"
	case strings.Contains(t, "DOUBLE"), strings.Contains(t, "FLOAT"), strings.Contains(t, "MONEY"):
		return "REAL"
	default:
		return "TEXT"
	}
}

// Row is one record of a legacy table: attribute name to text or null.
// A null value is distinct from the empty string.
type Row struct {
	keys   []string
	values map[string]*string
}

// NewRow builds a row from attribute/value pairs; a nil value is null.
// Later pairs overwrite earlier ones with the same name.
func NewRow(pairs ...Pair) Row {
	r := Row{values: make(map[string]*string, len(pairs))}
	for _, p := range pairs {
		r.set(p.Name, p.Value)
	}
	return r
}

// Pair is one attribute/value entry used to build a Row.
type Pair struct {
	Name  string
	Value *string
}

// Text is a convenience for building a non-null Pair.
func Text(name, value string) Pair {
	return Pair{Name: name, Value: &value}
}

// Null is a convenience for building a null Pair.
func Null(name string) Pair {
	return Pair{Name: name}
}

func (r *Row) set(name string, value *string) {
	if r.values == nil {
		r.values = make(map[string]*string)
	}
	if _, ok := r.values[name]; !ok {
		r.keys = append(r.keys, name)
	}
	r.values[name] = value
}

// Get returns the attribute's text. ok is false when the attribute is missing or null.
func (r Row) Get(name string) (value string, ok bool) {
	v, present := r.values[name]
	if !present || v == nil {
		return "", false
	}
	return *v, true
}

// Has reports whether the record carried the attribute at all.
func (r Row) Has(name string) bool {
	_, ok := r.values[name]
	return ok
}

// IsNull reports whether the attribute is present with no value.
func (r Row) IsNull(name string) bool {
	v, ok := r.values[name]
	return ok && v == nil
}

// Attributes returns the attribute names in document order.
func (r Row) Attributes() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of attributes on the row.
func (r Row) Len() int {
	return len(r.keys)
}
