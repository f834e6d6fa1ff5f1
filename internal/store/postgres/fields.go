package postgres

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"

	"gorm.io/gorm/schema"

	"golfcam/internal/store"
)

// fieldSet resolves API field names (json tags) and column names to the
// schema fields of one model.
type fieldSet struct {
	kind   string
	byName map[string]*schema.Field
	json   map[*schema.Field]string
}

func parseFields(kind string, dest any, namer schema.Namer) (*fieldSet, error) {
	sch, err := schema.Parse(dest, &sync.Map{}, namer)
	if err != nil {
		return nil, fmt.Errorf("parse %s schema: %w", kind, err)
	}
	fs := &fieldSet{
		kind:   kind,
		byName: make(map[string]*schema.Field),
		json:   make(map[*schema.Field]string),
	}
	for _, f := range sch.Fields {
		if f.DBName == "" {
			continue
		}
		name := strings.Split(f.Tag.Get("json"), ",")[0]
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		fs.json[f] = name
		fs.byName[name] = f
		fs.byName[f.DBName] = f
	}
	return fs, nil
}

func (fs *fieldSet) lookup(op, id, name string) (*schema.Field, error) {
	f, ok := fs.byName[name]
	if !ok {
		return nil, &store.Error{Op: op, Kind: fs.kind, ID: id, Err: fmt.Errorf("%w: %s", store.ErrUnknownField, name)}
	}
	return f, nil
}

// where converts a Filter into a column keyed condition map.
func (fs *fieldSet) where(op string, filter store.Filter) (map[string]any, error) {
	cond := make(map[string]any, len(filter))
	for name, raw := range filter {
		f, err := fs.lookup(op, "", name)
		if err != nil {
			return nil, err
		}
		v, err := coerce(f, raw)
		if err != nil {
			return nil, store.Invalid(op, fs.kind, "", fmt.Sprintf("filter %s: %v", name, err))
		}
		cond[f.DBName] = v
	}
	return cond, nil
}

// decode builds a row from partial fields through its JSON form, so every
// field type is converted by the model's own decoding rules. It returns the
// row and the columns to write. Primary keys are never written.
func decode[T any](fs *fieldSet, op, id string, fields store.Fields) (*T, []string, error) {
	keyed := make(map[string]any, len(fields))
	cols := make([]string, 0, len(fields))
	for name, v := range fields {
		f, err := fs.lookup(op, id, name)
		if err != nil {
			return nil, nil, err
		}
		if f.PrimaryKey {
			continue
		}
		keyed[fs.json[f]] = v
		cols = append(cols, f.DBName)
	}
	sort.Strings(cols)

	row := new(T)
	b, err := json.Marshal(keyed)
	if err != nil {
		return nil, nil, store.Invalid(op, fs.kind, id, err.Error())
	}
	if err := json.Unmarshal(b, row); err != nil {
		return nil, nil, store.Invalid(op, fs.kind, id, err.Error())
	}
	return row, cols, nil
}

// coerce converts query-string values to the column's Go kind.
func coerce(f *schema.Field, raw any) (any, error) {
	t := f.IndirectFieldType
	switch t.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return nil, fmt.Errorf("cannot filter on %s values", t.Kind())
	}
	s, ok := raw.(string)
	if !ok {
		return raw, nil
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.ParseInt(s, 10, 64)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.ParseUint(s, 10, 64)
	case reflect.Float32, reflect.Float64:
		return strconv.ParseFloat(s, 64)
	case reflect.Bool:
		return strconv.ParseBool(s)
	}
	return s, nil
}
