package xmanager

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"

	"gonum.org/v1/gonum/mat"
)

// errSkipMember signals, under PolicyLenient, that a value could not be
// converted and its enclosing mapping entry should be dropped. It never
// escapes Serialize.
var errSkipMember = errors.New("skip member")

// Serialize converts every user field into a JSON-safe value and returns the
// resulting mapping. The run directory path is not a field and never appears
// in the output. Under PolicyStrict a non-serializable value fails with a
// SerializationError; under PolicyLenient the field is omitted.
//
// Serialize does not modify the field set and may be called repeatedly.
func (m *Manager) Serialize() (map[string]any, error) {
	out := make(map[string]any, len(m.names))
	for _, name := range m.names {
		v, err := m.jsonSafe(name, m.values[name])
		if errors.Is(err, errSkipMember) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[name] = v
	}
	return out, nil
}

// jsonSafe recursively converts a value into one representable by the JSON
// data model. Conversion rules, in priority order: numeric arrays become
// nested row-major arrays; maps become objects with stringified keys;
// slices and arrays become arrays; JSON-native scalars pass through; structs
// with exported fields become objects over those fields. Anything else is
// subject to the Manager's policy.
func (m *Manager) jsonSafe(field string, v any) (any, error) {
	if v == nil {
		return nil, nil
	}

	rv := reflect.ValueOf(v)
	if (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) && rv.IsNil() {
		return nil, nil
	}

	// Numeric arrays are not directly JSON-serializable.
	if mx, ok := v.(mat.Matrix); ok {
		return matrixRows(mx), nil
	}

	// Types that know their own JSON form, such as time.Time.
	if marshaler, ok := v.(json.Marshaler); ok {
		data, err := marshaler.MarshalJSON()
		if err != nil {
			return m.reject(field, v)
		}
		var out any
		if err := json.Unmarshal(data, &out); err != nil {
			return m.reject(field, v)
		}
		return out, nil
	}

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		return m.jsonSafe(field, rv.Elem().Interface())

	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return v, nil

	case reflect.Map:
		obj := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			val, err := m.jsonSafe(field, iter.Value().Interface())
			if errors.Is(err, errSkipMember) {
				continue
			}
			if err != nil {
				return nil, err
			}
			obj[fmt.Sprint(iter.Key().Interface())] = val
		}
		return obj, nil

	case reflect.Slice, reflect.Array:
		arr := make([]any, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			// An unconvertible element invalidates the whole sequence;
			// the nearest enclosing mapping entry is dropped instead.
			val, err := m.jsonSafe(field, rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			arr = append(arr, val)
		}
		return arr, nil

	case reflect.Struct:
		// Objects exposing a named-field set of their own serialize as an
		// object over those fields.
		t := rv.Type()
		obj := make(map[string]any)
		exported := 0
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			if !sf.IsExported() {
				continue
			}
			exported++
			val, err := m.jsonSafe(field, rv.Field(i).Interface())
			if errors.Is(err, errSkipMember) {
				continue
			}
			if err != nil {
				return nil, err
			}
			obj[sf.Name] = val
		}
		if exported == 0 {
			// No named-field set to serialize, e.g. an opaque handle.
			return m.reject(field, v)
		}
		return obj, nil
	}

	// Funcs, channels, complex numbers and the like.
	return m.reject(field, v)
}

// reject applies the non-serializable-value policy.
func (m *Manager) reject(field string, v any) (any, error) {
	if m.policy == PolicyLenient {
		return nil, errSkipMember
	}
	return nil, NewSerializationError(field, fmt.Sprintf("%T", v))
}

// matrixRows converts a numeric matrix to nested row-major arrays.
func matrixRows(mx mat.Matrix) [][]float64 {
	r, c := mx.Dims()
	rows := make([][]float64, r)
	for i := range rows {
		row := make([]float64, c)
		for j := range row {
			row[j] = mx.At(i, j)
		}
		rows[i] = row
	}
	return rows
}

// SaveParams writes the serialized fields as pretty-printed JSON to
// params.json in the run directory, overwriting any previous file. The write
// is not atomic; a crash mid-write can leave a truncated file.
func (m *Manager) SaveParams() error {
	return m.SaveParamsAs(paramsFileName)
}

// SaveParamsAs writes the serialized fields to the given file name, resolved
// relative to the run directory. Top-level keys are emitted in assignment
// order.
func (m *Manager) SaveParamsAs(filename string) error {
	params, err := m.Serialize()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, name := range m.names {
		v, ok := params[name]
		if !ok {
			// Dropped under the lenient policy.
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false

		key, err := json.Marshal(name)
		if err != nil {
			return fmt.Errorf("failed to marshal field name %q: %w", name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')

		val, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal field %q: %w", name, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, buf.Bytes(), "", "  "); err != nil {
		return fmt.Errorf("failed to format params: %w", err)
	}
	pretty.WriteByte('\n')

	path, err := m.Path(filename)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, pretty.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return nil
}
