// Package order imposes deterministic display order on domain collections.
//
// Every function here is pure: inputs are never mutated and the result is a
// fresh slice. All sorts are stable.
package order

import (
	"cmp"
	"reflect"
	"slices"
	"strings"
	"time"
)

// By returns items ordered by key. With reverse the comparison direction is
// flipped; items with equal keys keep their input order either way.
func By[T any, K cmp.Ordered](items []T, key func(T) K, reverse bool) []T {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b T) int {
		c := cmp.Compare(key(a), key(b))
		if reverse {
			return -c
		}
		return c
	})
	return out
}

// ByField returns items ordered by the named field. The name matches either the
// Go field name or its json tag, so render code can use the API's names
// ("votes", "choice_text"). Items whose field is missing or not comparable
// sort after every item that has a usable value, in input order.
func ByField[T any](items []T, field string, reverse bool) []T {
	type keyed struct {
		item T
		val  fieldValue
	}
	ks := make([]keyed, len(items))
	for i, it := range items {
		ks[i] = keyed{item: it, val: lookup(reflect.ValueOf(it), field)}
	}
	slices.SortStableFunc(ks, func(a, b keyed) int {
		if !a.val.ok || !b.val.ok {
			switch {
			case a.val.ok:
				return -1
			case b.val.ok:
				return 1
			default:
				return 0
			}
		}
		c := a.val.compare(b.val)
		if reverse {
			return -c
		}
		return c
	})
	out := make([]T, len(ks))
	for i, k := range ks {
		out[i] = k.item
	}
	return out
}

type valueKind int

const (
	kindInt valueKind = iota
	kindUint
	kindFloat
	kindString
	kindBool
	kindTime
)

type fieldValue struct {
	ok   bool
	kind valueKind
	i    int64
	u    uint64
	f    float64
	s    string
	t    time.Time
}

func (a fieldValue) compare(b fieldValue) int {
	if a.kind != b.kind {
		return cmp.Compare(a.kind, b.kind)
	}
	switch a.kind {
	case kindInt:
		return cmp.Compare(a.i, b.i)
	case kindUint:
		return cmp.Compare(a.u, b.u)
	case kindFloat:
		return cmp.Compare(a.f, b.f)
	case kindString:
		return strings.Compare(a.s, b.s)
	case kindBool:
		return cmp.Compare(boolRank(a.i != 0), boolRank(b.i != 0))
	default:
		return a.t.Compare(b.t)
	}
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

var timeType = reflect.TypeOf(time.Time{})

func lookup(v reflect.Value, field string) fieldValue {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return fieldValue{}
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Struct:
		f, ok := structField(v, field)
		if !ok {
			return fieldValue{}
		}
		return scalar(f)
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return fieldValue{}
		}
		f := v.MapIndex(reflect.ValueOf(field).Convert(v.Type().Key()))
		if !f.IsValid() {
			return fieldValue{}
		}
		return scalar(f)
	default:
		return fieldValue{}
	}
}

func structField(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if sf.Name == name || (tag != "" && tag != "-" && tag == name) {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func scalar(v reflect.Value) fieldValue {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return fieldValue{}
		}
		v = v.Elem()
	}
	if v.Type() == timeType {
		return fieldValue{ok: true, kind: kindTime, t: v.Interface().(time.Time)}
	}
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return fieldValue{ok: true, kind: kindInt, i: v.Int()}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return fieldValue{ok: true, kind: kindUint, u: v.Uint()}
	case reflect.Float32, reflect.Float64:
		return fieldValue{ok: true, kind: kindFloat, f: v.Float()}
	case reflect.String:
		return fieldValue{ok: true, kind: kindString, s: v.String()}
	case reflect.Bool:
		var i int64
		if v.Bool() {
			i = 1
		}
		return fieldValue{ok: true, kind: kindBool, i: i}
	default:
		return fieldValue{}
	}
}
