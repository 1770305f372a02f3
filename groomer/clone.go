// Copyright (c) 2020 Uber Technologies, Inc.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package groomer

import (
	"encoding"
	"fmt"
	"reflect"
	"strings"
)

// CircularMarker replaces a reference back to a value that is being copied.
const CircularMarker = "[Circular]"

// deepCopy returns a structural copy of v made only of plain data: maps
// keyed by string, []interface{}, []byte and scalars. Structs keep their
// exported fields under their JSON names, errors become their message, and
// funcs and channels are dropped. Nothing in the result aliases v.
func deepCopy(v interface{}) interface{} {
	c := copier{onPath: map[visitKey]bool{}}
	out, _ := c.copy(reflect.ValueOf(v))
	return out
}

type copier struct {
	onPath map[visitKey]bool
}

func (c *copier) copy(v reflect.Value) (interface{}, bool) {
	if !v.IsValid() {
		return nil, true
	}

	switch v.Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Uintptr:
		return nil, false
	case reflect.Interface:
		if v.IsNil() {
			return nil, true
		}
		return c.copy(v.Elem())
	case reflect.Ptr, reflect.Map, reflect.Slice:
		if v.IsNil() {
			return nil, true
		}
	}

	if v.CanInterface() {
		switch t := v.Interface().(type) {
		case error:
			return t.Error(), true
		case encoding.TextMarshaler:
			if text, err := t.MarshalText(); err == nil {
				return string(text), true
			}
		}
	}

	if key, ok := identity(v); ok {
		if c.onPath[key] {
			return CircularMarker, true
		}
		c.onPath[key] = true
		defer delete(c.onPath, key)
	}

	switch v.Kind() {
	case reflect.Ptr:
		return c.copy(v.Elem())
	case reflect.Map:
		return c.copyMap(v), true
	case reflect.Slice, reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, v.Len())
			reflect.Copy(reflect.ValueOf(b), v)
			return b, true
		}
		out := make([]interface{}, 0, v.Len())
		for i := 0; i < v.Len(); i++ {
			if elem, ok := c.copy(v.Index(i)); ok {
				out = append(out, elem)
			}
		}
		return out, true
	case reflect.Struct:
		return c.copyStruct(v), true
	}

	if v.CanInterface() {
		return v.Interface(), true
	}
	return nil, false
}

func (c *copier) copyMap(v reflect.Value) map[string]interface{} {
	out := make(map[string]interface{}, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		if elem, ok := c.copy(iter.Value()); ok {
			out[mapKey(iter.Key())] = elem
		}
	}
	return out
}

func (c *copier) copyStruct(v reflect.Value) map[string]interface{} {
	t := v.Type()
	out := make(map[string]interface{}, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" {
			continue
		}
		name, skip := jsonName(field)
		if skip {
			continue
		}
		if elem, ok := c.copy(v.Field(i)); ok {
			out[name] = elem
		}
	}
	return out
}

func mapKey(k reflect.Value) string {
	if k.Kind() == reflect.String {
		return k.String()
	}
	if k.CanInterface() {
		return fmt.Sprint(k.Interface())
	}
	return k.String()
}

func jsonName(field reflect.StructField) (string, bool) {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", true
	}
	if name := strings.Split(tag, ",")[0]; name != "" {
		return name, false
	}
	return field.Name, false
}
