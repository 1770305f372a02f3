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
	"reflect"
)

// maxDepth bounds how many links below the root the walker inspects.
const maxDepth = 20

var (
	errorType       = reflect.TypeOf((*error)(nil)).Elem()
	anyType         = reflect.TypeOf((*interface{})(nil)).Elem()
	clientErrorType = reflect.TypeOf((*ClientError)(nil))
	wrapErrorType   = reflect.TypeOf((*Error)(nil))
)

// edit is what a walk did to the slot it was given.
type edit int

const (
	untouched edit = iota
	// rewritten means the slot now holds a different value.
	rewritten
	// severed means the slot pointed back at an ancestor and was zeroed.
	severed
)

// visitKey identifies a pointer, map or slice by address and type.
type visitKey struct {
	typ reflect.Type
	ptr uintptr
}

func identity(v reflect.Value) (visitKey, bool) {
	switch v.Kind() {
	case reflect.Ptr, reflect.Map:
		if v.IsNil() {
			return visitKey{}, false
		}
	case reflect.Slice:
		if v.IsNil() || v.Len() == 0 {
			return visitKey{}, false
		}
	default:
		return visitKey{}, false
	}
	return visitKey{typ: v.Type(), ptr: v.Pointer()}, true
}

// walker edits an object graph in place. ancestors holds every reference
// on the path from the root to the node being visited; it grows and
// shrinks like a stack as the walk descends and returns.
type walker struct {
	groomer   *Groomer
	ancestors map[visitKey]bool
}

func newWalker(g *Groomer) *walker {
	return &walker{
		groomer:   g,
		ancestors: map[visitKey]bool{},
	}
}

// walk grooms whatever slot holds. slot must be settable; depth is the
// number of links between the root and slot.
func (w *walker) walk(slot reflect.Value, depth int) edit {
	if depth > maxDepth {
		return untouched
	}

	v := slot
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			return untouched
		}
		v = v.Elem()
	}
	if !traversable(v.Type()) {
		return untouched
	}

	key, tracked := identity(v)
	if tracked && w.ancestors[key] {
		slot.Set(reflect.Zero(slot.Type()))
		return severed
	}

	if v.Type() == clientErrorType && !v.IsNil() {
		ce := v.Interface().(*ClientError)
		if ce.groomed {
			return untouched
		}
		if IsHTTPClientError(ce) {
			return w.replace(slot, reflect.ValueOf(w.groomer.groomOne(ce)))
		}
	}

	if tracked {
		w.ancestors[key] = true
		defer delete(w.ancestors, key)
	}

	if links, ok := opaqueLinks(v); ok {
		if rebuilt := w.walkOpaque(v.Interface().(error), links, depth); rebuilt != nil {
			return w.replace(slot, reflect.ValueOf(rebuilt))
		}
		return untouched
	}

	switch v.Kind() {
	case reflect.Ptr:
		if v.IsNil() {
			return untouched
		}
		// pointees are addressable, edits land in place
		w.walk(v.Elem(), depth)
		return untouched
	case reflect.Struct, reflect.Array:
		if v.CanSet() {
			w.walkElems(v, depth)
			return untouched
		}
		cp := reflect.New(v.Type()).Elem()
		cp.Set(v)
		if w.walkElems(cp, depth) {
			return w.replace(slot, cp)
		}
	case reflect.Slice:
		w.walkElems(v, depth)
	case reflect.Map:
		w.walkMap(v, depth)
	}
	return untouched
}

// walkElems walks the exported fields of a struct or the elements of a
// slice or array and reports whether any of them changed.
func (w *walker) walkElems(v reflect.Value, depth int) bool {
	changed := false
	if v.Kind() == reflect.Struct {
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			if t.Field(i).PkgPath != "" {
				continue
			}
			if w.walk(v.Field(i), depth+1) != untouched {
				changed = true
			}
		}
		return changed
	}

	if !traversable(v.Type().Elem()) {
		return false
	}
	for i := 0; i < v.Len(); i++ {
		if w.walk(v.Index(i), depth+1) != untouched {
			changed = true
		}
	}
	return changed
}

// walkMap walks map values through temporary slots, since map elements
// are not addressable, and writes changes back. Severed entries are deleted.
func (w *walker) walkMap(m reflect.Value, depth int) {
	if m.IsNil() || !traversable(m.Type().Elem()) {
		return
	}
	for _, k := range m.MapKeys() {
		slot := reflect.New(m.Type().Elem()).Elem()
		slot.Set(m.MapIndex(k))
		switch w.walk(slot, depth+1) {
		case rewritten:
			m.SetMapIndex(k, slot)
		case severed:
			m.SetMapIndex(k, reflect.Value{})
		}
	}
}

// walkOpaque walks the links of a wrapper whose fields cannot be edited. If
// any link changes, the wrapper is rebuilt as an *Error with the same
// message and stack; otherwise walkOpaque returns nil.
func (w *walker) walkOpaque(wrapper error, links []error, depth int) *Error {
	changed := false
	walked := make([]error, 0, len(links))
	for _, link := range links {
		slot := reflect.New(errorType).Elem()
		if link != nil {
			slot.Set(reflect.ValueOf(link))
		}
		if w.walk(slot, depth+1) != untouched {
			changed = true
		}
		if err, _ := slot.Interface().(error); err != nil {
			walked = append(walked, err)
		}
	}
	if !changed {
		return nil
	}

	rebuilt := &Error{Message: wrapper.Error()}
	if st, ok := wrapper.(stackTracer); ok {
		rebuilt.Stack = st.StackTrace()
	}
	if _, single := wrapper.(interface{ Unwrap() error }); single && len(walked) == 1 {
		rebuilt.Cause = walked[0]
	} else {
		rebuilt.Errors = walked
	}
	return rebuilt
}

func (w *walker) replace(slot, v reflect.Value) edit {
	if !slot.CanSet() || !v.Type().AssignableTo(slot.Type()) {
		return untouched
	}
	slot.Set(v)
	return rewritten
}

// opaqueLinks returns the links of an error wrapper that keeps them in
// unexported fields, such as the wrappers built by fmt.Errorf, errors.Join
// and pkg/errors. ClientError and Error are walked field by field instead.
func opaqueLinks(v reflect.Value) ([]error, bool) {
	switch v.Type() {
	case clientErrorType, clientErrorType.Elem(), wrapErrorType, wrapErrorType.Elem():
		return nil, false
	}
	if !v.CanInterface() || !hasUnexportedFields(v.Type()) {
		return nil, false
	}
	if v.Kind() == reflect.Ptr && v.IsNil() {
		return nil, false
	}
	err, ok := v.Interface().(error)
	if !ok {
		return nil, false
	}
	switch u := err.(type) {
	case interface{ Unwrap() []error }:
		return u.Unwrap(), true
	case interface{ Unwrap() error }:
		return []error{u.Unwrap()}, true
	}
	return nil, false
}

func hasUnexportedFields(t reflect.Type) bool {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return true
	}
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).PkgPath != "" {
			return true
		}
	}
	return false
}

// traversable reports whether a value of type t can reach an error.
func traversable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface, reflect.Struct, reflect.Map:
		return true
	case reflect.Ptr, reflect.Slice, reflect.Array:
		return traversable(t.Elem())
	}
	return false
}
