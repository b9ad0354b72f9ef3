package emit

import (
	"fmt"
	"reflect"
)

// Iterator walks a sequence. Close is called exactly once by every
// ForEachIndexed loop, whatever way the loop exits.
type Iterator interface {
	Next() bool
	Current() reflect.Value
	Close() error
}

// Enumerable lets a source type provide its own iterator.
type Enumerable interface {
	Enumerate() Iterator
}

// Entry is the element produced when iterating a map.
type Entry struct {
	Key, Value reflect.Value
}

var (
	IteratorType   = reflect.TypeFor[Iterator]()
	EntryType      = reflect.TypeFor[Entry]()
	enumerableType = reflect.TypeFor[Enumerable]()
)

// Iterate returns an iterator over slices, arrays, pointers to arrays, maps
// and Enumerable values. Nil slices and maps yield no elements.
func Iterate(v reflect.Value) (Iterator, error) {
	if !v.IsValid() {
		return nil, fmt.Errorf("cannot iterate over an invalid value")
	}

	if v.Kind() == reflect.Interface && !v.IsNil() {
		v = v.Elem()
	}

	if v.Type().Implements(enumerableType) && v.CanInterface() {
		if v.Kind() == reflect.Ptr && v.IsNil() {
			return &seqIter{}, nil
		}
		return v.Interface().(Enumerable).Enumerate(), nil
	}

	switch v.Kind() {
	case reflect.Ptr:
		if v.Type().Elem().Kind() == reflect.Array && !v.IsNil() {
			return &seqIter{seq: v.Elem(), n: v.Elem().Len(), pos: -1}, nil
		}
	case reflect.Slice, reflect.Array:
		return &seqIter{seq: v, n: v.Len(), pos: -1}, nil
	case reflect.Map:
		return &mapIter{it: v.MapRange()}, nil
	}

	return nil, fmt.Errorf("cannot iterate over %s", v.Type())
}

type seqIter struct {
	seq reflect.Value
	n   int
	pos int
}

func (it *seqIter) Next() bool {
	if it.pos+1 >= it.n {
		it.pos = it.n
		return false
	}

	it.pos++
	return true
}

func (it *seqIter) Current() reflect.Value {
	return it.seq.Index(it.pos)
}

func (it *seqIter) Close() error {
	it.seq = reflect.Value{}
	return nil
}

type mapIter struct {
	it *reflect.MapIter
}

func (it *mapIter) Next() bool {
	return it.it != nil && it.it.Next()
}

func (it *mapIter) Current() reflect.Value {
	return reflect.ValueOf(Entry{Key: it.it.Key(), Value: it.it.Value()})
}

func (it *mapIter) Close() error {
	it.it = nil
	return nil
}
