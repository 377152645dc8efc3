package machine

import (
	"hash/fnv"
	"strings"

	"github.com/dolthub/swiss"
)

// stringObj is the heap record backing a KindString Value: bytes, length,
// and a cached hash (spec §3.4, "heap record with bytes, length, and a
// cached 32-bit FNV-style hash").
type stringObj struct {
	bytes []byte
	hash  uint32
}

func newStringObj(s string) *stringObj {
	return &stringObj{bytes: []byte(s), hash: fnvHash(s)}
}

func fnvHash(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}

func (s *stringObj) str() string   { return string(s.bytes) }
func (s *stringObj) len() int      { return len(s.bytes) }
func (s *stringObj) clone() *stringObj { return newStringObj(s.str()) }

func (s *stringObj) get(i int) (byte, bool) {
	if i < 0 || i >= len(s.bytes) {
		return 0, false
	}
	return s.bytes[i], true
}

func (s *stringObj) set(i int, c byte) bool {
	if i < 0 || i >= len(s.bytes) {
		return false
	}
	s.bytes[i] = c
	s.hash = fnvHash(s.str())
	return true
}

// arrayInitialCap is the starting backing capacity of a new Array
// (spec §3.4, "growable contiguous buffer ... with an initial capacity
// (64)").
const arrayInitialCap = 64

// Array is the heap record backing a KindArray Value: a growable buffer
// whose logical size is max-index-assigned + 1. Set grows the buffer rather
// than ever truncating or erroring on an out-of-range index
// (spec §4.4, "container operations never silently truncate").
type Array struct {
	elems []Value
}

func NewArray() *Array {
	return &Array{elems: make([]Value, 0, arrayInitialCap)}
}

func (a *Array) Len() int { return len(a.elems) }

func (a *Array) Get(i int) Value {
	if i < 0 || i >= len(a.elems) {
		return Nil()
	}
	return a.elems[i]
}

func (a *Array) Set(i int, v Value) {
	if i < 0 {
		return
	}
	if i >= len(a.elems) {
		grown := make([]Value, i+1)
		copy(grown, a.elems)
		a.elems = grown
	}
	a.elems[i] = v
}

func (a *Array) clone() *Array {
	elems := make([]Value, len(a.elems))
	for i, e := range a.elems {
		elems[i] = e.Clone()
	}
	return &Array{elems: elems}
}

func (a *Array) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, e := range a.elems {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(e.String())
	}
	b.WriteByte(']')
	return b.String()
}

// dictInitialCap is a Dict's default capacity (spec §3.4).
const dictInitialCap = 64

// Dict is the heap record backing a KindDict Value: an open-addressed hash
// table from string keys to values (spec §3.4). Insertion order is tracked
// separately for NEXTDICT iteration, since swiss.Map does not guarantee one.
type Dict struct {
	m    *swiss.Map[string, Value]
	keys []string
}

func NewDict(size int) *Dict {
	if size <= 0 {
		size = dictInitialCap
	}
	return &Dict{m: swiss.NewMap[string, Value](uint32(size))}
}

func (d *Dict) Len() int { return len(d.keys) }

func (d *Dict) Get(key string) (Value, bool) {
	return d.m.Get(key)
}

func (d *Dict) Set(key string, v Value) {
	if _, exists := d.m.Get(key); !exists {
		d.keys = append(d.keys, key)
	}
	d.m.Put(key, v)
}

// Next returns the index-th key/value pair in insertion order, for NEXTDICT
// (spec §4.5.1).
func (d *Dict) Next(index int) (key string, val Value, ok bool) {
	if index < 0 || index >= len(d.keys) {
		return "", Value{}, false
	}
	k := d.keys[index]
	v, _ := d.m.Get(k)
	return k, v, true
}

func (d *Dict) clone() *Dict {
	nd := NewDict(len(d.keys))
	for _, k := range d.keys {
		v, _ := d.m.Get(k)
		nd.Set(k, v.Clone())
	}
	return nd
}

func (d *Dict) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range d.keys {
		if i > 0 {
			b.WriteString(", ")
		}
		v, _ := d.m.Get(k)
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(v.String())
	}
	b.WriteByte('}')
	return b.String()
}
