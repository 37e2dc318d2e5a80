// Package reflector derives stable type identities used to key per-type
// runtime state (services, broker topics) and to label metrics.
//
// Results are cached per reflect.Type; all functions are safe for
// concurrent use.
package reflector

import (
	"reflect"
	"strings"
	"sync"
)

// maxCacheSize bounds the cache. Programs only have a small, fixed number of
// actor and message types, so hitting it means something generates types.
const maxCacheSize = 1024

var (
	muCache sync.RWMutex
	cache   = make(map[reflect.Type]TypeInfo)
)

// TypeInfo identifies a Go type.
type TypeInfo struct {
	// Type is the exact type, pointers included. Two TypeInfos denote the same
	// identity iff their Type fields are equal.
	Type reflect.Type
	// Name is "pkg/path.TypeName" of the type with pointers unwrapped.
	Name string
	// Short is "pkg.TypeName", suitable for logs and metric labels.
	Short string
}

// Key returns the identity used for map lookups.
func (ti TypeInfo) Key() reflect.Type { return ti.Type }

func (ti TypeInfo) String() string { return ti.Short }

// TypeInfoOf returns TypeInfo for the dynamic type of x.
func TypeInfoOf(x any) TypeInfo {
	return TypeInfoForType(reflect.TypeOf(x))
}

// TypeInfoFor returns TypeInfo for type parameter T. Interface types are
// reported as themselves, not as the dynamic type of a value.
func TypeInfoFor[T any]() TypeInfo {
	return TypeInfoForType(reflect.TypeFor[T]())
}

// TypeInfoForType returns the cached TypeInfo for t.
func TypeInfoForType(t reflect.Type) TypeInfo {
	if t == nil {
		return TypeInfo{}
	}

	muCache.RLock()
	ti, ok := cache[t]
	muCache.RUnlock()
	if ok {
		return ti
	}

	ti = build(t)

	muCache.Lock()
	defer muCache.Unlock()
	if existing, ok := cache[t]; ok {
		return existing
	}
	if len(cache) >= maxCacheSize {
		cache = make(map[reflect.Type]TypeInfo)
	}
	cache[t] = ti
	return ti
}

func build(t reflect.Type) TypeInfo {
	elem := t
	for elem.Kind() == reflect.Pointer {
		elem = elem.Elem()
	}

	name := elem.Name()
	if name == "" {
		// unnamed types (struct{}, func(), ...) have no package path
		s := elem.String()
		return TypeInfo{Type: t, Name: s, Short: s}
	}

	pkg := elem.PkgPath()
	short := name
	if pkg != "" {
		short = pkg[strings.LastIndex(pkg, "/")+1:] + "." + name
		name = pkg + "." + name
	}
	return TypeInfo{Type: t, Name: name, Short: short}
}
