package actor

import (
	"log/slog"
	"reflect"
	"sync"

	"github.com/codewandler/actr-go/core/reflector"
	"github.com/codewandler/actr-go/core/sf"
)

// service is a registry entry. addr holds an Addr[A] for the key type A.
type service struct {
	proc process
	addr any
}

func (s service) alive() bool {
	select {
	case <-s.proc.Done():
		return false
	default:
		return true
	}
}

// registry maps actor types to singleton addresses.
type registry struct {
	mu       sync.Mutex
	services map[reflect.Type]service
	flight   sf.Group[service]
}

func newRegistry() *registry {
	return &registry{services: make(map[reflect.Type]service)}
}

func (r *registry) lookup(key reflect.Type) (service, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	svc, ok := r.services[key]
	if !ok || !svc.alive() {
		return service{}, false
	}
	return svc, true
}

func (r *registry) store(key reflect.Type, svc service) {
	r.mu.Lock()
	r.services[key] = svc
	r.mu.Unlock()
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, svc := range r.services {
		if svc.alive() {
			n++
		}
	}
	return n
}

// GetOrStart returns the singleton actor of type A, starting it from
// factory on first use. Concurrent first callers share one start; a
// singleton that has stopped since is replaced by a fresh one.
func GetOrStart[A any](sys *System, factory func() A, opts ...Option) (Addr[A], error) {
	return getOrStartService[A](sys, func() (Addr[A], error) {
		return Start(sys, factory(), opts...)
	})
}

// GetOrSupervise is GetOrStart for a supervised singleton, whose address
// survives restarts of its instance.
func GetOrSupervise[A any](sys *System, factory func() A, opts ...Option) (Addr[A], error) {
	return getOrStartService[A](sys, func() (Addr[A], error) {
		sup, err := Supervise(sys, factory, opts...)
		if err != nil {
			return Addr[A]{}, err
		}
		return sup.Addr(), nil
	})
}

func getOrStartService[A any](sys *System, start func() (Addr[A], error)) (Addr[A], error) {
	r := sys.registry
	ti := reflector.TypeInfoFor[A]()
	if svc, ok := r.lookup(ti.Key()); ok {
		return svc.addr.(Addr[A]), nil
	}

	svc, _, err := r.flight.Do(flightKey(ti), func() (service, error) {
		if svc, ok := r.lookup(ti.Key()); ok {
			return svc, nil
		}
		addr, err := start()
		if err != nil {
			return service{}, err
		}
		svc := service{proc: addr.c, addr: addr}
		r.store(ti.Key(), svc)
		sys.metrics.ServiceStarted(ti.Short)
		sys.log.Debug("service started", slog.String("service", ti.Short), slog.String("actor_id", addr.ID().String()))
		return svc, nil
	})
	if err != nil {
		return Addr[A]{}, err
	}
	return svc.addr.(Addr[A]), nil
}

// StartService starts a and registers it as the singleton of type A,
// replacing any previous entry without stopping it.
func StartService[A any](sys *System, a A, opts ...Option) (Addr[A], error) {
	addr, err := Start(sys, a, opts...)
	if err != nil {
		return Addr[A]{}, err
	}
	ti := reflector.TypeInfoFor[A]()
	sys.registry.store(ti.Key(), service{proc: addr.c, addr: addr})
	sys.metrics.ServiceStarted(ti.Short)
	return addr, nil
}

// LookupService returns the running singleton of type A or
// ErrServiceNotFound.
func LookupService[A any](sys *System) (Addr[A], error) {
	svc, ok := sys.registry.lookup(reflector.TypeInfoFor[A]().Key())
	if !ok {
		return Addr[A]{}, ErrServiceNotFound
	}
	return svc.addr.(Addr[A]), nil
}

// flightKey distinguishes T from *T, whose names are equal.
func flightKey(ti reflector.TypeInfo) string {
	return ti.Type.String() + "|" + ti.Name
}
