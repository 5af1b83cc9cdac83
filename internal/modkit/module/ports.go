package module

import "reflect"

// PortsOf extracts an interface T from a module's Ports() bundle. The
// bundle may be the interface itself or a struct with the interface in
// an exported field; unexported fields stay invisible
func PortsOf[T any](m Module) (t T, ok bool) {
	bundle := m.Ports()
	if bundle == nil {
		return t, false
	}
	if v, hit := bundle.(T); hit {
		return v, true
	}
	rv := reflect.ValueOf(bundle)
	if rv.Kind() != reflect.Struct {
		return t, false
	}
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if !f.CanInterface() {
			continue
		}
		if v, hit := f.Interface().(T); hit {
			return v, true
		}
	}
	return t, false
}

// MustPortsOf panics when the port is missing, naming the module so the
// wiring mistake is obvious at boot
func MustPortsOf[T any](m Module) T {
	if v, ok := PortsOf[T](m); ok {
		return v
	}
	panic("module: requested port not found on module " + m.Name())
}
