package builders

import "github.com/nnickles/origind/internal/httpmsg"

// Registry is the fixed dispatch table from method enum to Builder: an
// array indexed by httpmsg.Method, no reflection or interface-typed
// map lookup needed at request time.
type Registry struct {
	builders [3]Builder // indexed by httpmsg.Method
}

// NewRegistry builds a Registry with the GET and POST builders
// registered.
func NewRegistry(resolverRoot, indexFile string) *Registry {
	r := &Registry{}
	r.builders[httpmsg.MethodGET] = NewGetBuilder(resolverRoot, indexFile)
	r.builders[httpmsg.MethodPOST] = NewPostBuilder()
	return r
}

// Lookup returns the Builder for method, or nil if method has no
// registered builder, in which case the caller emits 501.
func (r *Registry) Lookup(method httpmsg.Method) Builder {
	if int(method) < 0 || int(method) >= len(r.builders) {
		return nil
	}
	return r.builders[method]
}
