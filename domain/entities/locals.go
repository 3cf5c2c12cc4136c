package entities

// Locals is the render-time mapping of variables handed to an engine.
// Its shape is negotiated between the caller and the engine; the core never
// inspects it.
type Locals map[string]any

// Clone returns a shallow copy of the locals. A nil receiver yields an empty map.
func (l Locals) Clone() Locals {
	out := make(Locals, len(l))
	for k, v := range l {
		out[k] = v
	}
	return out
}

// Merge returns a new Locals with the entries of other layered over l.
func (l Locals) Merge(other Locals) Locals {
	out := l.Clone()
	for k, v := range other {
		out[k] = v
	}
	return out
}
