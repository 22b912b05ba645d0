package dispatch

// Param is a single key/value query parameter.
type Param struct {
	Key   string
	Value string
}

// Params is a query parameter multimap that preserves insertion order.
// Plain Go maps iterate in random order, which would make the documented
// reverse-order serialization of URIFor non-deterministic.
type Params []Param

// NewParams builds a Params list from alternating key/value strings.
// An odd trailing key is ignored.
func NewParams(pairs ...string) Params {
	p := make(Params, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		p = append(p, Param{Key: pairs[i], Value: pairs[i+1]})
	}
	return p
}

// Add appends a key/value pair, keeping earlier entries for the same key.
func (p Params) Add(key, value string) Params {
	return append(p, Param{Key: key, Value: value})
}

// Get returns the first value for key and whether it was present.
func (p Params) Get(key string) (string, bool) {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// Values returns every value stored for key, in insertion order.
func (p Params) Values(key string) []string {
	var out []string
	for _, kv := range p {
		if kv.Key == key {
			out = append(out, kv.Value)
		}
	}
	return out
}

// Empty reports whether no parameters are stored.
func (p Params) Empty() bool {
	return len(p) == 0
}
