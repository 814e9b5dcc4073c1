package littlesms

import (
	"strconv"
	"strings"
)

// Value is a request parameter value. The set of implementations is closed:
// Text, Int and List.
type Value interface {
	wire() string
}

// Text is a plain string parameter, sent as is.
type Text string

// Int is an integer parameter, sent in decimal form.
type Int int64

// List is a sequence parameter (recipients, message ids), sent comma-joined
// in its original order.
type List []string

func (t Text) wire() string { return string(t) }
func (i Int) wire() string  { return strconv.FormatInt(int64(i), 10) }
func (l List) wire() string { return strings.Join(l, ",") }

// Ints builds a List from integer ids.
func Ints(ids ...int64) List {
	out := make(List, len(ids))
	for i, id := range ids {
		out[i] = strconv.FormatInt(id, 10)
	}
	return out
}

// Params holds the arguments of a single API call keyed by parameter name.
// A nil Value marks an absent parameter.
type Params map[string]Value

// Normalize converts every present value to its wire text. Absent (nil)
// values are dropped rather than sent empty.
func (p Params) Normalize() map[string]string {
	out := make(map[string]string, len(p))
	for k, v := range p {
		if v == nil {
			continue
		}
		out[k] = v.wire()
	}
	return out
}

// Optional marks an argument that may be left unset.
type Optional[T any] struct {
	value T
	set   bool
}

// Some returns a set Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// Get returns the value and whether it was set.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

// IsSet reports whether the optional holds a value.
func (o Optional[T]) IsSet() bool { return o.set }

func optText(o Optional[string]) Value {
	if v, ok := o.Get(); ok {
		return Text(v)
	}
	return nil
}

func optInt(o Optional[int64]) Value {
	if v, ok := o.Get(); ok {
		return Int(v)
	}
	return nil
}
