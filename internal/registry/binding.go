package registry

import (
	"strconv"

	"github.com/san-kum/fmukit/internal/fmi"
)

// Scalar is the set of Go types a variable can be bound to: float64 for
// Real, int32 for Integer, bool for Boolean and string for String.
type Scalar interface {
	float64 | int32 | bool | string
}

// Binding connects a variable to its storage. It has exactly two variants,
// built by Ref and Func.
type Binding interface {
	Type() fmi.ScalarType
	bound() bool
}

type ref[T Scalar] struct {
	ptr *T
}

type accessor[T Scalar] struct {
	get func() T
	set func(T)
}

// Ref binds a variable directly to the value at ptr.
func Ref[T Scalar](ptr *T) Binding {
	return ref[T]{ptr: ptr}
}

// Func binds a variable to a getter and setter the registry invokes but
// never owns. A nil setter makes writes a no-op.
func Func[T Scalar](get func() T, set func(T)) Binding {
	return accessor[T]{get: get, set: set}
}

func (b ref[T]) Type() fmi.ScalarType      { return typeOf[T]() }
func (b ref[T]) bound() bool               { return b.ptr != nil }
func (b accessor[T]) Type() fmi.ScalarType { return typeOf[T]() }
func (b accessor[T]) bound() bool          { return b.get != nil }

func typeOf[T Scalar]() fmi.ScalarType {
	var zero T
	switch any(zero).(type) {
	case float64:
		return fmi.Real
	case int32:
		return fmi.Integer
	case bool:
		return fmi.Boolean
	default:
		return fmi.String
	}
}

// load reads through either variant. ok is false when b does not hold a T.
func load[T Scalar](b Binding) (v T, ok bool) {
	switch b := b.(type) {
	case ref[T]:
		return *b.ptr, true
	case accessor[T]:
		return b.get(), true
	}
	return v, false
}

func store[T Scalar](b Binding, v T) bool {
	switch b := b.(type) {
	case ref[T]:
		*b.ptr = v
		return true
	case accessor[T]:
		if b.set != nil {
			b.set(v)
		}
		return true
	}
	return false
}

// Value is a scalar of any of the four types, used for start values.
type Value struct {
	typ fmi.ScalarType
	r   float64
	i   int32
	b   bool
	s   string
}

func RealValue(v float64) Value      { return Value{typ: fmi.Real, r: v} }
func IntegerValue(v int32) Value     { return Value{typ: fmi.Integer, i: v} }
func BooleanValue(v bool) Value      { return Value{typ: fmi.Boolean, b: v} }
func StringValue(v string) Value     { return Value{typ: fmi.String, s: v} }
func (v Value) Type() fmi.ScalarType { return v.typ }
func (v Value) Real() float64        { return v.r }
func (v Value) Integer() int32       { return v.i }
func (v Value) Boolean() bool        { return v.b }

// String formats the value the way it appears in a start attribute.
func (v Value) String() string {
	switch v.typ {
	case fmi.Real:
		return strconv.FormatFloat(v.r, 'g', -1, 64)
	case fmi.Integer:
		return strconv.FormatInt(int64(v.i), 10)
	case fmi.Boolean:
		return strconv.FormatBool(v.b)
	default:
		return v.s
	}
}

func readValue(b Binding) Value {
	switch b.Type() {
	case fmi.Real:
		x, _ := load[float64](b)
		return RealValue(x)
	case fmi.Integer:
		x, _ := load[int32](b)
		return IntegerValue(x)
	case fmi.Boolean:
		x, _ := load[bool](b)
		return BooleanValue(x)
	default:
		x, _ := load[string](b)
		return StringValue(x)
	}
}
