package catalog

import (
	"encoding/json"
	"fmt"
	"math"
)

// BlindRollerActuator drives a blind to a position between 0 and 100 percent.
type BlindRollerActuator struct{ identity }

func (*BlindRollerActuator) Kind() Kind { return KindActuator }

// Value returns the fully open position.
func (*BlindRollerActuator) Value() Value { return PercentageValue{} }

func (a *BlindRollerActuator) Apply(v Value) (Value, error) {
	pct, ok := v.(PercentageValue)
	if !ok {
		return nil, invalid("value", "%s expects a percentage, got %T", a.modelPath, v)
	}
	return pct, nil
}

// SwitchActuator toggles a load on or off.
type SwitchActuator struct{ identity }

func (*SwitchActuator) Kind() Kind { return KindActuator }

// Value returns Off.
func (*SwitchActuator) Value() Value { return Off }

func (a *SwitchActuator) Apply(v Value) (Value, error) {
	on, ok := v.(SwitchValue)
	if !ok {
		return nil, invalid("value", "%s expects on/off, got %T", a.modelPath, v)
	}
	return on, nil
}

// IntegerBoundedActuator accepts whole-number settings within an inclusive range.
type IntegerBoundedActuator struct {
	identity
	bounds IntegerBounds
}

func (*IntegerBoundedActuator) Kind() Kind { return KindActuator }

// Bounds returns the accepted range.
func (a *IntegerBoundedActuator) Bounds() IntegerBounds { return a.bounds }

// Value returns the lower bound.
func (a *IntegerBoundedActuator) Value() Value { return IntegerValue(a.bounds.Lower) }

func (a *IntegerBoundedActuator) Apply(v Value) (Value, error) {
	n, ok := v.(IntegerValue)
	if !ok {
		return nil, invalid("value", "%s expects an integer, got %T", a.modelPath, v)
	}
	if !a.bounds.Contains(int(n)) {
		return nil, invalid("value", "must be between %d and %d", a.bounds.Lower, a.bounds.Upper)
	}
	return n, nil
}

// DecimalBoundedActuator accepts decimal settings within an inclusive range.
type DecimalBoundedActuator struct {
	identity
	bounds DecimalBounds
}

func (*DecimalBoundedActuator) Kind() Kind { return KindActuator }

// Bounds returns the accepted range.
func (a *DecimalBoundedActuator) Bounds() DecimalBounds { return a.bounds }

// Value returns the lower bound.
func (a *DecimalBoundedActuator) Value() Value { return DecimalValue(a.bounds.Lower) }

func (a *DecimalBoundedActuator) Apply(v Value) (Value, error) {
	f, ok := v.(DecimalValue)
	if !ok {
		return nil, invalid("value", "%s expects a decimal, got %T", a.modelPath, v)
	}
	if math.IsNaN(float64(f)) || !a.bounds.Contains(float64(f)) {
		return nil, invalid("value", "must be between %g and %g", a.bounds.Lower, a.bounds.Upper)
	}
	return f, nil
}

// validateIntegerBounds checks lower <= upper.
func validateIntegerBounds(b IntegerBounds) error {
	if b.Lower > b.Upper {
		return invalid("integer_bounds", "lower must not exceed upper")
	}
	return nil
}

// validateDecimalBounds checks that both ends are finite and lower <= upper.
func validateDecimalBounds(b DecimalBounds) error {
	if math.IsNaN(b.Lower) || math.IsNaN(b.Upper) || math.IsInf(b.Lower, 0) || math.IsInf(b.Upper, 0) {
		return invalid("decimal_bounds", "bounds must be finite numbers")
	}
	if b.Lower > b.Upper {
		return invalid("decimal_bounds", "lower must not exceed upper")
	}
	return nil
}

// ParseSetting decodes a JSON setting into the Value type the actuator
// accepts. The result still has to pass Apply.
func ParseSetting(a Actuator, raw json.RawMessage) (Value, error) {
	switch a.(type) {
	case *BlindRollerActuator:
		var pct int
		if err := json.Unmarshal(raw, &pct); err != nil {
			return nil, invalid("value", "expected an integer percentage")
		}
		v, err := NewPercentageValue(pct)
		if err != nil {
			return nil, err
		}
		return v, nil
	case *SwitchActuator:
		var on bool
		if err := json.Unmarshal(raw, &on); err != nil {
			return nil, invalid("value", "expected true or false")
		}
		return SwitchValue(on), nil
	case *IntegerBoundedActuator:
		var n int
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, invalid("value", "expected an integer")
		}
		return IntegerValue(n), nil
	case *DecimalBoundedActuator:
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return nil, invalid("value", "expected a number")
		}
		return DecimalValue(f), nil
	default:
		panic(fmt.Sprintf("catalog: parse setting: unhandled actuator %T", a))
	}
}
