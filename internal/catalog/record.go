package catalog

// Record is the flat persisted form shared by every variant.
//
// Generic fields are always populated. A bound slot is non-nil only when
// the originating variant declares that bound pair.
type Record struct {
	ID           string    `json:"id"`
	DeviceID     string    `json:"device_id"`
	ModelPath    ModelPath `json:"model_path"`
	TypeID       string    `json:"type_id"`
	Name         string    `json:"name"`
	IntegerLower *int      `json:"integer_lower,omitempty"`
	IntegerUpper *int      `json:"integer_upper,omitempty"`
	DecimalLower *float64  `json:"decimal_lower,omitempty"`
	DecimalUpper *float64  `json:"decimal_upper,omitempty"`
}

// Equal reports whether two records hold the same fields and bound slots.
func (r Record) Equal(o Record) bool {
	return r.ID == o.ID &&
		r.DeviceID == o.DeviceID &&
		r.ModelPath == o.ModelPath &&
		r.TypeID == o.TypeID &&
		r.Name == o.Name &&
		equalPtr(r.IntegerLower, o.IntegerLower) &&
		equalPtr(r.IntegerUpper, o.IntegerUpper) &&
		equalPtr(r.DecimalLower, o.DecimalLower) &&
		equalPtr(r.DecimalUpper, o.DecimalUpper)
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Payload is the structured form of a record's bound slots.
type Payload struct {
	Shape   Shape
	Integer *IntegerBounds
	Decimal *DecimalBounds
}

// Payload parses the bound slots. Each pair must be fully populated or
// fully absent, and at most one pair may be present.
func (r Record) Payload() (Payload, error) {
	hasInteger, err := pairPresent("integer_bounds", r.IntegerLower, r.IntegerUpper)
	if err != nil {
		return Payload{}, err
	}
	hasDecimal, err := pairPresent("decimal_bounds", r.DecimalLower, r.DecimalUpper)
	if err != nil {
		return Payload{}, err
	}

	switch {
	case hasInteger && hasDecimal:
		return Payload{}, corrupt("bounds", "record carries both integer and decimal bounds")
	case hasInteger:
		return Payload{
			Shape:   ShapeInteger,
			Integer: &IntegerBounds{Lower: *r.IntegerLower, Upper: *r.IntegerUpper},
		}, nil
	case hasDecimal:
		return Payload{
			Shape:   ShapeDecimal,
			Decimal: &DecimalBounds{Lower: *r.DecimalLower, Upper: *r.DecimalUpper},
		}, nil
	default:
		return Payload{Shape: ShapeNone}, nil
	}
}

func pairPresent[T any](field string, lower, upper *T) (bool, error) {
	switch {
	case lower != nil && upper != nil:
		return true, nil
	case lower == nil && upper == nil:
		return false, nil
	case lower == nil:
		return false, corrupt(field, "upper is set without lower")
	default:
		return false, corrupt(field, "lower is set without upper")
	}
}
