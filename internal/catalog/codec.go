package catalog

import (
	"errors"
	"fmt"
)

// Codec converts between variants and their persisted records.
// It holds no mutable state and is safe for concurrent use.
type Codec struct {
	registry *ModelRegistry
}

// NewCodec creates a codec that decodes through registry.
func NewCodec(registry *ModelRegistry) *Codec {
	return &Codec{registry: registry}
}

// Encode projects v onto a Record. Bound slots are filled only for the
// bound pair the variant declares.
//
// Parameters:
//   - v: a variant built by the registry
//
// Returns:
//   - Record: the stored form; it never fails for a catalog variant
func (c *Codec) Encode(v Variant) Record {
	id := v.base()
	rec := Record{
		ID:        id.id,
		DeviceID:  id.deviceID,
		ModelPath: id.modelPath,
		TypeID:    id.typeID,
		Name:      id.name,
	}

	switch t := v.(type) {
	case *IntegerBoundedActuator:
		lower, upper := t.bounds.Lower, t.bounds.Upper
		rec.IntegerLower = &lower
		rec.IntegerUpper = &upper
	case *DecimalBoundedActuator:
		lower, upper := t.bounds.Lower, t.bounds.Upper
		rec.DecimalLower = &lower
		rec.DecimalUpper = &upper
	case *PercentagePositionSensor, *InstantPowerConsumptionSensor, *WindSensor,
		*DewPointSensor, *TemperatureSensor, *HumiditySensor, *SwitchSensor,
		*BlindRollerActuator, *SwitchActuator:
		// no bound slots
	default:
		panic(fmt.Sprintf("catalog: encode: unhandled variant %T", v))
	}

	return rec
}

// Decode rebuilds the variant stored in rec.
//
// The model path is looked up before any other field is read, so an
// unknown path always yields a *NotFoundError. Otherwise a
// *ValidationError (matching ErrCorruptRecord) is returned when the stored
// fields do not satisfy the model's contract. The stored type id is not
// checked against the type table; records keep decoding if a type is
// retired.
//
// Parameters:
//   - rec: the stored record
//
// Returns:
//   - Variant: the decoded variant, nil on error
//   - error: *NotFoundError or *ValidationError
func (c *Codec) Decode(rec Record) (Variant, error) {
	info, ok := c.registry.Lookup(rec.ModelPath)
	if !ok {
		return nil, &NotFoundError{ModelPath: rec.ModelPath}
	}

	if rec.ID == "" {
		return nil, corrupt("id", "record has no identifier")
	}

	payload, err := rec.Payload()
	if err != nil {
		return nil, err
	}

	if payload.Shape != info.Shape {
		return nil, corrupt("bounds", "%s declares %s bounds, record carries %s",
			info.Path, info.Shape, payload.Shape)
	}

	v, err := c.registry.Resolve(rec.ModelPath, Args{
		ID:            rec.ID,
		DeviceID:      rec.DeviceID,
		TypeID:        rec.TypeID,
		Name:          rec.Name,
		IntegerBounds: payload.Integer,
		DecimalBounds: payload.Decimal,
	})
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return nil, &ValidationError{Field: verr.Field, Reason: verr.Reason, Persisted: true, Err: verr.Err}
		}
		return nil, err
	}
	return v, nil
}

// DecodeKind decodes rec and checks that it holds a variant of the given
// kind. A record filed under the wrong kind fails with a *ValidationError
// whose Field is "kind"; it matches both ErrKindMismatch and
// ErrCorruptRecord.
//
// Parameters:
//   - rec: the stored record
//   - kind: the kind of the store rec was read from
//
// Returns:
//   - Variant: the decoded variant, nil on error
//   - error: *NotFoundError or *ValidationError
func (c *Codec) DecodeKind(rec Record, kind Kind) (Variant, error) {
	v, err := c.Decode(rec)
	if err != nil {
		return nil, err
	}
	if v.Kind() != kind {
		return nil, &ValidationError{
			Field:     "kind",
			Reason:    fmt.Sprintf("%s is a %s model, stored as a %s", rec.ModelPath, v.Kind(), kind),
			Persisted: true,
			Err:       ErrKindMismatch,
		}
	}
	return v, nil
}
