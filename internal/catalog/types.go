package catalog

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ModelPath names one concrete variant in the catalog.
// It is persisted verbatim and used to resolve the variant on decode.
type ModelPath string

// Model paths for every variant in the catalog.
const (
	PathPercentagePosition      ModelPath = "percentage-position"
	PathInstantPowerConsumption ModelPath = "instant-power-consumption"
	PathWind                    ModelPath = "wind"
	PathDewPoint                ModelPath = "dew-point"
	PathTemperature             ModelPath = "temperature"
	PathHumidity                ModelPath = "humidity"
	PathSwitchSensor            ModelPath = "switch-sensor"
	PathBlindRoller             ModelPath = "blind-roller"
	PathSwitch                  ModelPath = "switch"
	PathIntegerBounded          ModelPath = "integer-bounded-actuator"
	PathDecimalBounded          ModelPath = "decimal-bounded-actuator"
)

// Kind separates read-only sensors from settable actuators.
type Kind string

// Variant kinds.
const (
	KindSensor   Kind = "sensor"
	KindActuator Kind = "actuator"
)

// Shape declares which bound pair a model requires.
type Shape int

// Bound shapes. A model declares exactly one.
const (
	ShapeNone Shape = iota
	ShapeInteger
	ShapeDecimal
)

func (s Shape) String() string {
	switch s {
	case ShapeNone:
		return "none"
	case ShapeInteger:
		return "integer"
	case ShapeDecimal:
		return "decimal"
	default:
		return "unknown"
	}
}

// IntegerBounds is an inclusive integer range.
type IntegerBounds struct {
	Lower int `json:"lower" yaml:"lower"`
	Upper int `json:"upper" yaml:"upper"`
}

// Contains reports whether n lies within the bounds.
func (b IntegerBounds) Contains(n int) bool {
	return n >= b.Lower && n <= b.Upper
}

// DecimalBounds is an inclusive decimal range.
type DecimalBounds struct {
	Lower float64 `json:"lower" yaml:"lower"`
	Upper float64 `json:"upper" yaml:"upper"`
}

// Contains reports whether f lies within the bounds.
func (b DecimalBounds) Contains(f float64) bool {
	return f >= b.Lower && f <= b.Upper
}

// Args are the constructor arguments accepted by ModelRegistry.Resolve.
// An empty ID is replaced with a generated UUID.
type Args struct {
	ID            string
	DeviceID      string
	TypeID        string
	Name          string
	IntegerBounds *IntegerBounds
	DecimalBounds *DecimalBounds
}

// Variant is the capability surface every sensor and actuator exposes.
// The set of implementations is closed to this package.
type Variant interface {
	ID() string
	DeviceID() string
	ModelPath() ModelPath
	TypeID() string
	Name() string
	Kind() Kind

	// Value returns the current reading for sensors and the resting
	// setting for actuators.
	Value() Value

	base() *identity
}

// Sensor is a read-only variant.
type Sensor interface {
	Variant
	sensor()
}

// Actuator is a variant that accepts settings.
type Actuator interface {
	Variant

	// Apply validates a requested setting against the actuator's domain
	// and bounds and returns the accepted value.
	Apply(v Value) (Value, error)
}

// SameVariant reports whether a and b denote the same variant.
// Variants are equal when their identifiers are equal.
func SameVariant(a, b Variant) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.ID() == b.ID()
}

// identity holds the generic fields shared by every variant.
type identity struct {
	id        string
	deviceID  string
	modelPath ModelPath
	typeID    string
	name      string
}

func (i *identity) ID() string           { return i.id }
func (i *identity) DeviceID() string     { return i.deviceID }
func (i *identity) ModelPath() ModelPath { return i.modelPath }
func (i *identity) TypeID() string       { return i.typeID }
func (i *identity) Name() string         { return i.name }
func (i *identity) base() *identity      { return i }

// Validation constants. Lengths count characters, not bytes.
const (
	maxNameLength = 100
	maxIDLength   = 64
)

// newIdentity validates the generic constructor arguments.
func newIdentity(path ModelPath, args Args) (identity, error) {
	id := args.ID
	if id == "" {
		id = GenerateID()
	}
	if strings.TrimSpace(id) == "" {
		return identity{}, invalid("id", "must not be blank")
	}
	if utf8.RuneCountInString(id) > maxIDLength {
		return identity{}, invalid("id", "exceeds %d characters", maxIDLength)
	}
	if strings.TrimSpace(args.DeviceID) == "" {
		return identity{}, invalid("device_id", "must not be blank")
	}
	if strings.TrimSpace(args.TypeID) == "" {
		return identity{}, invalid("type_id", "must not be blank")
	}
	if strings.TrimSpace(args.Name) == "" {
		return identity{}, invalid("name", "must not be blank")
	}
	if utf8.RuneCountInString(args.Name) > maxNameLength {
		return identity{}, invalid("name", "exceeds %d characters", maxNameLength)
	}

	return identity{
		id:        id,
		deviceID:  args.DeviceID,
		modelPath: path,
		typeID:    args.TypeID,
		name:      args.Name,
	}, nil
}

// GenerateID creates a new unique identifier for a variant.
func GenerateID() string {
	return uuid.New().String()
}
