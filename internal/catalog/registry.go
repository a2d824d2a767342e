package catalog

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// ModelInfo describes one entry of the catalog.
type ModelInfo struct {
	// Path is the model path persisted with every record of this model.
	Path ModelPath

	// Kind separates sensors from actuators.
	Kind Kind

	// Shape names the bound pair the model requires, if any.
	Shape Shape

	// Description is a human-readable summary of the model.
	Description string

	// TypeIDs lists the type ids the model can be created with.
	TypeIDs []string
}

// Supports reports whether the model accepts typeID.
func (m ModelInfo) Supports(typeID string) bool {
	return slices.Contains(m.TypeIDs, typeID)
}

func (m ModelInfo) clone() ModelInfo {
	m.TypeIDs = slices.Clone(m.TypeIDs)
	return m
}

// constructor builds a variant from validated generic fields.
// Bound arguments have already been checked against the model's shape.
type constructor func(id identity, args Args) (Variant, error)

type model struct {
	info  ModelInfo
	build constructor
}

// ModelRegistry resolves model paths to variant constructors and holds the
// type table those models are checked against.
//
// The mappings are built once by NewModelRegistry and never mutated, so a
// registry may be shared between goroutines without locking. Every method
// returns copies.
type ModelRegistry struct {
	models map[ModelPath]model
	types  map[string]TypeInfo
}

// NewModelRegistry creates a registry holding every variant and type in
// the catalog.
func NewModelRegistry() *ModelRegistry {
	builtin := catalogModels()
	types := catalogTypes()
	r := &ModelRegistry{
		models: make(map[ModelPath]model, len(builtin)),
		types:  make(map[string]TypeInfo, len(types)),
	}
	for _, m := range builtin {
		r.models[m.info.Path] = m
	}
	for _, t := range types {
		r.types[t.ID] = t
	}
	return r
}

// catalogModels lists the closed variant set.
func catalogModels() []model {
	return []model{
		{
			info:  ModelInfo{PathPercentagePosition, KindSensor, ShapeNone, "Position sensor reporting 0-100%", []string{TypePosition}},
			build: func(id identity, _ Args) (Variant, error) {
				return &PercentagePositionSensor{id}, nil
			},
		},
		{
			info:  ModelInfo{PathInstantPowerConsumption, KindSensor, ShapeNone, "Instantaneous power draw in watts", []string{TypePower}},
			build: func(id identity, _ Args) (Variant, error) {
				return &InstantPowerConsumptionSensor{id}, nil
			},
		},
		{
			info:  ModelInfo{PathWind, KindSensor, ShapeNone, "Wind speed and compass direction", []string{TypeWind}},
			build: func(id identity, _ Args) (Variant, error) {
				return &WindSensor{id}, nil
			},
		},
		{
			info:  ModelInfo{PathDewPoint, KindSensor, ShapeNone, "Dew point in degrees Celsius", []string{TypeDewPoint}},
			build: func(id identity, _ Args) (Variant, error) {
				return &DewPointSensor{id}, nil
			},
		},
		{
			info:  ModelInfo{PathTemperature, KindSensor, ShapeNone, "Ambient temperature in degrees Celsius", []string{TypeTemperature}},
			build: func(id identity, _ Args) (Variant, error) {
				return &TemperatureSensor{id}, nil
			},
		},
		{
			info:  ModelInfo{PathHumidity, KindSensor, ShapeNone, "Relative humidity", []string{TypeHumidity}},
			build: func(id identity, _ Args) (Variant, error) {
				return &HumiditySensor{id}, nil
			},
		},
		{
			info:  ModelInfo{PathSwitchSensor, KindSensor, ShapeNone, "Contact state", []string{TypeSwitch}},
			build: func(id identity, _ Args) (Variant, error) {
				return &SwitchSensor{id}, nil
			},
		},
		{
			info:  ModelInfo{PathBlindRoller, KindActuator, ShapeNone, "Blind position 0-100%", []string{TypePosition}},
			build: func(id identity, _ Args) (Variant, error) {
				return &BlindRollerActuator{id}, nil
			},
		},
		{
			info:  ModelInfo{PathSwitch, KindActuator, ShapeNone, "On/off load switch", []string{TypeSwitch}},
			build: func(id identity, _ Args) (Variant, error) {
				return &SwitchActuator{id}, nil
			},
		},
		{
			info:  ModelInfo{PathIntegerBounded, KindActuator, ShapeInteger, "Whole-number setting within bounds", []string{TypeLevel, TypeFanSpeed, TypeSetpoint}},
			build: func(id identity, args Args) (Variant, error) {
				if err := validateIntegerBounds(*args.IntegerBounds); err != nil {
					return nil, err
				}
				return &IntegerBoundedActuator{identity: id, bounds: *args.IntegerBounds}, nil
			},
		},
		{
			info:  ModelInfo{PathDecimalBounded, KindActuator, ShapeDecimal, "Decimal setting within bounds", []string{TypeSetpoint, TypeLevel}},
			build: func(id identity, args Args) (Variant, error) {
				if err := validateDecimalBounds(*args.DecimalBounds); err != nil {
					return nil, err
				}
				return &DecimalBoundedActuator{identity: id, bounds: *args.DecimalBounds}, nil
			},
		},
	}
}

// Resolve constructs the variant named by path.
//
// It returns a *NotFoundError for paths outside the catalog and a
// *ValidationError when the arguments are rejected. On error the returned
// variant is always nil.
//
// Parameters:
//   - path: the model to build
//   - args: generic fields plus the bound pair the model requires
//
// Returns:
//   - Variant: the immutable variant
//   - error: *NotFoundError or *ValidationError
func (r *ModelRegistry) Resolve(path ModelPath, args Args) (Variant, error) {
	m, ok := r.models[path]
	if !ok {
		return nil, &NotFoundError{ModelPath: path}
	}

	if err := checkShape(m.info, args.IntegerBounds != nil, args.DecimalBounds != nil); err != nil {
		return nil, err
	}

	id, err := newIdentity(path, args)
	if err != nil {
		return nil, err
	}

	v, err := m.build(id, args)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Lookup returns the catalog entry for path. The entry is a copy; changing
// its TypeIDs does not affect the registry.
func (r *ModelRegistry) Lookup(path ModelPath) (ModelInfo, bool) {
	m, ok := r.models[path]
	if !ok {
		return ModelInfo{}, false
	}
	return m.info.clone(), true
}

// Models returns every catalog entry sorted by path.
func (r *ModelRegistry) Models() []ModelInfo {
	return r.modelsWhere(func(ModelInfo) bool { return true })
}

// ModelsForType returns the models that accept typeID, sorted by path.
// The result is empty for an unknown type.
//
//	for _, m := range reg.ModelsForType(catalog.TypeSetpoint) {
//	    fmt.Println(m.Path, m.Kind)
//	}
func (r *ModelRegistry) ModelsForType(typeID string) []ModelInfo {
	return r.modelsWhere(func(m ModelInfo) bool { return m.Supports(typeID) })
}

func (r *ModelRegistry) modelsWhere(keep func(ModelInfo) bool) []ModelInfo {
	infos := make([]ModelInfo, 0, len(r.models))
	for _, m := range r.models {
		if keep(m.info) {
			infos = append(infos, m.info.clone())
		}
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Path < infos[j].Path
	})
	return infos
}

// Type returns the type table entry for id.
func (r *ModelRegistry) Type(id string) (TypeInfo, bool) {
	t, ok := r.types[id]
	return t, ok
}

// Types returns the whole type table sorted by id.
func (r *ModelRegistry) Types() []TypeInfo {
	return r.typesWhere(func(string) bool { return true })
}

// TypesFor returns the types at least one model of kind accepts, sorted by
// id. TypesFor(KindActuator) is the actuator type listing.
func (r *ModelRegistry) TypesFor(kind Kind) []TypeInfo {
	used := make(map[string]bool)
	for _, m := range r.models {
		if m.info.Kind != kind {
			continue
		}
		for _, id := range m.info.TypeIDs {
			used[id] = true
		}
	}
	return r.typesWhere(func(id string) bool { return used[id] })
}

func (r *ModelRegistry) typesWhere(keep func(id string) bool) []TypeInfo {
	out := make([]TypeInfo, 0, len(r.types))
	for id, t := range r.types {
		if keep(id) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}

// CheckType verifies that typeID is in the type table and accepted by the
// model at path.
//
// Parameters:
//   - path: a model path from the catalog
//   - typeID: the requested type id
//
// Returns:
//   - error: nil if the pair is valid, *NotFoundError for an unknown path,
//     or a *ValidationError on "type_id" matching ErrUnsupportedType
func (r *ModelRegistry) CheckType(path ModelPath, typeID string) error {
	m, ok := r.models[path]
	if !ok {
		return &NotFoundError{ModelPath: path}
	}
	if _, known := r.types[typeID]; !known {
		return &ValidationError{
			Field:  "type_id",
			Reason: fmt.Sprintf("unknown type %q", typeID),
			Err:    ErrUnsupportedType,
		}
	}
	if !m.info.Supports(typeID) {
		return &ValidationError{
			Field:  "type_id",
			Reason: fmt.Sprintf("%s accepts %s, not %q", path, strings.Join(m.info.TypeIDs, ", "), typeID),
			Err:    ErrUnsupportedType,
		}
	}
	return nil
}

// checkShape rejects missing or extra bound pairs.
func checkShape(info ModelInfo, hasInteger, hasDecimal bool) error {
	switch info.Shape {
	case ShapeInteger:
		if !hasInteger {
			return invalid("integer_bounds", "required by %s", info.Path)
		}
		if hasDecimal {
			return invalid("decimal_bounds", "not accepted by %s", info.Path)
		}
	case ShapeDecimal:
		if !hasDecimal {
			return invalid("decimal_bounds", "required by %s", info.Path)
		}
		if hasInteger {
			return invalid("integer_bounds", "not accepted by %s", info.Path)
		}
	default:
		if hasInteger {
			return invalid("integer_bounds", "not accepted by %s", info.Path)
		}
		if hasDecimal {
			return invalid("decimal_bounds", "not accepted by %s", info.Path)
		}
	}
	return nil
}
