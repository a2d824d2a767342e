package provision

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nerrad567/gray-logic-catalog/internal/catalog"
)

// Inventory is the YAML file describing devices and what is attached to them.
//
//	devices:
//	  - id: hall-blind
//	    name: Hall Blind
//	    room_id: hall
//	    type_id: blind-motor
//	    actuators:
//	      - id: hall-blind-position
//	        model: blind-roller
//	        type_id: position
//	        name: Hall Blind Position
type Inventory struct {
	Devices []DeviceEntry `yaml:"devices"`
}

// DeviceEntry is one device and its sensors and actuators.
type DeviceEntry struct {
	ID           string         `yaml:"id"`
	Name         string         `yaml:"name"`
	RoomID       string         `yaml:"room_id"`
	TypeID       string         `yaml:"type_id"`
	Manufacturer string         `yaml:"manufacturer,omitempty"`
	Model        string         `yaml:"model,omitempty"`
	Sensors      []VariantEntry `yaml:"sensors,omitempty"`
	Actuators    []VariantEntry `yaml:"actuators,omitempty"`
}

// VariantEntry is one sensor or actuator. Model is a catalog model path.
type VariantEntry struct {
	ID            string       `yaml:"id"`
	Model         string       `yaml:"model"`
	TypeID        string       `yaml:"type_id"`
	Name          string       `yaml:"name"`
	IntegerBounds *IntegerPair `yaml:"integer_bounds,omitempty"`
	DecimalBounds *DecimalPair `yaml:"decimal_bounds,omitempty"`
}

// IntegerPair is an inclusive integer range in YAML form.
type IntegerPair struct {
	Lower int `yaml:"lower"`
	Upper int `yaml:"upper"`
}

// DecimalPair is an inclusive decimal range in YAML form.
type DecimalPair struct {
	Lower float64 `yaml:"lower"`
	Upper float64 `yaml:"upper"`
}

// Args converts the entry into catalog constructor arguments for deviceID.
func (e VariantEntry) Args(deviceID string) catalog.Args {
	args := catalog.Args{
		ID:       e.ID,
		DeviceID: deviceID,
		TypeID:   e.TypeID,
		Name:     e.Name,
	}
	if e.IntegerBounds != nil {
		args.IntegerBounds = &catalog.IntegerBounds{Lower: e.IntegerBounds.Lower, Upper: e.IntegerBounds.Upper}
	}
	if e.DecimalBounds != nil {
		args.DecimalBounds = &catalog.DecimalBounds{Lower: e.DecimalBounds.Lower, Upper: e.DecimalBounds.Upper}
	}
	return args
}

// LoadInventory reads and validates an inventory file.
func LoadInventory(path string) (*Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading inventory file: %w", err)
	}
	return ParseInventory(data)
}

// ParseInventory parses and validates inventory YAML. Unknown keys are rejected.
func ParseInventory(data []byte) (*Inventory, error) {
	var inv Inventory
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&inv); err != nil {
		return nil, fmt.Errorf("parsing inventory: %w", err)
	}

	if err := inv.Validate(); err != nil {
		return nil, fmt.Errorf("validating inventory: %w", err)
	}
	return &inv, nil
}

// Validate checks that every entry has a unique ID and the fields needed to
// create it. Model paths and bounds are checked by the catalog when applied.
func (inv *Inventory) Validate() error {
	var errs []string
	seen := make(map[string]string)

	claim := func(id, where string) {
		if id == "" {
			errs = append(errs, where+".id is required")
			return
		}
		if prev, dup := seen[id]; dup {
			errs = append(errs, fmt.Sprintf("%s.id %q duplicates %s", where, id, prev))
			return
		}
		seen[id] = where
	}

	for i, d := range inv.Devices {
		where := fmt.Sprintf("devices[%d]", i)
		claim(d.ID, where)
		if d.Name == "" {
			errs = append(errs, where+".name is required")
		}
		if d.RoomID == "" {
			errs = append(errs, where+".room_id is required")
		}
		if d.TypeID == "" {
			errs = append(errs, where+".type_id is required")
		}
		errs = append(errs, validateVariants(d.Sensors, where+".sensors", claim)...)
		errs = append(errs, validateVariants(d.Actuators, where+".actuators", claim)...)
	}

	if len(errs) > 0 {
		return fmt.Errorf("inventory errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateVariants(entries []VariantEntry, prefix string, claim func(id, where string)) []string {
	var errs []string
	for i, e := range entries {
		where := fmt.Sprintf("%s[%d]", prefix, i)
		claim(e.ID, where)
		if e.Model == "" {
			errs = append(errs, where+".model is required")
		}
	}
	return errs
}

// CheckModels verifies every sensor and actuator entry against reg: the
// model must exist, be of the kind the entry is listed under, and accept
// the entry's type id. All failures are returned with errors.Join, each
// wrapping the catalog's *NotFoundError or *ValidationError.
func (inv *Inventory) CheckModels(reg *catalog.ModelRegistry) error {
	var errs []error
	check := func(deviceID, label string, e VariantEntry, kind catalog.Kind) {
		if err := checkEntry(reg, e, kind); err != nil {
			errs = append(errs, fmt.Errorf("device %s %s %s: %w", deviceID, label, e.ID, err))
		}
	}
	for _, d := range inv.Devices {
		for _, e := range d.Sensors {
			check(d.ID, "sensor", e, catalog.KindSensor)
		}
		for _, e := range d.Actuators {
			check(d.ID, "actuator", e, catalog.KindActuator)
		}
	}
	return errors.Join(errs...)
}

func checkEntry(reg *catalog.ModelRegistry, e VariantEntry, kind catalog.Kind) error {
	path := catalog.ModelPath(e.Model)
	info, ok := reg.Lookup(path)
	if !ok {
		return &catalog.NotFoundError{ModelPath: path}
	}
	if info.Kind != kind {
		return &catalog.ValidationError{
			Field:  "model",
			Reason: fmt.Sprintf("%s is a %s model, listed as a %s", path, info.Kind, kind),
			Err:    catalog.ErrKindMismatch,
		}
	}
	return reg.CheckType(path, e.TypeID)
}
