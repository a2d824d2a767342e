package catalog

import (
	"errors"
	"testing"
)

func intP(n int) *int           { return &n }
func floatP(f float64) *float64 { return &f }

// buildAll resolves one variant of every registered model.
func buildAll(t *testing.T, reg *ModelRegistry) []Variant {
	t.Helper()

	var variants []Variant
	for _, info := range reg.Models() {
		args := Args{
			ID:       "id-" + string(info.Path),
			DeviceID: "D1",
			TypeID:   "T1",
			Name:     "Model " + string(info.Path),
		}
		switch info.Shape {
		case ShapeInteger:
			args.IntegerBounds = &IntegerBounds{Lower: -5, Upper: 40}
		case ShapeDecimal:
			args.DecimalBounds = &DecimalBounds{Lower: 0.1, Upper: 22.75}
		}
		v, err := reg.Resolve(info.Path, args)
		if err != nil {
			t.Fatalf("Resolve(%q) error = %v", info.Path, err)
		}
		variants = append(variants, v)
	}
	return variants
}

func TestCodec_RoundTrip(t *testing.T) {
	reg := NewModelRegistry()
	codec := NewCodec(reg)

	for _, v := range buildAll(t, reg) {
		t.Run(string(v.ModelPath()), func(t *testing.T) {
			rec := codec.Encode(v)

			got, err := codec.Decode(rec)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if !SameVariant(got, v) {
				t.Errorf("Decode() ID = %q, want %q", got.ID(), v.ID())
			}
			if got.DeviceID() != v.DeviceID() {
				t.Errorf("DeviceID() = %q, want %q", got.DeviceID(), v.DeviceID())
			}
			if got.ModelPath() != v.ModelPath() {
				t.Errorf("ModelPath() = %q, want %q", got.ModelPath(), v.ModelPath())
			}
			if got.TypeID() != v.TypeID() {
				t.Errorf("TypeID() = %q, want %q", got.TypeID(), v.TypeID())
			}
			if got.Name() != v.Name() {
				t.Errorf("Name() = %q, want %q", got.Name(), v.Name())
			}
			if got.Kind() != v.Kind() {
				t.Errorf("Kind() = %q, want %q", got.Kind(), v.Kind())
			}

			switch want := v.(type) {
			case *IntegerBoundedActuator:
				if got.(*IntegerBoundedActuator).Bounds() != want.Bounds() {
					t.Errorf("Bounds() = %+v, want %+v", got.(*IntegerBoundedActuator).Bounds(), want.Bounds())
				}
			case *DecimalBoundedActuator:
				if got.(*DecimalBoundedActuator).Bounds() != want.Bounds() {
					t.Errorf("Bounds() = %+v, want %+v", got.(*DecimalBoundedActuator).Bounds(), want.Bounds())
				}
			}

			if again := codec.Encode(got); !again.Equal(rec) {
				t.Errorf("re-encoded record = %+v, want %+v", again, rec)
			}
		})
	}
}

func TestCodec_EncodeIdempotent(t *testing.T) {
	reg := NewModelRegistry()
	codec := NewCodec(reg)

	for _, v := range buildAll(t, reg) {
		first := codec.Encode(v)
		second := codec.Encode(v)
		if !first.Equal(second) {
			t.Errorf("Encode(%s) not idempotent: %+v vs %+v", v.ModelPath(), first, second)
		}
	}
}

func TestCodec_EncodeSlots(t *testing.T) {
	reg := NewModelRegistry()
	codec := NewCodec(reg)

	t.Run("decimal variant fills only decimal slots", func(t *testing.T) {
		args := testArgs()
		args.DecimalBounds = &DecimalBounds{Lower: 16.5, Upper: 28}
		v, err := reg.Resolve(PathDecimalBounded, args)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}

		rec := codec.Encode(v)
		if rec.IntegerLower != nil || rec.IntegerUpper != nil {
			t.Errorf("integer slots = %v/%v, want absent", rec.IntegerLower, rec.IntegerUpper)
		}
		if rec.DecimalLower == nil || *rec.DecimalLower != 16.5 {
			t.Errorf("DecimalLower = %v, want 16.5", rec.DecimalLower)
		}
		if rec.DecimalUpper == nil || *rec.DecimalUpper != 28 {
			t.Errorf("DecimalUpper = %v, want 28", rec.DecimalUpper)
		}
	})

	t.Run("integer variant fills only integer slots", func(t *testing.T) {
		args := testArgs()
		args.IntegerBounds = &IntegerBounds{Lower: 1, Upper: 3}
		v, _ := reg.Resolve(PathIntegerBounded, args)

		rec := codec.Encode(v)
		if rec.DecimalLower != nil || rec.DecimalUpper != nil {
			t.Errorf("decimal slots = %v/%v, want absent", rec.DecimalLower, rec.DecimalUpper)
		}
		if rec.IntegerLower == nil || *rec.IntegerLower != 1 || rec.IntegerUpper == nil || *rec.IntegerUpper != 3 {
			t.Errorf("integer slots = %v/%v, want 1/3", rec.IntegerLower, rec.IntegerUpper)
		}
	})

	t.Run("unbounded variant leaves every slot absent", func(t *testing.T) {
		v, _ := reg.Resolve(PathWind, testArgs())
		rec := codec.Encode(v)
		if rec.IntegerLower != nil || rec.IntegerUpper != nil || rec.DecimalLower != nil || rec.DecimalUpper != nil {
			t.Errorf("Encode() = %+v, want no bound slots", rec)
		}
	})
}

type rogueVariant struct{ identity }

func (*rogueVariant) Kind() Kind   { return KindSensor }
func (*rogueVariant) Value() Value { return On }

func TestCodec_EncodePanicsOnUnhandledVariant(t *testing.T) {
	codec := NewCodec(NewModelRegistry())
	defer func() {
		if recover() == nil {
			t.Error("Encode() did not panic for an unhandled variant")
		}
	}()
	codec.Encode(&rogueVariant{identity{id: "x", modelPath: "rogue"}})
}

func TestCodec_Decode(t *testing.T) {
	codec := NewCodec(NewModelRegistry())

	base := func(path ModelPath) Record {
		return Record{ID: "rec-1", DeviceID: "D1", ModelPath: path, TypeID: "T1", Name: "Record"}
	}

	t.Run("unknown model returns NotFoundError", func(t *testing.T) {
		v, err := codec.Decode(base("unknown-model"))
		if v != nil {
			t.Errorf("Decode() variant = %v, want nil", v)
		}
		var nf *NotFoundError
		if !errors.As(err, &nf) {
			t.Fatalf("Decode() error = %v, want *NotFoundError", err)
		}
		if nf.ModelPath != "unknown-model" {
			t.Errorf("ModelPath = %q, want %q", nf.ModelPath, "unknown-model")
		}
	})

	t.Run("unknown model wins over malformed bound slots", func(t *testing.T) {
		rec := base("unknown-model")
		rec.IntegerLower, rec.IntegerUpper = intP(1), intP(1)
		rec.DecimalLower, rec.DecimalUpper = floatP(1), floatP(1)

		_, err := codec.Decode(rec)
		var nf *NotFoundError
		if !errors.As(err, &nf) || nf.ModelPath != "unknown-model" {
			t.Fatalf("Decode() error = %v, want NotFoundError(unknown-model)", err)
		}
		if errors.Is(err, ErrCorruptRecord) {
			t.Error("unknown model should not be reported as a corrupt record")
		}

		half := base("unknown-model")
		half.DecimalUpper = floatP(3)
		half.ID = ""
		if _, err := codec.Decode(half); !errors.Is(err, ErrModelNotFound) {
			t.Errorf("Decode(half-filled, no id) error = %v, want ErrModelNotFound", err)
		}
	})

	t.Run("both bound pairs for integer model is a validation error", func(t *testing.T) {
		rec := base(PathIntegerBounded)
		rec.IntegerLower, rec.IntegerUpper = intP(0), intP(10)
		rec.DecimalLower, rec.DecimalUpper = floatP(0), floatP(1)

		v, err := codec.Decode(rec)
		if v != nil {
			t.Errorf("Decode() variant = %v, want nil", v)
		}
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("Decode() error = %v, want *ValidationError", err)
		}
		if !verr.Persisted {
			t.Error("Persisted = false, want true for decode failures")
		}
		if !errors.Is(err, ErrCorruptRecord) {
			t.Error("error should match ErrCorruptRecord")
		}
		if !errors.Is(err, ErrInvalidVariant) {
			t.Error("error should match ErrInvalidVariant")
		}
	})

	tests := []struct {
		name  string
		build func() Record
	}{
		{"decimal bounds for integer model", func() Record {
			rec := base(PathIntegerBounded)
			rec.DecimalLower, rec.DecimalUpper = floatP(0), floatP(1)
			return rec
		}},
		{"integer bounds for unbounded model", func() Record {
			rec := base(PathBlindRoller)
			rec.IntegerLower, rec.IntegerUpper = intP(0), intP(100)
			return rec
		}},
		{"missing bounds for decimal model", func() Record {
			return base(PathDecimalBounded)
		}},
		{"lower without upper", func() Record {
			rec := base(PathIntegerBounded)
			rec.IntegerLower = intP(3)
			return rec
		}},
		{"upper without lower", func() Record {
			rec := base(PathDecimalBounded)
			rec.DecimalUpper = floatP(3)
			return rec
		}},
		{"stored lower above upper", func() Record {
			rec := base(PathIntegerBounded)
			rec.IntegerLower, rec.IntegerUpper = intP(10), intP(5)
			return rec
		}},
		{"blank name", func() Record {
			rec := base(PathSwitch)
			rec.Name = ""
			return rec
		}},
		{"missing identifier", func() Record {
			rec := base(PathSwitch)
			rec.ID = ""
			return rec
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := codec.Decode(tt.build())
			if v != nil {
				t.Errorf("Decode() variant = %v, want nil", v)
			}
			if !errors.Is(err, ErrCorruptRecord) {
				t.Errorf("Decode() error = %v, want ErrCorruptRecord", err)
			}
		})
	}
}

func TestCodec_DecodeKind(t *testing.T) {
	codec := NewCodec(NewModelRegistry())
	rec := Record{ID: "a1", DeviceID: "D1", ModelPath: PathBlindRoller, TypeID: "T1", Name: "Blind"}

	if _, err := codec.DecodeKind(rec, KindActuator); err != nil {
		t.Errorf("DecodeKind(actuator) error = %v", err)
	}

	_, err := codec.DecodeKind(rec, KindSensor)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("DecodeKind(sensor) error = %v, want *ValidationError", err)
	}
	if verr.Field != "kind" {
		t.Errorf("Field = %q, want %q", verr.Field, "kind")
	}
	if !errors.Is(err, ErrKindMismatch) || !errors.Is(err, ErrCorruptRecord) {
		t.Errorf("DecodeKind(sensor) error = %v, want ErrKindMismatch and ErrCorruptRecord", err)
	}

	dec := Record{ID: "a2", DeviceID: "D1", ModelPath: PathDecimalBounded, TypeID: "T1", Name: "Valve",
		DecimalLower: floatP(0), DecimalUpper: floatP(1)}
	if _, err := codec.DecodeKind(dec, KindSensor); !errors.Is(err, ErrKindMismatch) {
		t.Errorf("DecodeKind(decimal actuator as sensor) error = %v, want ErrKindMismatch", err)
	}
}

func TestRecord_Equal(t *testing.T) {
	a := Record{ID: "1", ModelPath: PathIntegerBounded, IntegerLower: intP(1), IntegerUpper: intP(2)}
	b := Record{ID: "1", ModelPath: PathIntegerBounded, IntegerLower: intP(1), IntegerUpper: intP(2)}
	if !a.Equal(b) {
		t.Error("Equal() = false for records with equal slot values")
	}

	b.IntegerUpper = intP(3)
	if a.Equal(b) {
		t.Error("Equal() = true for different upper bounds")
	}

	b.IntegerUpper = nil
	if a.Equal(b) {
		t.Error("Equal() = true when one slot is absent")
	}
}
