package pattern

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/sugallat/squarebg/internal/seededrng"
)

// Seed is either a string, hashed with FNV-1a, or an integer taken modulo 2^32.
// The zero value is the empty string seed.
type Seed struct {
	text    string
	value   uint32
	numeric bool
}

func StringSeed(text string) Seed { return Seed{text: text} }

// IntSeed wraps v into 32 bits, so -1 and 4294967295 are the same seed.
func IntSeed(v int64) Seed { return Seed{value: uint32(v), numeric: true} }

// SeedFromValue converts a decoded config value (string or number) into a Seed.
// Fractional numbers are truncated toward zero.
func SeedFromValue(v any) (Seed, error) {
	switch s := v.(type) {
	case Seed:
		return s, nil
	case string:
		return StringSeed(s), nil
	case int:
		return IntSeed(int64(s)), nil
	case int32:
		return IntSeed(int64(s)), nil
	case int64:
		return IntSeed(s), nil
	case uint32:
		return IntSeed(int64(s)), nil
	case uint64:
		return IntSeed(int64(s)), nil
	case float64:
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return Seed{}, fmt.Errorf("seed %v is not a finite number", s)
		}
		return IntSeed(int64(math.Trunc(s))), nil
	case json.Number:
		if i, err := s.Int64(); err == nil {
			return IntSeed(i), nil
		}
		f, err := s.Float64()
		if err != nil {
			return Seed{}, fmt.Errorf("seed %q: %w", s.String(), err)
		}
		return SeedFromValue(f)
	}
	return Seed{}, fmt.Errorf("seed must be a string or an integer, got %T", v)
}

// Uint32 is the base seed fed to the tile hash.
func (s Seed) Uint32() uint32 {
	if s.numeric {
		return s.value
	}
	return seededrng.StringToSeed(s.text)
}

func (s Seed) IsNumeric() bool { return s.numeric }

func (s Seed) String() string {
	if s.numeric {
		return strconv.FormatUint(uint64(s.value), 10)
	}
	return s.text
}

func (s Seed) MarshalJSON() ([]byte, error) {
	if s.numeric {
		return []byte(strconv.FormatUint(uint64(s.value), 10)), nil
	}
	return json.Marshal(s.text)
}

func (s *Seed) UnmarshalJSON(data []byte) error {
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	seed, err := SeedFromValue(raw)
	if err != nil {
		return err
	}
	*s = seed
	return nil
}

// MarshalYAML keeps numeric seeds as YAML integers.
func (s Seed) MarshalYAML() (any, error) {
	if s.numeric {
		return s.value, nil
	}
	return s.text, nil
}
