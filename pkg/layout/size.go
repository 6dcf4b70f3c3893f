package layout

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

const (
	// MiB is the canonical planner unit in bytes
	MiB = 1024 * 1024

	// SizeRemaining is the parted extent end for an unbounded last partition
	SizeRemaining = "100%"

	unitMiB = "mib"
)

// suffixes accepted by ToMiB, all of them binary
var binarySuffixes = map[string]string{
	"m": "MiB",
	"g": "GiB",
	"t": "TiB",
}

// units accepted together with a separate size value, as parted names them
var partedUnits = map[string]string{
	"b":   "B",
	"kb":  "kB",
	"mb":  "MB",
	"gb":  "GB",
	"tb":  "TB",
	"kib": "KiB",
	"mib": "MiB",
	"gib": "GiB",
	"tib": "TiB",
}

// ToMiB converts a size expression into MiB.
//
// Numbers are taken as MiB already. Strings must carry one of the binary
// suffixes m, g or t (case insensitive): "512m" is 512, "400g" is 409600 and
// "1t" is 1048576.
func ToMiB(value interface{}) (float64, error) {
	switch v := value.(type) {
	case string:
		return stringToMiB(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, newError(ErrSchema, v.String(), "invalid size number: %q", v.String())
		}
		return f, nil
	}

	if f, ok := numberToFloat(value); ok {
		return f, nil
	}
	return 0, newError(ErrSchema, fmt.Sprintf("%v", value), "invalid type for size: %T", value)
}

func stringToMiB(value string) (float64, error) {
	s := strings.ToLower(strings.TrimSpace(value))
	if len(s) < 2 {
		return 0, unsupportedSize(value)
	}

	suffix, ok := binarySuffixes[s[len(s)-1:]]
	if !ok {
		return 0, unsupportedSize(value)
	}
	num := strings.TrimSpace(s[:len(s)-1])
	if _, err := strconv.ParseFloat(num, 64); err != nil {
		return 0, unsupportedSize(value)
	}

	bytes, err := humanize.ParseBytes(num + suffix)
	if err != nil {
		return 0, unsupportedSize(value)
	}
	return float64(bytes) / MiB, nil
}

func unsupportedSize(value string) error {
	return newError(ErrSchema, value,
		"unsupported or invalid size format: '%s'. Only 'm', 'g', and 't' binary units are supported", value)
}

// ToMiBWithUnit converts value given in unit into MiB. An empty unit or the
// lower case "mib" falls back to ToMiB. Other units are the byte units parted understands,
// e.g. "GB" or "KiB".
func ToMiBWithUnit(value interface{}, unit string) (float64, error) {
	if unit == "" || unit == unitMiB {
		return ToMiB(value)
	}

	canonical, ok := partedUnits[strings.ToLower(strings.TrimSpace(unit))]
	if !ok {
		return 0, newError(ErrSchema, unit, "unsupported size unit '%s'", unit)
	}

	var num string
	switch v := value.(type) {
	case string:
		num = strings.TrimSpace(v)
	case json.Number:
		num = v.String()
	default:
		f, ok := numberToFloat(value)
		if !ok {
			return 0, newError(ErrSchema, fmt.Sprintf("%v", value), "invalid type for size: %T", value)
		}
		num = strconv.FormatFloat(f, 'f', -1, 64)
	}
	if _, err := strconv.ParseFloat(num, 64); err != nil {
		return 0, newError(ErrSchema, num, "invalid size '%s' in '%s'", num, unit)
	}

	bytes, err := humanize.ParseBytes(num + canonical)
	if err != nil {
		return 0, newError(ErrSchema, num, "invalid size '%s' in '%s': %v", num, unit, err)
	}
	return float64(bytes) / MiB, nil
}

// ParseHumanMiB converts a size carrying its own unit, as printed by parted
// ("1024MiB", "1.00GiB", "512B"), into MiB.
func ParseHumanMiB(value string) (float64, error) {
	bytes, err := humanize.ParseBytes(strings.TrimSpace(value))
	if err != nil {
		return 0, newError(ErrSchema, value, "invalid size '%s': %v", value, err)
	}
	return float64(bytes) / MiB, nil
}

// FormatMiB renders a MiB offset the way parted expects it for part_start
// and part_end, truncated to whole MiB after adding align.
func FormatMiB(value float64, align float64) string {
	return fmt.Sprintf("%dMiB", int64(value+align))
}

func numberToFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}
