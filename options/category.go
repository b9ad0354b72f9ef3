package options

import (
	"fmt"
	"strings"
)

// CategoryEnum is a bit set of opt-in conversions between simple types that
// are not identical. With CategoryNone (the default) only identical simple
// types are copied and everything else needs an explicit converter.
type CategoryEnum int

const (
	CategorySafeNumber   CategoryEnum = 1 << iota // int, uint, float without precision loss
	CategoryUnsafeNumber                          // int, uint, float with precision loss
	CategoryTextNumber                            // int, uint, float <-> string: textual number representation
	CategoryNumericBool                           // int <-> bool: 0, 1 representation of boolean values
	CategoryTextualBool                           // string <-> bool: yes, no, on, off, true, false representation of boolean values
	CategoryDatetime                              // string(RFC3339Nano) <-> time.Time: textual date and time representation
	CategoryTimestamp                             // int(Unix seconds) <-> time.Time: Unix timestamp representation
	CategoryDuration                              // string(2h45m) <-> time.Duration: textual duration representation
	CategoryNanoseconds                           // int(nanoseconds) <-> time.Duration: numerical (integer) duration representation
	CategorySeconds                               // float(seconds) <-> time.Duration: numerical (floating-point) duration representation
	CategoryEnumString                            // string <-> enum: textual representation of an enum type (uses IsValid/String methods)
	CategoryUnsafeArray                           // slice -> array: slices longer than the array are cut instead of failing

	CategoryAll  = (1 << iota) - 1 //all categories combined
	CategoryNone = 0               // no categories selected
)

var categoryNames = []struct {
	name     string
	category CategoryEnum
}{
	{"safe_number", CategorySafeNumber},
	{"unsafe_number", CategoryUnsafeNumber},
	{"text_number", CategoryTextNumber},
	{"numeric_bool", CategoryNumericBool},
	{"textual_bool", CategoryTextualBool},
	{"datetime", CategoryDatetime},
	{"timestamp", CategoryTimestamp},
	{"duration", CategoryDuration},
	{"nanoseconds", CategoryNanoseconds},
	{"seconds", CategorySeconds},
	{"enum_string", CategoryEnumString},
	{"unsafe_array", CategoryUnsafeArray},
	{"all", CategoryAll},
}

// Has reports whether every category of other is enabled in c.
func (c CategoryEnum) Has(other CategoryEnum) bool {
	return other != CategoryNone && c&other == other
}

// String lists the enabled categories by their configuration names.
func (c CategoryEnum) String() string {
	if c == CategoryNone {
		return "none"
	}

	var parts []string
	for _, n := range categoryNames {
		if n.category != CategoryAll && c&n.category != 0 {
			parts = append(parts, n.name)
		}
	}

	return strings.Join(parts, "|")
}

// ParseCategories converts configuration names ("text_number", "all", ...)
// into a category set.
func ParseCategories(names ...string) (CategoryEnum, error) {
	var res CategoryEnum

next:
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		for _, n := range categoryNames {
			if n.name == key {
				res |= n.category
				continue next
			}
		}

		return CategoryNone, fmt.Errorf("unknown conversion category %q", name)
	}

	return res, nil
}
