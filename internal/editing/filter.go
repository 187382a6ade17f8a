package editing

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/videocraft/videocraft-core/internal/timecode"
)

// FilterBlur is measured as a pixel radius; every other filter is a percentage.
const FilterBlur = "blur"

// MaxBlurRadius bounds the blur filter value, in pixels.
const MaxBlurRadius = 100

// Filter is a visual filter applied over the whole output.
type Filter struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Unit returns "px" for blur and "%" for percentage-like filters.
func (f Filter) Unit() string {
	if f.Name == FilterBlur {
		return "px"
	}
	return "%"
}

func (f Filter) String() string {
	return fmt.Sprintf("%s %g%s", f.Name, f.Value, f.Unit())
}

func (f Filter) normalize() Filter {
	f.Name = strings.ToLower(strings.TrimSpace(f.Name))
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.Name == FilterBlur {
		f.Value = timecode.Clamp(f.Value, 0, MaxBlurRadius)
	} else {
		f.Value = timecode.Clamp(f.Value, 0, 100)
	}
	return f
}
