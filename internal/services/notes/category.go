package notes

import (
	"github.com/go-playground/validator/v10"
)

// Category is one of the fixed note categories.
type Category string

// The taxonomy, in display order.
const (
	RandomThoughts Category = "Random Thoughts"
	School         Category = "School"
	Personal       Category = "Personal"
	Drama          Category = "Drama"
)

// DefaultCategory is assigned when a note is written without one.
const DefaultCategory = RandomThoughts

var taxonomy = [...]Category{RandomThoughts, School, Personal, Drama}

var colors = map[Category]string{
	RandomThoughts: "#ef9c66",
	School:         "#fcdc94",
	Personal:       "#78aba8",
	Drama:          "#C8CFA0",
}

// Categories returns the taxonomy in display order.
func Categories() []Category {
	out := make([]Category, len(taxonomy))
	copy(out, taxonomy[:])
	return out
}

// ParseCategory matches s exactly against the taxonomy.
func ParseCategory(s string) (Category, bool) {
	c := Category(s)
	_, ok := colors[c]
	return c, ok
}

// Valid reports whether c belongs to the taxonomy.
func (c Category) Valid() bool {
	_, ok := colors[c]
	return ok
}

// Color is the display colour attached to c, or "" for unknown values.
func (c Category) Color() string {
	return colors[c]
}

// categoryRule accepts an empty value (meaning "use the default") or a member
// of the taxonomy.
func categoryRule(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	_, ok := ParseCategory(s)
	return ok
}

// RegisterCategoryValidator registers the "category" validation tag.
func RegisterCategoryValidator(v *validator.Validate) error {
	return v.RegisterValidation("category", categoryRule)
}
