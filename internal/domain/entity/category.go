package entity

// Category classifies a Business. The set is closed.
type Category string

const (
	CategoryShop    Category = "shop"
	CategoryService Category = "service"
	CategoryFood    Category = "food"
	CategoryHealth  Category = "health"
	CategoryOther   Category = "other"
)

// CategoryAll is the list filter value meaning "no category filter".
const CategoryAll = "all"

// Categories lists every valid category in display order.
var Categories = []Category{CategoryShop, CategoryService, CategoryFood, CategoryHealth, CategoryOther}

func (c Category) Valid() bool {
	switch c {
	case CategoryShop, CategoryService, CategoryFood, CategoryHealth, CategoryOther:
		return true
	}
	return false
}

func (c Category) String() string { return string(c) }
