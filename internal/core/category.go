package core

import (
	"fmt"
	"strings"
)

type (
	Category    string
	ExpenseType string

	// CategoryTypes maps each category to the budget bucket its expenses are
	// charged against. The mapping is configuration, applied once when an
	// expense is created.
	CategoryTypes map[Category]ExpenseType
)

const (
	CategoryHousing       Category = "housing"
	CategoryFood          Category = "food"
	CategoryTransport     Category = "transport"
	CategoryHealth        Category = "health"
	CategoryEducation     Category = "education"
	CategoryEntertainment Category = "entertainment"
	CategoryShopping      Category = "shopping"
	CategorySubscription  Category = "subscription"
	CategoryInvestment    Category = "investment"
	CategoryOther         Category = "other"
)

const (
	TypeEssential  ExpenseType = "essential"
	TypePersonal   ExpenseType = "personal"
	TypeInvestment ExpenseType = "investment"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryHousing,
	CategoryFood,
	CategoryTransport,
	CategoryHealth,
	CategoryEducation,
	CategoryEntertainment,
	CategoryShopping,
	CategorySubscription,
	CategoryInvestment,
	CategoryOther,
}

// ExpenseTypes lists every budget bucket.
var ExpenseTypes = []ExpenseType{TypeEssential, TypePersonal, TypeInvestment}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string { return string(c) }

func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
	}
	return c, nil
}

func (t ExpenseType) Valid() bool {
	return t == TypeEssential || t == TypePersonal || t == TypeInvestment
}

func ParseExpenseType(s string) (ExpenseType, error) {
	t := ExpenseType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidExpenseType, s)
	}
	return t, nil
}

// DefaultCategoryTypes returns the stock mapping used by the expense form.
func DefaultCategoryTypes() CategoryTypes {
	return CategoryTypes{
		CategoryHousing:       TypeEssential,
		CategoryFood:          TypeEssential,
		CategoryTransport:     TypeEssential,
		CategoryHealth:        TypeEssential,
		CategoryEducation:     TypeEssential,
		CategoryEntertainment: TypePersonal,
		CategoryShopping:      TypePersonal,
		CategorySubscription:  TypePersonal,
		CategoryInvestment:    TypeInvestment,
		CategoryOther:         TypePersonal,
	}
}

// TypeFor is total: a category missing from the table falls back to personal.
func (m CategoryTypes) TypeFor(c Category) ExpenseType {
	if t, ok := m[c]; ok && t.Valid() {
		return t
	}
	return TypePersonal
}

// Validate reports categories without a mapping and mappings to unknown
// categories or types.
func (m CategoryTypes) Validate() error {
	var problems []string
	for _, c := range Categories {
		t, ok := m[c]
		if !ok {
			problems = append(problems, fmt.Sprintf("category %q is not mapped", c))
			continue
		}
		if !t.Valid() {
			problems = append(problems, fmt.Sprintf("category %q maps to unknown type %q", c, t))
		}
	}
	for c := range m {
		if !c.Valid() {
			problems = append(problems, fmt.Sprintf("unknown category %q", c))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("category types: %s", strings.Join(problems, "; "))
	}
	return nil
}

// ParseCategoryTypes applies overrides in the form "food=personal,other=essential"
// on top of the default mapping.
func ParseCategoryTypes(s string) (CategoryTypes, error) {
	m := DefaultCategoryTypes()
	s = strings.TrimSpace(s)
	if s == "" {
		return m, nil
	}
	for _, pair := range strings.Split(s, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid category mapping %q: expected category=type", pair)
		}
		c, err := ParseCategory(key)
		if err != nil {
			return nil, err
		}
		t, err := ParseExpenseType(value)
		if err != nil {
			return nil, err
		}
		m[c] = t
	}
	return m, nil
}
