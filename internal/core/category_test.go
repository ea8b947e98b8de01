package core

import (
	"testing"
	"time"
)

func TestDefaultCategoryTypesIsTotal(t *testing.T) {
	m := DefaultCategoryTypes()
	if err := m.Validate(); err != nil {
		t.Fatalf("default mapping incomplete: %v", err)
	}
	if len(m) != len(Categories) {
		t.Fatalf("expected %d entries, got %d", len(Categories), len(m))
	}
	want := map[Category]ExpenseType{
		CategoryHousing:       TypeEssential,
		CategoryHealth:        TypeEssential,
		CategoryEntertainment: TypePersonal,
		CategoryOther:         TypePersonal,
		CategoryInvestment:    TypeInvestment,
	}
	for c, typ := range want {
		if got := m.TypeFor(c); got != typ {
			t.Errorf("%s: expected %s, got %s", c, typ, got)
		}
	}
}

func TestTypeForFallsBackToPersonal(t *testing.T) {
	m := CategoryTypes{CategoryFood: TypeEssential}
	if got := m.TypeFor(CategoryHousing); got != TypePersonal {
		t.Fatalf("expected personal fallback, got %s", got)
	}
	if err := m.Validate(); err == nil {
		t.Fatalf("expected incomplete mapping to fail validation")
	}
}

func TestParseCategoryTypes(t *testing.T) {
	m, err := ParseCategoryTypes("food=personal, Transport=personal")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.TypeFor(CategoryFood) != TypePersonal || m.TypeFor(CategoryTransport) != TypePersonal {
		t.Fatalf("overrides not applied: %v", m)
	}
	if m.TypeFor(CategoryHousing) != TypeEssential {
		t.Fatalf("untouched categories must keep defaults")
	}

	for _, bad := range []string{"food", "pets=personal", "food=luxury"} {
		if _, err := ParseCategoryTypes(bad); err == nil {
			t.Errorf("%q: expected error", bad)
		}
	}
}

func TestMonth(t *testing.T) {
	dec := NewMonth(2024, time.December)
	if got := dec.Next(); got != NewMonth(2025, time.January) {
		t.Fatalf("next of december: %v", got)
	}
	if got := NewMonth(2024, time.January).Prev(); got != dec.AddMonths(-12) {
		t.Fatalf("prev of january: %v", got)
	}
	if NewMonth(2024, 13) != NewMonth(2025, time.January) {
		t.Fatalf("month not normalized")
	}
	if NewMonth(2024, time.February).Days() != 29 {
		t.Fatalf("leap february")
	}
	if !dec.Contains(time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC)) {
		t.Fatalf("contains")
	}
	m, err := ParseMonth("2024-07")
	if err != nil || m != NewMonth(2024, time.July) || m.String() != "2024-07" {
		t.Fatalf("parse month: %v %v", m, err)
	}
	if _, err := ParseMonth("07/2024"); err == nil {
		t.Fatalf("expected parse error")
	}
	if !NewMonth(2023, time.December).Before(NewMonth(2024, time.January)) {
		t.Fatalf("before across years")
	}
}

func TestClassifyHealth(t *testing.T) {
	cases := []struct {
		percent float64
		want    Health
	}{
		{0, HealthExcellent},
		{70, HealthExcellent},
		{70.01, HealthGood},
		{90, HealthGood},
		{95, HealthWarning},
		{100, HealthWarning},
		{105, HealthDanger},
	}
	for _, tc := range cases {
		if got := ClassifyHealth(tc.percent); got != tc.want {
			t.Errorf("%v: expected %s, got %s", tc.percent, tc.want, got)
		}
	}
}

func TestClassifyCardUsage(t *testing.T) {
	if ClassifyCardUsage(69.9) != CardOK || ClassifyCardUsage(70) != CardWarning || ClassifyCardUsage(90) != CardDanger {
		t.Fatalf("card thresholds")
	}
}
