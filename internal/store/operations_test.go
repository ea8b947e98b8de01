package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"fintrack/internal/core"
)

func addCard(t *testing.T, s *Store, dueDay int, limit float64) core.CreditCard {
	t.Helper()
	card, err := s.AddCreditCard(context.Background(), CardInput{Name: "Visa", Limit: limit, DueDay: dueDay, Color: "#123456"})
	if err != nil {
		t.Fatalf("add card: %v", err)
	}
	return card
}

func TestAddExpenseDerivesType(t *testing.T) {
	s, _, _ := newTestStore(t)
	got, err := s.AddExpense(context.Background(), ExpenseInput{
		Amount: 42, Category: core.CategoryFood, Date: testNow, PaymentMethod: core.PaymentCash,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Type != core.TypeEssential || got[0].Installments != nil {
		t.Fatalf("unexpected expense: %+v", got)
	}
}

func TestAddExpenseUsesConfiguredCategoryTypes(t *testing.T) {
	types, err := core.ParseCategoryTypes("food=personal")
	if err != nil {
		t.Fatal(err)
	}
	s := New(Options{CategoryTypes: types, NewID: sequentialIDs()})
	got, err := s.AddExpense(context.Background(), ExpenseInput{
		Amount: 42, Category: core.CategoryFood, Date: testNow, PaymentMethod: core.PaymentCash,
	})
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Type != core.TypePersonal {
		t.Fatalf("type %s", got[0].Type)
	}
}

func TestAddExpenseExpandsInstallmentsOnce(t *testing.T) {
	s, _, remote := newTestStore(t)
	card := addCard(t, s, 10, 5000)
	before := remote.count()

	got, err := s.AddExpense(context.Background(), ExpenseInput{
		Amount: 1200, Category: core.CategoryShopping, Description: "TV",
		Date: date(2024, 1, 5), PaymentMethod: core.PaymentCredit, CreditCardID: card.ID,
		Installments: 3,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 installments, got %d", len(got))
	}
	base := got[0].ID
	wantIDs := []string{base, base + "-2", base + "-3"}
	wantDesc := []string{"TV (1/3)", "TV (2/3)", "TV (3/3)"}
	for i, e := range got {
		if e.ID != wantIDs[i] || e.Description != wantDesc[i] || e.Amount != 400 {
			t.Errorf("installment %d: %+v", i, e)
		}
		if e.Installments.OriginalAmount != 1200 || e.Installments.Current != i+1 {
			t.Errorf("installment %d metadata: %+v", i, e.Installments)
		}
	}
	if n := len(s.Snapshot().Expenses); n != 3 {
		t.Fatalf("stored %d expenses", n)
	}
	if remote.count() != before+1 {
		t.Fatal("expansion should be a single mutation")
	}
}

func TestAddExpenseCashIgnoresInstallments(t *testing.T) {
	s, _, _ := newTestStore(t)
	got, err := s.AddExpense(context.Background(), ExpenseInput{
		Amount: 90, Category: core.CategoryOther, Date: testNow, PaymentMethod: core.PaymentCash, Installments: 3,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Amount != 90 || got[0].Installments != nil {
		t.Fatalf("cash expense split: %+v", got)
	}
}

func TestAddExpenseRejectsUnknownCard(t *testing.T) {
	s, _, _ := newTestStore(t)
	_, err := s.AddExpense(context.Background(), ExpenseInput{
		Amount: 10, Category: core.CategoryFood, Date: testNow, PaymentMethod: core.PaymentCredit, CreditCardID: "nope",
	})
	if !errors.Is(err, ErrUnknownCard) {
		t.Fatalf("expected unknown card, got %v", err)
	}
}

func TestAddExpenseRejectsBadCurrentInstallment(t *testing.T) {
	s, _, _ := newTestStore(t)
	card := addCard(t, s, 10, 100)
	_, err := s.AddExpense(context.Background(), ExpenseInput{
		Amount: 10, Category: core.CategoryFood, Date: testNow, PaymentMethod: core.PaymentCredit,
		CreditCardID: card.ID, Installments: 2, CurrentInstallment: 3,
	})
	if !errors.Is(err, core.ErrInvalidInstallments) {
		t.Fatalf("expected invalid installments, got %v", err)
	}
}

func TestUpdateAndRemoveInstallmentLeaveSiblings(t *testing.T) {
	s, _, _ := newTestStore(t)
	card := addCard(t, s, 10, 5000)
	got, err := s.AddExpense(context.Background(), ExpenseInput{
		Amount: 300, Category: core.CategoryShopping, Description: "Bike",
		Date: date(2024, 1, 5), PaymentMethod: core.PaymentCredit, CreditCardID: card.ID, Installments: 3,
	})
	if err != nil {
		t.Fatal(err)
	}

	updated, err := s.UpdateExpense(context.Background(), got[1].ID, ExpenseInput{
		Amount: 150, Category: core.CategoryShopping, Description: "Bike (2/3)",
		Date: got[1].Date, PaymentMethod: core.PaymentCredit, CreditCardID: card.ID, Installments: 6,
	})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Installments == nil || updated.Installments.Total != 3 || updated.Amount != 150 {
		t.Fatalf("update should keep installment info without re-expanding: %+v", updated)
	}
	if n := len(s.Snapshot().Expenses); n != 3 {
		t.Fatalf("update changed expense count to %d", n)
	}
	if updated.Description != "Bike (2/3)" {
		t.Fatalf("label should not be doubled: %q", updated.Description)
	}

	relabeled, err := s.UpdateExpense(context.Background(), got[2].ID, ExpenseInput{
		Amount: 120, Category: core.CategoryShopping, Description: "Road bike",
		Date: got[2].Date, PaymentMethod: core.PaymentCredit, CreditCardID: card.ID,
	})
	if err != nil {
		t.Fatal(err)
	}
	if relabeled.Description != "Road bike (3/3)" || relabeled.Amount != 120 {
		t.Fatalf("edited installment should keep its label and take the amount as is: %+v", relabeled)
	}

	if err := s.RemoveExpense(context.Background(), got[0].ID); err != nil {
		t.Fatal(err)
	}
	if n := len(s.Snapshot().Expenses); n != 2 {
		t.Fatalf("remove should only delete one installment, %d left", n)
	}
	if err := s.RemoveExpense(context.Background(), got[0].ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCardUsageFollowsBillingMonth(t *testing.T) {
	s, _, _ := newTestStore(t)
	card := addCard(t, s, 10, 1000)
	for _, d := range []time.Time{date(2024, 3, 5), date(2024, 3, 15)} {
		if _, err := s.AddExpense(context.Background(), ExpenseInput{
			Amount: 100, Category: core.CategoryFood, Date: d, PaymentMethod: core.PaymentCredit, CreditCardID: card.ID,
		}); err != nil {
			t.Fatal(err)
		}
	}

	march, err := s.CardUsage(card.ID, core.NewMonth(2024, time.March))
	if err != nil {
		t.Fatal(err)
	}
	april, err := s.CardUsage(card.ID, core.NewMonth(2024, time.April))
	if err != nil {
		t.Fatal(err)
	}
	if march.Used != 100 || april.Used != 100 {
		t.Fatalf("march %v april %v", march.Used, april.Used)
	}

	// Moving the due day past the 15th puts both purchases in March.
	if _, err := s.UpdateCreditCard(context.Background(), card.ID, CardInput{Name: "Visa", Limit: 1000, DueDay: 20}); err != nil {
		t.Fatal(err)
	}
	march, _ = s.CardUsage(card.ID, core.NewMonth(2024, time.March))
	if march.Used != 200 {
		t.Fatalf("after due day change march used %v", march.Used)
	}
}

func TestRemoveCreditCardKeepsExpenses(t *testing.T) {
	s, _, _ := newTestStore(t)
	card := addCard(t, s, 10, 1000)
	if _, err := s.AddExpense(context.Background(), ExpenseInput{
		Amount: 100, Category: core.CategoryFood, Date: testNow, PaymentMethod: core.PaymentCredit, CreditCardID: card.ID,
	}); err != nil {
		t.Fatal(err)
	}
	if err := s.RemoveCreditCard(context.Background(), card.ID); err != nil {
		t.Fatal(err)
	}
	st := s.Snapshot()
	if len(st.CreditCards) != 0 || len(st.Expenses) != 1 || st.Expenses[0].CreditCardID != card.ID {
		t.Fatalf("unexpected state after card removal: %+v", st)
	}
	if _, err := s.CardUsage(card.ID, core.NewMonth(2024, time.March)); err == nil {
		t.Fatal("usage of a removed card should fail")
	}
}

func TestCreditCardValidation(t *testing.T) {
	s, _, _ := newTestStore(t)
	if _, err := s.AddCreditCard(context.Background(), CardInput{Name: "X", Limit: 10, DueDay: 32}); !errors.Is(err, core.ErrInvalidDueDay) {
		t.Fatalf("expected invalid due day, got %v", err)
	}
	if err := s.SetCreditCardActive(context.Background(), "missing", false); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRecurringLifecycle(t *testing.T) {
	s, _, _ := newTestStore(t)
	r, err := s.AddRecurring(context.Background(), RecurringInput{
		Amount: 800, Description: "Rent", Type: core.TransactionExpense, Category: core.CategoryHousing,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !r.IsActive || r.ExpenseType != core.TypeEssential || r.Frequency != core.FrequencyMonthly {
		t.Fatalf("unexpected recurring: %+v", r)
	}
	if got := s.Summary(core.NewMonth(2024, time.March)).EssentialSpent; got != 800 {
		t.Fatalf("recurring should count as essential, got %v", got)
	}

	if err := s.SetRecurringActive(context.Background(), r.ID, false); err != nil {
		t.Fatal(err)
	}
	updated, err := s.UpdateRecurring(context.Background(), r.ID, RecurringInput{
		Amount: 900, Description: "Rent", Type: core.TransactionExpense, Category: core.CategoryHousing,
	})
	if err != nil {
		t.Fatal(err)
	}
	if updated.IsActive || updated.Amount != 900 {
		t.Fatalf("update should keep active flag: %+v", updated)
	}
	if got := s.Summary(core.NewMonth(2024, time.March)).EssentialSpent; got != 0 {
		t.Fatalf("inactive recurring counted: %v", got)
	}
	if err := s.RemoveRecurring(context.Background(), r.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddRecurring(context.Background(), RecurringInput{Amount: 1, Type: core.TransactionIncome}); !errors.Is(err, core.ErrEmptyDescription) {
		t.Fatalf("expected empty description, got %v", err)
	}
}

func TestIncomeLifecycle(t *testing.T) {
	s, _, _ := newTestStore(t)
	inc, err := s.AddIncome(context.Background(), IncomeInput{Amount: 250, Description: "Bonus", Date: testNow})
	if err != nil {
		t.Fatal(err)
	}
	if got := s.SelectedSummary().TotalMonthlyIncome; got != 3250 {
		t.Fatalf("total monthly income %v", got)
	}
	if err := s.RemoveIncome(context.Background(), inc.ID); err != nil {
		t.Fatal(err)
	}
	if err := s.RemoveIncome(context.Background(), inc.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGoalDeposits(t *testing.T) {
	s, _, _ := newTestStore(t)
	g, err := s.AddGoal(context.Background(), GoalInput{
		Title: "Trip", TargetAmount: 1000, Deadline: date(2024, 12, 1),
		Category: core.GoalSavings, Priority: core.PriorityHigh,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !g.IsActive || !g.CreatedAt.Equal(testNow) {
		t.Fatalf("unexpected goal: %+v", g)
	}
	g, err = s.DepositToGoal(context.Background(), g.ID, 1000)
	if err != nil {
		t.Fatal(err)
	}
	if !g.Completed() {
		t.Fatal("goal should be completed")
	}
	if _, err := s.DepositToGoal(context.Background(), g.ID, -2000); !errors.Is(err, core.ErrNegativeProgress) {
		t.Fatalf("expected negative progress, got %v", err)
	}
	if got := s.Snapshot().Goals[0].CurrentAmount; got != 1000 {
		t.Fatalf("rejected withdrawal changed progress to %v", got)
	}
	if _, err := s.UpdateGoal(context.Background(), g.ID, GoalInput{Title: "", TargetAmount: 1}); !errors.Is(err, core.ErrEmptyTitle) {
		t.Fatalf("expected empty title, got %v", err)
	}
	if err := s.SetGoalActive(context.Background(), g.ID, false); err != nil {
		t.Fatal(err)
	}
	if err := s.RemoveGoal(context.Background(), g.ID); err != nil {
		t.Fatal(err)
	}
}

func TestPlannedPurchaseLifecycle(t *testing.T) {
	s, _, _ := newTestStore(t)
	p, err := s.AddPlannedPurchase(context.Background(), PlannedPurchaseInput{
		Title: "Laptop", Amount: 1500, Category: core.CategoryShopping,
		PlannedDate: date(2024, 6, 1), Priority: core.PriorityMedium,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.CompletePlannedPurchase(context.Background(), p.ID); err != nil {
		t.Fatal(err)
	}
	st := s.Snapshot()
	if !st.PlannedPurchases[0].IsCompleted || len(st.Expenses) != 0 {
		t.Fatalf("unexpected state: %+v", st.PlannedPurchases)
	}
	if err := s.RemovePlannedPurchase(context.Background(), p.ID); err != nil {
		t.Fatal(err)
	}
}

func TestRefreshAlertsAddsOnlyNewAlerts(t *testing.T) {
	s, _, _ := newTestStore(t)
	// 2400 of a 2400 essential+personal budget.
	if _, err := s.AddExpense(context.Background(), ExpenseInput{
		Amount: 2400, Category: core.CategoryHousing, Date: testNow, PaymentMethod: core.PaymentCash,
	}); err != nil {
		t.Fatal(err)
	}

	fresh, err := s.RefreshAlerts(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(fresh) != 1 || fresh[0].Type != core.AlertBudgetExceeded {
		t.Fatalf("unexpected alerts: %+v", fresh)
	}
	again, err := s.RefreshAlerts(context.Background())
	if err != nil || len(again) != 0 {
		t.Fatalf("alert raised twice: %+v %v", again, err)
	}

	if err := s.DismissAlert(context.Background(), fresh[0].ID); err != nil {
		t.Fatal(err)
	}
	if !s.Snapshot().Alerts[0].IsRead {
		t.Fatal("alert not marked read")
	}
	if again, _ := s.RefreshAlerts(context.Background()); len(again) != 0 {
		t.Fatal("dismissed alert raised again")
	}
	if err := s.ClearAlerts(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n := len(s.Snapshot().Alerts); n != 0 {
		t.Fatalf("%d alerts left after clear", n)
	}
}
