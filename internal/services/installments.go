package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"fintrack/internal/core"
)

// ExpandInstallments turns a purchase split into installments into one
// expense per remaining installment, from Current to Total, each dated one
// month after the previous. The first keeps the original id; the others get
// "<id>-<n>".
//
// Expansion must run once, on the record the user submitted. Running it on a
// sibling would produce duplicates.
func ExpandInstallments(e core.Expense) []core.Expense {
	inst := e.Installments
	if inst == nil || inst.Total <= 1 {
		return []core.Expense{e}
	}

	amount := inst.OriginalAmount / float64(inst.Total)
	out := make([]core.Expense, 0, inst.Total-inst.Current+1)
	for i := inst.Current; i <= inst.Total; i++ {
		sibling := e
		sibling.Amount = amount
		sibling.Date = e.Date.AddDate(0, i-inst.Current, 0)
		if i != inst.Current {
			sibling.ID = e.ID + "-" + strconv.Itoa(i)
		}
		sibling.Description = installmentDescription(e.Description, i, inst.Total)
		sibling.Installments = &core.Installments{
			Total:          inst.Total,
			Current:        i,
			OriginalAmount: inst.OriginalAmount,
		}
		out = append(out, sibling)
	}
	return out
}

func installmentDescription(desc string, i, total int) string {
	suffix := fmt.Sprintf("(%d/%d)", i, total)
	if desc = strings.TrimSpace(desc); desc == "" {
		return suffix
	}
	return desc + " " + suffix
}

var installmentSuffix = regexp.MustCompile(`\s*\(\d+/\d+\)$`)

// InstallmentDescription labels desc with the position of inst, replacing
// any position label already present.
func InstallmentDescription(desc string, inst *core.Installments) string {
	if inst == nil || inst.Total <= 1 {
		return desc
	}
	return installmentDescription(installmentSuffix.ReplaceAllString(desc, ""), inst.Current, inst.Total)
}
