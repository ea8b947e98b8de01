package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/core"
)

const maxHistoryMonths = 24

// parseMonthQuery reads year and month query parameters. Either one may be
// omitted and defaults to now's.
func parseMonthQuery(q url.Values, now time.Time) (core.Month, error) {
	year, month := now.Year(), int(now.Month())
	if v := strings.TrimSpace(q.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1970 || y > 9999 {
			return core.Month{}, fmt.Errorf("invalid year %q", v)
		}
		year = y
	}
	if v := strings.TrimSpace(q.Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			return core.Month{}, fmt.Errorf("invalid month %q", v)
		}
		month = m
	}
	return core.NewMonth(year, time.Month(month)), nil
}

func parseMonthsParam(v string) (int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 6, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > maxHistoryMonths {
		return 0, fmt.Errorf("months must be between 1 and %d", maxHistoryMonths)
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
