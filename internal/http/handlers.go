package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

var errUserNotFound = errors.New("user not found")

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.docs.Ping(ctx); err != nil {
		log.FromContext(ctx).WarnContext(ctx, "Readiness check failed", log.FieldError, err.Error())
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	userID := r.PathValue("userId")
	doc, err := s.docs.GetDocument(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	if err != nil {
		s.structured.LogError(ctx, "Failed to read document", err, log.OpRead, log.NewFields().WithDocument(userID, 0, 0))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// handlePutDocument replaces the whole document. The path decides the owner;
// a missing updatedAt is stamped with the server clock.
func (s *Server) handlePutDocument(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	userID := r.PathValue("userId")
	var doc core.UserDocument
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err := dec.Decode(&doc); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	doc.UserID = userID
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = s.now().UTC()
	}

	if err := s.docs.PutDocument(ctx, doc); err != nil {
		s.structured.LogError(ctx, "Failed to save document", err, log.OpWrite, log.NewFields().WithDocument(userID, len(doc.Expenses), len(doc.Incomes)))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	s.invalidate(userID)
	s.structured.LogDocumentSaved(ctx, userID, log.DocumentStats{Expenses: len(doc.Expenses), Incomes: len(doc.Incomes)})

	if s.publisher != nil {
		if err := s.publisher.PublishUserDataUpdated(ctx, userID, doc.UpdatedAt); err != nil {
			log.FromContext(ctx).WithComponent(log.ComponentAMQP).WarnContext(ctx, "Failed to publish update event",
				log.FieldUserID, userID,
				log.FieldError, err.Error())
		}
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	month, err := parseMonthQuery(r.URL.Query(), s.now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	summary, hit, err := s.summary(ctx, r.PathValue("userId"), month)
	if !s.writeLookupError(ctx, w, err) {
		return
	}
	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	q := r.URL.Query()
	end, err := parseMonthQuery(q, s.now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	n, err := parseMonthsParam(q.Get("months"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	doc, err := s.document(ctx, r.PathValue("userId"))
	if !s.writeLookupError(ctx, w, err) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"months":     services.MonthlyHistory(doc.FinanceState, end, n),
		"categories": services.CategoryTrends(doc.FinanceState, end, n, 5),
	})
}

func (s *Server) handleCardUsage(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	month, err := parseMonthQuery(r.URL.Query(), s.now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	doc, err := s.document(ctx, r.PathValue("userId"))
	if !s.writeLookupError(ctx, w, err) {
		return
	}
	usage, err := services.CreditCardUsage(doc.FinanceState, r.PathValue("cardId"), month)
	if errors.Is(err, services.ErrCardNotFound) {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	writeJSON(w, http.StatusOK, usage)
}

// summary serves month summaries from the cache. Concurrent misses for the
// same key and generation share one document read.
func (s *Server) summary(ctx context.Context, userID string, month core.Month) (services.MonthSummary, bool, error) {
	key := summaryKey(userID, month)
	if cached, ok := s.summaries.Get(key); ok {
		return cached, true, nil
	}
	gen := s.generation(userID)
	v, err, _ := s.flights.Do(fmt.Sprintf("%s#%d", key, gen), func() (any, error) {
		doc, err := s.document(ctx, userID)
		if err != nil {
			return nil, err
		}
		summary := services.Summarize(doc.FinanceState, month)
		s.cacheSummary(userID, gen, key, summary)
		return summary, nil
	})
	if err != nil {
		return services.MonthSummary{}, false, err
	}
	return v.(services.MonthSummary), false, nil
}

func (s *Server) generation(userID string) uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.generations[userID]
}

// cacheSummary stores summary unless the user's document was replaced since
// gen was read.
func (s *Server) cacheSummary(userID string, gen uint64, key string, summary services.MonthSummary) {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	if s.generations[userID] != gen {
		return
	}
	s.summaries.Set(key, summary)
}

func (s *Server) document(ctx context.Context, userID string) (core.UserDocument, error) {
	doc, err := s.docs.GetDocument(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return core.UserDocument{}, errUserNotFound
	}
	return doc, err
}

// writeLookupError writes the response for a failed document lookup and
// reports whether the handler may continue.
func (s *Server) writeLookupError(ctx context.Context, w http.ResponseWriter, err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, errUserNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	default:
		s.structured.LogError(ctx, "Failed to read document", err, log.OpRead, nil)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
	return false
}

func (s *Server) invalidate(userID string) {
	s.genMu.Lock()
	s.generations[userID]++
	s.genMu.Unlock()
	if n := s.summaries.DeletePrefix(userID + ":"); n > 0 {
		s.logger.DebugContext(context.Background(), "Summary cache invalidated",
			log.FieldUserID, userID,
			log.FieldCount, n)
	}
}

func summaryKey(userID string, month core.Month) string {
	return fmt.Sprintf("%s:%s", userID, month)
}
