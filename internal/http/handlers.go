package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"warikan/internal/amqp"
	"warikan/internal/core"
	"warikan/internal/log"
	"warikan/internal/services"
	"warikan/internal/sheets"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewHTMXResponse().BodyJSON(map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.metrics.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady checks templates, the store and that a ledger source is
// configured. It never fetches the ledger.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]interface{})
	fail := func(name, msg string) {
		checks[name] = msg
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	}

	if s.templates == nil {
		fail("templates", "failed: templates not loaded")
	} else {
		checks["templates"] = "ok"
	}

	if s.store != nil {
		if err := s.store.Ping(ctx); err != nil {
			fail("store", fmt.Sprintf("failed: %v", err))
		} else {
			checks["store"] = "ok"
		}
	} else {
		checks["store"] = "not_configured"
	}

	// an unconfigured source still serves the setup page
	checks["source"] = "ok"
	if s.sources != nil && !s.sources.Configured(ctx) {
		checks["source"] = "not_configured"
	}

	if s.settlements != nil {
		checks["cache"] = map[string]interface{}{
			"ledger_entries": s.settlements.Cache().Size(),
		}
	}

	NewHTMXResponse().
		Status(httpStatus).
		BodyJSON(map[string]interface{}{
			"status":    status,
			"timestamp": time.Now().Format(time.RFC3339),
			"checks":    checks,
		}).
		Write(w)
}

// handleMetrics provides application metrics in Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	traceMetrics := s.tracer.GetMetrics()
	limitMetrics := s.rateLimiter.GetMetrics()
	ledgerEntries := 0
	if s.settlements != nil {
		ledgerEntries = s.settlements.Cache().Size()
	}

	metric := func(name, kind, help string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", name, help, name, kind, name, value)
	}
	metric("http_requests_total", "counter", "Total number of HTTP requests", traceMetrics.TotalRequests)
	metric("http_server_errors_total", "counter", "Responses with a 5xx status", traceMetrics.ServerErrors)
	metric("http_request_duration_avg_microseconds", "gauge", "Average response time", traceMetrics.AverageResponseTime)
	metric("reports_computed_total", "counter", "Settlement reports rendered or served", s.metrics.reports.Load())
	metric("ledger_fetch_failures_total", "counter", "Ledger fetches that failed", s.metrics.fetchFailures.Load())
	metric("ledger_refreshes_total", "counter", "Manual ledger refreshes", s.metrics.refreshes.Load())
	metric("advances_saved_total", "counter", "Advance amounts saved", s.metrics.advancesSaved.Load())
	metric("ledger_cache_entries", "gauge", "Cached ledger copies", ledgerEntries)
	metric("rate_limit_hits_total", "counter", "Requests rejected by the rate limiter", limitMetrics.TotalHits)
	metric("active_rate_limit_clients", "gauge", "Currently tracked rate limit clients", limitMetrics.ClientCount)
	metric("uptime_seconds", "gauge", "Application uptime in seconds", int64(time.Since(s.metrics.started).Seconds()))
}

type indexData struct {
	Selector  selectorView
	View      string
	Error     string
	SourceURL string
	HasSource bool
	FetchedAt string
}

type setupData struct {
	URL   string
	Error string
}

func (s *Server) needsSetup(ctx context.Context) bool {
	return s.sources != nil && !s.sources.Configured(ctx)
}

// handleIndex renders the dashboard shell, or the setup form when no source
// URL is known yet.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	ctx := r.Context()

	if s.needsSetup(ctx) {
		s.render(w, r, "setup", setupData{})
		return
	}

	data := indexData{View: "monthly"}
	if r.URL.Query().Get("view") == "yearly" {
		data.View = "yearly"
	}
	if s.sources != nil {
		data.HasSource = true
		data.SourceURL, _ = s.sources.SourceURL(ctx)
	}

	ov, err := s.settlements.Overview(ctx)
	if err != nil {
		s.recordFetchFailure(ctx, err)
		data.Error = fetchErrorMessage(err)
		now := time.Now()
		data.Selector = newSelectorView([]int{now.Year()}, core.PeriodOf(now))
		s.render(w, r, "index", data)
		return
	}

	params, perr := ParsePeriodParams(r.URL.Query())
	selected := params.Resolve(ov.Latest)
	if perr != nil || selected.Validate() != nil {
		selected = ov.Latest
	}
	data.Selector = newSelectorView(ov.Years, selected)
	if !ov.FetchedAt.IsZero() {
		data.FetchedAt = ov.FetchedAt.In(s.location()).Format("2006-01-02 15:04")
	}
	s.render(w, r, "index", data)
}

// handleSaveSource stores the ledger endpoint URL from the setup form.
func (s *Server) handleSaveSource(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if s.sources == nil {
		http.NotFound(w, r)
		return
	}
	ctx := r.Context()

	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("リクエストの形式が正しくありません。").Write(w)
		return
	}
	raw := p.Get("url")

	if err := s.sources.SetSourceURL(ctx, raw); err != nil {
		if errors.Is(err, services.ErrInvalidSourceURL) {
			s.logger.WarnContext(ctx, "Rejected source URL", log.FieldError, err)
			if isHTMX(r.Header) || p.IsJSON() {
				UnprocessableEntityError(msgInvalidURL).Write(w)
				return
			}
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusUnprocessableEntity)
			s.render(w, r, "setup", setupData{URL: raw, Error: msgInvalidURL})
			return
		}
		s.structured.LogError(ctx, "Failed to save source URL", err, log.ComponentStorage, log.OpUpdate, nil)
		InternalServerError(msgSaveFailed).Write(w)
		return
	}

	s.settlements.Invalidate()
	s.logger.InfoContext(ctx, "Source URL saved", "cleared", raw == "")

	if isHTMX(r.Header) {
		NewHTMXResponse().Redirect("/").Write(w)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleSaveAdvance stores the counterparty's advance for one month.
func (s *Server) handleSaveAdvance(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	ctx := r.Context()

	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("リクエストの形式が正しくありません。").Write(w)
		return
	}
	params, err := ParsePeriodParams(p.Values())
	if err != nil || !params.HasYear || !params.HasMonth {
		s.respondError(w, p.IsJSON(), http.StatusBadRequest, msgInvalidPeriod)
		return
	}

	amount, err := s.advances.SetAdvance(ctx, params.Year, params.Month, p.Get("amount"))
	if err != nil {
		if errors.Is(err, core.ErrInvalidPeriod) {
			s.respondError(w, p.IsJSON(), http.StatusBadRequest, msgInvalidPeriod)
			return
		}
		s.structured.LogError(ctx, "Failed to save advance", err, log.ComponentAdvance, log.OpUpdate,
			log.NewFields().WithPeriod(params.Year, params.Month))
		s.respondError(w, p.IsJSON(), http.StatusInternalServerError, msgSaveFailed)
		return
	}

	s.metrics.advancesSaved.Add(1)
	s.structured.LogAdvanceSaved(ctx, params.Year, params.Month, amount)

	if p.IsJSON() {
		NewHTMXResponse().BodyJSON(map[string]interface{}{
			"year":   params.Year,
			"month":  params.Month,
			"amount": amount,
		}).Write(w)
		return
	}
	NewHTMXResponse().
		TriggerAdvanceSaved(params.Year, params.Month).
		TriggerSuccessNotification(msgAdvanceSaved).
		BodyHTML(`<span class="saved">` + formatYen(amount) + ` 保存済み</span>`).
		Write(w)
}

// handleRefresh drops the cached ledger and fetches it again.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	ctx := r.Context()
	jsonOut := wantsJSON(r)

	s.metrics.refreshes.Add(1)
	ov, err := s.settlements.Refresh(ctx)
	if err != nil {
		s.recordFetchFailure(ctx, err)
		if !jsonOut && isHTMX(r.Header) {
			msg := fetchErrorMessage(err)
			ErrorResponse(fetchStatus(err), msg).TriggerErrorNotification(msg).Write(w)
			return
		}
		s.respondError(w, jsonOut, fetchStatus(err), fetchErrorMessage(err))
		return
	}
	s.logger.InfoContext(ctx, "Ledger refreshed",
		log.FieldRows, ov.Rows,
		log.FieldOperation, log.OpRefresh)

	if s.publisher != nil && ov.HasLatest {
		if err := s.publisher.PublishRecompute(ctx, ov.Latest, amqp.ReasonRefresh); err != nil {
			s.logger.WarnContext(ctx, "Failed to publish refresh", log.FieldError, err)
		}
	}

	switch {
	case jsonOut:
		NewHTMXResponse().BodyJSON(ov).Write(w)
	case isHTMX(r.Header):
		// the year list may have changed, so reload the whole shell
		NewHTMXResponse().
			Header("HX-Refresh", "true").
			TriggerLedgerRefreshed(ov.Latest.Year, ov.Latest.Month).
			TriggerSuccessNotification(msgRefreshed).
			Write(w)
	default:
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func (s *Server) respondError(w http.ResponseWriter, jsonOut bool, status int, msg string) {
	if jsonOut {
		JSONError(status, msg).Write(w)
		return
	}
	ErrorResponse(status, msg).Write(w)
}

func (s *Server) recordFetchFailure(ctx context.Context, err error) {
	s.metrics.fetchFailures.Add(1)
	s.structured.LogError(ctx, "Ledger fetch failed", err, log.ComponentSource, log.OpFetch, nil)
}

func (s *Server) location() *time.Location {
	if s.settlements != nil {
		if loc := s.settlements.Policy().Location; loc != nil {
			return loc
		}
	}
	return time.Local
}

// fetchStatus maps a ledger error to an HTTP status.
func fetchStatus(err error) int {
	if errors.Is(err, sheets.ErrNoSource) {
		return http.StatusServiceUnavailable
	}
	return http.StatusBadGateway
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
