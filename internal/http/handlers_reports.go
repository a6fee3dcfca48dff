package http

import (
	"context"
	"errors"
	"net/http"

	"warikan/internal/core"
	"warikan/internal/log"
	"warikan/internal/services"
)

type monthlyPartialData struct {
	monthlyView
	Selector selectorView
}

type yearlyPartialData struct {
	yearlyView
	Selector selectorView
}

type errorPartialData struct {
	Message string
	Retry   string
}

// handleMonthlyPartial renders the monthly settlement panel. An invalid or
// missing period falls back to the newest month in the ledger.
func (s *Server) handleMonthlyPartial(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	ctx := r.Context()

	ov, err := s.settlements.Overview(ctx)
	if err != nil {
		s.recordFetchFailure(ctx, err)
		s.render(w, r, "error_partial", errorPartialData{Message: fetchErrorMessage(err), Retry: r.URL.RequestURI()})
		return
	}

	p := s.uiPeriod(ctx, r, ov)
	report, err := s.settlements.Monthly(ctx, p.Year, p.Month)
	if err != nil {
		s.recordFetchFailure(ctx, err)
		s.render(w, r, "error_partial", errorPartialData{Message: fetchErrorMessage(err), Retry: r.URL.RequestURI()})
		return
	}
	s.metrics.reports.Add(1)
	s.structured.LogSettlement(ctx, p.Year, p.Month, report.TotalBilling, report.AdvanceAmount, report.FinalDue)

	s.render(w, r, "monthly", monthlyPartialData{
		monthlyView: newMonthlyView(report),
		Selector:    newSelectorView(ov.Years, p),
	})
}

// handleYearlyPartial renders the yearly settlement panel.
func (s *Server) handleYearlyPartial(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	ctx := r.Context()

	ov, err := s.settlements.Overview(ctx)
	if err != nil {
		s.recordFetchFailure(ctx, err)
		s.render(w, r, "error_partial", errorPartialData{Message: fetchErrorMessage(err), Retry: r.URL.RequestURI()})
		return
	}

	p := s.uiPeriod(ctx, r, ov)
	report, err := s.settlements.Yearly(ctx, p.Year)
	if err != nil {
		s.recordFetchFailure(ctx, err)
		s.render(w, r, "error_partial", errorPartialData{Message: fetchErrorMessage(err), Retry: r.URL.RequestURI()})
		return
	}
	s.metrics.reports.Add(1)
	s.structured.LogSettlement(ctx, p.Year, 0, report.TotalBilling, report.AdvanceTotal, report.FinalDue)

	s.render(w, r, "yearly", yearlyPartialData{
		yearlyView: newYearlyView(report),
		Selector:   newSelectorView(ov.Years, p),
	})
}

// uiPeriod resolves the requested period, correcting anything invalid to
// the latest period of the ledger.
func (s *Server) uiPeriod(ctx context.Context, r *http.Request, ov services.Overview) core.Period {
	params, err := ParsePeriodParams(r.URL.Query())
	p := params.Resolve(ov.Latest)
	if err == nil {
		err = p.Validate()
	}
	if err != nil {
		s.logger.WarnContext(ctx, "Invalid period parameter, using latest",
			log.FieldError, err,
			"corrected_to", ov.Latest.String())
		return ov.Latest
	}
	return p
}

// handleAPIOverview returns the selectable years and the latest period.
func (s *Server) handleAPIOverview(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	ov, err := s.settlements.Overview(r.Context())
	if err != nil {
		s.recordFetchFailure(r.Context(), err)
		JSONError(fetchStatus(err), fetchErrorMessage(err)).Write(w)
		return
	}
	NewHTMXResponse().BodyJSON(ov).Write(w)
}

// handleAPIMonthly returns the monthly report as JSON. Unlike the UI, an
// invalid month is rejected.
func (s *Server) handleAPIMonthly(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	ctx := r.Context()

	p, ok := s.apiPeriod(w, r, false)
	if !ok {
		return
	}
	report, err := s.settlements.Monthly(ctx, p.Year, p.Month)
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	s.metrics.reports.Add(1)
	NewHTMXResponse().BodyJSON(report).Write(w)
}

// handleAPIYearly returns the yearly report as JSON.
func (s *Server) handleAPIYearly(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	ctx := r.Context()

	p, ok := s.apiPeriod(w, r, true)
	if !ok {
		return
	}
	report, err := s.settlements.Yearly(ctx, p.Year)
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	s.metrics.reports.Add(1)
	NewHTMXResponse().BodyJSON(report).Write(w)
}

// apiPeriod parses year/month, filling missing values from the latest
// period. yearOnly ignores the month. It writes the error response itself
// and reports false on failure.
func (s *Server) apiPeriod(w http.ResponseWriter, r *http.Request, yearOnly bool) (core.Period, bool) {
	params, err := ParsePeriodParams(r.URL.Query())
	if err != nil {
		JSONError(http.StatusBadRequest, msgInvalidPeriod).Write(w)
		return core.Period{}, false
	}
	if yearOnly {
		params.Month, params.HasMonth = 1, true
	}

	var def core.Period
	if !params.HasYear || !params.HasMonth {
		ov, err := s.settlements.Overview(r.Context())
		if err != nil {
			s.apiError(w, r, err)
			return core.Period{}, false
		}
		def = ov.Latest
	}
	p := params.Resolve(def)
	if err := p.Validate(); err != nil {
		JSONError(http.StatusBadRequest, msgInvalidPeriod).Write(w)
		return core.Period{}, false
	}
	return p, true
}

func (s *Server) apiError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, core.ErrInvalidPeriod) {
		JSONError(http.StatusBadRequest, msgInvalidPeriod).Write(w)
		return
	}
	s.recordFetchFailure(r.Context(), err)
	JSONError(fetchStatus(err), fetchErrorMessage(err)).Write(w)
}
