package dashboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"credit-risk/internal/assess"
	"credit-risk/internal/common"
	"credit-risk/internal/features"
	"credit-risk/internal/report"
)

type errorResponse struct {
	Error string `json:"error"`
}

type modelStatus struct {
	Name     string `json:"name"`
	Kind     string `json:"kind,omitempty"`
	Location string `json:"location,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

type thresholdsResponse struct {
	LowModerate  float64 `json:"low_moderate"`
	ModerateHigh float64 `json:"moderate_high"`
}

type modelsResponse struct {
	Models       []modelStatus      `json:"models"`
	Failures     []modelStatus      `json:"failures"`
	Rejections   []modelStatus      `json:"rejections"`
	FeatureOrder []string           `json:"feature_order"`
	Thresholds   thresholdsResponse `json:"thresholds"`
}

type healthResponse struct {
	Status string `json:"status"`
	Models int    `json:"models"`
}

// statusFor maps pipeline errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrNoPredictionsAvailable), errors.Is(err, common.ErrNoUsableModels):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// run assesses record, publishes the result to websocket clients and returns
// its view.
func (s *Server) run(r *http.Request, record features.FeatureRecord) (*report.View, error) {
	if s.assessor == nil {
		return nil, common.ErrNoUsableModels
	}
	a, err := s.assessor.Assess(r.Context(), record)
	if err != nil {
		return nil, err
	}
	view := report.NewView(a, s.opts.Currency)
	s.hub.Publish(Event{Type: EventAssessment, Assessment: &view})
	return &view, nil
}

func (s *Server) handleAssessmentAPI(w http.ResponseWriter, r *http.Request) {
	var record features.FeatureRecord
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&record); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	view, err := s.run(r, record)
	if err != nil {
		writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleModelsAPI(w http.ResponseWriter, r *http.Request) {
	resp := modelsResponse{
		Models:       []modelStatus{},
		Failures:     []modelStatus{},
		Rejections:   []modelStatus{},
		FeatureOrder: s.opts.FeatureOrder,
	}
	resp.Thresholds.LowModerate, resp.Thresholds.ModerateHigh = s.opts.Thresholds.Percent()

	if reg := s.opts.Registry; reg != nil {
		for _, m := range reg.Models() {
			resp.Models = append(resp.Models, modelStatus{Name: m.Name, Kind: m.Model.Kind(), Location: m.Location})
		}
		for _, f := range reg.Failures() {
			resp.Failures = append(resp.Failures, modelStatus{Name: f.Name, Location: f.Location, Reason: f.Err.Error()})
		}
		for _, rej := range reg.Rejections() {
			resp.Rejections = append(resp.Rejections, modelStatus{Name: rej.Name, Kind: rej.Kind, Reason: rej.Err.Error()})
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !s.healthy() {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Models: s.opts.Registry.Len()})
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, http.StatusOK, pageData{Form: defaultForm()})
}

func (s *Server) handleFormSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderPage(w, http.StatusBadRequest, pageData{Form: defaultForm(), Error: "Could not read the form."})
		return
	}

	form := formValues{
		Income:     strings.TrimSpace(r.PostForm.Get("income")),
		Age:        strings.TrimSpace(r.PostForm.Get("age")),
		LoanAmount: strings.TrimSpace(r.PostForm.Get("loan_amount")),
	}

	record, err := form.record()
	if err != nil {
		s.renderPage(w, http.StatusBadRequest, pageData{Form: form, Error: err.Error()})
		return
	}

	view, err := s.run(r, record)
	if err != nil {
		s.renderPage(w, statusFor(err), pageData{Form: form, Error: err.Error()})
		return
	}
	s.renderPage(w, http.StatusOK, pageData{Form: form, Result: view})
}

// formValues keeps the raw inputs so the form can be redisplayed.
type formValues struct {
	Income     string
	Age        string
	LoanAmount string
}

func defaultForm() formValues {
	return formValues{Income: "50000.00", Age: "40", LoanAmount: "5000.00"}
}

func (f formValues) record() (features.FeatureRecord, error) {
	income, err := strconv.ParseFloat(f.Income, 64)
	if err != nil {
		return features.FeatureRecord{}, fmt.Errorf("%w: annual income must be a number", common.ErrInvalidInput)
	}
	age, err := strconv.Atoi(f.Age)
	if err != nil {
		return features.FeatureRecord{}, fmt.Errorf("%w: age must be a whole number", common.ErrInvalidInput)
	}
	loan, err := strconv.ParseFloat(f.LoanAmount, 64)
	if err != nil {
		return features.FeatureRecord{}, fmt.Errorf("%w: loan amount must be a number", common.ErrInvalidInput)
	}
	return features.FeatureRecord{Income: income, Age: age, LoanAmount: loan}, nil
}

type pageData struct {
	Form     formValues
	Currency string
	Models   []string
	Error    string
	Result   *report.View
}

func (s *Server) renderPage(w http.ResponseWriter, status int, data pageData) {
	data.Currency = s.opts.Currency
	data.Models = s.modelNames()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, data); err != nil {
		log.Error().Err(err).Msg("Failed to render page")
	}
}

var _ Assessor = (*assess.Assessor)(nil)
