package metrics

// MetricsWrapper adapts Metrics to the narrow interfaces of the ml and assess
// packages so neither imports Prometheus directly.
type MetricsWrapper struct {
	m *Metrics
}

func NewWrapper(m *Metrics) *MetricsWrapper {
	return &MetricsWrapper{m: m}
}

func (w *MetricsWrapper) ModelInferenceInc(model string) {
	w.m.ModelInferencesTotal.WithLabelValues(model).Inc()
}

func (w *MetricsWrapper) ModelFailureInc(model string) {
	w.m.ModelFailuresTotal.WithLabelValues(model).Inc()
}

func (w *MetricsWrapper) ModelLatencyObserve(model string, seconds float64) {
	w.m.ModelLatency.WithLabelValues(model).Observe(seconds)
}

func (w *MetricsWrapper) VotingLatencyObserve(seconds float64) {
	w.m.VotingLatency.Observe(seconds)
}

func (w *MetricsWrapper) AssessmentInc() {
	w.m.AssessmentsTotal.Inc()
}

func (w *MetricsWrapper) AssessmentFailureInc() {
	w.m.AssessmentFailuresTotal.Inc()
}

func (w *MetricsWrapper) AssessmentLatencyObserve(seconds float64) {
	w.m.AssessmentLatency.Observe(seconds)
}

func (w *MetricsWrapper) MeanRepayObserve(p float64) {
	w.m.MeanRepayProbability.Observe(p)
}

func (w *MetricsWrapper) VerdictInc(category string) {
	w.m.VerdictsTotal.WithLabelValues(category).Inc()
}
