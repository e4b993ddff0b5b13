package ports

// Metrics records authentication outcomes
type Metrics interface {
	AuthDecision(outcome string)
	TokensIssued(kind string)
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) AuthDecision(string) {}
func (NopMetrics) TokensIssued(string) {}
