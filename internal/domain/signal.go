package domain

// Signal is a single strategy's trade recommendation for one market. An
// inactive signal means the strategy abstains for this cycle; inactive
// signals carry no direction and are skipped by the composite.
type Signal struct {
	Source     string  // strategy name
	Direction  Outcome // side to bet when Active
	Edge       float64 // estimated advantage over the market price, in [0,1]
	Confidence float64 // conviction behind the edge, in [0,1]
	Active     bool
	Rationale  string
	// Contributors lists the sub-strategy names that fed a composite signal.
	Contributors []string
}

// Abstain returns an inactive signal attributed to source.
func Abstain(source string) Signal {
	return Signal{Source: source}
}
