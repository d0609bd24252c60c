package stats

import "math"

// Model selects which distribution an SPRT test is evaluated under
// (spec.md §4.8).
type Model int

const (
	TrinomialModel Model = iota
	PentanomialModel
)

// Decision is the outcome of one SPRT.Evaluate call.
type Decision int

const (
	Continue Decision = iota
	AcceptH0
	AcceptH1
)

func (d Decision) String() string {
	switch d {
	case AcceptH0:
		return "accept H0"
	case AcceptH1:
		return "accept H1"
	default:
		return "continue"
	}
}

// SPRT configures a sequential probability ratio test between two Elo
// hypotheses (spec.md §4.8).
type SPRT struct {
	Elo0, Elo1   float64
	Alpha, Beta  float64
	Model        Model
}

// NewSPRT constructs an SPRT configuration.
func NewSPRT(elo0, elo1, alpha, beta float64, model Model) *SPRT {
	return &SPRT{Elo0: elo0, Elo1: elo1, Alpha: alpha, Beta: beta, Model: model}
}

// Bounds returns the SPRT's A/B log-likelihood-ratio stopping bounds
// (spec.md §4.8): A = ln(β/(1−α)), B = ln((1−β)/α).
func (s *SPRT) Bounds() (a, b float64) {
	a = math.Log(s.Beta / (1 - s.Alpha))
	b = math.Log((1 - s.Beta) / s.Alpha)
	return a, b
}

// Evaluate computes the current log-likelihood ratio from the accumulated
// sample distribution and reports the stopping decision (spec.md §4.8).
//
// The LLR uses the normal approximation standard in engine-testing SPRT
// implementations: treating the per-game (or per-pair) score as
// approximately normal with the sample's own observed variance, the log
// likelihood ratio between H0 (mean score mu0) and H1 (mean score mu1)
// reduces to (mu1-mu0)/sigma² · (Σscores − n·(mu0+mu1)/2). This is the
// standard simplification because the exact multinomial likelihood ratio
// has no closed form convenient for incremental evaluation.
func (s *SPRT) Evaluate(c Counts) (llr float64, decision Decision) {
	var mu, sigma2, n float64
	switch s.Model {
	case PentanomialModel:
		mu, sigma2, n = pentanomialMoments(c)
	default:
		mu, sigma2, n = trinomialMoments(c)
	}
	if n == 0 || sigma2 == 0 {
		return 0, Continue
	}

	mu0 := scoreFromElo(s.Elo0)
	mu1 := scoreFromElo(s.Elo1)

	llr = (mu1 - mu0) / sigma2 * (n*mu - n*(mu0+mu1)/2)

	a, b := s.Bounds()
	switch {
	case llr <= a:
		decision = AcceptH0
	case llr >= b:
		decision = AcceptH1
	default:
		decision = Continue
	}
	return llr, decision
}
