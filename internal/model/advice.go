package model

// Advisory actions.
const (
	ActionAddPosition = "ADD POSITION"
	ActionAverageDown = "HOLD/AVERAGE DOWN"
	ActionCutLoss     = "SELL/CUT LOSS"
	ActionHold        = "HOLD"
	ActionReduce      = "REDUCE"
	ActionBuy         = "BUY"
	ActionWatch       = "WATCH"
	ActionAvoid       = "AVOID"
)

// AdviceResult is the advisory engine's recommendation.
type AdviceResult struct {
	Action     string   `json:"action"`
	EntryPoint *float64 `json:"entry_point"`
	ExitPoint  *float64 `json:"exit_point"`
	Rationale  string   `json:"rationale"`
	Alpha      float64  `json:"alpha"`
}

// Sentiment is the opaque score returned by a sentiment collaborator.
type Sentiment struct {
	Score     float64  `json:"score"`
	Headlines []string `json:"headlines"`
	Summary   string   `json:"summary"`
}
