package advisor

import (
	"fmt"

	"QuantAI/internal/model"
	"QuantAI/internal/strategy"
)

// Weights of the composite alpha.
const (
	TechWeight      = 0.6
	SentimentWeight = 0.4
)

// Input carries everything the advisory decision depends on.
// A nil or zero HoldingCost means the user holds no position.
type Input struct {
	CurrentPrice   float64
	TechScore      float64
	SentimentScore float64
	HoldingCost    *float64
}

// Alpha blends the technical and sentiment scores into the composite alpha.
func Alpha(techScore, sentimentScore float64) float64 {
	tech := strategy.Clamp(techScore, 0, 100)
	sent := strategy.Clamp(sentimentScore, 0, 100)
	return TechWeight*tech + SentimentWeight*sent
}

// Holding reports whether a holding cost denotes an open position.
func Holding(cost *float64) bool {
	return cost != nil && *cost > 0
}

// Advise picks an action for the given scores and position state. It is a pure function.
func Advise(in Input) model.AdviceResult {
	alpha := Alpha(in.TechScore, in.SentimentScore)
	var res model.AdviceResult
	if Holding(in.HoldingCost) {
		res = adviseHolding(alpha, in.CurrentPrice, *in.HoldingCost)
	} else {
		res = adviseEntry(alpha, in.CurrentPrice)
	}
	res.Alpha = alpha
	res.Rationale = fmt.Sprintf("Composite Score: %.1f. %s", alpha, res.Rationale)
	return res
}

func adviseHolding(alpha, price, cost float64) model.AdviceResult {
	profitPct := (price - cost) / cost

	switch {
	case alpha > 75:
		action := model.ActionAverageDown
		if profitPct > 0 {
			action = model.ActionAddPosition
		}
		return model.AdviceResult{
			Action:    action,
			Rationale: "Strong signals suggest upside. Consider increasing exposure.",
		}
	case alpha < 30:
		return model.AdviceResult{
			Action:    model.ActionCutLoss,
			ExitPoint: ptr(price * 0.99),
			Rationale: "Weak signals detected. Protect capital.",
		}
	case alpha > 50:
		return model.AdviceResult{
			Action:    model.ActionHold,
			ExitPoint: ptr(price * 1.15),
			Rationale: "Neutral to positive outlook. Continue holding.",
		}
	default:
		return model.AdviceResult{
			Action:    model.ActionReduce,
			Rationale: "Outlook weakening. Consider taking partial profits.",
		}
	}
}

func adviseEntry(alpha, price float64) model.AdviceResult {
	switch {
	case alpha > 70:
		return model.AdviceResult{
			Action:     model.ActionBuy,
			EntryPoint: ptr(price * 1.005),
			ExitPoint:  ptr(price * 1.10),
			Rationale:  "Strong buy signal. Good entry point detected.",
		}
	case alpha > 50:
		return model.AdviceResult{
			Action:     model.ActionWatch,
			EntryPoint: ptr(price * 0.98),
			Rationale:  "Positive but wait for better entry.",
		}
	default:
		return model.AdviceResult{
			Action:    model.ActionAvoid,
			Rationale: "Technical/Sentiment mix is weak. Not recommended.",
		}
	}
}

func ptr(v float64) *float64 { return &v }
