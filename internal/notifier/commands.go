package notifier

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"strings"

	"QuantAI/internal/model"
)

// historyLimit caps the rows returned by /history.
const historyLimit = 10

const helpText = "可用命令:\n• /analyze &lt;ticker&gt; [holding_cost]\n• /history &lt;ticker&gt;"

// Analyzer is the subset of the pipeline the command handler drives.
type Analyzer interface {
	Analyze(ctx context.Context, ticker string, holdingCost *float64) (*model.Report, error)
	History(ctx context.Context, ticker string, limit int) ([]model.Report, error)
}

// NewCommandHandler answers /analyze and /history with formatted replies.
func NewCommandHandler(a Analyzer) CommandHandler {
	return func(ctx context.Context, command string) string {
		fields := strings.Fields(command)
		if len(fields) == 0 {
			return helpText
		}
		// Group chats append the bot name: /analyze@quant_bot.
		name, _, _ := strings.Cut(fields[0], "@")

		switch name {
		case "/analyze":
			ticker, cost, err := ParseAnalyzeArgs(fields[1:])
			if err != nil {
				return "⚠️ " + html.EscapeString(err.Error()) + "\n\n" + helpText
			}
			rep, err := a.Analyze(ctx, ticker, cost)
			if err != nil {
				return fmt.Sprintf("❌ %s 分析失败: %s", html.EscapeString(ticker), html.EscapeString(err.Error()))
			}
			return FormatReport(rep)
		case "/history":
			if len(fields) != 2 {
				return helpText
			}
			reports, err := a.History(ctx, fields[1], historyLimit)
			if err != nil {
				return "❌ " + html.EscapeString(err.Error())
			}
			return FormatHistory(strings.ToUpper(fields[1]), reports)
		default:
			return helpText
		}
	}
}

// ParseAnalyzeArgs reads "<ticker> [holding_cost]".
func ParseAnalyzeArgs(args []string) (string, *float64, error) {
	switch len(args) {
	case 1:
		return args[0], nil, nil
	case 2:
		cost, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return "", nil, fmt.Errorf("holding cost %q is not a number", args[1])
		}
		return args[0], &cost, nil
	default:
		return "", nil, fmt.Errorf("expected a ticker and an optional holding cost")
	}
}
