package notifier

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"QuantAI/internal/model"
)

// FormatReport formats an analysis report into a Telegram message.
func FormatReport(rep *model.Report) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>%s</b> | %s\n\n", html.EscapeString(rep.Ticker), rep.AnalyzedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("当前价格: %.2f\n", rep.CurrentPrice))
	if rep.HoldingCost != nil && *rep.HoldingCost > 0 {
		pnl := (rep.CurrentPrice - *rep.HoldingCost) / *rep.HoldingCost * 100
		b.WriteString(fmt.Sprintf("持仓成本: %.2f (%+.1f%%)\n", *rep.HoldingCost, pnl))
	}
	b.WriteString("\n")

	ind := rep.Analysis.Indicators
	b.WriteString("📈 <b>技术指标:</b>\n")
	b.WriteString(fmt.Sprintf("  RSI: %.1f | MACD: %.3f / %.3f\n", ind.Get(model.IndRSI), ind.Get(model.IndMACD), ind.Get(model.IndMACDSignal)))
	b.WriteString(fmt.Sprintf("  KDJ: %.1f / %.1f / %.1f\n", ind.Get(model.IndKDJK), ind.Get(model.IndKDJD), ind.Get(model.IndKDJJ)))
	b.WriteString(fmt.Sprintf("  BB: %.2f - %.2f | MA5/MA20: %.2f / %.2f\n",
		ind.Get(model.IndBBLow), ind.Get(model.IndBBHigh), ind.Get(model.IndMA5), ind.Get(model.IndMA20)))

	if len(rep.Analysis.Factors) > 0 {
		b.WriteString("\n<b>因子评分明细:</b>\n")
		for _, f := range rep.Analysis.Factors {
			b.WriteString(fmt.Sprintf("  %s: %+.0f (%s)\n", f.Name, f.Adjustment, html.EscapeString(f.Commentary)))
		}
	}
	b.WriteString(fmt.Sprintf("  技术评分: %.0f/100 (%s)\n", rep.Analysis.Score, rep.Analysis.Signal))
	b.WriteString(fmt.Sprintf("  情绪评分: %.1f/100\n\n", rep.Sentiment.Score))

	adv := rep.Advice
	b.WriteString(fmt.Sprintf("💰 <b>建议:</b> %s (Alpha %.1f)\n", html.EscapeString(adv.Action), adv.Alpha))
	if adv.EntryPoint != nil {
		b.WriteString(fmt.Sprintf("   入场价: %.2f\n", *adv.EntryPoint))
	}
	if adv.ExitPoint != nil {
		b.WriteString(fmt.Sprintf("   离场价: %.2f\n", *adv.ExitPoint))
	}
	b.WriteString(fmt.Sprintf("   %s\n", html.EscapeString(adv.Rationale)))

	return b.String()
}

// FormatDigest summarises a watchlist run: one line per report, then failures.
func FormatDigest(reports []*model.Report, failures map[string]error) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🗂 <b>Watchlist</b> | %d ok, %d failed\n\n", len(reports), len(failures)))
	for _, rep := range reports {
		b.WriteString(fmt.Sprintf("• <b>%s</b> %.2f | %s %.0f | %s\n",
			html.EscapeString(rep.Ticker), rep.CurrentPrice, rep.Analysis.Signal, rep.Analysis.Score, html.EscapeString(rep.Advice.Action)))
	}
	if len(failures) > 0 {
		tickers := make([]string, 0, len(failures))
		for t := range failures {
			tickers = append(tickers, t)
		}
		sort.Strings(tickers)
		b.WriteString("\n❌ <b>失败:</b>\n")
		for _, t := range tickers {
			b.WriteString(fmt.Sprintf("• %s: %s\n", html.EscapeString(t), html.EscapeString(failures[t].Error())))
		}
	}
	return b.String()
}

// FormatHistory lists recorded reports, newest first.
func FormatHistory(ticker string, reports []model.Report) string {
	if len(reports) == 0 {
		return fmt.Sprintf("暂无 %s 的历史记录", html.EscapeString(ticker))
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🕘 <b>%s 历史</b>\n\n", html.EscapeString(ticker)))
	for _, rep := range reports {
		b.WriteString(fmt.Sprintf("%s  %.2f  %s %.0f  %s\n",
			rep.AnalyzedAt.Format("01-02 15:04"), rep.CurrentPrice, rep.Analysis.Signal, rep.Analysis.Score, html.EscapeString(rep.Advice.Action)))
	}
	return b.String()
}
