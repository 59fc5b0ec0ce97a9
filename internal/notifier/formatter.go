package notifier

import (
	"fmt"
	"html"
	"strings"

	"BasketMint/internal/minimum"
	"BasketMint/internal/model"
)

// FormatEvent renders an engine event as a Telegram HTML message.
func FormatEvent(evt model.Event) string {
	var b strings.Builder
	id := html.EscapeString(evt.FundID)

	switch evt.Kind {
	case model.EventFundCreated:
		b.WriteString(fmt.Sprintf("🆕 <b>Fund created</b> | %s (%s)\n", id, html.EscapeString(evt.Note)))
		b.WriteString(fmt.Sprintf("Minimum at creation: %s (%s)\n", evt.Minimum.StringFixed(2), html.EscapeString(evt.TierLabel)))
	case model.EventDepositRecorded:
		b.WriteString(fmt.Sprintf("💰 <b>Deposit</b> | %s\n", id))
		b.WriteString(fmt.Sprintf("%s deposited %s %s (value %s)\n",
			html.EscapeString(evt.Contributor), evt.Amount.String(), html.EscapeString(evt.Asset), evt.Contribution.StringFixed(2)))
		b.WriteString(fmt.Sprintf("Aggregate value: %s\n", evt.Value.StringFixed(2)))
	case model.EventMinimumRecalculated:
		b.WriteString(fmt.Sprintf("📐 <b>Minimum recalculated</b> | %s\n", id))
		b.WriteString(fmt.Sprintf("New minimum: %s (%s)\n", evt.Minimum.StringFixed(2), html.EscapeString(evt.TierLabel)))
		b.WriteString(fmt.Sprintf("Aggregate value: %s\n", evt.Value.StringFixed(2)))
	case model.EventSharesIssued:
		b.WriteString(fmt.Sprintf("📈 <b>Shares issued</b> | %s\n", id))
		b.WriteString(fmt.Sprintf("Requested by: %s\n", html.EscapeString(evt.Contributor)))
		b.WriteString(fmt.Sprintf("Minted: %s\n", evt.Shares.String()))
		b.WriteString(fmt.Sprintf("Aggregate value: %s | minimum %s\n", evt.Value.StringFixed(2), evt.Minimum.StringFixed(2)))
	case model.EventFundDeactivated:
		b.WriteString(fmt.Sprintf("⛔ <b>Fund deactivated</b> | %s\n", id))
	default:
		b.WriteString(fmt.Sprintf("<b>%s</b> | %s\n", html.EscapeString(string(evt.Kind)), id))
	}
	if !evt.At.IsZero() {
		b.WriteString(fmt.Sprintf("At: %s\n", evt.At.UTC().Format("2006-01-02 15:04:05")))
	}
	return b.String()
}

// FormatFund formats a fund's ledger for display.
func FormatFund(f *model.Fund) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📦 <b>%s</b> (%s)\n\n", html.EscapeString(f.Name), html.EscapeString(f.Symbol)))
	b.WriteString(fmt.Sprintf("ID: %s\n", html.EscapeString(f.ID)))
	b.WriteString(fmt.Sprintf("Active: %v | Issued: %v\n", f.Active, f.Issued))
	b.WriteString(fmt.Sprintf("Aggregate value: %s\n", f.AggregateValue.StringFixed(2)))
	b.WriteString(fmt.Sprintf("Total shares: %s\n", f.TotalShares.String()))
	b.WriteString(fmt.Sprintf("Stored minimum: %s\n", f.StoredMinimum.StringFixed(2)))
	b.WriteString("\nComponents:\n")
	for _, c := range f.Components {
		b.WriteString(fmt.Sprintf("  %s: target %.2f%% | current %.2f%% | deposited %s\n",
			html.EscapeString(c.Asset), float64(c.TargetBP)/100, float64(c.CurrentBP)/100, c.Deposited.String()))
	}
	b.WriteString(fmt.Sprintf("Contributors: %d | Deposits: %d\n", len(f.Trackers), len(f.Deposits)))
	return b.String()
}

// FormatMinimum formats a minimum calculation with its inputs.
func FormatMinimum(res minimum.Result) string {
	var b strings.Builder
	b.WriteString("📐 <b>Dynamic minimum</b>\n\n")
	b.WriteString(fmt.Sprintf("Tier: %s (base %s)\n", html.EscapeString(res.TierLabel), res.Base.StringFixed(2)))
	b.WriteString(fmt.Sprintf("Liquidity: %s\n", res.Condition.Liquidity.StringFixed(0)))
	b.WriteString(fmt.Sprintf("Volatility: %d bp (+%s)\n", res.Condition.VolatilityBP, res.VolatilityAdj.StringFixed(2)))
	b.WriteString(fmt.Sprintf("Demand: %d bp (-%s)\n", res.Condition.DemandBP, res.DemandAdj.StringFixed(2)))
	b.WriteString("  ─────────────────\n")
	b.WriteString(fmt.Sprintf("  Minimum: %s\n", res.Minimum.StringFixed(2)))
	if !res.Condition.UpdatedAt.IsZero() {
		b.WriteString(fmt.Sprintf("Market updated: %s\n", res.Condition.UpdatedAt.UTC().Format("2006-01-02 15:04")))
	}
	return b.String()
}
