package notifier

import (
	"strings"

	"BasketMint/internal/minimum"
	"BasketMint/internal/model"
)

// FundQuerier is the read side of the fund engine used by chat commands.
type FundQuerier interface {
	Minimum() minimum.Result
	Fund(id string) (model.Fund, error)
}

// NewCommandHandler routes chat commands to read-only engine queries.
func NewCommandHandler(q FundQuerier) CommandHandler {
	return func(command string) string {
		fields := strings.Fields(command)
		if len(fields) == 0 {
			return usage
		}
		switch fields[0] {
		case "/minimum":
			return FormatMinimum(q.Minimum())
		case "/fund":
			if len(fields) < 2 {
				return "usage: /fund &lt;fund-id&gt;"
			}
			f, err := q.Fund(fields[1])
			if err != nil {
				return "❌ " + err.Error()
			}
			return FormatFund(&f)
		default:
			return usage
		}
	}
}

const usage = "Commands:\n• /minimum\n• /fund &lt;fund-id&gt;"
