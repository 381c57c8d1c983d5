// Package notify implements the notification capability: platform-specific
// dialogs that present the Refresh / Snooze / Don't Remind choice and
// report one of the fixed outcome strings back to the watcher.
package notify

import (
	"strconv"
	"strings"
	"time"

	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/domain"
)

// SnoozeOptions are the choices offered by the dialog, label -> duration.
var SnoozeOptions = []struct {
	Label    string
	Duration time.Duration
}{
	{"15 min", 15 * time.Minute},
	{"30 min", 30 * time.Minute},
	{"1 hour", time.Hour},
	{"4 hours", 4 * time.Hour},
}

// DefaultSnooze is used when a snooze outcome carries no usable duration.
const DefaultSnooze = 30 * time.Minute

// ParseOutcome maps a capability's output line to an outcome. The wire
// vocabulary is:
//
//	refresh
//	snooze:<seconds> | snooze:<label from SnoozeOptions>
//	suppress
//	dismiss
//
// Anything unrecognized parses as dismiss, the fail-safe outcome.
func ParseOutcome(line string) domain.Outcome {
	line = strings.TrimSpace(line)
	switch {
	case strings.EqualFold(line, "refresh"):
		return domain.Outcome{Kind: domain.OutcomeRefresh}
	case strings.EqualFold(line, "suppress"):
		return domain.Outcome{Kind: domain.OutcomeSuppress}
	case strings.HasPrefix(strings.ToLower(line), "snooze:"):
		return domain.Outcome{Kind: domain.OutcomeSnooze, SnoozeFor: parseSnooze(line[len("snooze:"):])}
	default:
		return domain.Outcome{Kind: domain.OutcomeDismiss}
	}
}

func parseSnooze(arg string) time.Duration {
	arg = strings.TrimSpace(arg)
	if secs, err := strconv.Atoi(arg); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	for _, opt := range SnoozeOptions {
		if strings.EqualFold(opt.Label, arg) {
			return opt.Duration
		}
	}
	return DefaultSnooze
}
