package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/domain"
	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/ports"
)

// dialogScript drives the whole decision flow in a single osascript
// process: the three-button dialog, then the snooze picker or the suppress
// confirmation when needed. %[1]s is the profile, %[2]s the snooze labels,
// %[3]d the give-up bound in seconds.
const dialogScript = `
beep
beep
tell application "System Events" to set frontmost of process "osascript" to true
tell me to activate
set dialogResult to display dialog ¬
    "AWS SSO credentials expired for profile: %[1]s." & return & return & ¬
    "Refresh now, snooze, or disable reminders?" ¬
    with title "AWS SSO Login Required" ¬
    buttons {"Don't Remind", "Snooze", "Refresh"} ¬
    default button "Refresh" ¬
    giving up after %[3]d
set btn to button returned of dialogResult
set gaveUp to gave up of dialogResult
if gaveUp then
    return "dismiss"
else if btn is "Snooze" then
    set picked to choose from list ¬
        {%[2]s} ¬
        with title "Snooze" ¬
        with prompt "Snooze for how long?" ¬
        default items {"30 min"}
    if picked is false then
        return "dismiss"
    else
        return "snooze:" & (item 1 of picked)
    end if
else if btn is "Don't Remind" then
    display dialog ¬
        "Reminders will be disabled until a new signal is received." & return & return & ¬
        "To manually refresh credentials later, run:" & return & return & ¬
        "    ssorenewer login" & return & ¬
        "    aws sso login --profile %[1]s" ¬
        with title "Disable SSO Reminders?" ¬
        with icon caution ¬
        buttons {"Cancel", "Disable Reminders"} ¬
        default button "Cancel"
    if button returned of result is "Disable Reminders" then
        return "suppress"
    else
        return "dismiss"
    end if
else
    return "refresh"
end if
`

// Osascript presents the macOS dialog flow. It satisfies ports.Notifier.
type Osascript struct {
	logger *slog.Logger
}

// NewOsascript creates the macOS dialog notifier.
func NewOsascript(logger *slog.Logger) *Osascript {
	if logger == nil {
		logger = slog.Default()
	}
	return &Osascript{logger: logger}
}

// Prompt runs the dialog. The subprocess bound is the dialog wait plus a
// grace period so the script's own give-up timer normally fires first.
// osascript missing on this host degrades to refresh (headless install,
// behave like auto mode); every other failure degrades to dismiss.
func (o *Osascript) Prompt(ctx context.Context, req ports.PromptRequest) (domain.Outcome, error) {
	labels := make([]string, len(SnoozeOptions))
	for n, opt := range SnoozeOptions {
		labels[n] = fmt.Sprintf("%q", opt.Label)
	}
	script := fmt.Sprintf(dialogScript, req.Profile, strings.Join(labels, ", "), int(req.Wait.Seconds()))

	ctx, cancel := context.WithTimeout(ctx, req.Wait+15*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "osascript", "-e", script)
	cmd.WaitDelay = 5 * time.Second
	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			o.logger.Warn("osascript not found, falling back to immediate refresh")
			return domain.Outcome{Kind: domain.OutcomeRefresh}, nil
		}
		if ctx.Err() == context.DeadlineExceeded {
			o.logger.Info("dialog timed out")
			return domain.Outcome{Kind: domain.OutcomeDismiss}, nil
		}
		// Nonzero exit: user closed the dialog (Escape/Cmd-W).
		o.logger.Info("user closed dialog")
		return domain.Outcome{Kind: domain.OutcomeDismiss}, nil
	}

	return ParseOutcome(stdout.String()), nil
}
