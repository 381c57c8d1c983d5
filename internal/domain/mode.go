package domain

// Mode is the operating policy governing whether and how user confirmation
// is sought before an interactive login.
type Mode string

const (
	// ModeNotify asks the user first through the notification capability.
	ModeNotify Mode = "notify"
	// ModeAuto triggers the interactive login immediately.
	ModeAuto Mode = "auto"
	// ModeSilent only ever attempts a non-interactive refresh.
	ModeSilent Mode = "silent"
	// ModeStandalone disables the watcher; logins happen via side channels.
	ModeStandalone Mode = "standalone"
)

// ParseMode validates a mode string. ok is false for unknown values so the
// caller can fall back to its configured default instead of erroring.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeNotify, ModeAuto, ModeSilent, ModeStandalone:
		return Mode(s), true
	}
	return "", false
}
