package watcher

import "github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/domain"

// ResolveMode maps the stored override value to the active operating mode.
// An empty override selects the configured default. Unknown values also
// select the default and report valid=false so the caller can log a
// warning instead of erroring the loop.
func ResolveMode(override string, def domain.Mode) (mode domain.Mode, valid bool) {
	if override == "" {
		return def, true
	}
	if m, ok := domain.ParseMode(override); ok {
		return m, true
	}
	return def, false
}
