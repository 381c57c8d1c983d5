package watcher

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/domain"
)

func TestResolveMode(t *testing.T) {
	tests := []struct {
		name      string
		override  string
		def       domain.Mode
		want      domain.Mode
		wantValid bool
	}{
		{"absent override selects default", "", domain.ModeNotify, domain.ModeNotify, true},
		{"auto override", "auto", domain.ModeNotify, domain.ModeAuto, true},
		{"silent override", "silent", domain.ModeNotify, domain.ModeSilent, true},
		{"standalone override", "standalone", domain.ModeAuto, domain.ModeStandalone, true},
		{"unknown override falls back", "turbo", domain.ModeNotify, domain.ModeNotify, false},
		{"whitespace is not trimmed here", " auto", domain.ModeNotify, domain.ModeNotify, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, valid := ResolveMode(tt.override, tt.def)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantValid, valid)
		})
	}
}
