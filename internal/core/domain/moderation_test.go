package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModerationReportAcceptable(t *testing.T) {
	tests := []struct {
		name       string
		report     ModerationReport
		acceptable bool
	}{
		{"all zero", ModerationReport{}, true},
		{"just under every threshold", ModerationReport{
			Toxic: 0.59, Indecent: 0.59, Threat: 0.59, Offensive: 0.79, Erotic: 0.59, Spam: 0.79,
		}, true},
		{"toxic at threshold", ModerationReport{Toxic: 0.6}, false},
		{"indecent at threshold", ModerationReport{Indecent: 0.6}, false},
		{"threat at threshold", ModerationReport{Threat: 0.6}, false},
		{"offensive below its looser threshold", ModerationReport{Offensive: 0.7}, true},
		{"offensive at threshold", ModerationReport{Offensive: 0.8}, false},
		{"erotic at threshold", ModerationReport{Erotic: 0.6}, false},
		{"spam below its looser threshold", ModerationReport{Spam: 0.7}, true},
		{"spam at threshold", ModerationReport{Spam: 0.8}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.acceptable, tt.report.Acceptable())
		})
	}
}
