package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/phytocheck/internal/models"
)

func TestPresentation(t *testing.T) {
	tests := []struct {
		class   models.Classification
		label   string
		color   string
		bgColor string
	}{
		{models.ClassHomologated, "Homologated", "#22C55E", "#F0FDF4"},
		{models.ClassWithdrawn, "Withdrawn", "#EF4444", "#FEF2F2"},
		{models.ClassHomologatedCMR, "Homologated — CMR", "#F59E0B", "#FFFBEB"},
		{models.ClassHomologatedToxic, "Homologated — Toxic", "#DC2626", "#FEF2F2"},
	}

	for _, tt := range tests {
		t.Run(string(tt.class), func(t *testing.T) {
			assert.Equal(t, tt.label, Label(tt.class))
			assert.Equal(t, tt.color, Color(tt.class))
			assert.Equal(t, tt.bgColor, BgColor(tt.class))
		})
	}

	for _, c := range models.Classifications {
		_, ok := Present(c)
		assert.True(t, ok, c)
	}
	_, ok := Present("unknown")
	assert.False(t, ok)
}
