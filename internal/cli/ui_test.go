package cli

import (
	"testing"

	"github.com/matzehuels/cubeskin/pkg/pipeline"
)

func TestSkipLabel(t *testing.T) {
	tests := []struct {
		reason pipeline.SkipReason
		want   string
	}{
		{pipeline.SkipExcluded, "not a full cube"},
		{pipeline.SkipPartialAlpha, "semi-transparent"},
		{pipeline.SkipMissingTexture, "texture not in pack"},
		{pipeline.SkipDuplicateIdentifier, "file name already used"},
		{pipeline.SkipReason("some_new_reason"), "some new reason"},
	}
	for _, tt := range tests {
		if got := skipLabel(tt.reason); got != tt.want {
			t.Errorf("skipLabel(%q) = %q, want %q", tt.reason, got, tt.want)
		}
	}
}
