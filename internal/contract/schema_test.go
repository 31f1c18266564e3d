package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSettings(t *testing.T) {
	tests := []struct {
		name     string
		settings map[string]any
		wantErr  bool
	}{
		{
			name:     "flags only",
			settings: map[string]any{"workers": 4, "output": "text", "cache-backend": "sqlite"},
		},
		{
			name: "full scoring sections",
			settings: map[string]any{
				"weights": map[string]any{"readability": 0.2, "linguistic": 0.5, "translation": 0.3},
				"thresholds": []any{
					map[string]any{"tier": "low", "lower_bound": 0},
					map[string]any{"tier": "high", "lower_bound": 0.5},
				},
				"normalization": map[string]any{
					"avg_sentence_length": map[string]any{"strategy": "linear_clamp", "min": 0, "max": 40},
					"lexical_diversity":   map[string]any{"strategy": "already_bounded"},
				},
			},
		},
		{
			name:     "negative weight",
			settings: map[string]any{"weights": map[string]any{"linguistic": -0.5}},
			wantErr:  true,
		},
		{
			name:     "weight as string",
			settings: map[string]any{"weights": map[string]any{"linguistic": "heavy"}},
			wantErr:  true,
		},
		{
			name: "threshold above one",
			settings: map[string]any{"thresholds": []any{
				map[string]any{"tier": "low", "lower_bound": 1.5},
			}},
			wantErr: true,
		},
		{
			name: "threshold without tier",
			settings: map[string]any{"thresholds": []any{
				map[string]any{"lower_bound": 0},
			}},
			wantErr: true,
		},
		{
			name: "unknown strategy",
			settings: map[string]any{"normalization": map[string]any{
				"smog": map[string]any{"strategy": "log_scale"},
			}},
			wantErr: true,
		},
		{
			name: "linear clamp without bounds",
			settings: map[string]any{"normalization": map[string]any{
				"smog": map[string]any{"strategy": "linear_clamp"},
			}},
			wantErr: true,
		},
		{
			name: "inverted bounds",
			settings: map[string]any{"normalization": map[string]any{
				"smog": map[string]any{"strategy": "linear_clamp", "min": 10, "max": 5},
			}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSettings(tt.settings)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
