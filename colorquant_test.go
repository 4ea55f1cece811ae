package colorquant

import (
	"errors"
	"fmt"
	"testing"
)

func TestNewReducer(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"alpha", Config{Strategy: StrategyAlpha, K: 8}, "*colorquant.AlphaLayered"},
		{"luminance", Config{Strategy: StrategyLuminance, KLuminance: 4, KColor: 4}, "*colorquant.LuminanceColor"},
		{"adaptive", Config{Strategy: StrategyAdaptive, MaxClusters: 16}, "*colorquant.AutoAdaptive"},
		{"defaults", DefaultConfig(), "*colorquant.AlphaLayered"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewReducer(tt.cfg)
			if err != nil {
				t.Fatal(err)
			}
			if got := fmt.Sprintf("%T", r); got != tt.want {
				t.Errorf("NewReducer = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNewReducerUnknownStrategy(t *testing.T) {
	_, err := NewReducer(Config{Strategy: "median_cut", K: 8})
	if !errors.Is(err, ErrUnknownStrategy) {
		t.Errorf("NewReducer with unknown strategy = %v, want ErrUnknownStrategy", err)
	}
}

func TestNewReducerParameterErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"alpha zero k", Config{Strategy: StrategyAlpha}},
		{"luminance zero groups", Config{Strategy: StrategyLuminance, KColor: 4}},
		{"luminance zero colors", Config{Strategy: StrategyLuminance, KLuminance: 4}},
		{"adaptive zero bound", Config{Strategy: StrategyAdaptive}},
	}
	for _, tt := range tests {
		if _, err := NewReducer(tt.cfg); err == nil {
			t.Errorf("%s: NewReducer returned nil error", tt.name)
		}
	}
}
