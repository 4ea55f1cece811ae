// Package colorquant reduces the color palette of raster images. It indexes
// every distinct color to the pixel coordinates using it, clusters the
// unique colors with one of three k-means strategies and rewrites the pixel
// grid so that matrix, palette and index stay consistent with each other.
// The whole pipeline is deterministic: the same image and configuration
// always produce the same palette, mapping and output pixels.
package colorquant

import (
	"errors"
	"fmt"
)

// Strategy names accepted by NewReducer.
const (
	StrategyAlpha     = "alpha_kmeans"
	StrategyLuminance = "luminance_kmeans"
	StrategyAdaptive  = "auto_adaptive"
)

// ErrUnknownStrategy reports a strategy name outside the closed set above.
var ErrUnknownStrategy = errors.New("unknown reduction strategy")

// Config selects and parameterizes a reduction strategy.
type Config struct {
	// One of StrategyAlpha, StrategyLuminance, StrategyAdaptive.
	Strategy string
	// Cluster budget per alpha layer (alpha_kmeans).
	K int
	// Luminance group count (luminance_kmeans).
	KLuminance int
	// Color cluster budget per luminance group (luminance_kmeans).
	KColor int
	// Cluster search bound for both stages (auto_adaptive).
	MaxClusters int
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() Config {
	return Config{
		Strategy:    StrategyAlpha,
		K:           16,
		KLuminance:  16,
		KColor:      16,
		MaxClusters: 32,
	}
}

// NewReducer builds the configured strategy. Unknown names and non-positive
// parameters are configuration errors, reported here before any image work
// starts.
func NewReducer(cfg Config) (Reducer, error) {
	switch cfg.Strategy {
	case StrategyAlpha:
		if cfg.K <= 0 {
			return nil, fmt.Errorf("colorquant: %s needs k > 0, got %d", cfg.Strategy, cfg.K)
		}
		return &AlphaLayered{K: cfg.K, Engine: NewKMeans()}, nil
	case StrategyLuminance:
		if cfg.KLuminance <= 0 || cfg.KColor <= 0 {
			return nil, fmt.Errorf("colorquant: %s needs k_luminance > 0 and k_color > 0, got %d and %d",
				cfg.Strategy, cfg.KLuminance, cfg.KColor)
		}
		return &LuminanceColor{KLuminance: cfg.KLuminance, KColor: cfg.KColor, Engine: NewKMeans()}, nil
	case StrategyAdaptive:
		if cfg.MaxClusters <= 0 {
			return nil, fmt.Errorf("colorquant: %s needs max_clusters > 0, got %d", cfg.Strategy, cfg.MaxClusters)
		}
		return &AutoAdaptive{MaxClusters: cfg.MaxClusters, Engine: NewKMeans()}, nil
	default:
		return nil, fmt.Errorf("colorquant: %w: %q", ErrUnknownStrategy, cfg.Strategy)
	}
}
