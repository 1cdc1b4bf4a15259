package classify

import (
	"math"

	"go.uber.org/zap"
)

// DefaultMinimalImprovement is the smallest gain a specialization must
// show over its generalizations to be kept.
const DefaultMinimalImprovement = 0.001

// Config holds the parameters of a classification pass.
type Config struct {
	// Measure names the interest measure used for relevance and gain.
	Measure string

	// MinimalImprovement is the gain threshold of the specialization check.
	MinimalImprovement float64

	// RelevanceRange widens the neutral zone of the measure; must be >= 0.
	RelevanceRange float64

	// AllowEmptyItems keeps rules with "attribute=" items.
	AllowEmptyItems bool

	// Logger receives debug output. Nil disables logging.
	Logger *zap.Logger
}

// DefaultConfig returns the default parameters for the given measure.
func DefaultConfig(measureName string) Config {
	return Config{
		Measure:            measureName,
		MinimalImprovement: DefaultMinimalImprovement,
	}
}

// Validate checks the parameters for a classification around item.
func (c Config) Validate(item string) error {
	switch {
	case item == "":
		return newError(CodeInvalidConfig, item, c, "item of interest is required")
	case c.Measure == "":
		return newError(CodeInvalidConfig, item, c, "interest measure is required")
	case math.IsNaN(c.RelevanceRange) || math.IsInf(c.RelevanceRange, 0) || c.RelevanceRange < 0:
		return newError(CodeInvalidConfig, item, c, "relevance range must be a finite non-negative number")
	case math.IsNaN(c.MinimalImprovement):
		return newError(CodeInvalidConfig, item, c, "minimal improvement must be a number")
	}
	return nil
}

func (c Config) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}
