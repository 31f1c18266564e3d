package algo

import (
	"errors"
	"fmt"

	"github.com/huangsam/transcomplex/schema"
)

// Sentinel errors. Use errors.Is to test for them.
var (
	ErrInvalidWeights    = errors.New("invalid family weights")
	ErrInvalidThresholds = errors.New("invalid thresholds")
	ErrUnknownStrategy   = errors.New("unknown normalization strategy")
	ErrInvalidNormParam  = errors.New("invalid normalization parameters")
	ErrNoMetrics         = errors.New("no metrics available")
	ErrInvalidMetric     = errors.New("invalid metric")
)

// ConfigurationError is raised while building a Configuration. It is always
// fatal and never retried.
type ConfigurationError struct {
	Field string
	Err   error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration %s: %v", e.Field, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// ProviderError means one metric family could not be computed for a text.
// The family is excluded from aggregation for that text only.
type ProviderError struct {
	Family schema.Family
	Err    error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider: %v", e.Family, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// InvalidMetricError means a raw metric could not be normalized. With a
// validated Configuration and the shipped providers this indicates a defect.
type InvalidMetricError struct {
	Family schema.Family
	Metric string
	Reason string
}

func (e *InvalidMetricError) Error() string {
	return fmt.Sprintf("invalid metric %s/%s: %s", e.Family, e.Metric, e.Reason)
}

func (e *InvalidMetricError) Unwrap() error {
	return ErrInvalidMetric
}
