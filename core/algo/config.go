// Package algo holds the scoring engine: normalization, aggregation and classification.
package algo

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/hashicorp/go-multierror"
	"github.com/huangsam/transcomplex/schema"
)

// Options are the inputs of NewConfiguration. Nil fields fall back to defaults.
// NormParams are merged over the defaults metric by metric.
type Options struct {
	Weights    schema.FamilyWeights
	Thresholds []schema.Threshold
	NormParams map[string]schema.NormParam
}

// Configuration holds validated weights, thresholds and normalization params.
// It is read-only after construction and safe to share between goroutines.
type Configuration struct {
	weights     schema.FamilyWeights
	thresholds  []schema.Threshold
	norm        map[string]schema.NormParam
	fingerprint string
}

// NewConfiguration validates opts in a single pass and returns an immutable
// Configuration. Every problem found is reported, not just the first one.
func NewConfiguration(opts Options) (*Configuration, error) {
	weights := opts.Weights
	if weights == nil {
		weights = schema.GetDefaultFamilyWeights()
	}
	thresholds := opts.Thresholds
	if thresholds == nil {
		thresholds = schema.GetDefaultThresholds()
	}
	norm := schema.GetDefaultNormParams()
	maps.Copy(norm, opts.NormParams)

	var errs *multierror.Error
	errs = multierror.Append(errs, validateWeights(weights)...)
	errs = multierror.Append(errs, validateThresholds(thresholds)...)
	errs = multierror.Append(errs, validateNormParams(norm)...)
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}

	cfg := &Configuration{
		weights:    maps.Clone(weights),
		thresholds: slices.Clone(thresholds),
		norm:       norm,
	}
	for _, f := range schema.AllFamilies {
		if _, ok := cfg.weights[f]; !ok {
			cfg.weights[f] = 0
		}
	}
	cfg.fingerprint = cfg.computeFingerprint()
	return cfg, nil
}

// DefaultConfiguration returns the built-in configuration.
func DefaultConfiguration() *Configuration {
	cfg, err := NewConfiguration(Options{})
	if err != nil {
		panic(fmt.Sprintf("default configuration is invalid: %v", err))
	}
	return cfg
}

func validateWeights(weights schema.FamilyWeights) []error {
	var errs []error
	var sum float64
	for f, w := range weights {
		if _, ok := schema.ValidFamilies[f]; !ok {
			errs = append(errs, &ConfigurationError{Field: "weights", Err: fmt.Errorf("%w: unknown family %q", ErrInvalidWeights, f)})
			continue
		}
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			errs = append(errs, &ConfigurationError{Field: "weights." + string(f), Err: fmt.Errorf("%w: %v is not a non-negative number", ErrInvalidWeights, w)})
			continue
		}
		sum += w
	}
	if len(errs) == 0 && sum <= 0 {
		errs = append(errs, &ConfigurationError{Field: "weights", Err: fmt.Errorf("%w: weights must sum to a positive value", ErrInvalidWeights)})
	}
	return errs
}

func validateThresholds(thresholds []schema.Threshold) []error {
	fail := func(format string, args ...any) []error {
		return []error{&ConfigurationError{Field: "thresholds", Err: fmt.Errorf("%w: "+format, append([]any{ErrInvalidThresholds}, args...)...)}}
	}
	if len(thresholds) == 0 {
		return fail("at least one tier is required")
	}
	if thresholds[0].LowerBound != 0 {
		return fail("first tier %q must start at 0, got %v", thresholds[0].Tier, thresholds[0].LowerBound)
	}
	seen := make(map[schema.Tier]struct{}, len(thresholds))
	for i, th := range thresholds {
		if th.Tier == "" {
			return fail("tier %d has no name", i)
		}
		if _, dup := seen[th.Tier]; dup {
			return fail("tier %q appears more than once", th.Tier)
		}
		seen[th.Tier] = struct{}{}
		if math.IsNaN(th.LowerBound) || th.LowerBound > 1 {
			return fail("tier %q lower bound %v is outside [0,1]", th.Tier, th.LowerBound)
		}
		if i > 0 && th.LowerBound <= thresholds[i-1].LowerBound {
			return fail("tier %q lower bound %v does not exceed %v", th.Tier, th.LowerBound, thresholds[i-1].LowerBound)
		}
	}
	return nil
}

func validateNormParams(norm map[string]schema.NormParam) []error {
	var errs []error
	for _, metric := range slices.Sorted(maps.Keys(norm)) {
		p := norm[metric]
		field := "normalization." + metric
		switch p.Strategy {
		case schema.LinearClamp, schema.InverseLinearClamp:
			if math.IsNaN(p.Min) || math.IsNaN(p.Max) || math.IsInf(p.Min, 0) || math.IsInf(p.Max, 0) || p.Max <= p.Min {
				errs = append(errs, &ConfigurationError{Field: field, Err: fmt.Errorf("%w: need finite min < max, got [%v, %v]", ErrInvalidNormParam, p.Min, p.Max)})
			}
		case schema.AlreadyBounded:
		default:
			errs = append(errs, &ConfigurationError{Field: field, Err: fmt.Errorf("%w: %q", ErrUnknownStrategy, p.Strategy)})
		}
	}
	return errs
}

func (c *Configuration) computeFingerprint() string {
	payload, _ := json.Marshal(struct {
		Weights    schema.FamilyWeights        `json:"weights"`
		Thresholds []schema.Threshold          `json:"thresholds"`
		Norm       map[string]schema.NormParam `json:"normalization"`
	}{c.weights, c.thresholds, c.norm})
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// Weights returns a copy of the family weights.
func (c *Configuration) Weights() schema.FamilyWeights {
	return maps.Clone(c.weights)
}

// Thresholds returns a copy of the thresholds, lowest first.
func (c *Configuration) Thresholds() []schema.Threshold {
	return slices.Clone(c.thresholds)
}

// NormParams returns a copy of every registered normalization parameter.
func (c *Configuration) NormParams() map[string]schema.NormParam {
	return maps.Clone(c.norm)
}

// NormParam returns the normalization parameters of one metric.
func (c *Configuration) NormParam(metric string) (schema.NormParam, bool) {
	p, ok := c.norm[metric]
	return p, ok
}

// Fingerprint is a stable digest of the configuration, used in cache keys.
func (c *Configuration) Fingerprint() string {
	return c.fingerprint
}

// TierIndex returns the position of tier in the thresholds, or -1.
func (c *Configuration) TierIndex(tier schema.Tier) int {
	return slices.IndexFunc(c.thresholds, func(th schema.Threshold) bool {
		return th.Tier == tier
	})
}

// Classify maps an overall score to a tier using this configuration's thresholds.
func (c *Configuration) Classify(score float64) schema.Tier {
	return Classify(score, c.thresholds)
}
