package core

import (
	"github.com/huangsam/transcomplex/internal/contract"
)

// Engine is a scorer built once from a configuration. Runs scored through the
// same Engine share its providers, so the embedder rate limit, concurrency cap
// and embedding memo hold across requests.
type Engine struct {
	scorer      TextScorer
	fingerprint string
	mgr         contract.CacheManager
}

// NewEngine builds the providers and result cache described by cfg. mgr may be
// nil to score without caching or run tracking.
func NewEngine(cfg *contract.Config, mgr contract.CacheManager) (*Engine, error) {
	scorer, fingerprint, err := BuildScorer(cfg, mgr)
	if err != nil {
		return nil, err
	}
	return &Engine{scorer: scorer, fingerprint: fingerprint, mgr: mgr}, nil
}

// Fingerprint identifies every input of the scoring pipeline.
func (e *Engine) Fingerprint() string {
	return e.fingerprint
}
