// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// DefaultAlgorithmVersion is recorded on signature pairs when no version is
// configured.
const DefaultAlgorithmVersion = "pipeline-v1"

// SignaturePair ties a stored PipelineOutput to the responses it was
// computed from. Pairs are append-only: a re-score creates a new pair and
// old pairs remain as the audit trail.
type SignaturePair struct {
	ID               string `json:"id" yaml:"id"`
	RunID            string `json:"run_id" yaml:"run_id"`
	ResponseHash     string `json:"response_hash" yaml:"response_hash"`
	ResultHash       string `json:"result_hash" yaml:"result_hash"`
	AlgorithmVersion string `json:"algorithm_version" yaml:"algorithm_version"`

	// Seal is an HMAC over the two hashes and the version, present only
	// when a seal key is configured.
	Seal string `json:"seal,omitempty" yaml:"seal,omitempty"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Verification reports which side of a signature pair matched.
type Verification struct {
	ResponseMatch bool   `json:"response_match"`
	ResultMatch   bool   `json:"result_match"`
	SealChecked   bool   `json:"seal_checked"`
	SealMatch     bool   `json:"seal_match"`
	Detail        string `json:"detail,omitempty"`
}

// OK reports whether every checked part of the pair matched.
func (v Verification) OK() bool {
	return v.ResponseMatch && v.ResultMatch && (!v.SealChecked || v.SealMatch)
}
