// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package audit signs pipeline outputs. A signature pair binds the hash of
// the responses a run was scored from to the hash of the output it
// produced, so a stored result can later be shown to follow from its
// inputs under a named algorithm version.
//
// Hashes are SHA-256 over canonical JSON: object keys sorted, timestamps
// that do not affect scoring left out.
package audit

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/ray-engine/pkg/types"
)

// computedAtKey is the output field excluded from the result hash.
const computedAtKey = "computed_at"

// responsePayload is the hashed view of a packet.
type responsePayload struct {
	RunID       string             `json:"run_id"`
	RunNumber   int                `json:"run_number"`
	Responses   []types.Response   `json:"responses"`
	Reflections []types.Reflection `json:"reflections"`
	Applicable  []string           `json:"applicable_item_ids"`
}

// ResponseHash returns the hex SHA-256 of the packet's canonical form. It
// covers the run identity, every response and reflection, and the
// applicable item set; timestamps are excluded.
func ResponseHash(p *types.ResponsePacket) (string, error) {
	payload := responsePayload{
		RunID:       p.RunID,
		RunNumber:   p.RunNumber,
		Responses:   make([]types.Response, 0, len(p.Responses)),
		Reflections: make([]types.Reflection, 0, len(p.Reflections)),
		Applicable:  append([]string{}, p.ApplicableItemIDs...),
	}
	for id, v := range p.Responses {
		payload.Responses = append(payload.Responses, types.Response{QuestionID: id, Value: v})
	}
	sort.Slice(payload.Responses, func(i, j int) bool {
		return payload.Responses[i].QuestionID < payload.Responses[j].QuestionID
	})
	for id, text := range p.Reflections {
		payload.Reflections = append(payload.Reflections, types.Reflection{PromptID: id, Text: text})
	}
	sort.Slice(payload.Reflections, func(i, j int) bool {
		return payload.Reflections[i].PromptID < payload.Reflections[j].PromptID
	})
	sort.Strings(payload.Applicable)

	data, err := canonical(payload)
	if err != nil {
		return "", fmt.Errorf("encoding responses of run %s: %w", p.RunID, err)
	}
	return digest(data), nil
}

// ResultHash returns the hex SHA-256 of the output's canonical form,
// without its computed_at timestamp.
func ResultHash(out *types.PipelineOutput) (string, error) {
	data, err := canonical(out, computedAtKey)
	if err != nil {
		return "", fmt.Errorf("encoding output of run %s: %w", out.RunID, err)
	}
	return digest(data), nil
}

// canonical marshals v with sorted keys, dropping the named top-level
// fields. Numbers are carried through as their original literals.
func canonical(v any, drop ...string) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, err
	}
	if obj, ok := tree.(map[string]any); ok {
		for _, k := range drop {
			delete(obj, k)
		}
	}
	return json.Marshal(tree)
}

func digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Signer produces and checks signature pairs.
type Signer struct {
	// Version is recorded on every pair. Empty means
	// types.DefaultAlgorithmVersion.
	Version string

	// Key seals pairs with an HMAC when non-empty.
	Key []byte

	// Now and NewID default to time.Now and uuid.NewString.
	Now   func() time.Time
	NewID func() string
}

func (s Signer) version() string {
	if s.Version == "" {
		return types.DefaultAlgorithmVersion
	}
	return s.Version
}

// Sign returns a new signature pair for a scored run.
func (s Signer) Sign(p *types.ResponsePacket, out *types.PipelineOutput) (types.SignaturePair, error) {
	respHash, err := ResponseHash(p)
	if err != nil {
		return types.SignaturePair{}, err
	}
	resHash, err := ResultHash(out)
	if err != nil {
		return types.SignaturePair{}, err
	}

	now, newID := time.Now, uuid.NewString
	if s.Now != nil {
		now = s.Now
	}
	if s.NewID != nil {
		newID = s.NewID
	}

	pair := types.SignaturePair{
		ID:               newID(),
		RunID:            p.RunID,
		ResponseHash:     respHash,
		ResultHash:       resHash,
		AlgorithmVersion: s.version(),
		CreatedAt:        now().UTC(),
	}
	if len(s.Key) > 0 {
		pair.Seal = seal(s.Key, pair)
	}
	return pair, nil
}

// Verify recomputes both hashes and compares them with pair. The seal is
// checked when the signer has a key and the pair carries a seal.
func (s Signer) Verify(p *types.ResponsePacket, out *types.PipelineOutput, pair types.SignaturePair) (types.Verification, error) {
	respHash, err := ResponseHash(p)
	if err != nil {
		return types.Verification{}, err
	}
	resHash, err := ResultHash(out)
	if err != nil {
		return types.Verification{}, err
	}

	v := types.Verification{
		ResponseMatch: respHash == pair.ResponseHash,
		ResultMatch:   resHash == pair.ResultHash,
	}
	var problems []string
	if !v.ResponseMatch {
		problems = append(problems, "responses differ from the signed packet")
	}
	if !v.ResultMatch {
		problems = append(problems, "output differs from the signed result")
	}
	if len(s.Key) > 0 && pair.Seal != "" {
		v.SealChecked = true
		v.SealMatch = hmac.Equal([]byte(seal(s.Key, pair)), []byte(pair.Seal))
		if !v.SealMatch {
			problems = append(problems, "seal does not match the pair")
		}
	}
	v.Detail = strings.Join(problems, "; ")
	return v, nil
}

// seal is the hex HMAC-SHA256 of the pair's hashes and version.
func seal(key []byte, pair types.SignaturePair) string {
	mac := hmac.New(sha256.New, key)
	fmt.Fprintf(mac, "%s\n%s\n%s\n%s", pair.RunID, pair.ResponseHash, pair.ResultHash, pair.AlgorithmVersion)
	return hex.EncodeToString(mac.Sum(nil))
}
