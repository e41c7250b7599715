// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline wires the scoring stages into a single entry point.
// The packet builder runs first; the scorer and the validity engine then
// run concurrently over the same immutable packet; the Light Signature
// matcher and the executive signal composer consume their results; the
// audit signer runs last and never blocks the result.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/ray-engine/internal/audit"
	"github.com/pdiddy/ray-engine/internal/execsignal"
	"github.com/pdiddy/ray-engine/internal/itembank"
	"github.com/pdiddy/ray-engine/internal/lightsig"
	"github.com/pdiddy/ray-engine/internal/packet"
	"github.com/pdiddy/ray-engine/internal/score"
	"github.com/pdiddy/ray-engine/internal/validity"
	"github.com/pdiddy/ray-engine/pkg/types"
)

// Score runs every pure stage over p and assembles the output. now is
// recorded as computed_at and nowhere else.
func Score(ctx context.Context, bank *itembank.Bank, p *types.ResponsePacket, now time.Time) (*types.PipelineOutput, error) {
	var (
		sr score.Result
		vr validity.Result
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		sr = score.Score(p, bank)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		vr = validity.Check(p, bank)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scoring run %s: %w", p.RunID, err)
	}

	rules := bank.Rules()
	dq := validity.Assess(vr, sr.Eclipse.Level, rules)
	sig := lightsig.Match(lightsig.Input{
		Rays:            sr.Rays,
		Tools:           sr.Tools,
		Flags:           dq.ValidityFlags,
		ReflectionDepth: dq.Metrics.ReflectionDepth,
	}, bank)
	signals := execsignal.Compose(execsignal.Input{Rays: sr.Rays, Tools: sr.Tools, DataQuality: dq}, bank)

	out := &types.PipelineOutput{
		RunID:            p.RunID,
		SubjectID:        p.SubjectID,
		RunNumber:        p.RunNumber,
		BankVersion:      bank.Version(),
		CompletedAt:      p.CompletedAt,
		Rays:             sr.Rays,
		Tools:            sr.Tools,
		Eclipse:          sr.Eclipse,
		LightSignature:   sig.Signature,
		DataQuality:      dq,
		ExecutiveSignals: signals,
		IntegrityIssues:  []types.IntegrityIssue{},
		ComputedAt:       now.UTC(),
	}
	out.IntegrityIssues = append(out.IntegrityIssues, sig.Issues...)
	return out, nil
}

// BankFunc returns the item bank to score against. It is called once per
// run so a cached bank can be swapped between runs.
type BankFunc func() (*itembank.Bank, error)

// Static returns a BankFunc that always yields bank.
func Static(bank *itembank.Bank) BankFunc {
	return func() (*itembank.Bank, error) { return bank, nil }
}

// Result is a scored run with its signature. Signature is nil when
// signing failed.
type Result struct {
	Packet    *types.ResponsePacket
	Output    *types.PipelineOutput
	Signature *types.SignaturePair
}

// Pipeline scores runs end to end.
type Pipeline struct {
	bank   BankFunc
	signer audit.Signer
	log    *zap.Logger
	now    func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option { return func(p *Pipeline) { p.log = l } }

// WithSigner sets the audit signer.
func WithSigner(s audit.Signer) Option { return func(p *Pipeline) { p.signer = s } }

// WithClock sets the source of computed_at and signature timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
		if p.signer.Now == nil {
			p.signer.Now = now
		}
	}
}

// New returns a pipeline reading its bank from bank.
func New(bank BankFunc, opts ...Option) *Pipeline {
	p := &Pipeline{bank: bank, log: zap.NewNop(), now: time.Now}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Bank returns the bank the next run would be scored against.
func (p *Pipeline) Bank() (*itembank.Bank, error) { return p.bank() }

// Signer returns the pipeline's audit signer.
func (p *Pipeline) Signer() audit.Signer { return p.signer }

// Run builds the packet for run, scores it, and signs the output. Missing
// and invalid input are returned as errors before any scoring happens. A
// signing failure is logged and leaves Signature nil.
func (p *Pipeline) Run(ctx context.Context, run types.RunInput) (*Result, error) {
	bank, err := p.bank()
	if err != nil {
		return nil, fmt.Errorf("loading item bank: %w", err)
	}
	log := p.log.With(zap.String("run_id", run.RunID), zap.String("bank_version", bank.Version()))

	pkt, err := packet.Build(run, bank)
	if err != nil {
		log.Warn("run rejected", zap.Error(err))
		return nil, err
	}

	out, err := Score(ctx, bank, pkt, p.now())
	if err != nil {
		return nil, err
	}

	for _, issue := range out.IntegrityIssues {
		log.Error("item bank integrity issue", zap.String("code", issue.Code), zap.String("detail", issue.Detail))
	}
	if st := out.LightSignature.MatchStatus; st != types.MatchMatched {
		log.Warn("no archetype matched", zap.String("status", string(st)))
	}

	res := &Result{Packet: pkt, Output: out}
	pair, err := p.signer.Sign(pkt, out)
	if err != nil {
		log.Error("signing output", zap.Error(err))
	} else {
		res.Signature = &pair
	}

	log.Info("run scored",
		zap.String("confidence", string(out.DataQuality.ConfidenceBand)),
		zap.String("gating", string(out.DataQuality.Gating.Mode)),
		zap.String("eclipse_level", string(out.Eclipse.Level)),
		zap.Strings("flags", flagNames(out.DataQuality.ValidityFlags)),
	)
	return res, nil
}

func flagNames(flags []types.ValidityFlag) []string {
	names := make([]string, len(flags))
	for i, f := range flags {
		names[i] = string(f)
	}
	return names
}
