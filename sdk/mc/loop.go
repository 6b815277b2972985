// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package mc 提供自適應蒙地卡羅迴圈與串流式平均數/變異數累加器。
//
// 迴圈本身不懂任何統計量；它只負責：決定下一批抽多少、何時停止、
// 何時因上限或取消而放棄。估計量的更新由 Batcher 實作。
package mc

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/zintix-labs/fastmi/errs"
)

// DefaultMaxBatchMultiplier 單批上限為 MinBatch 的倍數。
const DefaultMaxBatchMultiplier = 100

// State 迴圈狀態。
type State uint8

const (
	Initial State = iota
	Iterating
	Converged
	Failed
)

func (s State) String() string {
	switch s {
	case Initial:
		return "initial"
	case Iterating:
		return "iterating"
	case Converged:
		return "converged"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Config 迴圈參數。
//
// MaxSamples / MaxIterations <= 0 表示不設上限。
type Config struct {
	MinBatch           int
	MaxBatchMultiplier int // 0 使用 DefaultMaxBatchMultiplier
	MaxSamples         int
	MaxIterations      int
	Name               string       // 出現在日誌中的估計量名稱
	Log                *slog.Logger // nil 不輸出
}

// Valid 檢查並補上預設值。
func (c *Config) Valid() error {
	if c.MinBatch < 1 {
		return errs.Kindf(errs.KindInvalidParam, "mc: min batch must >= 1, got %d", c.MinBatch)
	}
	if c.MaxBatchMultiplier == 0 {
		c.MaxBatchMultiplier = DefaultMaxBatchMultiplier
	}
	if c.MaxBatchMultiplier < 1 {
		return errs.Kindf(errs.KindInvalidParam, "mc: max batch multiplier must >= 1, got %d", c.MaxBatchMultiplier)
	}
	if c.MinBatch > math.MaxInt/c.MaxBatchMultiplier {
		return errs.NewKind(errs.KindInvalidParam, "mc: min batch * multiplier overflows int")
	}
	if c.Log == nil {
		c.Log = slog.New(slog.DiscardHandler)
	}
	return nil
}

// Step 是一次批次後估計量回報的狀態。
type Step struct {
	Estimate  float64
	StdErr    float64
	Converged bool
	Need      float64 // 還需要的額外樣本數；可為 NaN 或 ±Inf
}

// Batcher 由估計量實作。
type Batcher interface {
	// Draw 抽 n 個樣本並併入累計估計。
	Draw(ctx context.Context, n int) error
	// Step 依目前累計的樣本回報估計值、誤差與下一批需求。
	Step() Step
}

// Outcome 是迴圈結束時最後一次的估計。
type Outcome struct {
	Estimate   float64
	StdErr     float64
	Samples    int
	Iterations int
	State      State
}

// Loop 自適應蒙地卡羅迴圈：Initial -> Iterating -> Converged，或 Failed。
type Loop struct {
	cfg   Config
	state State
}

// New 建立迴圈。
func New(cfg Config) (*Loop, error) {
	if err := cfg.Valid(); err != nil {
		return nil, err
	}
	return &Loop{cfg: cfg, state: Initial}, nil
}

// State 回傳目前狀態。
func (l *Loop) State() State { return l.state }

// MaxBatch 單批上限。
func (l *Loop) MaxBatch() int { return l.cfg.MinBatch * l.cfg.MaxBatchMultiplier }

// Run 反覆抽樣直到 Batcher 回報收斂。
//
// 每批開始前檢查 ctx；取消時回傳 Canceled。用盡 MaxSamples 或 MaxIterations
// 仍未收斂回傳 DidNotConverge。兩種失敗都會同時回傳最後一次的 Outcome。
func (l *Loop) Run(ctx context.Context, b Batcher) (Outcome, error) {
	cfg := l.cfg
	out := Outcome{Estimate: math.NaN(), StdErr: math.Inf(1), State: l.state}
	batch := cfg.MinBatch

	for {
		if err := ctx.Err(); err != nil {
			return l.fail(out, errs.Wrap(err, "mc: "+cfg.Name+" canceled"))
		}
		if cfg.MaxIterations > 0 && out.Iterations >= cfg.MaxIterations {
			return l.fail(out, errs.Kindf(errs.KindDidNotConverge,
				"mc: %s did not converge within %d iterations (stderr %g)", cfg.Name, cfg.MaxIterations, out.StdErr))
		}
		if cfg.MaxSamples > 0 {
			remain := cfg.MaxSamples - out.Samples
			if remain <= 0 {
				return l.fail(out, errs.Kindf(errs.KindDidNotConverge,
					"mc: %s did not converge within %d samples (stderr %g)", cfg.Name, cfg.MaxSamples, out.StdErr))
			}
			batch = min(batch, remain)
		}

		l.state = Iterating
		if err := b.Draw(ctx, batch); err != nil {
			return l.fail(out, errs.Wrap(err, "mc: "+cfg.Name+" draw"))
		}
		out.Samples += batch
		out.Iterations++

		st := b.Step()
		out.Estimate = st.Estimate
		out.StdErr = st.StdErr
		next := NextBatch(st.Need, cfg.MinBatch, cfg.MaxBatchMultiplier)
		cfg.Log.Debug("mc.iteration",
			slog.String("estimator", cfg.Name),
			slog.Int("iter", out.Iterations),
			slog.Int("batch", batch),
			slog.Int("samples", out.Samples),
			slog.Float64("estimate", st.Estimate),
			slog.Float64("stderr", st.StdErr),
			slog.Bool("converged", st.Converged),
			slog.Int("next", next),
		)
		if st.Converged {
			l.state = Converged
			out.State = Converged
			return out, nil
		}
		batch = next
	}
}

func (l *Loop) fail(out Outcome, err error) (Outcome, error) {
	l.state = Failed
	out.State = Failed
	return out, err
}

// NextBatch 把估計出的需求量夾到 [minBatch, minBatch*mult]。
//
// NaN 與 -Inf 視為 minBatch，+Inf 視為上限。
func NextBatch(need float64, minBatch, mult int) int {
	hi := minBatch * mult
	switch {
	case math.IsNaN(need):
		return minBatch
	case need >= float64(hi):
		return hi
	case need <= float64(minBatch):
		return minBatch
	}
	return int(math.Ceil(need))
}
