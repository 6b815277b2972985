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

package fastmi

import (
	"context"
	"math"
	"time"

	"github.com/zintix-labs/fastmi/errs"
	"github.com/zintix-labs/fastmi/sdk/contingency"
	"github.com/zintix-labs/fastmi/sdk/core"
	"github.com/zintix-labs/fastmi/sdk/mc"
	"github.com/zintix-labs/fastmi/sdk/rtable"
)

// EstimateSMI 估計 SMI = (MI - EMI) / std(MI) 及其標準誤。
//
// opt 為 nil 時使用預設值（PrecisionGoal 0.1、MinSamples 1,000、StopBoth）。
// 抽樣到的互資訊完全沒有變異時 SMI 定為 1。
// 未收斂時同時回傳最後一次的 Result 與 DidNotConverge 錯誤。
func EstimateSMI[L comparable](ctx context.Context, labelsTrue, labelsPred []L, opt *SMIOptions) (*Result, error) {
	o := SMIOptions{}
	if opt != nil {
		o = *opt
	}
	if err := o.Valid(); err != nil {
		return nil, err
	}
	t, err := contingency.Build(labelsTrue, labelsPred)
	if err != nil {
		return nil, err
	}
	return estimateSMI(ctx, t, &o)
}

func estimateSMI(ctx context.Context, t *contingency.Table, o *SMIOptions) (*Result, error) {
	start := time.Now()
	c, seed, err := o.stream()
	if err != nil {
		return nil, err
	}
	b, err := newSMIBatcher(t, c, o)
	if err != nil {
		return nil, err
	}

	loop, err := mc.New(mc.Config{
		MinBatch:      o.MinSamples,
		MaxSamples:    o.MaxSamples,
		MaxIterations: o.MaxIterations,
		Name:          "smi",
		Log:           o.Log,
	})
	if err != nil {
		return nil, err
	}
	out, runErr := loop.Run(ctx, b)

	res := &Result{
		Metric:     "smi",
		Value:      out.Estimate,
		StdErr:     out.StdErr,
		Samples:    out.Samples,
		Iterations: out.Iterations,
		Seed:       seed,
		MI:         b.mi,
		EMI:        b.acc.Mean(),
		EMIStd:     b.acc.Std(),
		Rows:       t.R(),
		Cols:       t.C(),
		N:          t.N,
		Method:     b.tables[0].Method().String(),
		Workers:    o.Workers,
		Converged:  out.State == mc.Converged,
		state:      snapshot(c),
		Elapsed:    time.Since(start),
	}
	if runErr != nil {
		return res, errs.Wrap(runErr, "estimate smi")
	}
	return res, nil
}

// smiBatcher 每個樣本抽一張固定邊際的隨機列聯表並計算其互資訊。
type smiBatcher struct {
	mi      float64
	goal    float64
	rule    StopRule
	workers int
	main    *core.Core
	margins contingency.MarginalMI
	tables  []*rtable.Sampler // 每個分段一個，各自持有緩衝區
	bufs    [][][]int
	acc     mc.Running
}

func newSMIBatcher(t *contingency.Table, c *core.Core, o *SMIOptions) (*smiBatcher, error) {
	s, err := rtable.New(t.Rows, t.Cols, o.Method)
	if err != nil {
		return nil, errs.Wrap(err, "smi: table sampler")
	}
	b := &smiBatcher{
		mi:      contingency.MutualInfo(t),
		goal:    o.PrecisionGoal,
		rule:    o.StopRule,
		workers: o.Workers,
		main:    c,
		margins: contingency.NewMarginalMI(t.Rows, t.Cols, t.N),
		tables:  make([]*rtable.Sampler, o.Workers),
		bufs:    make([][][]int, o.Workers),
	}
	b.tables[0] = s
	for i := 1; i < o.Workers; i++ {
		b.tables[i] = s.Clone()
	}
	return b, nil
}

func (b *smiBatcher) Draw(ctx context.Context, n int) error {
	part, err := drawSharded(ctx, b.main, b.workers, n, b.draw)
	if err != nil {
		return err
	}
	b.acc.Merge(part)
	return nil
}

func (b *smiBatcher) draw(ctx context.Context, c *core.Core, shard, n int, acc *mc.Running) error {
	s := b.tables[shard]
	dst := b.bufs[shard]
	for i := 0; i < n; i++ {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		dst = s.Sample(c, dst)
		acc.Add(b.margins.Of(dst))
	}
	b.bufs[shard] = dst
	return nil
}

func (b *smiBatcher) Step() mc.Step {
	n := float64(b.acc.Count())
	emi := b.acc.Mean()
	emiStd := b.acc.Std()

	smi := 1.0
	if emiStd != 0 {
		smi = (b.mi - emi) / emiStd
	}

	stdErr := math.Inf(1)
	if n >= 2 {
		stdErr = math.Sqrt(1/n + smi*smi/(2*(n-1)))
	}
	precision := math.Abs(stdErr / smi)

	var done bool
	switch b.rule {
	case StopEither:
		done = precision <= b.goal || stdErr <= b.goal
	default:
		done = precision <= b.goal && stdErr <= b.goal
	}

	// smi == 0 時 ps2 == 0，結果為 NaN 或 +Inf，交由迴圈夾限
	s2 := smi * smi
	ps2 := b.goal * b.goal * s2
	q := 2 + s2 + 2*ps2
	need := math.Ceil((q+math.Sqrt(q*q-16*ps2))/(4*ps2)) - n

	return mc.Step{
		Estimate:  smi,
		StdErr:    stdErr,
		Converged: done,
		Need:      need,
	}
}
