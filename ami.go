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

// Package fastmi 以蒙地卡羅法估計兩組分群的 AMI (adjusted mutual information)
// 與 SMI (standardized mutual information)。
//
// 兩者都把觀測到的互資訊與「固定群大小下隨機重新分群」的虛無分佈比較：
//   - AMI 從列/行群大小的經驗分佈抽樣，配合超幾何分佈估計期望互資訊 (EMI)。
//   - SMI 直接抽樣整張固定邊際的隨機列聯表，估計互資訊的平均與標準差。
//
// 抽樣由 sdk/mc 的自適應迴圈驅動，直到回報的誤差達到目標，或觸及樣本/迭代上限。
// 同一個 seed（與同樣的 Workers）保證得到逐位元相同的結果。
package fastmi

import (
	"context"
	"math"
	"slices"
	"time"

	"github.com/zintix-labs/fastmi/errs"
	"github.com/zintix-labs/fastmi/sdk/contingency"
	"github.com/zintix-labs/fastmi/sdk/core"
	"github.com/zintix-labs/fastmi/sdk/mc"
	"github.com/zintix-labs/fastmi/sdk/sampler"
)

// eps float64 的機器精度
const eps = 2.220446049250313e-16

// perfectTol 判定 MI 與正規化項相等的相對容差
const perfectTol = 1e-12

// EstimateAMI 估計 AMI = (MI - EMI) / (avg(H(U), H(V)) - EMI) 及其標準誤。
//
// opt 為 nil 時使用預設值（AccuracyGoal 0.01、MinSamples 10,000）。
// 兩組標籤都只有單一群時直接回傳 (1, 0)，不抽樣。
// 未收斂時同時回傳最後一次的 Result 與 DidNotConverge 錯誤。
func EstimateAMI[L comparable](ctx context.Context, labelsTrue, labelsPred []L, opt *AMIOptions) (*Result, error) {
	o := AMIOptions{}
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
	return estimateAMI(ctx, t, &o)
}

func estimateAMI(ctx context.Context, t *contingency.Table, o *AMIOptions) (*Result, error) {
	start := time.Now()
	c, seed, err := o.stream()
	if err != nil {
		return nil, err
	}

	res := &Result{
		Metric:  "ami",
		Seed:    seed,
		Rows:    t.R(),
		Cols:    t.C(),
		N:       t.N,
		Workers: o.Workers,
	}
	if t.R() == 1 && t.C() == 1 {
		res.Value, res.StdErr, res.Converged = 1, 0, true
		res.state = snapshot(c)
		res.Elapsed = time.Since(start)
		return res, nil
	}

	b, err := newAMIBatcher(t, c, o)
	if err != nil {
		return nil, err
	}
	res.MI = b.mi
	res.Normalizer = b.normalizer

	loop, err := mc.New(mc.Config{
		MinBatch:      o.MinSamples,
		MaxSamples:    o.MaxSamples,
		MaxIterations: o.MaxIterations,
		Name:          "ami",
		Log:           o.Log,
	})
	if err != nil {
		return nil, err
	}
	out, runErr := loop.Run(ctx, b)

	res.Value = out.Estimate
	res.StdErr = out.StdErr
	res.Samples = out.Samples
	res.Iterations = out.Iterations
	res.EMI = b.emi()
	res.EMIStd = b.normalization * b.acc.Std()
	res.Converged = out.State == mc.Converged
	res.state = snapshot(c)
	res.Elapsed = time.Since(start)
	if runErr != nil {
		return res, errs.Wrap(runErr, "estimate ami")
	}
	return res, nil
}

// amiBatcher 每個樣本：從列群大小分佈抽 a、從行群大小分佈抽 b，
// 再抽 n = Hyp(good=a-1, bad=N-a, sample=b-1) + 1，累加 a·b·log(N·n/(a·b))。
type amiBatcher struct {
	n             int
	fn            float64
	rows          *sampler.Keyed[int]
	cols          *sampler.Keyed[int]
	mi            float64
	normalizer    float64
	normalization float64
	goal          float64
	workers       int
	main          *core.Core
	acc           mc.Running
}

func newAMIBatcher(t *contingency.Table, c *core.Core, o *AMIOptions) (*amiBatcher, error) {
	rows, err := sizeSampler(t.Rows)
	if err != nil {
		return nil, errs.Wrap(err, "ami: row size sampler")
	}
	cols, err := sizeSampler(t.Cols)
	if err != nil {
		return nil, errs.Wrap(err, "ami: col size sampler")
	}
	hu := contingency.Entropy(t.Rows, t.N)
	hv := contingency.Entropy(t.Cols, t.N)
	fn := float64(t.N)
	return &amiBatcher{
		n:             t.N,
		fn:            fn,
		rows:          rows,
		cols:          cols,
		mi:            contingency.MutualInfo(t),
		normalizer:    (hu + hv) / 2,
		normalization: float64(t.R()) / fn * float64(t.C()) / fn,
		goal:          o.AccuracyGoal,
		workers:       o.Workers,
		main:          c,
	}, nil
}

// sizeSampler 以「群大小」為鍵、「有幾個群是這個大小」為權重建立 alias 表。
// 鍵依大小遞增排列。
func sizeSampler(margins []int) (*sampler.Keyed[int], error) {
	mult := make(map[int]int)
	for _, m := range margins {
		mult[m]++
	}
	keys := make([]int, 0, len(mult))
	for k := range mult {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	weights := make([]int, len(keys))
	for i, k := range keys {
		weights[i] = mult[k]
	}
	return sampler.BuildKeyed(weights, keys)
}

func (b *amiBatcher) Draw(ctx context.Context, n int) error {
	part, err := drawSharded(ctx, b.main, b.workers, n, b.draw)
	if err != nil {
		return err
	}
	b.acc.Merge(part)
	return nil
}

func (b *amiBatcher) draw(ctx context.Context, c *core.Core, _ int, n int, acc *mc.Running) error {
	for i := 0; i < n; i++ {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		a := b.rows.Pick(c)
		bb := b.cols.Pick(c)
		k := sampler.Hypergeometric(c, a-1, b.n-a, bb-1) + 1
		acc.Add(b.term(a, bb, k))
	}
	return nil
}

// term = a·b·log(N·n/(a·b))。
//
// 乘積在 float64 中計算，不會整數溢位；n >= 1 且 a, b <= N，參數不小於 1/N，不會下溢。
// N·n == a·b 時參數恰為 1，該項恰為 0。
func (b *amiBatcher) term(a, bb, k int) float64 {
	fa, fb := float64(a), float64(bb)
	return fa * fb * math.Log(b.fn*float64(k)/(fa*fb))
}

// perfect 回報 MI 是否在數值誤差內等於正規化項。MI <= min(H(U), H(V)) <= 正規化項，
// 等號僅在兩組標籤互為重新命名時成立。
func (b *amiBatcher) perfect() bool {
	return b.normalizer-b.mi <= perfectTol*max(b.normalizer, 1)
}

func (b *amiBatcher) emi() float64 {
	return b.normalization * b.acc.Mean()
}

func (b *amiBatcher) Step() mc.Step {
	emi := b.emi()
	cnt := float64(b.acc.Count())

	// 完全一致：MI 等於正規化項，AMI 恆為 1（含全為單點叢集時 emi 亦相等的情形）
	if b.perfect() {
		return mc.Step{Estimate: 1, StdErr: 0, Converged: true, Need: -cnt}
	}

	// 分母保留正負號並遠離 0
	den := b.normalizer - emi
	if den < 0 {
		den = min(den, -eps)
	} else {
		den = max(den, eps)
	}
	ami := (b.mi - emi) / den

	den2 := max(math.Abs(b.mi-emi), eps)
	amiStd := b.normalization * b.acc.Std() * math.Abs(ami) * math.Abs(b.normalizer-b.mi) / (math.Abs(den) * den2)

	stdErr := amiStd / math.Sqrt(cnt)
	need := (amiStd/b.goal)*(amiStd/b.goal) - cnt
	return mc.Step{
		Estimate:  ami,
		StdErr:    stdErr,
		Converged: stdErr <= b.goal,
		Need:      need,
	}
}
