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
	"errors"
	"io"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/zintix-labs/fastmi/errs"
	"github.com/zintix-labs/fastmi/sdk/contingency"
	"github.com/zintix-labs/fastmi/sdk/core"
	"github.com/zintix-labs/fastmi/stats"
)

const DefaultCalibrationRuns = 100

// SeededEstimate 以指定 seed 執行一次估計
type SeededEstimate func(ctx context.Context, seed int64) (*Result, error)

// Calibrator 以不同 seed 重複估計同一組輸入，檢查回報的誤差是否與實際離散程度相符。
//
// 每次估計的 seed 由 BaseSeed 經 core.SeedMaker 依序派生，單次結果可用該 seed 單獨重現。
type Calibrator struct {
	Runs         int     // 估計次數，預設 100
	Workers      int     // 同時進行的估計數，預設 1
	BaseSeed     *int64  // nil 時由 crypto/rand 產生
	Confidence   float64 // 覆蓋率信賴區間水準，預設 0.95
	ShowProgress bool
}

// Run 執行校準並回傳覆蓋率報表。
//
// 未收斂的估計計入 Failed 不計入覆蓋率；取消或 Fatal 錯誤直接中止。
func (cb *Calibrator) Run(ctx context.Context, metric string, reference float64, est SeededEstimate) (*stats.Coverage, error) {
	runs := cb.Runs
	if runs == 0 {
		runs = DefaultCalibrationRuns
	}
	workers := max(1, cb.Workers)
	if runs < 1 || cb.Workers < 0 {
		return nil, errs.Kindf(errs.KindInvalidParam, "calibration: runs and workers must > 0, got %d/%d", runs, cb.Workers)
	}
	var base int64
	if cb.BaseSeed != nil {
		base = *cb.BaseSeed
	} else {
		s, err := core.RandomSeed()
		if err != nil {
			return nil, errs.Wrap(err, "calibration: random seed")
		}
		base = s
	}
	sm := core.NewSeedMaker(base)
	seeds := make([]int64, runs)
	for i := range seeds {
		seeds[i] = sm.Next()
	}

	results := make([]*Result, runs)
	errList := make([]error, runs)
	jobs := make(chan int, runs)
	for i := 0; i < runs; i++ {
		jobs <- i
	}
	close(jobs)

	bar := pb.StartNew(runs)
	if !cb.ShowProgress {
		bar.SetWriter(io.Discard)
	}
	wg := new(sync.WaitGroup)
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					errList[i] = ctx.Err()
					continue
				}
				results[i], errList[i] = est(ctx, seeds[i])
				bar.Increment()
			}
		}()
	}
	wg.Wait()
	used := time.Since(bar.StartTime())
	bar.Finish()

	values := make([]float64, 0, runs)
	stderrs := make([]float64, 0, runs)
	failed := 0
	for i := 0; i < runs; i++ {
		if err := errList[i]; err != nil {
			if errors.Is(err, errs.ErrDidNotConverge) {
				failed++
				continue
			}
			return nil, errs.Wrap(err, "calibration run")
		}
		values = append(values, results[i].Value)
		stderrs = append(stderrs, results[i].StdErr)
	}
	cov := stats.NewCoverage(metric, reference, values, stderrs, failed, cb.Confidence)
	cov.Elapsed = used
	return cov, nil
}

// CalibrateAMI 以 Calibrator 重複執行 EstimateAMI；opt 中的 Seed 與 Stream 會被忽略。
func CalibrateAMI[L comparable](ctx context.Context, cb *Calibrator, labelsTrue, labelsPred []L, opt *AMIOptions, reference float64) (*stats.Coverage, error) {
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
	return cb.Run(ctx, "ami", reference, func(ctx context.Context, seed int64) (*Result, error) {
		run := o
		run.Stream = nil
		run.Seed = &seed
		return estimateAMI(ctx, t, &run)
	})
}

// CalibrateSMI 以 Calibrator 重複執行 EstimateSMI；opt 中的 Seed 與 Stream 會被忽略。
func CalibrateSMI[L comparable](ctx context.Context, cb *Calibrator, labelsTrue, labelsPred []L, opt *SMIOptions, reference float64) (*stats.Coverage, error) {
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
	return cb.Run(ctx, "smi", reference, func(ctx context.Context, seed int64) (*Result, error) {
		run := o
		run.Stream = nil
		run.Seed = &seed
		return estimateSMI(ctx, t, &run)
	})
}
