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
	"time"

	"github.com/zintix-labs/fastmi/corefmt"
	"github.com/zintix-labs/fastmi/stats"
)

// Result 一次估計的結果。
//
// 估計失敗 (DidNotConverge / Canceled) 時 Result 仍會回傳，內容為最後一次迭代的估計。
type Result struct {
	Metric     string        `json:"metric"`
	Value      float64       `json:"value"`
	StdErr     float64       `json:"stderr"`
	Samples    int           `json:"samples"`
	Iterations int           `json:"iterations"`
	Seed       *int64        `json:"seed,omitempty"` // 沿用呼叫端串流時為 nil
	MI         float64       `json:"mi"`
	EMI        float64       `json:"emi"`
	EMIStd     float64       `json:"emi_std"`
	Normalizer float64       `json:"normalizer,omitempty"` // 僅 AMI
	Rows       int           `json:"rows"`
	Cols       int           `json:"cols"`
	N          int           `json:"n"`
	Method     string        `json:"method,omitempty"` // 僅 SMI
	Workers    int           `json:"workers"`
	Converged  bool          `json:"converged"`
	Elapsed    time.Duration `json:"elapsed_ns"`

	state []byte
}

// State 回傳呼叫結束時亂數串流的 Base64 快照，可用 RestoreStream 接續。
func (r *Result) State() string {
	if len(r.state) == 0 {
		return ""
	}
	return corefmt.EncodeBase64(r.state)
}

// Report 轉成 stats 報表，confidence 為信賴水準（<=0 使用預設 95%）。
func (r *Result) Report(confidence float64) *stats.Report {
	rep := &stats.Report{
		Metric:     r.Metric,
		Value:      stats.PointStat{Hat: r.Value},
		StdErr:     stats.Num(r.StdErr),
		Confidence: confidence,
		Samples:    r.Samples,
		Iterations: r.Iterations,
		Seed:       r.Seed,
		MI:         r.MI,
		EMI:        r.EMI,
		EMIStd:     r.EMIStd,
		Normalizer: r.Normalizer,
		Rows:       r.Rows,
		Cols:       r.Cols,
		N:          r.N,
		Method:     r.Method,
		Converged:  r.Converged,
		Elapsed:    r.Elapsed,
	}
	return rep.Fill()
}
