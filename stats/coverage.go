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

package stats

import (
	"fmt"
	"io"
	"math"
	"time"

	"golang.org/x/text/message"
	"gonum.org/v1/gonum/stat"
)

// Coverage 校準報表：重複估計同一組輸入，檢查回報的誤差是否可信。
//
// 若誤差估計正確，約 68.3% 的估計值會落在參考值 ±1σ 之內，95.4% 落在 ±2σ 之內。
type Coverage struct {
	Metric     string        `json:"metric" yaml:"metric"`
	Reference  float64       `json:"reference" yaml:"reference"`
	Runs       int           `json:"runs" yaml:"runs"`
	Failed     int           `json:"failed" yaml:"failed"` // 未收斂或出錯的次數，不計入覆蓋率
	Confidence float64       `json:"confidence" yaml:"confidence"`
	Within1    PointStat     `json:"within_1sigma" yaml:"within_1sigma"`
	Within2    PointStat     `json:"within_2sigma" yaml:"within_2sigma"`
	MeanValue  float64       `json:"mean_value" yaml:"mean_value"`
	Bias       float64       `json:"bias" yaml:"bias"`
	SpreadStd  float64       `json:"spread_std" yaml:"spread_std"`   // 估計值的實際標準差
	MeanStdErr float64       `json:"mean_stderr" yaml:"mean_stderr"` // 回報誤差的平均
	Elapsed    time.Duration `json:"elapsed_ns" yaml:"elapsed_ns"`
}

// NewCoverage 由各次估計值與其回報誤差計算覆蓋率。
//
// values 與 stderrs 必須等長；failed 為被排除的次數。
func NewCoverage(metric string, reference float64, values, stderrs []float64, failed int, confidence float64) *Coverage {
	if !(confidence > 0 && confidence < 1) {
		confidence = DefaultConfidence
	}
	c := &Coverage{
		Metric:     metric,
		Reference:  reference,
		Runs:       len(values) + failed,
		Failed:     failed,
		Confidence: confidence,
	}
	n := len(values)
	if n == 0 {
		c.Within1.CI = CI{0, 1}
		c.Within2.CI = CI{0, 1}
		return c
	}
	k1, k2 := 0, 0
	for i, v := range values {
		d := math.Abs(v - reference)
		if d <= stderrs[i] {
			k1++
		}
		if d <= 2*stderrs[i] {
			k2++
		}
	}
	c.Within1.Hat, c.Within1.CI = ProportionCI(k1, n, confidence)
	c.Within2.Hat, c.Within2.CI = ProportionCI(k2, n, confidence)

	c.MeanValue, c.SpreadStd = stat.MeanStdDev(values, nil)
	if n < 2 {
		c.SpreadStd = 0
	}
	c.Bias = c.MeanValue - reference
	c.MeanStdErr = stat.Mean(stderrs, nil)
	return c
}

func (c *Coverage) WriteWith(w io.Writer, rep Renderer) error {
	return rep.WriteCoverage(w, c)
}

// StdOut 印出表格與用時
func (c *Coverage) StdOut() {
	fmt.Print(c.table())
	p := message.NewPrinter(lang)
	p.Printf("used: %.2f seconds\n", c.Elapsed.Seconds())
}

func (c *Coverage) table() string {
	p := message.NewPrinter(lang)
	fmtPct := func(ps PointStat) string {
		return p.Sprintf("%.1f%% [%.1f%%, %.1f%%]", 100*ps.Hat, 100*float64(ps.CI.Lo), 100*float64(ps.CI.Hi))
	}
	msg := map[string]string{
		"Reference":   p.Sprintf("%.6f", c.Reference),
		"Runs":        p.Sprintf("%d", c.Runs),
		"Failed":      p.Sprintf("%d", c.Failed),
		"Within 1σ":   fmtPct(c.Within1),
		"Within 2σ":   fmtPct(c.Within2),
		"Mean Value":  p.Sprintf("%.6f", c.MeanValue),
		"Bias":        p.Sprintf("%+.6f", c.Bias),
		"Spread Std":  p.Sprintf("%.6f", c.SpreadStd),
		"Mean StdErr": p.Sprintf("%.6f", c.MeanStdErr),
	}
	keys := []string{"Reference", "Runs", "Failed", "Within 1σ", "Within 2σ", "Mean Value", "Bias", "Spread Std", "Mean StdErr"}
	return fmtTable(p.Sprintf("%s calibration", c.Metric), keys, msg)
}
