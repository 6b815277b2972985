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

// Package stats 把估計結果整理成報表：點估計與信賴區間、校準覆蓋率，
// 並提供 JSON / YAML / 表格三種輸出。
package stats

import (
	"fmt"
	"io"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultConfidence 報表預設信賴水準
const DefaultConfidence = 0.95

var lang language.Tag = language.English

// Report 單次估計的報表
type Report struct {
	Metric     string        `json:"metric" yaml:"metric"`
	Value      PointStat     `json:"value" yaml:"value"`
	StdErr     Num           `json:"stderr" yaml:"stderr"`
	Confidence float64       `json:"confidence" yaml:"confidence"`
	Samples    int           `json:"samples" yaml:"samples"`
	Iterations int           `json:"iterations" yaml:"iterations"`
	Seed       *int64        `json:"seed,omitempty" yaml:"seed,omitempty"`
	MI         float64       `json:"mi" yaml:"mi"`
	EMI        float64       `json:"emi" yaml:"emi"`
	EMIStd     float64       `json:"emi_std" yaml:"emi_std"`
	Normalizer float64       `json:"normalizer,omitempty" yaml:"normalizer,omitempty"`
	Rows       int           `json:"rows" yaml:"rows"`
	Cols       int           `json:"cols" yaml:"cols"`
	N          int           `json:"n" yaml:"n"`
	Method     string        `json:"method,omitempty" yaml:"method,omitempty"`
	Converged  bool          `json:"converged" yaml:"converged"`
	Elapsed    time.Duration `json:"elapsed_ns" yaml:"elapsed_ns"`
}

// Fill 依 StdErr 與 Confidence 補上信賴區間。
//
// Confidence 不在 (0,1) 時使用 DefaultConfidence。
func (r *Report) Fill() *Report {
	if !(r.Confidence > 0 && r.Confidence < 1) {
		r.Confidence = DefaultConfidence
	}
	r.Value.CI = NormalCI(r.Value.Hat, float64(r.StdErr), r.Confidence)
	return r
}

// RelErr 相對誤差 |stderr / value|
func (r *Report) RelErr() float64 {
	if r.Value.Hat == 0 {
		return math.Inf(1)
	}
	return math.Abs(float64(r.StdErr) / r.Value.Hat)
}

func (r *Report) WriteWith(w io.Writer, rep Renderer) error {
	return rep.WriteReport(w, r)
}

// StdOut 印出表格與用時
func (r *Report) StdOut(ut time.Duration) {
	fmt.Print(r.table())
	fmt.Print(formatDuration(ut, r.Samples))
}

func (r *Report) table() string {
	k, m := r.fmtBasic()
	return fmtTable(strings.ToUpper(r.Metric), k, m)
}

// ============================================================
// ** 內部方法 **
// ============================================================

func formatDuration(d time.Duration, samples int) string {
	p := message.NewPrinter(lang)
	if d < 0 {
		d = -d
	}
	sec := d.Seconds()
	if sec <= 0 {
		sec = 1e-9
	}
	sps := int(float64(samples) / sec)
	if sec < 60.0 {
		return p.Sprintf("used: %.2f seconds\nsps : %d samples/sec\n", sec, sps)
	}
	s := int(d.Seconds()) % 60
	m := int(d.Minutes()) % 60
	h := int(d.Hours())
	if h == 0 {
		return p.Sprintf("used: %dm %ds\nsps : %d samples/sec\n", m, s, sps)
	}
	return p.Sprintf("used: %dh:%dm:%ds\nsps : %d samples/sec\n", h, m, s, sps)
}

func (r *Report) fmtBasic() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	ciKey := p.Sprintf("%.0f%% CI", 100*r.Confidence)
	basic := map[string]string{
		"Metric":     r.Metric,
		"Value":      p.Sprintf("%.6f", r.Value.Hat),
		"Std Error":  p.Sprintf("%.6f", float64(r.StdErr)),
		ciKey:        p.Sprintf("[%.6f, %.6f]", float64(r.Value.CI.Lo), float64(r.Value.CI.Hi)),
		"MI":         p.Sprintf("%.6f", r.MI),
		"EMI":        p.Sprintf("%.6f", r.EMI),
		"EMI Std":    p.Sprintf("%.6f", r.EMIStd),
		"Clusters":   p.Sprintf("%d x %d", r.Rows, r.Cols),
		"N":          p.Sprintf("%d", r.N),
		"Samples":    p.Sprintf("%d", r.Samples),
		"Iterations": p.Sprintf("%d", r.Iterations),
		"Converged":  fmt.Sprintf("%t", r.Converged),
		"Seed":       "-",
	}
	if r.Seed != nil {
		basic["Seed"] = fmt.Sprintf("%d", *r.Seed)
	}
	keys := []string{"Metric", "Value", "Std Error", ciKey, "MI", "EMI", "EMI Std", "Clusters", "N", "Samples", "Iterations", "Converged", "Seed"}
	if r.Normalizer != 0 {
		basic["Normalizer"] = p.Sprintf("%.6f", r.Normalizer)
		keys = slices.Insert(keys, 7, "Normalizer")
	}
	if r.Method != "" {
		basic["Method"] = r.Method
		keys = append(keys, "Method")
	}
	return keys, basic
}

func fmtTable(title string, keys []string, msg map[string]string) string {
	p := message.NewPrinter(lang)
	maxKeyLen := runewidth.StringWidth(title) / 2
	maxValLen := 0
	for k, m := range msg {
		if w := runewidth.StringWidth(k); w > maxKeyLen {
			maxKeyLen = w
		}
		if w := runewidth.StringWidth(m); w > maxValLen {
			maxValLen = w
		}
	}
	maxKeyLen += 2
	maxValLen += 2

	divider := "+" + strings.Repeat("-", maxKeyLen) + "+" + strings.Repeat("-", maxValLen) + "+\n"
	top := "+" + strings.Repeat("-", maxKeyLen+1+maxValLen) + "+\n"

	totalInner := maxKeyLen + maxValLen + 1
	titleW := runewidth.StringWidth(title)

	left := (totalInner - titleW) / 2
	right := totalInner - titleW - left

	fmtStr := top
	fmtStr += p.Sprintf("|%s%s%s|\n", blank(left), title, blank(right))
	fmtStr += divider
	for _, k := range keys {
		fmtStr += p.Sprintf("| %s%s | %s%s |\n", k, blank(maxKeyLen-2-runewidth.StringWidth(k)), msg[k], blank(maxValLen-2-runewidth.StringWidth(msg[k])))
	}
	fmtStr += divider

	return fmtStr
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}
