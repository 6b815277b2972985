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
	"encoding/json"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Num 是輸出用的浮點數：JSON 不支援 NaN/±Inf，這些值編碼成 null。
type Num float64

func (n Num) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(f)
}

// 信賴區間
type CI struct {
	Lo Num `json:"lo" yaml:"lo"`
	Hi Num `json:"hi" yaml:"hi"`
}

// PointStat 點估計 回傳 估計值 以及信賴區間
type PointStat struct {
	Hat float64 `json:"hat" yaml:"hat"`
	CI  CI      `json:"ci" yaml:"ci"`
}

// NormalCI 以常態近似建立雙尾信賴區間：hat ± z(1-α/2)·se。
//
// se 非有限值時回傳 (-Inf, +Inf)；se == 0 時區間退化為單點。
func NormalCI(hat, se, confidence float64) CI {
	if math.IsNaN(se) || math.IsInf(se, 0) || se < 0 {
		return CI{Lo: Num(math.Inf(-1)), Hi: Num(math.Inf(1))}
	}
	z := zScore(confidence)
	return CI{Lo: Num(hat - z*se), Hi: Num(hat + z*se)}
}

// zScore 雙尾常態分位數
func zScore(confidence float64) float64 {
	if !(confidence > 0 && confidence < 1) {
		confidence = DefaultConfidence
	}
	return distuv.UnitNormal.Quantile(1 - (1-confidence)/2)
}

// ProportionCI Clopper–Pearson exact CI for binomial proportion (k successes out of n)
func ProportionCI(k int, n int, confidence float64) (pHat float64, ci CI) {
	if n == 0 {
		return 0, CI{0, 1}
	}
	if !(confidence > 0 && confidence < 1) {
		confidence = DefaultConfidence
	}
	alpha := 1 - confidence
	pHat = float64(k) / float64(n)

	// Beta PPF 映射，處理邊界
	if k == 0 {
		ci.Lo = 0
	} else {
		b := distuv.Beta{Alpha: float64(k), Beta: float64(n - k + 1)}
		ci.Lo = Num(b.Quantile(alpha / 2))
	}
	if k == n {
		ci.Hi = 1
	} else {
		b := distuv.Beta{Alpha: float64(k + 1), Beta: float64(n - k)}
		ci.Hi = Num(b.Quantile(1 - alpha/2))
	}
	return
}
