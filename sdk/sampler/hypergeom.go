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

package sampler

import (
	"fmt"
	"math"

	"github.com/zintix-labs/fastmi/sdk/core"
)

// Hypergeometric 從 good 個「成功」與 bad 個「失敗」組成的母體中不放回抽出 sample 個，
// 回傳抽到的成功個數。
//
// 演算法：以眾數為起點的 chop-down 反函數法。
//  1. 以 lgamma 計算眾數的機率 p(mode)。
//  2. 抽一個 u ∈ [0,1)，從眾數開始向上、向下交錯扣除相鄰機率（以比值遞推），
//     u 落入哪一格就回傳哪一格。
//
// 期望步數與標準差同階，與母體大小無關；每次抽樣只消耗一個 Float64。
//
// 參數不合法（負數或 sample > good+bad）會 panic：此函數位於熱路徑，參數由呼叫端保證。
func Hypergeometric(c *core.Core, good, bad, sample int) int {
	if good < 0 || bad < 0 || sample < 0 || sample > good+bad {
		panic(fmt.Sprintf("hypergeometric: invalid params good=%d bad=%d sample=%d", good, bad, sample))
	}
	lo := max(0, sample-bad)
	hi := min(sample, good)
	if lo == hi {
		return lo
	}

	total := good + bad
	mode := int(float64(sample+1) * float64(good+1) / float64(total+2))
	mode = min(max(mode, lo), hi)

	pm := math.Exp(logChoose(good, mode) + logChoose(bad, sample-mode) - logChoose(total, sample))
	u := c.Float64()
	if u < pm {
		return mode
	}
	u -= pm

	down, up := mode, mode
	pd, pu := pm, pm
	for down > lo || up < hi {
		if up < hi {
			k := up
			pu *= float64(good-k) * float64(sample-k) / (float64(k+1) * float64(bad-sample+k+1))
			up++
			if u < pu {
				return up
			}
			u -= pu
		}
		if down > lo {
			k := down
			pd *= float64(k) * float64(bad-sample+k) / (float64(good-k+1) * float64(sample-k+1))
			down--
			if u < pd {
				return down
			}
			u -= pd
		}
	}
	// 浮點累積誤差造成的殘差，落回眾數
	return mode
}

// logChoose 回傳 ln C(n, k)。
func logChoose(n, k int) float64 {
	a, _ := math.Lgamma(float64(n + 1))
	b, _ := math.Lgamma(float64(k + 1))
	c, _ := math.Lgamma(float64(n - k + 1))
	return a - b - c
}
