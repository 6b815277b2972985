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

package contingency

import "math"

// Entropy 計算計數分佈的熵：H = log N - (1/N) Σ c·log c。
//
// 計數為 0 的項目略過；只有一個非零類別時回傳 0。
// n 必須等於 counts 的總和。
func Entropy(counts []int, n int) float64 {
	if n <= 0 {
		return 0
	}
	nz := 0
	acc := 0.0
	for _, c := range counts {
		if c <= 0 {
			continue
		}
		nz++
		fc := float64(c)
		acc += fc * math.Log(fc)
	}
	if nz <= 1 {
		return 0
	}
	fn := float64(n)
	return math.Log(fn) - acc/fn
}

// JointEntropyDense 計算稠密表所有格的熵。
func JointEntropyDense(cells [][]int, n int) float64 {
	if n <= 0 {
		return 0
	}
	nz := 0
	acc := 0.0
	for _, row := range cells {
		for _, c := range row {
			if c <= 0 {
				continue
			}
			nz++
			fc := float64(c)
			acc += fc * math.Log(fc)
		}
	}
	if nz <= 1 {
		return 0
	}
	fn := float64(n)
	return math.Log(fn) - acc/fn
}

// MutualInfo 計算 MI = H(U) + H(V) - H(U,V)，下限截在 0。
//
// 兩組標籤完全一致（或只差重新命名）時，三個熵的計算順序相同，
// 結果與 H(U) 逐位元相等。
func MutualInfo(t *Table) float64 {
	hu := Entropy(t.Rows, t.N)
	hv := Entropy(t.Cols, t.N)
	huv := Entropy(t.Counts(), t.N)
	return clip(hu + hv - huv)
}

// MutualInfoDense 計算稠密表的互資訊，rows/cols 為其邊際。
func MutualInfoDense(cells [][]int, rows, cols []int, n int) float64 {
	return clip(Entropy(rows, n) + Entropy(cols, n) - JointEntropyDense(cells, n))
}

// MarginalMI 預先算好固定邊際的熵，供大量同邊際的表重複計算互資訊。
type MarginalMI struct {
	hMargins float64
	n        int
}

// NewMarginalMI 以固定邊際建立 MarginalMI。
func NewMarginalMI(rows, cols []int, n int) MarginalMI {
	return MarginalMI{hMargins: Entropy(rows, n) + Entropy(cols, n), n: n}
}

// Of 回傳稠密表的互資訊；表的邊際必須與建立時相同。
func (m MarginalMI) Of(cells [][]int) float64 {
	return clip(m.hMargins - JointEntropyDense(cells, m.n))
}

func clip(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}
