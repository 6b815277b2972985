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

// Package contingency 把兩組標籤交叉成列聯表，並計算熵與互資訊。
//
// 所有對數皆為自然對數。列與行依標籤第一次出現的順序編號，
// 同一組輸入永遠得到同一張表（包括 Cells 的順序）。
package contingency

import (
	"github.com/zintix-labs/fastmi/errs"
)

// Cell 是列聯表中一個非零格。
type Cell struct {
	Row   int `json:"row"`
	Col   int `json:"col"`
	Count int `json:"count"`
}

// Table 是稀疏列聯表。
//
// 不變量：sum(Rows) == sum(Cols) == N，且每個邊際 >= 1。
type Table struct {
	Rows  []int  `json:"rows"`  // 真實分群的群大小
	Cols  []int  `json:"cols"`  // 預測分群的群大小
	Cells []Cell `json:"cells"` // 非零格，依第一次出現順序
	N     int    `json:"n"`
}

// Build 交叉兩組等長標籤。
//
// 長度不同回傳 LengthMismatch，長度為 0 回傳 EmptyInput。
func Build[L comparable](labelsTrue, labelsPred []L) (*Table, error) {
	if len(labelsTrue) != len(labelsPred) {
		return nil, errs.Kindf(errs.KindLengthMismatch,
			"contingency: labels length mismatch (%d != %d)", len(labelsTrue), len(labelsPred))
	}
	if len(labelsTrue) == 0 {
		return nil, errs.NewKind(errs.KindEmptyInput, "contingency: labels are empty")
	}

	n := len(labelsTrue)
	ri := make([]int, n)
	ci := make([]int, n)
	rowID := make(map[L]int)
	colID := make(map[L]int)
	for i := 0; i < n; i++ {
		r, ok := rowID[labelsTrue[i]]
		if !ok {
			r = len(rowID)
			rowID[labelsTrue[i]] = r
		}
		c, ok := colID[labelsPred[i]]
		if !ok {
			c = len(colID)
			colID[labelsPred[i]] = c
		}
		ri[i], ci[i] = r, c
	}

	t := &Table{
		Rows: make([]int, len(rowID)),
		Cols: make([]int, len(colID)),
		N:    n,
	}
	nc := len(colID)
	cellID := make(map[int]int)
	for i := 0; i < n; i++ {
		r, c := ri[i], ci[i]
		t.Rows[r]++
		t.Cols[c]++
		key := r*nc + c
		k, ok := cellID[key]
		if !ok {
			k = len(t.Cells)
			cellID[key] = k
			t.Cells = append(t.Cells, Cell{Row: r, Col: c})
		}
		t.Cells[k].Count++
	}
	return t, nil
}

// R 回傳列數（真實分群數）。
func (t *Table) R() int { return len(t.Rows) }

// C 回傳行數（預測分群數）。
func (t *Table) C() int { return len(t.Cols) }

// Dense 展開成 R x C 的稠密矩陣。
func (t *Table) Dense() [][]int {
	out := make([][]int, len(t.Rows))
	for i := range out {
		out[i] = make([]int, len(t.Cols))
	}
	for _, c := range t.Cells {
		out[c.Row][c.Col] = c.Count
	}
	return out
}

// Counts 回傳非零格計數，順序與 Cells 相同。
func (t *Table) Counts() []int {
	out := make([]int, len(t.Cells))
	for i, c := range t.Cells {
		out[i] = c.Count
	}
	return out
}
