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
	"math"

	"github.com/zintix-labs/fastmi/errs"
	"github.com/zintix-labs/fastmi/sdk/core"
)

// AliasTable 是 Walker alias method 的 O(1) 加權抽樣結構 (浮點版本)。
//
// 結構欄位說明：
//   - prob: 每個槽位選中「自己」的門檻，平均權重經 rescale 後為 1。
//   - alias: 門檻未命中時改選的索引；未使用的槽位指向自己。
//
// 抽樣：均勻選槽位 j，再抽 u ∈ [0,1)，u < prob[j] 回傳 j，否則回傳 alias[j]。
// 建表後不可變，多個 goroutine 以各自的 Core 同時抽樣是安全的。
type AliasTable struct {
	prob  []float64
	alias []int
	size  int
}

// BuildAliasTable 根據輸入的非負權重建立 AliasTable。
//
// 權重不需事先正規化，可含 0；以下情況回傳 InvalidWeights：
//   - weights 為空
//   - 任一權重為負、NaN 或 Inf
//   - 權重總和 <= 0
//
// 建表流程（單趟線性 O(n)）：
//  1. 以 n/sum 縮放權重，使平均值為 1。
//  2. 依縮放後權重分成 light (<1) 與 heavy (>1)，恰好為 1 的不進任何一組。
//  3. 每次彈出一個 light 索引 j，由目前最後一個 heavy 索引 k 補足：alias[j] = k，
//     weights[k] -= 1 - weights[j]；若 k 剩餘 < 1，k 從 heavy 移到 light。
//  4. 任一組清空即停止；剩餘索引機率設為 1、alias 指向自己。
func BuildAliasTable[W Numbers](weights []W) (*AliasTable, error) {
	n := len(weights)
	if n == 0 {
		return nil, errs.NewKind(errs.KindInvalidWeights, "alias: empty weights")
	}

	scaled := make([]float64, n)
	sum := 0.0
	for i, w := range weights {
		v := float64(w)
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errs.Kindf(errs.KindInvalidWeights, "alias: invalid weight %v at %d", v, i)
		}
		scaled[i] = v
		sum += v
	}
	if !(sum > 0) || math.IsInf(sum, 0) {
		return nil, errs.Kindf(errs.KindInvalidWeights, "alias: weights must sum to a positive finite value, got %v", sum)
	}

	scale := float64(n) / sum
	light := make([]int, 0, n)
	heavy := make([]int, 0, n)
	for i := range scaled {
		scaled[i] *= scale
		switch {
		case scaled[i] < 1:
			light = append(light, i)
		case scaled[i] > 1:
			heavy = append(heavy, i)
		}
	}

	prob := make([]float64, n)
	alias := make([]int, n)
	for i := range alias {
		alias[i] = i
		prob[i] = 1
	}

	for len(light) > 0 && len(heavy) > 0 {
		j := light[len(light)-1]
		light = light[:len(light)-1]
		k := heavy[len(heavy)-1]

		prob[j] = scaled[j]
		alias[j] = k
		scaled[k] -= 1 - scaled[j]
		if scaled[k] < 1 {
			heavy = heavy[:len(heavy)-1]
			light = append(light, k)
		}
	}

	return &AliasTable{prob: prob, alias: alias, size: n}, nil
}

// Size 回傳類別數量。
func (at *AliasTable) Size() int {
	return at.size
}

// Prob 回傳門檻表的複本。
func (at *AliasTable) Prob() []float64 {
	out := make([]float64, at.size)
	copy(out, at.prob)
	return out
}

// Aliases 回傳別名表的複本。
func (at *AliasTable) Aliases() []int {
	out := make([]int, at.size)
	copy(out, at.alias)
	return out
}

// Pick 抽一個索引：先抽槽位 j，再抽門檻 u。
func (at *AliasTable) Pick(c *core.Core) int {
	j := c.IntN(at.size)
	if c.Float64() < at.prob[j] {
		return j
	}
	return at.alias[j]
}

// PickN 連續抽 count 個索引；count <= 0 回傳空切片。
func (at *AliasTable) PickN(c *core.Core, count int) []int {
	if count <= 0 {
		return []int{}
	}
	out := make([]int, count)
	for i := range out {
		out[i] = at.Pick(c)
	}
	return out
}

// Keyed 是帶有鍵值的 AliasTable：抽樣回傳 keys[idx] 而不是索引。
type Keyed[K any] struct {
	table *AliasTable
	keys  []K
}

// BuildKeyed 以權重與對應的鍵建立 Keyed；len(keys) 必須等於 len(weights)。
func BuildKeyed[W Numbers, K any](weights []W, keys []K) (*Keyed[K], error) {
	if len(keys) != len(weights) {
		return nil, errs.Kindf(errs.KindInvalidWeights, "alias: %d keys for %d weights", len(keys), len(weights))
	}
	at, err := BuildAliasTable(weights)
	if err != nil {
		return nil, err
	}
	ks := make([]K, len(keys))
	copy(ks, keys)
	return &Keyed[K]{table: at, keys: ks}, nil
}

// Table 回傳底層的 AliasTable。
func (k *Keyed[K]) Table() *AliasTable {
	return k.table
}

// Pick 抽一個鍵。
func (k *Keyed[K]) Pick(c *core.Core) K {
	return k.keys[k.table.Pick(c)]
}

// PickN 連續抽 count 個鍵。
func (k *Keyed[K]) PickN(c *core.Core, count int) []K {
	if count <= 0 {
		return []K{}
	}
	out := make([]K, count)
	k.PickInto(c, out)
	return out
}

// PickInto 以抽樣結果填滿 dst，避免熱路徑配置。
func (k *Keyed[K]) PickInto(c *core.Core, dst []K) {
	for i := range dst {
		dst[i] = k.keys[k.table.Pick(c)]
	}
}
