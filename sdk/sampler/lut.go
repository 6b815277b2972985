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

// MaxLUTCap 是展開表的長度上限，約 80MB (int slice)。
const MaxLUTCap uint64 = 10_000_000

// LUT (Look-Up Table) 是依計數展開後的索引表。
//
// 舉例：計數 [3,5,0] 展開為 [0,0,0,1,1,1,1,1]。
//
// 對一組邊際 (margins) 展開後再整體洗牌，相當於把 N 個物件依邊際分配到類別後
// 做一次隨機排列，這正是 Boyett 隨機列聯表演算法的第一步。
//
// 空間複雜度 O(sum(counts))，總和超過 MaxLUTCap 時拒絕建表。
type LUT []int

// Expand 根據計數列表建立展開表。
//
// 負數計數、總和為 0 或總和超過 MaxLUTCap 會回傳 InvalidWeights。
func Expand[T Integers](counts []T) (LUT, error) {
	if len(counts) == 0 {
		return nil, errs.NewKind(errs.KindInvalidWeights, "lut: empty counts")
	}

	acc := uint64(0)
	for i, v := range counts {
		if v < 0 {
			return nil, errs.Kindf(errs.KindInvalidWeights, "lut: negative count at %d", i)
		}
		uv := uint64(v)
		if acc > math.MaxUint64-uv {
			return nil, errs.NewKind(errs.KindInvalidWeights, "lut: total count overflow uint64 range")
		}
		acc += uv
	}

	if acc == 0 {
		return nil, errs.NewKind(errs.KindInvalidWeights, "lut: all counts are zero")
	}
	if acc > MaxLUTCap {
		return nil, errs.Kindf(errs.KindInvalidWeights, "lut: total count %d exceeds limit %d", acc, MaxLUTCap)
	}

	lut := make(LUT, 0, int(acc))
	for i, v := range counts {
		for j := T(0); j < v; j++ {
			lut = append(lut, i)
		}
	}
	return lut, nil
}

// Shuffle 就地洗牌（Fisher-Yates）。
func (l LUT) Shuffle(c *core.Core) {
	c.ShuffleInts(l)
}
