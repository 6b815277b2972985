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

// Package sampler 提供估計器使用的抽樣元件：
//   - alias.go：Walker alias method，O(1) 加權抽樣。
//   - lut.go：依計數展開索引（Boyett 隨機列聯表使用）。
//   - hypergeom.go：超幾何分佈的精確抽樣。
//
// 權重與計數以泛型約束接受任意數值切片，呼叫端不需先轉型。
package sampler

// Integers 計數可用的整數型別
type Integers interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Numbers 權重可用的數值型別：任意整數或浮點數
type Numbers interface {
	Integers | ~float32 | ~float64
}
