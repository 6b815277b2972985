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

package mc

import "math"

// Running 以 Welford 演算法串流累加平均數與變異數，記憶體 O(1)。
//
// 零值可直接使用。
type Running struct {
	n    int
	mean float64
	m2   float64
}

// Add 加入一個觀測值。
func (r *Running) Add(x float64) {
	r.n++
	d := x - r.mean
	r.mean += d / float64(r.n)
	r.m2 += d * (x - r.mean)
}

// Merge 併入另一個累加器（Chan et al. 平行合併）。
func (r *Running) Merge(o Running) {
	if o.n == 0 {
		return
	}
	if r.n == 0 {
		*r = o
		return
	}
	n := r.n + o.n
	d := o.mean - r.mean
	fa, fb, fn := float64(r.n), float64(o.n), float64(n)
	r.mean += d * fb / fn
	r.m2 += o.m2 + d*d*fa*fb/fn
	r.n = n
}

// Count 觀測值個數。
func (r *Running) Count() int { return r.n }

// Mean 平均數；沒有觀測值時為 0。
func (r *Running) Mean() float64 { return r.mean }

// Var 不偏樣本變異數；n < 2 時為 0。
func (r *Running) Var() float64 {
	if r.n < 2 {
		return 0
	}
	v := r.m2 / float64(r.n-1)
	if v < 0 {
		return 0
	}
	return v
}

// Std 不偏樣本標準差。
func (r *Running) Std() float64 { return math.Sqrt(r.Var()) }

// Reset 清空。
func (r *Running) Reset() { *r = Running{} }
