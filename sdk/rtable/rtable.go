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

// Package rtable 抽樣固定邊際的隨機列聯表。
//
// 抽出的表服從「把 N 個物件隨機排列後重新分群」的分佈，也就是在虛無假設下
// 兩組分群互相獨立時列聯表的分佈。
//
// 提供兩種演算法：
//   - Boyett：把行標籤展開成長度 N 的表，洗牌後依列邊際依序發牌。O(N)。
//   - Patefield：逐格以條件超幾何分佈抽樣。O(R·C·sqrt(N)) 左右。
//
// Auto 在 N > log(N+1)·R·C 時選 Patefield，否則選 Boyett。
package rtable

import (
	"fmt"
	"math"
	"strings"

	"github.com/zintix-labs/fastmi/errs"
	"github.com/zintix-labs/fastmi/sdk/core"
	"github.com/zintix-labs/fastmi/sdk/sampler"
)

// Method 選擇抽樣演算法。
type Method uint8

const (
	Auto Method = iota
	Boyett
	Patefield
)

func (m Method) String() string {
	switch m {
	case Auto:
		return "auto"
	case Boyett:
		return "boyett"
	case Patefield:
		return "patefield"
	default:
		return fmt.Sprintf("method(%d)", uint8(m))
	}
}

// ParseMethod 解析 "auto" / "boyett" / "patefield"（不分大小寫，空字串視為 auto）。
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return Auto, nil
	case "boyett":
		return Boyett, nil
	case "patefield":
		return Patefield, nil
	}
	return Auto, errs.Kindf(errs.KindInvalidParam, "rtable: unknown method %q", s)
}

// MarshalText 讓 Method 在 JSON/YAML 中以字串表示。
func (m Method) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText 見 ParseMethod。
func (m *Method) UnmarshalText(b []byte) error {
	v, err := ParseMethod(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Sampler 以固定邊際重複抽樣列聯表。
//
// Sampler 持有暫存緩衝區，不可併發使用；多個 goroutine 請各自 Clone。
type Sampler struct {
	rows   []int
	cols   []int
	n      int
	method Method // 已解析，不會是 Auto

	deck   sampler.LUT // Boyett：行索引牌堆
	colRem []int       // Patefield：每行剩餘量
}

// New 建立抽樣器。
//
// 邊際不可為空、每個邊際必須 >= 1，且列總和等於行總和，否則回傳 InvalidParam。
func New(rows, cols []int, method Method) (*Sampler, error) {
	if len(rows) == 0 || len(cols) == 0 {
		return nil, errs.NewKind(errs.KindInvalidParam, "rtable: margins must not be empty")
	}
	nr, err := marginSum(rows, "row")
	if err != nil {
		return nil, err
	}
	nc, err := marginSum(cols, "col")
	if err != nil {
		return nil, err
	}
	if nr != nc {
		return nil, errs.Kindf(errs.KindInvalidParam, "rtable: row sum %d != col sum %d", nr, nc)
	}

	s := &Sampler{
		rows:   append([]int(nil), rows...),
		cols:   append([]int(nil), cols...),
		n:      nr,
		method: resolve(method, nr, len(rows), len(cols)),
	}
	switch s.method {
	case Boyett:
		deck, err := sampler.Expand(s.cols)
		if err != nil {
			return nil, errs.Wrap(err, "rtable: boyett deck")
		}
		s.deck = deck
	case Patefield:
		s.colRem = make([]int, len(cols))
	default:
		return nil, errs.Kindf(errs.KindInvalidParam, "rtable: unknown method %s", method)
	}
	return s, nil
}

func marginSum(m []int, name string) (int, error) {
	sum := 0
	for i, v := range m {
		if v < 1 {
			return 0, errs.Kindf(errs.KindInvalidParam, "rtable: %s margin %d must >= 1, got %d", name, i, v)
		}
		sum += v
	}
	return sum, nil
}

func resolve(m Method, n, r, c int) Method {
	if m != Auto {
		return m
	}
	if uint64(n) > sampler.MaxLUTCap {
		return Patefield
	}
	if float64(n) > math.Log(float64(n)+1)*float64(r)*float64(c) {
		return Patefield
	}
	return Boyett
}

// Method 回傳實際使用的演算法。
func (s *Sampler) Method() Method { return s.method }

// Rows 回傳列邊際（副本）。
func (s *Sampler) Rows() []int { return append([]int(nil), s.rows...) }

// Cols 回傳行邊際（副本）。
func (s *Sampler) Cols() []int { return append([]int(nil), s.cols...) }

// N 回傳總數。
func (s *Sampler) N() int { return s.n }

// Clone 回傳共用邊際、擁有獨立緩衝區的抽樣器。
func (s *Sampler) Clone() *Sampler {
	cp := &Sampler{rows: s.rows, cols: s.cols, n: s.n, method: s.method}
	if s.deck != nil {
		cp.deck = append(sampler.LUT(nil), s.deck...)
	}
	if s.colRem != nil {
		cp.colRem = make([]int, len(s.colRem))
	}
	return cp
}

// Sample 抽一張表寫入 dst 並回傳。
//
// dst 形狀不是 R x C 時會重新配置；重複使用同一個 dst 可避免配置。
func (s *Sampler) Sample(c *core.Core, dst [][]int) [][]int {
	dst = shape(dst, len(s.rows), len(s.cols))
	switch s.method {
	case Boyett:
		s.boyett(c, dst)
	default:
		s.patefield(c, dst)
	}
	return dst
}

func shape(dst [][]int, r, c int) [][]int {
	if len(dst) != r {
		dst = make([][]int, r)
	}
	for i := range dst {
		if len(dst[i]) != c {
			dst[i] = make([]int, c)
			continue
		}
		clear(dst[i])
	}
	return dst
}

// boyett 洗牌後依列邊際依序發牌。牌堆每次在前一次的排列上再洗一次，仍為均勻排列。
func (s *Sampler) boyett(c *core.Core, dst [][]int) {
	s.deck.Shuffle(c)
	pos := 0
	for i, r := range s.rows {
		row := dst[i]
		for _, col := range s.deck[pos : pos+r] {
			row[col]++
		}
		pos += r
	}
}

// patefield 逐列逐格抽條件超幾何：
// 第 j 格 ~ Hyp(good=剩餘行量 colRem[j], bad=右側各行剩餘量, sample=本列剩餘量)。
// 每列最後一格與最後一列取餘數。
func (s *Sampler) patefield(c *core.Core, dst [][]int) {
	copy(s.colRem, s.cols)
	last := len(s.rows) - 1
	lastCol := len(s.cols) - 1
	remain := s.n
	for i := 0; i < last; i++ {
		rr := s.rows[i]
		avail := remain
		row := dst[i]
		for j := 0; j < lastCol && rr > 0; j++ {
			good := s.colRem[j]
			avail -= good
			x := sampler.Hypergeometric(c, good, avail, rr)
			row[j] = x
			s.colRem[j] -= x
			rr -= x
		}
		row[lastCol] += rr
		s.colRem[lastCol] -= rr
		remain -= s.rows[i]
	}
	copy(dst[last], s.colRem)
}
