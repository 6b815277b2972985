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

// Package core 提供估計器共用的亂數串流 (RandomStream)。
//
// 一次估計呼叫只持有一條 Core：列邊際、行邊際、超幾何與隨機列聯表的抽樣
// 全部從同一條持續推進的串流取值，保證同一個 seed 可以完整重現結果。
// 需要平行抽樣時，以 Fork 從主串流依序派生子串流，而不是重新以相同 seed 建立。
package core

import (
	"crypto/rand"
	"math"
	"math/big"
	r2 "math/rand/v2"
)

// Source 串流的底層來源，需可快照與還原。
//
// 合約：同一實作下，相同的快照必須還原出相同的後續輸出。
type Source interface {
	Uint64() uint64
	Snapshot() ([]byte, error)
	Restore([]byte) error
}

// Core 一條可重現的亂數串流。非併發安全：每個 goroutine 使用自己的 Core（見 Fork）。
type Core struct {
	src Source
	r   *r2.Rand // 無額外狀態，快照 src 即完整
}

// New 以外部實作的 Source 建立 Core
func New(src Source) *Core {
	return &Core{src: src, r: r2.New(src)}
}

// NewSeeded 以預設 PCG 來源與指定 seed 建立 Core。
func NewSeeded(seed int64) *Core {
	return New(newPCGSource(seed))
}

// RandomSeed 由 crypto/rand 產生一個非負 seed，用於呼叫端未指定 seed 時。
func RandomSeed() (int64, error) {
	seed, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		return 0, err
	}
	return seed.Int64(), nil
}

func (c *Core) Uint64() uint64 { return c.src.Uint64() }

// Float64 回傳 [0,1) 的浮點亂數（53-bit 精度）
func (c *Core) Float64() float64 { return c.r.Float64() }

// IntN 回傳 [0,n) 的無偏整數，n <= 0 時回傳 -1。
func (c *Core) IntN(n int) int {
	if n <= 0 {
		return -1
	}
	return c.r.IntN(n)
}

// UintN 回傳 [0,n) 的無偏整數，n == 0 時回傳 0。
func (c *Core) UintN(n uint) uint {
	if n == 0 {
		return 0
	}
	return c.r.UintN(n)
}

// Snapshot 串流目前狀態的序列化
func (c *Core) Snapshot() ([]byte, error) { return c.src.Snapshot() }

// Restore 還原 Snapshot 的狀態，之後的輸出與快照當下完全相同。
func (c *Core) Restore(data []byte) error { return c.src.Restore(data) }

// Fork 從目前串流取一個值作為子串流的 seed，建立新的 Core。
//
// 子串流的建立會推進父串流，因此依固定順序呼叫 Fork 得到的子串流序列
// 只由父串流的狀態決定（可重現）。
func (c *Core) Fork() *Core {
	return NewSeeded(int64(c.Uint64() & mask63))
}

// ShuffleInts Fisher-Yates 就地重排
func (c *Core) ShuffleInts(src []int) {
	for i := len(src) - 1; i > 0; i-- {
		j := c.IntN(i + 1)
		src[i], src[j] = src[j], src[i]
	}
}
