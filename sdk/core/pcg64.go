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

package core

import "math/rand/v2"

// pcgSource 預設串流來源：math/rand/v2 的 PCG（128-bit 狀態），可序列化。
//
// PCG 由 Melissa O'Neill 設計。
type pcgSource struct {
	*rand.PCG
}

// newPCGSource seed 先以 splitmix64 展開成兩個 64-bit 狀態，避免相近 seed 產生相近序列。
func newPCGSource(seed int64) pcgSource {
	x := uint64(seed) ^ 0x9e3779b97f4a7c15
	return pcgSource{rand.NewPCG(splitmix64(x), splitmix64(x^0xDA942042E4DD58B5))}
}

func (s pcgSource) Snapshot() ([]byte, error) { return s.MarshalBinary() }

func (s pcgSource) Restore(data []byte) error { return s.UnmarshalBinary(data) }

func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
