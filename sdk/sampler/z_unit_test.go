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
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/zintix-labs/fastmi/errs"
	"github.com/zintix-labs/fastmi/sdk/core"
)

// -----------------------------------------------------------------------------
// Helper Functions
// -----------------------------------------------------------------------------

// assertPanic 驗證函數是否如預期觸發 panic
func assertPanic(t *testing.T, f func(), msg string) {
	t.Helper()
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected panic for %s, but got none", msg)
		}
	}()
	f()
}

// checkFreq 驗證抽樣頻率是否符合預期機率
func checkFreq[K comparable](t *testing.T, name string, keys []K, want []float64, samples []K, tolerance float64) {
	t.Helper()
	counts := make(map[K]int)
	for _, k := range samples {
		counts[k]++
	}
	for k := range counts {
		if !slices.Contains(keys, k) {
			t.Fatalf("[%s] unexpected key %v", name, k)
		}
	}
	for i, k := range keys {
		got := float64(counts[k]) / float64(len(samples))
		if diff := math.Abs(got - want[i]); diff > tolerance {
			t.Errorf("[%s] key %v: expected prob %.4f, got %.4f (diff %.4f > tol %.4f)",
				name, k, want[i], got, diff, tolerance)
		}
	}
}

// tableMass 由 prob/alias 表反推每個索引的機率質量
func tableMass(at *AliasTable) []float64 {
	n := at.Size()
	prob := at.Prob()
	alias := at.Aliases()
	mass := make([]float64, n)
	for j := 0; j < n; j++ {
		mass[j] += prob[j] / float64(n)
		mass[alias[j]] += (1 - prob[j]) / float64(n)
	}
	return mass
}

// -----------------------------------------------------------------------------
// Tests for AliasTable
// -----------------------------------------------------------------------------

// TestAliasTable_DefaultKeys 權重 [1,2,3] 抽 100,000 次（頻率標準差 < 0.0016），頻率應接近 [1/6, 2/6, 3/6]
func TestAliasTable_DefaultKeys(t *testing.T) {
	c := core.NewSeeded(12345)
	at, err := BuildAliasTable([]int{1, 2, 3})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	samples := make([]int, 100_000)
	for i := range samples {
		samples[i] = at.Pick(c)
	}
	checkFreq(t, "default keys", []int{0, 1, 2}, []float64{1.0 / 6, 2.0 / 6, 3.0 / 6}, samples, 0.01)
}

// TestKeyed_CustomKeys 提供 keys 時回傳鍵值而非索引，分佈不變
func TestKeyed_CustomKeys(t *testing.T) {
	c := core.NewSeeded(12345)
	k, err := BuildKeyed([]float64{1, 2, 3}, []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	samples := k.PickN(c, 100_000)
	checkFreq(t, "custom keys", []string{"a", "b", "c"}, []float64{1.0 / 6, 2.0 / 6, 3.0 / 6}, samples, 0.01)
}

// TestAliasTable_LargeSample 大量抽樣下的緊誤差檢查
func TestAliasTable_LargeSample(t *testing.T) {
	c := core.NewSeeded(99)
	weights := []uint16{5, 0, 1, 30, 4}
	at, err := BuildAliasTable(weights)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	samples := at.PickN(c, 200_000)
	checkFreq(t, "large", []int{0, 1, 2, 3, 4}, []float64{5.0 / 40, 0, 1.0 / 40, 30.0 / 40, 4.0 / 40}, samples, 0.005)
}

// TestAliasTable_ExactMass 表本身必須精確重現權重分佈（與亂數無關）
func TestAliasTable_ExactMass(t *testing.T) {
	cases := [][]float64{
		{1, 2, 3},
		{1, 1, 1, 1},
		{0, 0, 7},
		{0.1, 10, 0.5, 3, 3, 0},
		{1e-9, 1, 1e9},
	}
	for _, w := range cases {
		at, err := BuildAliasTable(w)
		if err != nil {
			t.Fatalf("build %v: %v", w, err)
		}
		sum := 0.0
		for _, v := range w {
			sum += v
		}
		mass := tableMass(at)
		for i := range w {
			if math.Abs(mass[i]-w[i]/sum) > 1e-9 {
				t.Errorf("weights %v index %d: mass %.12f want %.12f", w, i, mass[i], w[i]/sum)
			}
		}
		for _, p := range at.Prob() {
			if p < 0 || p > 1+1e-12 {
				t.Errorf("weights %v: prob out of range %v", w, p)
			}
		}
	}
}

// TestAliasTable_ZeroWeightNeverPicked 權重 0 的項目永遠不會被抽到
func TestAliasTable_ZeroWeightNeverPicked(t *testing.T) {
	c := core.NewSeeded(1)
	at, err := BuildAliasTable([]int{0, 3, 0, 2})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	for i := 0; i < 50_000; i++ {
		if v := at.Pick(c); v == 0 || v == 2 {
			t.Fatalf("zero-weight index %d picked", v)
		}
	}
}

// TestAliasTable_InvalidWeights 空權重、全零、負權重、NaN、鍵數不符皆回傳 InvalidWeights
func TestAliasTable_InvalidWeights(t *testing.T) {
	bad := [][]float64{
		{},
		{0, 0, 0},
		{1, -1},
		{math.NaN(), 1},
		{math.Inf(1), 1},
	}
	for _, w := range bad {
		if _, err := BuildAliasTable(w); !errors.Is(err, errs.ErrInvalidWeights) {
			t.Errorf("weights %v: expected ErrInvalidWeights, got %v", w, err)
		}
	}
	if _, err := BuildKeyed([]int{1, 2}, []string{"a"}); !errors.Is(err, errs.ErrInvalidWeights) {
		t.Errorf("keys mismatch: expected ErrInvalidWeights, got %v", err)
	}
}

// TestAliasTable_Deterministic 同一 seed 的抽樣序列一致
func TestAliasTable_Deterministic(t *testing.T) {
	at, _ := BuildAliasTable([]int{3, 1, 4, 1, 5})
	a := at.PickN(core.NewSeeded(8), 100)
	b := at.PickN(core.NewSeeded(8), 100)
	if !slices.Equal(a, b) {
		t.Fatalf("same seed produced different samples")
	}
}

// -----------------------------------------------------------------------------
// Tests for LUT
// -----------------------------------------------------------------------------

func TestExpand(t *testing.T) {
	lut, err := Expand([]int{3, 5, 0})
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if !slices.Equal([]int(lut), []int{0, 0, 0, 1, 1, 1, 1, 1}) {
		t.Fatalf("unexpected lut: %v", lut)
	}

	lut.Shuffle(core.NewSeeded(4))
	got := slices.Clone([]int(lut))
	slices.Sort(got)
	if !slices.Equal(got, []int{0, 0, 0, 1, 1, 1, 1, 1}) {
		t.Fatalf("shuffle changed contents: %v", lut)
	}
}

func TestExpand_Invalid(t *testing.T) {
	for _, c := range [][]int{{}, {0, 0}, {10, -1}, {int(MaxLUTCap) + 1}} {
		if _, err := Expand(c); !errors.Is(err, errs.ErrInvalidWeights) {
			t.Errorf("counts %v: expected ErrInvalidWeights, got %v", c, err)
		}
	}
}

// -----------------------------------------------------------------------------
// Tests for Hypergeometric
// -----------------------------------------------------------------------------

// TestHypergeometric_Moments 大量抽樣的平均數與變異數應符合理論值
func TestHypergeometric_Moments(t *testing.T) {
	cases := []struct{ good, bad, sample int }{
		{5, 10, 7},
		{1, 99, 50},
		{300, 700, 250},
		{40_000, 60_000, 30_000},
	}
	c := core.NewSeeded(2024)
	const draws = 40_000
	for _, tc := range cases {
		total := float64(tc.good + tc.bad)
		p := float64(tc.good) / total
		mean := float64(tc.sample) * p
		variance := float64(tc.sample) * p * (1 - p) * (total - float64(tc.sample)) / (total - 1)

		sum, sumSq := 0.0, 0.0
		for i := 0; i < draws; i++ {
			x := Hypergeometric(c, tc.good, tc.bad, tc.sample)
			if x < max(0, tc.sample-tc.bad) || x > min(tc.sample, tc.good) {
				t.Fatalf("%+v: draw %d outside support", tc, x)
			}
			fx := float64(x)
			sum += fx
			sumSq += fx * fx
		}
		gotMean := sum / draws
		gotVar := (sumSq - sum*sum/draws) / (draws - 1)
		if se := math.Sqrt(variance / draws); math.Abs(gotMean-mean) > 5*se+1e-12 {
			t.Errorf("%+v: mean %.4f want %.4f (se %.4f)", tc, gotMean, mean, se)
		}
		if math.Abs(gotVar-variance) > 0.05*variance+1e-12 {
			t.Errorf("%+v: variance %.4f want %.4f", tc, gotVar, variance)
		}
	}
}

// TestHypergeometric_PMF 小母體逐點比對機率質量
func TestHypergeometric_PMF(t *testing.T) {
	good, bad, sample := 4, 6, 5
	c := core.NewSeeded(77)
	const draws = 100_000
	counts := make([]int, sample+1)
	for i := 0; i < draws; i++ {
		counts[Hypergeometric(c, good, bad, sample)]++
	}
	for k := 0; k <= min(good, sample); k++ {
		want := math.Exp(logChoose(good, k) + logChoose(bad, sample-k) - logChoose(good+bad, sample))
		got := float64(counts[k]) / draws
		if math.Abs(got-want) > 0.006 {
			t.Errorf("k=%d: freq %.4f want %.4f", k, got, want)
		}
	}
}

// TestHypergeometric_Degenerate 支撐集只有一點時直接回傳，不消耗亂數
func TestHypergeometric_Degenerate(t *testing.T) {
	c := core.NewSeeded(5)
	ref := core.NewSeeded(5)
	if got := Hypergeometric(c, 0, 10, 4); got != 0 {
		t.Fatalf("good=0: got %d", got)
	}
	if got := Hypergeometric(c, 5, 0, 3); got != 3 {
		t.Fatalf("bad=0: got %d", got)
	}
	if got := Hypergeometric(c, 5, 5, 0); got != 0 {
		t.Fatalf("sample=0: got %d", got)
	}
	if got := Hypergeometric(c, 3, 2, 5); got != 3 {
		t.Fatalf("sample=total: got %d", got)
	}
	if c.Uint64() != ref.Uint64() {
		t.Fatalf("degenerate draws must not advance the stream")
	}
}

func TestHypergeometric_Panics(t *testing.T) {
	c := core.NewSeeded(1)
	assertPanic(t, func() { Hypergeometric(c, -1, 3, 1) }, "negative good")
	assertPanic(t, func() { Hypergeometric(c, 1, 3, 5) }, "sample > total")
}
