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

package fastmi

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/zintix-labs/fastmi/errs"
	"github.com/zintix-labs/fastmi/sdk/core"
	"github.com/zintix-labs/fastmi/sdk/rtable"
)

const (
	DefaultAccuracyGoal  = 0.01
	DefaultAMIMinSamples = 10_000

	DefaultPrecisionGoal = 0.1
	DefaultSMIMinSamples = 1_000

	DefaultMaxSamples    = 50_000_000
	DefaultMaxIterations = 10_000
	DefaultWorkers       = 1

	// MaxWorkers 單次估計可使用的 goroutine 上限
	MaxWorkers = 256
)

// Options 兩種估計共用的參數。
//
// 零值欄位使用預設值；負值視為錯誤。
type Options struct {
	// Seed 指定亂數種子；nil 且 Stream 也為 nil 時由 crypto/rand 產生，並回報在 Result.Seed。
	Seed *int64
	// Stream 沿用呼叫端的亂數串流（優先於 Seed）。呼叫結束後串流已被推進。
	Stream *core.Core
	// MinSamples 最小批次大小，單批上限為其 100 倍。
	MinSamples int
	// MaxSamples 總樣本上限，用盡仍未收斂回傳 DidNotConverge。
	MaxSamples int
	// MaxIterations 迭代次數上限。
	MaxIterations int
	// Workers 每批切成幾段平行抽樣。固定 (seed, Workers) 時結果可重現。
	Workers int
	// Log 每次迭代輸出一筆 Debug；nil 不輸出。
	Log *slog.Logger
}

// Seed 回傳指向 v 的指標，方便填入 Options.Seed。
func Seed(v int64) *int64 { return &v }

func (o *Options) valid(minDefault int) error {
	switch {
	case o.MinSamples < 0:
		return errs.Kindf(errs.KindInvalidParam, "min samples must > 0, got %d", o.MinSamples)
	case o.MaxSamples < 0:
		return errs.Kindf(errs.KindInvalidParam, "max samples must > 0, got %d", o.MaxSamples)
	case o.MaxIterations < 0:
		return errs.Kindf(errs.KindInvalidParam, "max iterations must > 0, got %d", o.MaxIterations)
	case o.Workers < 0 || o.Workers > MaxWorkers:
		return errs.Kindf(errs.KindInvalidParam, "workers must in [1,%d], got %d", MaxWorkers, o.Workers)
	}
	if o.MinSamples == 0 {
		o.MinSamples = minDefault
	}
	if o.MaxSamples == 0 {
		o.MaxSamples = DefaultMaxSamples
	}
	if o.MaxIterations == 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if o.Workers == 0 {
		o.Workers = DefaultWorkers
	}
	if o.MinSamples > math.MaxInt/100 {
		return errs.Kindf(errs.KindInvalidParam, "min samples too large: %d", o.MinSamples)
	}
	if o.Log == nil {
		o.Log = slog.New(slog.DiscardHandler)
	}
	return nil
}

// AMIOptions EstimateAMI 的參數
type AMIOptions struct {
	Options
	// AccuracyGoal 目標絕對誤差，預設 0.01。
	AccuracyGoal float64
}

// Valid 檢查並補上預設值。
func (o *AMIOptions) Valid() error {
	if err := checkGoal("accuracy goal", &o.AccuracyGoal, DefaultAccuracyGoal); err != nil {
		return err
	}
	return o.Options.valid(DefaultAMIMinSamples)
}

// StopRule SMI 的停止條件
type StopRule uint8

const (
	// StopBoth 相對誤差與絕對誤差都達標才停止。
	StopBoth StopRule = iota
	// StopEither 任一達標即停止。
	StopEither
)

func (r StopRule) String() string {
	switch r {
	case StopBoth:
		return "both"
	case StopEither:
		return "either"
	default:
		return fmt.Sprintf("stop_rule(%d)", uint8(r))
	}
}

// ParseStopRule 解析 "both"（空字串同義）或 "either"。
func ParseStopRule(s string) (StopRule, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "both":
		return StopBoth, nil
	case "either":
		return StopEither, nil
	}
	return StopBoth, errs.Kindf(errs.KindInvalidParam, "unknown stop rule %q", s)
}

func (r StopRule) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *StopRule) UnmarshalText(b []byte) error {
	v, err := ParseStopRule(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// SMIOptions EstimateSMI 的參數
type SMIOptions struct {
	Options
	// PrecisionGoal 目標誤差（同時用於絕對與相對誤差），預設 0.1。
	PrecisionGoal float64
	// StopRule 預設 StopBoth。
	StopRule StopRule
	// Method 隨機列聯表演算法，預設 Auto。
	Method rtable.Method
}

// Valid 檢查並補上預設值。
func (o *SMIOptions) Valid() error {
	if err := checkGoal("precision goal", &o.PrecisionGoal, DefaultPrecisionGoal); err != nil {
		return err
	}
	if o.StopRule > StopEither {
		return errs.Kindf(errs.KindInvalidParam, "unknown stop rule %d", o.StopRule)
	}
	if o.Method > rtable.Patefield {
		return errs.Kindf(errs.KindInvalidParam, "unknown table method %d", o.Method)
	}
	return o.Options.valid(DefaultSMIMinSamples)
}

func checkGoal(name string, g *float64, def float64) error {
	if *g == 0 {
		*g = def
		return nil
	}
	if !(*g > 0) || math.IsInf(*g, 0) {
		return errs.Kindf(errs.KindInvalidParam, "%s must be a positive finite number, got %v", name, *g)
	}
	return nil
}

// stream 依 Options 取得本次呼叫的亂數串流，回傳實際使用的 seed（沿用 Stream 時為 nil）。
func (o *Options) stream() (*core.Core, *int64, error) {
	if o.Stream != nil {
		return o.Stream, nil, nil
	}
	if o.Seed != nil {
		s := *o.Seed
		return core.NewSeeded(s), &s, nil
	}
	s, err := core.RandomSeed()
	if err != nil {
		return nil, nil, errs.Wrap(err, "draw random seed")
	}
	return core.NewSeeded(s), &s, nil
}
