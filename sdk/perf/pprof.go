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

// Package perf 以 runtime/pprof 包裝一次執行，輸出到 build/profiling（可作 PGO 的 profile）。
package perf

import (
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"strings"

	"github.com/zintix-labs/fastmi/errs"
)

// DefaultDir pprof 檔案寫入路徑
const DefaultDir = "build/profiling"

// Modes 可用的 profile 種類（"" 表示不 profile）
var Modes = []string{"", "cpu", "heap", "allocs"}

// Run 依 mode 執行 exe 並寫出對應 profile；mode 為空字串時只執行 exe。
//
//	go run ./cmd/run -p cpu -true a.txt -pred b.txt
func Run(mode, dir string, exe func() error) error {
	mode = strings.ToLower(strings.TrimSpace(mode))
	if mode == "" {
		return exe()
	}
	if dir == "" {
		dir = DefaultDir
	}
	switch mode {
	case "cpu", "heap", "allocs":
	default:
		return errs.Kindf(errs.KindInvalidParam, "perf: unknown pprof mode %q", mode)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errs.Wrap(err, "perf: create dir")
	}
	f, err := os.Create(filepath.Join(dir, mode+".pprof"))
	if err != nil {
		return errs.Wrap(err, "perf: create profile")
	}
	defer f.Close()

	if mode == "cpu" {
		if err := pprof.StartCPUProfile(f); err != nil {
			return errs.Wrap(err, "perf: start cpu profile")
		}
		defer pprof.StopCPUProfile()
		return exe()
	}

	// heap / allocs 在執行後拍快照
	runErr := exe()
	if mode == "heap" {
		// 讓 in-use 快照貼近最新狀態
		runtime.GC()
	}
	if err := pprof.Lookup(mode).WriteTo(f, 0); err != nil {
		return errs.Wrap(err, "perf: write "+mode+" profile")
	}
	return runErr
}
