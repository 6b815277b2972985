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

package main

import (
	"bufio"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
)

// runTest 快速測試，只印出各套件 ok / FAIL 與建置錯誤
func runTest() error {
	PrintGreen("running tests (short)")
	cleanCache()
	return goStream([]string{"test", "./...", "-short", "-cover", "-count=1"}, func(line string) {
		switch {
		case strings.HasPrefix(line, "ok"):
			PrintGreen(line)
		case strings.HasPrefix(line, "FAIL"), strings.Contains(line, "build failed"), strings.Contains(line, "setup failed"):
			PrintRed(line)
		}
	})
}

// runTestAll 完整測試（包含耗時的校準測試）
func runTestAll() error {
	PrintGreen("running tests (all with coverage)")
	cleanCache()
	return goRun("test", "./...", "-cover", "-count=1")
}

// runTestDetail verbose 測試，略過沒有測試檔的套件
func runTestDetail() error {
	PrintGreen("running tests (detail)")
	cleanCache()
	return goStream([]string{"test", "./...", "-v", "-count=1"}, func(line string) {
		switch {
		case strings.Contains(line, "[no test files]"):
		case strings.HasPrefix(line, "ok"):
			PrintGreen(line)
		case strings.HasPrefix(line, "FAIL"), strings.HasPrefix(line, "--- FAIL"):
			PrintRed(line)
		default:
			PrintDefault(line)
		}
	})
}

// runCalib 固定 seed，方便比較改動前後的覆蓋率
func runCalib() error {
	PrintGreen("calibrating AMI on demo labels")
	return goRun("run", "./cmd/calib", "-demo", "-metric", "ami", "-runs", "100", "-workers", "4", "-seed", "1")
}

func cleanCache() {
	if err := exec.Command("go", "clean", "-testcache").Run(); err != nil {
		PrintYellow("go clean -testcache: " + err.Error())
	}
}

func goRun(args ...string) error {
	cmd := exec.Command("go", args...)
	cmd.Stdout, cmd.Stderr = os.Stdout, os.Stderr
	if err := cmd.Run(); err != nil {
		return errors.New("go " + args[0] + " finished with errors")
	}
	return nil
}

// goStream 合併 stdout/stderr 後逐行交給 fn
func goStream(args []string, fn func(line string)) error {
	pr, pw := io.Pipe()
	cmd := exec.Command("go", args...)
	cmd.Stdout, cmd.Stderr = pw, pw
	if err := cmd.Start(); err != nil {
		return err
	}
	done := make(chan error, 1)
	go func() {
		err := cmd.Wait()
		_ = pw.Close()
		done <- err
	}()
	sc := bufio.NewScanner(pr)
	for sc.Scan() {
		fn(sc.Text())
	}
	if err := <-done; err != nil {
		return errors.New("go " + args[0] + " finished with errors")
	}
	return nil
}
