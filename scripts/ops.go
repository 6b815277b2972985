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

// ops 開發用的任務入口，取代 Makefile：
//
//	go run ./scripts test       # 快速測試（-short，略過校準）
//	go run ./scripts test-all   # 完整測試含覆蓋率
//	go run ./scripts calib      # 以示範標籤跑一次 AMI 校準
package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		PrintYellow("Usage: go run ./scripts [test|test-all|test-detail|calib]")
		os.Exit(1)
	}
	if err := selectTask(os.Args[1]); err != nil {
		PrintRed(err.Error())
		os.Exit(1)
	}
}

func selectTask(task string) error {
	switch task {
	case "test":
		return runTest()
	case "test-all":
		return runTestAll()
	case "test-detail":
		return runTestDetail()
	case "calib":
		return runCalib()
	}
	return fmt.Errorf("unknown task: %s", task)
}
