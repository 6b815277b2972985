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

package demo

import (
	"context"
	"testing"

	"github.com/zintix-labs/fastmi"
)

func TestPairs(t *testing.T) {
	a, b, err := Pairs()
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != 150 || len(b) != 150 {
		t.Fatalf("want 150 rows, got %d/%d", len(a), len(b))
	}
	res, err := fastmi.EstimateAMI(context.Background(), a, b, &fastmi.AMIOptions{Options: fastmi.Options{Seed: fastmi.Seed(1)}})
	if err != nil {
		t.Fatal(err)
	}
	// 分群大致對上三類，AMI 應明顯大於 0 且小於 1
	if res.Value < 0.6 || res.Value > 0.85 {
		t.Fatalf("unexpected ami %v", res.Value)
	}
}
