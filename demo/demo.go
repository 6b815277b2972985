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

// Package demo 內嵌一組示範標籤：150 筆樣本的三類真實標籤，與一次三群分群的結果。
package demo

import (
	"bytes"
	_ "embed"

	"github.com/zintix-labs/fastmi/corefmt"
)

//go:embed pairs.csv
var pairsCSV []byte

// Pairs 回傳 (真實標籤, 分群標籤)
func Pairs() (labelsTrue, labelsPred []string, err error) {
	return corefmt.ReadPairs(bytes.NewReader(pairsCSV), ',')
}
