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

package corefmt

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/zintix-labs/fastmi/errs"
)

// maxLineBytes 單行標籤長度上限
const maxLineBytes = 1 << 20

// ReadLabels 每行一個標籤；前後空白會去除，空行略過。
func ReadLabels(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	var out []string
	for sc.Scan() {
		if s := strings.TrimSpace(sc.Text()); s != "" {
			out = append(out, s)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errs.Wrap(err, "read labels")
	}
	return out, nil
}

// ReadPairs 讀取兩欄的 CSV（comma 為分隔字元，例如 ',' 或 '\t'），第一欄為真實標籤、第二欄為預測標籤。
func ReadPairs(r io.Reader, comma rune) (labelsTrue, labelsPred []string, err error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = 2
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			return labelsTrue, labelsPred, nil
		}
		if err != nil {
			return nil, nil, errs.WrapKind(err, errs.KindInvalidParam, "read label pairs")
		}
		labelsTrue = append(labelsTrue, strings.TrimSpace(rec[0]))
		labelsPred = append(labelsPred, strings.TrimSpace(rec[1]))
	}
}

// ReadLabelFile 讀取每行一個標籤的檔案
func ReadLabelFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.WrapWithExtra(err, "open label file failed", path)
	}
	defer f.Close()
	return ReadLabels(f)
}

// ReadPairFile 依副檔名選擇分隔字元：.tsv 為 tab，其餘為逗號。
func ReadPairFile(path string) ([]string, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errs.WrapWithExtra(err, "open label file failed", path)
	}
	defer f.Close()
	comma := ','
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		comma = '\t'
	}
	return ReadPairs(f, comma)
}
