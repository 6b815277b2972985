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

// Package corefmt 負責對外的文字格式：亂數串流狀態 (rng_state) 的編碼，以及標籤檔的讀取。
//
// 串流快照是二進位資料；對外（JSON / CLI 參數）一律以標準 Base64 傳遞。
package corefmt

import (
	"encoding/base64"
	"strings"

	"github.com/zintix-labs/fastmi/errs"
)

func EncodeBase64(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

func DecodeBase64(s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, errs.Kindf(errs.KindInvalidParam, "decode base64 failed: %v", err)
	}
	return b, nil
}
