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

// Package httperr 把 errs 的錯誤分級對應到 HTTP 狀態碼。
package httperr

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/zintix-labs/fastmi/errs"
)

// StatusCode 先看 context，再看錯誤分級：Warn 為呼叫端錯誤 (400)，其餘為 500。
func StatusCode(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	}
	if e, ok := errs.AsErr(err); ok {
		switch {
		case e.Kind == errs.KindDidNotConverge:
			return http.StatusUnprocessableEntity
		case e.ErrLv == errs.Warn:
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

// Body 錯誤回應的 JSON 內容
type Body struct {
	Status int    `json:"status"`
	Kind   string `json:"kind,omitempty"`
	Error  string `json:"error"`
}

// Errs 寫回 JSON 錯誤並回傳使用的狀態碼
func Errs(w http.ResponseWriter, err error) int {
	if err == nil {
		return http.StatusOK
	}
	status := StatusCode(err)
	b := Body{Status: status, Error: err.Error()}
	if e, ok := errs.AsErr(err); ok {
		b.Kind = e.Kind.String()
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(b)
	return status
}

// Log 只記錄需要關注的錯誤：逾時類為 Warn，5xx 為 Error。
func Log(log *slog.Logger, msg string, err error) {
	if err == nil {
		return
	}
	switch status := StatusCode(err); {
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		log.Warn(msg, slog.Int("status", status), slog.Any("err", err))
	case status >= 500:
		log.Error(msg, slog.Int("status", status), slog.Any("err", err))
	}
}
