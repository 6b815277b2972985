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

package errs

import (
	"errors"
	"fmt"
)

// ErrLevel : Error 分級，使最上層理解問題嚴重程度
type ErrLevel uint8

const (
	None ErrLevel = iota
	Fatal
	Warn
	Log
)

var errLvMap = map[ErrLevel]string{
	None:  "",
	Fatal: "fatal",
	Warn:  "warn",
	Log:   "log",
}

func ErrLv(errlv ErrLevel) string {
	if str, ok := errLvMap[errlv]; ok {
		return str
	}
	return ""
}

// Kind : 錯誤類別，讓呼叫端可以用 errors.Is 對應到具體情境
type Kind uint8

const (
	KindUnknown Kind = iota
	KindLengthMismatch
	KindEmptyInput
	KindInvalidWeights
	KindInvalidParam
	KindDidNotConverge
	KindCanceled
)

var kindMap = map[Kind]string{
	KindUnknown:        "",
	KindLengthMismatch: "length_mismatch",
	KindEmptyInput:     "empty_input",
	KindInvalidWeights: "invalid_weights",
	KindInvalidParam:   "invalid_param",
	KindDidNotConverge: "did_not_converge",
	KindCanceled:       "canceled",
}

func (k Kind) String() string {
	if str, ok := kindMap[k]; ok {
		return str
	}
	return ""
}

// 哨兵錯誤：只用於 errors.Is 比對 Kind，不帶訊息。
var (
	ErrLengthMismatch = &E{Kind: KindLengthMismatch, ErrLv: Warn, Message: "length mismatch"}
	ErrEmptyInput     = &E{Kind: KindEmptyInput, ErrLv: Warn, Message: "empty input"}
	ErrInvalidWeights = &E{Kind: KindInvalidWeights, ErrLv: Warn, Message: "invalid weights"}
	ErrInvalidParam   = &E{Kind: KindInvalidParam, ErrLv: Warn, Message: "invalid param"}
	ErrDidNotConverge = &E{Kind: KindDidNotConverge, ErrLv: Warn, Message: "did not converge"}
	ErrCanceled       = &E{Kind: KindCanceled, ErrLv: Warn, Message: "canceled"}
)

// E 是統一的錯誤型別。
// Message 為主訊息；Extra 為呼叫端可追加的額外上下文；
// Cause 可串接下層錯誤（wrap）；ErrLv 表示嚴重程度；Kind 表示錯誤類別。
type E struct {
	Message string
	Extra   string
	Cause   error
	ErrLv   ErrLevel
	Kind    Kind
}

// Error 實作 error 介面並回傳格式化後的錯誤訊息。
func (e *E) Error() string {
	base := fmt.Sprintf("errlv=%s %s", ErrLv(e.ErrLv), e.Message)
	if e.Kind != KindUnknown {
		base = fmt.Sprintf("errlv=%s kind=%s %s", ErrLv(e.ErrLv), e.Kind, e.Message)
	}
	if e.Extra != "" {
		base += " | extra: " + e.Extra
	}
	if e.Cause != nil {
		base += fmt.Sprintf(" (cause: %v)", e.Cause)
	}
	return base
}

// Unwrap 讓 errors.Is / errors.As 能夠向下展開。
func (e *E) Unwrap() error { return e.Cause }

// Is 以 Kind 比對，KindUnknown 不與任何錯誤相等。
func (e *E) Is(target error) bool {
	t, ok := target.(*E)
	if !ok {
		return false
	}
	return e.Kind != KindUnknown && e.Kind == t.Kind
}

// New 依錯誤分級與訊息建立錯誤
func New(errLv ErrLevel, msg string) *E {
	return &E{Message: msg, ErrLv: errLv}
}

func NewFatal(msg string) *E {
	return New(Fatal, msg)
}

// NewKind 建立帶有錯誤類別的 Warn 錯誤（輸入錯誤與收斂失敗都屬於呼叫端可處理的情境）。
func NewKind(kind Kind, msg string) *E {
	return &E{Message: msg, ErrLv: Warn, Kind: kind}
}

func Fatalf(format string, a ...any) *E {
	return NewFatal(fmt.Sprintf(format, a...))
}

func Kindf(kind Kind, format string, a ...any) *E {
	return NewKind(kind, fmt.Sprintf(format, a...))
}

// Wrap 使用給定的訊息包裝底層錯誤，建立一個 *E。
//
// ErrLevel / Kind 規則：
//   - 若 cause 已經是 *E，則沿用其 ErrLv 與 Kind。
//   - 若 cause 是 context 取消或逾時，視為 Warn + KindCanceled。
//   - 其他（多半是標準庫或三方依賴錯誤）一律視為 Fatal。
func Wrap(cause error, msg string) *E {
	var e *E
	errLv := Fatal
	kind := KindUnknown
	switch {
	case errors.As(cause, &e):
		errLv = e.ErrLv
		kind = e.Kind
	case isContextErr(cause):
		errLv = Warn
		kind = KindCanceled
	}
	r := New(errLv, msg)
	r.Kind = kind
	r.Cause = cause
	return r
}

// WrapKind 以指定 Kind 包裝外部錯誤（例如解碼失敗屬於輸入錯誤），層級為 Warn。
func WrapKind(cause error, kind Kind, msg string) *E {
	return &E{Message: msg, Cause: cause, ErrLv: Warn, Kind: kind}
}

// WrapWithExtra 與 Wrap 相同，但附加上下文字串（例如檔案路徑）。
func WrapWithExtra(cause error, msg string, extra string) *E {
	r := Wrap(cause, msg)
	r.Extra = extra
	return r
}

func AsErr(err error) (*E, bool) {
	var e *E
	if errors.As(err, &e) {
		return e, true
	}
	return e, false
}
