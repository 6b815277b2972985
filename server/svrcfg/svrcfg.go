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

package svrcfg

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/zintix-labs/fastmi"
	"github.com/zintix-labs/fastmi/errs"
	"github.com/zintix-labs/fastmi/server/logger"
	"github.com/zintix-labs/fastmi/setting"
)

const (
	DefaultAddr      = ":5808"
	DefaultTimeout   = 30 * time.Second
	DefaultMaxLabels = 1_000_000
	MaxPoolSize      = 64
)

// SvrCfg 服務啟動設定
type SvrCfg struct {
	Addr      string
	Log       *slog.Logger
	Setting   *setting.Setting // 請求未指定的參數取此設定
	PoolSize  int              // 同時進行的估計數，預設 runtime.NumCPU()，上限 64
	Timeout   time.Duration    // 單次請求上限
	MaxLabels int              // 單次請求的標籤數上限

	Pool *fastmi.Pool // Valid() 時建立
}

// Valid 檢查並補上預設值
func (sc *SvrCfg) Valid() error {
	if sc.Log != nil {
		if ah, ok := sc.Log.Handler().(*logger.AsyncHandler); ok && !ah.Ready() {
			return errs.NewFatal("svrcfg: async log handler is not ready")
		}
	} else {
		sc.Log = logger.New(logger.ModeSilence)
	}
	if sc.Addr == "" {
		sc.Addr = DefaultAddr
	}
	if sc.Setting == nil {
		sc.Setting = setting.Default()
	}
	if sc.PoolSize < 0 || sc.Timeout < 0 || sc.MaxLabels < 0 {
		return errs.Kindf(errs.KindInvalidParam, "svrcfg: negative pool/timeout/max labels")
	}
	if sc.PoolSize == 0 {
		sc.PoolSize = runtime.NumCPU()
	}
	sc.PoolSize = min(MaxPoolSize, sc.PoolSize)
	if sc.Timeout == 0 {
		sc.Timeout = DefaultTimeout
	}
	if sc.MaxLabels == 0 {
		sc.MaxLabels = DefaultMaxLabels
	}
	if sc.Pool == nil {
		sc.Pool = fastmi.NewPool(sc.PoolSize)
	}
	return nil
}
