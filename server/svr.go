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

// Package server 以 HTTP 提供 AMI / SMI 估計。
package server

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/zintix-labs/fastmi/errs"
	"github.com/zintix-labs/fastmi/server/api"
	"github.com/zintix-labs/fastmi/server/app"
	"github.com/zintix-labs/fastmi/server/netsvr"
	"github.com/zintix-labs/fastmi/server/svrcfg"
)

// New 驗證設定並建立已註冊路由的服務
func New(sCfg *svrcfg.SvrCfg) (*netsvr.ChiAdapter, error) {
	if err := sCfg.Valid(); err != nil {
		return nil, err
	}
	svr := netsvr.NewChiServer(sCfg.Addr, sCfg.Timeout)
	if !svr.Ready() {
		return nil, errs.NewFatal("server: chi adapter is not ready")
	}
	if err := api.RegisterRoutes(svr, sCfg); err != nil {
		return nil, errs.Wrap(err, "server: register routes")
	}
	return svr, nil
}

// Run 阻塞直到收到終止信號；結束時關閉估計池。
func Run(sCfg *svrcfg.SvrCfg) {
	svr, err := New(sCfg)
	if err != nil {
		// logger 可能尚未可用
		fmt.Fprintln(os.Stderr, err)
		return
	}
	defer sCfg.Pool.Close()

	sCfg.Log.Info("[fastmi] listening",
		slog.String("addr", svr.Address()),
		slog.Int("pool", sCfg.PoolSize),
		slog.Duration("timeout", sCfg.Timeout),
	)
	if err := app.NewWith(sCfg.Log, svr).Run(); err != nil {
		sCfg.Log.Error("app stopped", slog.Any("err", err))
	}
}
