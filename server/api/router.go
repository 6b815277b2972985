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

// Package api 註冊中介層與所有路由。
package api

import (
	"log/slog"

	v1 "github.com/zintix-labs/fastmi/server/api/v1"
	"github.com/zintix-labs/fastmi/server/netsvr"
	"github.com/zintix-labs/fastmi/server/netsvr/middleware"
	"github.com/zintix-labs/fastmi/server/svrcfg"
)

// RegisterRoutes sCfg 需先通過 Valid()
func RegisterRoutes(svr netsvr.NetSvr, sCfg *svrcfg.SvrCfg) error {
	registerMiddleware(svr, sCfg.Log)

	h, err := v1.NewHandler(sCfg)
	if err != nil {
		return err
	}
	svr.Get("/healthz", h.Health)
	svr.Group("/v1", func(vOne netsvr.NetRouter) {
		vOne.Post("/ami", h.AMI)
		vOne.Post("/smi", h.SMI)
		vOne.Get("/setting", h.Setting)
		vOne.Get("/pool", h.Pool)
	})
	return nil
}

func registerMiddleware(svr netsvr.NetSvr, log *slog.Logger) {
	svr.Use(middleware.RequestID)
	svr.Use(middleware.AccessLog(log))
	svr.Use(middleware.Recover)
	svr.Use(middleware.Compression)
}
