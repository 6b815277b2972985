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

package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/zintix-labs/fastmi"
	"github.com/zintix-labs/fastmi/errs"
	"github.com/zintix-labs/fastmi/server/httperr"
	"github.com/zintix-labs/fastmi/server/netsvr/middleware"
	"github.com/zintix-labs/fastmi/server/svrcfg"
)

// Handler 估計相關的 v1 端點
type Handler struct {
	cfg *svrcfg.SvrCfg
}

func NewHandler(cfg *svrcfg.SvrCfg) (*Handler, error) {
	if cfg == nil || cfg.Pool == nil || cfg.Setting == nil {
		return nil, errs.NewFatal("v1: server config is not validated")
	}
	return &Handler{cfg: cfg}, nil
}

// AMI POST /v1/ami
func (h *Handler) AMI(w http.ResponseWriter, r *http.Request) { h.estimate(w, r, "ami") }

// SMI POST /v1/smi
func (h *Handler) SMI(w http.ResponseWriter, r *http.Request) { h.estimate(w, r, "smi") }

func (h *Handler) estimate(w http.ResponseWriter, r *http.Request, metric string) {
	req, err := decodeRequest(w, r, h.cfg.MaxLabels)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	a, err := labelKeys("labels_true", req.LabelsTrue)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	b, err := labelKeys("labels_pred", req.LabelsPred)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	log := h.cfg.Log.With(slog.String("req_id", middleware.GetReqID(r)))

	var fn fastmi.EstimateFunc
	switch metric {
	case "ami":
		opt, err := req.amiOptions(h.cfg.Setting)
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		opt.Log = log
		fn = func(ctx context.Context) (*fastmi.Result, error) { return fastmi.EstimateAMI(ctx, a, b, opt) }
	default:
		opt, err := req.smiOptions(h.cfg.Setting)
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		opt.Log = log
		fn = func(ctx context.Context) (*fastmi.Result, error) { return fastmi.EstimateSMI(ctx, a, b, opt) }
	}

	// 請求解析完成才開始計時
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.Timeout)
	defer cancel()
	res, err := h.cfg.Pool.Do(ctx, fn)
	status := http.StatusOK
	if err != nil {
		httperr.Log(log, "v1."+metric, err)
		// 未收斂仍回傳最後一次迭代的報表
		if !errors.Is(err, errs.ErrDidNotConverge) || res == nil {
			httperr.Errs(w, err)
			return
		}
		status = http.StatusUnprocessableEntity
	}

	conf := req.Confidence
	if conf == 0 {
		conf = h.cfg.Setting.ConfidenceLevel()
	}
	writeJSON(w, status, &EstimateResponse{Report: res.Report(conf), RNGState: res.State()})
}

// Setting GET /v1/setting
func (h *Handler) Setting(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cfg.Setting)
}

// Pool GET /v1/pool
func (h *Handler) Pool(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cfg.Pool.Metrics())
}

// Health GET /healthz；池關閉後回 503。
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.cfg.Pool.Closed() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "closed", "reason": h.cfg.Pool.ClosedReason()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON 先編碼到記憶體，避免寫到一半才出錯
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		httperr.Errs(w, errs.Wrap(err, "encode response"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
