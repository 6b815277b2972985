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
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/zintix-labs/fastmi"
	"github.com/zintix-labs/fastmi/errs"
	"github.com/zintix-labs/fastmi/sdk/rtable"
	"github.com/zintix-labs/fastmi/setting"
	"github.com/zintix-labs/fastmi/stats"
)

// maxBodyBytes 單一請求 body 上限
const maxBodyBytes = 64 << 20

// EstimateRequest POST /v1/ami、/v1/smi 的請求。
//
// 標籤可以是任意 JSON 純量（字串、數字、布林、null），以「型別:值」比對是否相同。
// 未填的欄位取服務設定。
type EstimateRequest struct {
	LabelsTrue []any   `json:"labels_true"`
	LabelsPred []any   `json:"labels_pred"`
	Seed       *int64  `json:"seed,omitempty"`
	RNGState   string  `json:"rng_state,omitempty"` // 前次回應的 rng_state，優先於 seed
	Goal       float64 `json:"goal,omitempty"`
	MinSamples int     `json:"min_samples,omitempty"`
	MaxSamples int     `json:"max_samples,omitempty"`
	Workers    int     `json:"workers,omitempty"`
	StopRule   string  `json:"stop_rule,omitempty"` // 僅 SMI
	Method     string  `json:"method,omitempty"`    // 僅 SMI
	Confidence float64 `json:"confidence,omitempty"`
}

// EstimateResponse 報表加上可接續的亂數串流狀態
type EstimateResponse struct {
	*stats.Report
	RNGState string `json:"rng_state"`
}

func decodeRequest(w http.ResponseWriter, r *http.Request, maxLabels int) (*EstimateRequest, error) {
	req := new(EstimateRequest)
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(req); err != nil {
		return nil, errs.WrapKind(err, errs.KindInvalidParam, "decode request")
	}
	if n := max(len(req.LabelsTrue), len(req.LabelsPred)); n > maxLabels {
		return nil, errs.Kindf(errs.KindInvalidParam, "too many labels: %d > %d", n, maxLabels)
	}
	return req, nil
}

// labelKeys 把 JSON 純量轉成可比較的鍵；陣列與物件不是合法標籤。
func labelKeys(name string, in []any) ([]string, error) {
	out := make([]string, len(in))
	for i, v := range in {
		switch v.(type) {
		case []any, map[string]any:
			return nil, errs.Kindf(errs.KindInvalidParam, "%s[%d]: label must be a scalar", name, i)
		}
		out[i] = fmt.Sprintf("%T:%v", v, v)
	}
	return out, nil
}

// options 填入共用欄位；Seed 與 RNGState 同時給時以 RNGState 為準。
func (req *EstimateRequest) options(base fastmi.Options) (fastmi.Options, error) {
	o := base
	if req.MinSamples != 0 {
		o.MinSamples = req.MinSamples
	}
	if req.MaxSamples != 0 {
		o.MaxSamples = req.MaxSamples
	}
	if req.Workers != 0 {
		o.Workers = req.Workers
	}
	o.Seed = req.Seed
	if req.RNGState != "" {
		c, err := fastmi.RestoreStream(req.RNGState)
		if err != nil {
			return o, err
		}
		o.Stream = c
	}
	return o, nil
}

func (req *EstimateRequest) amiOptions(s *setting.Setting) (*fastmi.AMIOptions, error) {
	o := s.AMIOptions()
	base, err := req.options(o.Options)
	if err != nil {
		return nil, err
	}
	o.Options = base
	if req.Goal != 0 {
		o.AccuracyGoal = req.Goal
	}
	return o, nil
}

func (req *EstimateRequest) smiOptions(s *setting.Setting) (*fastmi.SMIOptions, error) {
	o := s.SMIOptions()
	base, err := req.options(o.Options)
	if err != nil {
		return nil, err
	}
	o.Options = base
	if req.Goal != 0 {
		o.PrecisionGoal = req.Goal
	}
	if req.StopRule != "" {
		if o.StopRule, err = fastmi.ParseStopRule(req.StopRule); err != nil {
			return nil, err
		}
	}
	if req.Method != "" {
		if o.Method, err = rtable.ParseMethod(req.Method); err != nil {
			return nil, err
		}
	}
	return o, nil
}
