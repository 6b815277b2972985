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

package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/zintix-labs/fastmi/server"
	"github.com/zintix-labs/fastmi/server/netsvr"
	"github.com/zintix-labs/fastmi/server/svrcfg"
)

type estimateReply struct {
	Metric    string `json:"metric"`
	Value     struct{ Hat float64 } `json:"value"`
	Samples   int    `json:"samples"`
	Converged bool   `json:"converged"`
	RNGState  string `json:"rng_state"`
	Method    string `json:"method"`
}

func newServer(t *testing.T) *netsvr.ChiAdapter {
	t.Helper()
	svr, err := server.New(&svrcfg.SvrCfg{PoolSize: 2})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return svr
}

func do(t *testing.T, svr http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	svr.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) estimateReply {
	t.Helper()
	var r estimateReply
	if err := json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(&r); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return r
}

func labels(sizes ...int) string {
	var parts []string
	for label, n := range sizes {
		for i := 0; i < n; i++ {
			parts = append(parts, string(rune('a'+label)))
		}
	}
	b, _ := json.Marshal(parts)
	return string(b)
}

func TestAMIIdentical(t *testing.T) {
	svr := newServer(t)
	rec := do(t, svr, http.MethodPost, "/v1/ami",
		`{"labels_true":["x","y","x","z",true],"labels_pred":[1,2,1,3,null],"seed":3}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	r := decode(t, rec)
	if r.Metric != "ami" || r.Value.Hat != 1 || !r.Converged {
		t.Fatalf("unexpected reply %+v", r)
	}
}

func TestAMISeedAndState(t *testing.T) {
	svr := newServer(t)
	a, b := labels(6, 5, 4, 5), labels(3, 7, 5, 5)
	body := `{"labels_true":` + a + `,"labels_pred":` + b + `,"seed":11,"goal":0.05,"min_samples":500}`
	r1 := decode(t, do(t, svr, http.MethodPost, "/v1/ami", body))
	r2 := decode(t, do(t, svr, http.MethodPost, "/v1/ami", body))
	if r1.Value.Hat != r2.Value.Hat || r1.RNGState == "" || r1.RNGState != r2.RNGState {
		t.Fatalf("same seed must reproduce: %+v vs %+v", r1, r2)
	}

	next := `{"labels_true":` + a + `,"labels_pred":` + b + `,"rng_state":"` + r1.RNGState + `","goal":0.05,"min_samples":500}`
	rec := do(t, svr, http.MethodPost, "/v1/ami", next)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if r3 := decode(t, rec); r3.RNGState == r1.RNGState {
		t.Fatalf("continued stream must advance")
	}
}

func TestSMI(t *testing.T) {
	svr := newServer(t)
	body := `{"labels_true":` + labels(10, 10, 10) + `,"labels_pred":` + labels(10, 10, 10) +
		`,"seed":5,"stop_rule":"either","method":"patefield","min_samples":200}`
	rec := do(t, svr, http.MethodPost, "/v1/smi", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	r := decode(t, rec)
	if r.Metric != "smi" || r.Method != "patefield" || r.Value.Hat < 5 || !r.Converged {
		t.Fatalf("unexpected reply %+v", r)
	}
}

func TestBadRequests(t *testing.T) {
	svr := newServer(t)
	cases := map[string]struct {
		path, body string
		kind       string
	}{
		"length":        {"/v1/ami", `{"labels_true":[1,2],"labels_pred":[1]}`, "length_mismatch"},
		"empty":         {"/v1/smi", `{"labels_true":[],"labels_pred":[]}`, "empty_input"},
		"non-scalar":    {"/v1/ami", `{"labels_true":[[1]],"labels_pred":[1]}`, "invalid_param"},
		"unknown field": {"/v1/ami", `{"labels":[1]}`, "invalid_param"},
		"bad rule":      {"/v1/smi", `{"labels_true":[1],"labels_pred":[1],"stop_rule":"any"}`, "invalid_param"},
		"bad goal":      {"/v1/ami", `{"labels_true":[1],"labels_pred":[1],"goal":-1}`, "invalid_param"},
		"bad state":     {"/v1/ami", `{"labels_true":[1],"labels_pred":[1],"rng_state":"###"}`, "invalid_param"},
	}
	for name, c := range cases {
		rec := do(t, svr, http.MethodPost, c.path, c.body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status %d: %s", name, rec.Code, rec.Body.String())
			continue
		}
		var b struct{ Kind string }
		_ = json.Unmarshal(rec.Body.Bytes(), &b)
		if b.Kind != c.kind {
			t.Errorf("%s: kind %q want %q", name, b.Kind, c.kind)
		}
	}
}

func TestDidNotConverge(t *testing.T) {
	svr := newServer(t)
	body := `{"labels_true":` + labels(6, 5, 4, 5) + `,"labels_pred":` + labels(3, 7, 5, 5) +
		`,"seed":1,"goal":1e-6,"min_samples":100,"max_samples":300}`
	rec := do(t, svr, http.MethodPost, "/v1/ami", body)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if r := decode(t, rec); r.Converged || r.Samples != 300 {
		t.Fatalf("unexpected reply %+v", r)
	}
}

func TestInfoEndpoints(t *testing.T) {
	svr := newServer(t)
	if rec := do(t, svr, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Fatalf("healthz %d", rec.Code)
	}
	rec := do(t, svr, http.MethodGet, "/v1/setting", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"accuracy_goal":0.01`) {
		t.Fatalf("setting %d: %s", rec.Code, rec.Body.String())
	}
	do(t, svr, http.MethodPost, "/v1/ami", `{"labels_true":[1,2],"labels_pred":[1,2]}`)
	rec = do(t, svr, http.MethodGet, "/v1/pool", "")
	var m struct {
		Size   int   `json:"size"`
		Served int64 `json:"served"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil || m.Size != 2 || m.Served != 1 {
		t.Fatalf("pool %s (%v)", rec.Body.String(), err)
	}
}

func TestCompressedResponse(t *testing.T) {
	svr := newServer(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/setting", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	svr.ServeHTTP(rec, req)
	if rec.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("expected gzip response, got %q", rec.Header().Get("Content-Encoding"))
	}
}
