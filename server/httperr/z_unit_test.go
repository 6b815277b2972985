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

package httperr

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zintix-labs/fastmi/errs"
)

func TestStatusCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"warn", errs.NewKind(errs.KindLengthMismatch, "len"), http.StatusBadRequest},
		{"fatal", errs.NewFatal("boom"), http.StatusInternalServerError},
		{"foreign", errors.New("disk"), http.StatusInternalServerError},
		{"deadline", errs.Wrap(context.DeadlineExceeded, "estimate"), http.StatusGatewayTimeout},
		{"canceled", errs.Wrap(context.Canceled, "estimate"), http.StatusRequestTimeout},
		{"not converged", errs.NewKind(errs.KindDidNotConverge, "cap"), http.StatusUnprocessableEntity},
	}
	for _, c := range cases {
		if got := StatusCode(c.err); got != c.want {
			t.Errorf("%s: got %d want %d", c.name, got, c.want)
		}
	}
}

func TestErrsBody(t *testing.T) {
	rec := httptest.NewRecorder()
	if st := Errs(rec, errs.NewKind(errs.KindEmptyInput, "no labels")); st != http.StatusBadRequest {
		t.Fatalf("status %d", st)
	}
	var b Body
	if err := json.NewDecoder(rec.Body).Decode(&b); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusBadRequest || b.Kind != errs.KindEmptyInput.String() || b.Error == "" {
		t.Fatalf("unexpected body %+v", b)
	}
}
