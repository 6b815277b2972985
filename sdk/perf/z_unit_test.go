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

package perf

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/zintix-labs/fastmi/errs"
)

func TestRunWritesProfile(t *testing.T) {
	for _, mode := range []string{"cpu", "heap", "allocs"} {
		dir := t.TempDir()
		ran := false
		if err := Run(mode, dir, func() error { ran = true; return nil }); err != nil {
			t.Fatalf("%s: %v", mode, err)
		}
		if !ran {
			t.Fatalf("%s: exe not called", mode)
		}
		st, err := os.Stat(filepath.Join(dir, mode+".pprof"))
		if err != nil || st.Size() == 0 {
			t.Fatalf("%s: profile missing: %v", mode, err)
		}
	}
}

func TestRunPassThrough(t *testing.T) {
	boom := errors.New("boom")
	if err := Run("", "", func() error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("exe error must pass through, got %v", err)
	}
	if err := Run("trace", t.TempDir(), func() error { return nil }); !errors.Is(err, errs.ErrInvalidParam) {
		t.Fatalf("unknown mode should fail, got %v", err)
	}
}
