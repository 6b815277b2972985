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
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestKindMatchesSentinel(t *testing.T) {
	err := Kindf(KindLengthMismatch, "labels differ: %d vs %d", 3, 2)
	if !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}
	if errors.Is(err, ErrEmptyInput) {
		t.Fatalf("unexpected match with ErrEmptyInput")
	}
	if !strings.Contains(err.Error(), "kind=length_mismatch") {
		t.Fatalf("kind missing from message: %s", err.Error())
	}
}

func TestWrapKeepsLevelAndKind(t *testing.T) {
	base := NewKind(KindDidNotConverge, "budget exhausted")
	w := Wrap(fmt.Errorf("loop: %w", base), "estimate ami")
	if w.ErrLv != Warn || w.Kind != KindDidNotConverge {
		t.Fatalf("unexpected wrap result: lv=%v kind=%v", w.ErrLv, w.Kind)
	}
	if !errors.Is(w, ErrDidNotConverge) {
		t.Fatalf("expected ErrDidNotConverge through wrap")
	}
}

func TestWrapContext(t *testing.T) {
	w := Wrap(context.DeadlineExceeded, "estimate smi")
	if w.Kind != KindCanceled || w.ErrLv != Warn {
		t.Fatalf("unexpected wrap of ctx error: lv=%v kind=%v", w.ErrLv, w.Kind)
	}
	if !errors.Is(w, context.DeadlineExceeded) {
		t.Fatalf("cause should stay reachable")
	}
}

func TestWrapForeignIsFatal(t *testing.T) {
	w := Wrap(errors.New("disk"), "read labels")
	if w.ErrLv != Fatal || w.Kind != KindUnknown {
		t.Fatalf("foreign errors must be fatal, got lv=%v kind=%v", w.ErrLv, w.Kind)
	}
	if errors.Is(w, ErrCanceled) {
		t.Fatalf("unknown kind must not match sentinels")
	}
}

func TestWrapKind(t *testing.T) {
	cause := errors.New("yaml: line 3")
	w := WrapKind(cause, KindInvalidParam, "decode setting")
	if w.ErrLv != Warn || !errors.Is(w, ErrInvalidParam) || !errors.Is(w, cause) {
		t.Fatalf("unexpected wrap %v", w)
	}
}

func TestWrapWithExtra(t *testing.T) {
	w := WrapWithExtra(context.Canceled, "read file", "/tmp/x.yaml")
	if w.ErrLv != Warn || !errors.Is(w, ErrCanceled) || w.Extra != "/tmp/x.yaml" {
		t.Fatalf("unexpected wrap %v", w)
	}
	if !strings.Contains(w.Error(), "| extra: /tmp/x.yaml") {
		t.Fatalf("extra missing from message: %s", w.Error())
	}

	f := WrapWithExtra(errors.New("disk"), "read file", "p")
	if f.ErrLv != Fatal || f.Extra != "p" {
		t.Fatalf("foreign cause should be fatal with extra, got %v", f)
	}
}

func TestNewLevels(t *testing.T) {
	if e := New(Log, "note"); e.ErrLv != Log || ErrLv(e.ErrLv) != "log" {
		t.Fatalf("unexpected level %v", e)
	}
	if e := Fatalf("n=%d", 3); e.ErrLv != Fatal || e.Message != "n=3" {
		t.Fatalf("unexpected fatal %v", e)
	}
}
