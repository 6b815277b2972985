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

package setting

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/zintix-labs/fastmi"
	"github.com/zintix-labs/fastmi/errs"
	"github.com/zintix-labs/fastmi/sdk/rtable"
)

func TestDefault(t *testing.T) {
	s := Default()
	a := s.AMIOptions()
	if a.AccuracyGoal != fastmi.DefaultAccuracyGoal || a.MinSamples != fastmi.DefaultAMIMinSamples || a.MaxSamples != fastmi.DefaultMaxSamples {
		t.Fatalf("unexpected ami options %+v", a)
	}
	m := s.SMIOptions()
	if m.PrecisionGoal != fastmi.DefaultPrecisionGoal || m.StopRule != fastmi.StopBoth || m.Method != rtable.Auto {
		t.Fatalf("unexpected smi options %+v", m)
	}
	if s.ConfidenceLevel() != 0.95 {
		t.Fatalf("confidence = %v", s.ConfidenceLevel())
	}
}

func TestFromYAML(t *testing.T) {
	s, err := FromYAML([]byte("smi:\n  stop_rule: either\n  method: patefield\nworkers: 4\n"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	m := s.SMIOptions()
	if m.StopRule != fastmi.StopEither || m.Method != rtable.Patefield || m.Workers != 4 {
		t.Fatalf("unexpected smi options %+v", m)
	}
	// 未填欄位交由選項預設
	if err := m.Valid(); err != nil || m.PrecisionGoal != fastmi.DefaultPrecisionGoal {
		t.Fatalf("defaults not applied: %v %+v", err, m)
	}
	if s.ConfidenceLevel() != 0.95 {
		t.Fatalf("confidence = %v", s.ConfidenceLevel())
	}
}

func TestFromYAML_Errors(t *testing.T) {
	cases := map[string]string{
		"unknown field": "ami:\n  accuracy: 0.1\n",
		"bad rule":      "smi:\n  stop_rule: any\n",
		"bad method":    "smi:\n  method: fisher\n",
		"bad goal":      "ami:\n  accuracy_goal: -1\n",
		"bad workers":   "workers: 1000\n",
		"bad conf":      "confidence: 1.5\n",
	}
	for name, doc := range cases {
		if _, err := FromYAML([]byte(doc)); !errors.Is(err, errs.ErrInvalidParam) {
			t.Errorf("%s: expected ErrInvalidParam, got %v", name, err)
		}
	}
}

func TestFromJSON(t *testing.T) {
	s, err := FromJSON([]byte(`{"ami":{"accuracy_goal":0.05},"max_samples":1000}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	a := s.AMIOptions()
	if a.AccuracyGoal != 0.05 || a.MaxSamples != 1000 {
		t.Fatalf("unexpected ami options %+v", a)
	}
	if _, err := FromJSON([]byte(`{"ami":{"goal":1}}`)); !errors.Is(err, errs.ErrInvalidParam) {
		t.Fatalf("unknown json field should fail, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	y := filepath.Join(dir, "s.yml")
	if err := os.WriteFile(y, []byte("workers: 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := Load(y)
	if err != nil || s.Workers != 2 {
		t.Fatalf("load yaml: %v %+v", err, s)
	}
	j := filepath.Join(dir, "s.json")
	if err := os.WriteFile(j, []byte(`{"workers":3}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if s, err = Load(j); err != nil || s.Workers != 3 {
		t.Fatalf("load json: %v %+v", err, s)
	}
	if _, err := Load(filepath.Join(dir, "s.toml")); err == nil {
		t.Fatalf("unknown extension should fail")
	}
}
