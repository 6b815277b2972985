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

// Package setting 讀取估計參數設定檔（YAML / JSON），並轉成 fastmi 的選項。
package setting

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/zintix-labs/fastmi"
	"github.com/zintix-labs/fastmi/errs"
	"github.com/zintix-labs/fastmi/sdk/rtable"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// Setting 一組估計參數。欄位為 0 / 空字串時沿用 fastmi 預設值。
type Setting struct {
	AMI           AMISetting `yaml:"ami"            json:"ami"`
	SMI           SMISetting `yaml:"smi"            json:"smi"`
	Workers       int        `yaml:"workers"        json:"workers"`
	MaxSamples    int        `yaml:"max_samples"    json:"max_samples"`
	MaxIterations int        `yaml:"max_iterations" json:"max_iterations"`
	Confidence    float64    `yaml:"confidence"     json:"confidence"`
}

type AMISetting struct {
	AccuracyGoal float64 `yaml:"accuracy_goal" json:"accuracy_goal"`
	MinSamples   int     `yaml:"min_samples"   json:"min_samples"`
}

type SMISetting struct {
	PrecisionGoal float64 `yaml:"precision_goal" json:"precision_goal"`
	MinSamples    int     `yaml:"min_samples"    json:"min_samples"`
	StopRule      string  `yaml:"stop_rule"      json:"stop_rule"`
	Method        string  `yaml:"method"         json:"method"`

	stopRule fastmi.StopRule
	method   rtable.Method
}

// Default 回傳內嵌的預設設定
func Default() *Setting {
	s, err := FromYAML(defaultYAML)
	if err != nil {
		// 內嵌檔案在編譯期即固定
		panic(err)
	}
	return s
}

// FromYAML 嚴格解析 YAML：多寫或拼錯欄位都會報錯。
func FromYAML(data []byte) (*Setting, error) {
	s := &Setting{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(s); err != nil {
		return nil, errs.WrapKind(err, errs.KindInvalidParam, "setting: decode yaml failed")
	}
	if err := s.init(); err != nil {
		return nil, err
	}
	return s, nil
}

// FromJSON 嚴格解析 JSON
func FromJSON(data []byte) (*Setting, error) {
	s := &Setting{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(s); err != nil {
		return nil, errs.WrapKind(err, errs.KindInvalidParam, "setting: decode json failed")
	}
	if err := s.init(); err != nil {
		return nil, err
	}
	return s, nil
}

// Load 依副檔名讀取設定檔（.yaml / .yml / .json）
func Load(path string) (*Setting, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.WrapWithExtra(err, "setting: read file failed", path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FromJSON(data)
	case ".yaml", ".yml":
		return FromYAML(data)
	}
	return nil, errs.Kindf(errs.KindInvalidParam, "setting: unsupported file type %q", path)
}

func (s *Setting) init() error {
	rule, err := fastmi.ParseStopRule(s.SMI.StopRule)
	if err != nil {
		return errs.Wrap(err, "setting: smi.stop_rule")
	}
	m, err := rtable.ParseMethod(s.SMI.Method)
	if err != nil {
		return errs.Wrap(err, "setting: smi.method")
	}
	s.SMI.stopRule, s.SMI.method = rule, m
	return s.valid()
}

// valid 交給 fastmi 選項檢查，確保設定檔與程式呼叫走同一套規則。
func (s *Setting) valid() error {
	if s.Confidence != 0 && !(s.Confidence > 0 && s.Confidence < 1) {
		return errs.Kindf(errs.KindInvalidParam, "setting: confidence must in (0,1), got %v", s.Confidence)
	}
	if err := s.AMIOptions().Valid(); err != nil {
		return errs.Wrap(err, "setting: ami")
	}
	if err := s.SMIOptions().Valid(); err != nil {
		return errs.Wrap(err, "setting: smi")
	}
	return nil
}

func (s *Setting) base(minSamples int) fastmi.Options {
	return fastmi.Options{
		MinSamples:    minSamples,
		MaxSamples:    s.MaxSamples,
		MaxIterations: s.MaxIterations,
		Workers:       s.Workers,
	}
}

// AMIOptions 每次呼叫回傳新的選項，呼叫端可自由修改。
func (s *Setting) AMIOptions() *fastmi.AMIOptions {
	return &fastmi.AMIOptions{
		Options:      s.base(s.AMI.MinSamples),
		AccuracyGoal: s.AMI.AccuracyGoal,
	}
}

func (s *Setting) SMIOptions() *fastmi.SMIOptions {
	return &fastmi.SMIOptions{
		Options:       s.base(s.SMI.MinSamples),
		PrecisionGoal: s.SMI.PrecisionGoal,
		StopRule:      s.SMI.stopRule,
		Method:        s.SMI.method,
	}
}

// ConfidenceLevel 回報用信賴水準，未設定時為 0.95。
func (s *Setting) ConfidenceLevel() float64 {
	if s.Confidence == 0 {
		return 0.95
	}
	return s.Confidence
}
