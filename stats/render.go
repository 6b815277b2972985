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

package stats

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/zintix-labs/fastmi/errs"
	"gopkg.in/yaml.v3"
)

// Renderer 定義輸出行為
type Renderer interface {
	WriteReport(w io.Writer, r *Report) error
	WriteCoverage(w io.Writer, c *Coverage) error
}

// ParseRenderer 依名稱取得渲染器："table"（預設）、"json"、"yaml"。
func ParseRenderer(name string) (Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "table":
		return &TableRender{}, nil
	case "json":
		return &JsonRender{}, nil
	case "yaml", "yml":
		return &YAMLRender{}, nil
	}
	return nil, errs.Kindf(errs.KindInvalidParam, "stats: unknown output format %q", name)
}

// Json渲染
type JsonRender struct{}

func (jr *JsonRender) WriteReport(w io.Writer, r *Report) error {
	return json.NewEncoder(w).Encode(r)
}

func (jr *JsonRender) WriteCoverage(w io.Writer, c *Coverage) error {
	return json.NewEncoder(w).Encode(c)
}

// YAML渲染
type YAMLRender struct{}

func (yr *YAMLRender) WriteReport(w io.Writer, r *Report) error {
	return forceReadableList(w, r)
}

func (yr *YAMLRender) WriteCoverage(w io.Writer, c *Coverage) error {
	return forceReadableList(w, c)
}

// 表格渲染
type TableRender struct{}

func (tr *TableRender) WriteReport(w io.Writer, r *Report) error {
	_, err := io.WriteString(w, r.table())
	return err
}

func (tr *TableRender) WriteCoverage(w io.Writer, c *Coverage) error {
	_, err := io.WriteString(w, c.table())
	return err
}

// YAML 內層方法
func forceReadableList[T any](w io.Writer, t *T) error {
	var node yaml.Node
	if err := node.Encode(t); err != nil {
		return err
	}

	// 最內層的一維 sequence 用 flow style: [...]，外層維度保持展開
	styleReadableSequences(&node)

	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(&node)
}

func styleReadableSequences(n *yaml.Node) {
	if n == nil {
		return
	}

	switch n.Kind {
	case yaml.DocumentNode, yaml.MappingNode:
		for _, c := range n.Content {
			styleReadableSequences(c)
		}
	case yaml.SequenceNode:
		hasChildSeq := false
		for _, c := range n.Content {
			if c != nil && c.Kind == yaml.SequenceNode {
				hasChildSeq = true
			}
			styleReadableSequences(c)
		}
		if !hasChildSeq {
			n.Style = yaml.FlowStyle
		}
	}
}
