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

package fastmi

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/zintix-labs/fastmi/errs"
)

// maxConsecutivePanics 連續 panic 達此次數時池自動關閉，交由上層處理
const maxConsecutivePanics = 100

// EstimateFunc 是交給 Pool 執行的一次估計
type EstimateFunc func(ctx context.Context) (*Result, error)

// Pool 限制同時進行的估計數量，並統一處理 panic 與關閉。
//
// 估計本身無狀態，Pool 管理的只是「執行名額」：
//   - slots：可用名額，Do() 借出 / 歸還。
//   - done：關閉訊號，關閉後所有 Do() 直接回錯誤。
//
// 估計中 panic 會被轉成 Fatal 錯誤；連續 panic 過多時 Pool 自行關閉。
type Pool struct {
	slots         chan struct{}
	done          chan struct{}
	closeOnce     sync.Once
	size          int
	inflight      atomic.Int32
	served        atomic.Int64 // 成功完成
	warns         atomic.Int64 // 呼叫端可處理的錯誤（輸入錯誤、未收斂、取消）
	fatals        atomic.Int64
	panics        atomic.Int64
	consecutive   atomic.Int32 // 連續 panic 次數
	closeReason   atomic.Value // string
	closeInflight atomic.Int32 // 關閉當下 inflight（快照）
}

// NewPool 建立容量為 n 的執行池（n 至少為 1）。
func NewPool(n int) *Pool {
	n = max(1, n)
	p := &Pool{
		slots: make(chan struct{}, n),
		done:  make(chan struct{}),
		size:  n,
	}
	for i := 0; i < n; i++ {
		p.slots <- struct{}{}
	}
	p.closeReason.Store("")
	p.closeInflight.Store(-1)
	return p
}

// Close 進入關閉狀態
func (p *Pool) Close() {
	p.closeWithReason("closed")
}

// Closed 回報池是否已進入關閉狀態。
func (p *Pool) Closed() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

func (p *Pool) closeWithReason(reason string) {
	p.closeOnce.Do(func() {
		if reason == "" {
			reason = "closed"
		}
		p.closeReason.Store(reason)
		p.closeInflight.Store(p.inflight.Load())
		close(p.done)
	})
}

// Do 取得名額後執行 fn。等待名額期間 ctx 取消會回傳 Canceled。
func (p *Pool) Do(ctx context.Context, fn EstimateFunc) (res *Result, err error) {
	select {
	case <-p.done:
		return nil, errs.NewFatal("estimator pool closed: " + p.ClosedReason())
	case <-ctx.Done():
		return nil, errs.Wrap(ctx.Err(), "wait for estimator slot")
	case <-p.slots:
	}
	p.inflight.Add(1)

	defer func() {
		p.inflight.Add(-1)
		if r := recover(); r != nil {
			p.panics.Add(1)
			res, err = nil, errs.NewFatal(fmt.Sprintf("estimator panic: %v", r))
			if p.consecutive.Add(1) >= maxConsecutivePanics {
				p.closeWithReason("overwhelmed_by_failures")
			}
		} else {
			p.consecutive.Store(0)
			p.count(err)
		}
		// 名額容量固定，歸還不會阻塞
		p.slots <- struct{}{}
	}()

	return fn(ctx)
}

func (p *Pool) count(err error) {
	if err == nil {
		p.served.Add(1)
		return
	}
	if e, ok := errs.AsErr(err); ok && e.ErrLv != errs.Fatal {
		p.warns.Add(1)
		return
	}
	p.fatals.Add(1)
}

func (p *Pool) Size() int { return p.size }

func (p *Pool) Inflight() int { return int(p.inflight.Load()) }

func (p *Pool) ClosedReason() string {
	if v := p.closeReason.Load(); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// PoolMetrics 拉取式觀測快照；不綁任何 metrics SDK，由上層決定如何輸出。
type PoolMetrics struct {
	Size          int    `json:"size"`
	Available     int    `json:"available"` // len(slots)，高併發下為近似值
	Inflight      int    `json:"inflight"`
	Served        int64  `json:"served"`
	Warns         int64  `json:"warns"`
	Fatals        int64  `json:"fatals"`
	Panics        int64  `json:"panics"`
	Closed        bool   `json:"closed"`
	CloseReason   string `json:"close_reason"`
	CloseInflight int    `json:"close_inflight"` // -1 表示尚未關閉
}

// Metrics 回傳當下的觀測快照
func (p *Pool) Metrics() PoolMetrics {
	return PoolMetrics{
		Size:          p.size,
		Available:     len(p.slots),
		Inflight:      int(p.inflight.Load()),
		Served:        p.served.Load(),
		Warns:         p.warns.Load(),
		Fatals:        p.fatals.Load(),
		Panics:        p.panics.Load(),
		Closed:        p.Closed(),
		CloseReason:   p.ClosedReason(),
		CloseInflight: int(p.closeInflight.Load()),
	}
}
