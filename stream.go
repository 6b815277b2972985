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
	"sync"

	"github.com/zintix-labs/fastmi/corefmt"
	"github.com/zintix-labs/fastmi/errs"
	"github.com/zintix-labs/fastmi/sdk/core"
	"github.com/zintix-labs/fastmi/sdk/mc"
)

// ctxCheckEvery 批次內每抽這麼多個樣本檢查一次 ctx
const ctxCheckEvery = 1024

// RestoreStream 由 Result.State() 的字串還原亂數串流，可傳回 Options.Stream 接續使用。
func RestoreStream(state string) (*core.Core, error) {
	b, err := corefmt.DecodeBase64(state)
	if err != nil {
		return nil, errs.Wrap(err, "restore stream")
	}
	c := core.NewSeeded(0)
	if err := c.Restore(b); err != nil {
		return nil, errs.Kindf(errs.KindInvalidParam, "restore stream: %v", err)
	}
	return c, nil
}

func snapshot(c *core.Core) []byte {
	b, err := c.Snapshot()
	if err != nil {
		return nil
	}
	return b
}

// drawFunc 以子串流 c 抽 n 個樣本累加進 acc；shard 為分段編號，供取用該段專屬的緩衝區。
type drawFunc func(ctx context.Context, c *core.Core, shard, n int, acc *mc.Running) error

// drawSharded 抽一批共 n 個樣本。
//
// workers <= 1 或 n < workers 時直接使用主串流。否則把 n 切成 workers 段連續區間，
// 依段號順序從主串流 Fork 子串流，各段平行抽樣後依段號順序合併。
// 結果只由 (主串流狀態, n, workers) 決定。
func drawSharded(ctx context.Context, main *core.Core, workers, n int, fn drawFunc) (mc.Running, error) {
	var acc mc.Running
	if workers <= 1 || n < workers {
		err := fn(ctx, main, 0, n, &acc)
		return acc, err
	}

	streams := make([]*core.Core, workers)
	for i := range streams {
		streams[i] = main.Fork()
	}
	parts := make([]mc.Running, workers)
	errList := make([]error, workers)

	size, rem := n/workers, n%workers
	wg := new(sync.WaitGroup)
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		k := size
		if i < rem {
			k++
		}
		go func(i, k int) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					errList[i] = errs.Fatalf("shard %d panic: %v", i, r)
				}
			}()
			errList[i] = fn(ctx, streams[i], i, k, &parts[i])
		}(i, k)
	}
	wg.Wait()

	for i := range parts {
		if errList[i] != nil {
			return acc, errList[i]
		}
		acc.Merge(parts[i])
	}
	return acc, nil
}
