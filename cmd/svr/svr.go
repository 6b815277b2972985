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

package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/zintix-labs/fastmi/server"
	"github.com/zintix-labs/fastmi/server/logger"
	"github.com/zintix-labs/fastmi/server/svrcfg"
	"github.com/zintix-labs/fastmi/setting"
)

func main() {
	sCfg, closeLog, err := loadConfigFromFlags()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer closeLog()
	server.Run(sCfg)
}

func loadConfigFromFlags() (*svrcfg.SvrCfg, func(), error) {
	var (
		addr, logMode, settingPath string
		pool, maxLabels            int
		timeout                    time.Duration
	)
	flag.StringVar(&addr, "addr", svrcfg.DefaultAddr, "listen address")
	flag.StringVar(&logMode, "log", "dev", "log mode: dev | prod | silence")
	flag.StringVar(&settingPath, "setting", "", "setting file (.yaml/.json); empty uses defaults")
	flag.IntVar(&pool, "pool", 0, "concurrent estimates; 0 uses NumCPU")
	flag.IntVar(&maxLabels, "max-labels", svrcfg.DefaultMaxLabels, "max labels per request")
	flag.DurationVar(&timeout, "timeout", svrcfg.DefaultTimeout, "per request estimate timeout")
	flag.Parse()

	mode, err := logger.ParseMode(logMode)
	if err != nil {
		return nil, nil, err
	}
	s := setting.Default()
	if settingPath != "" {
		if s, err = setting.Load(settingPath); err != nil {
			return nil, nil, err
		}
	}
	log, ah := logger.NewAsync(4096, mode)
	return &svrcfg.SvrCfg{
		Addr:      addr,
		Log:       log,
		Setting:   s,
		PoolSize:  pool,
		Timeout:   timeout,
		MaxLabels: maxLabels,
	}, ah.Close, nil
}
