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
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/zintix-labs/fastmi"
	"github.com/zintix-labs/fastmi/corefmt"
	"github.com/zintix-labs/fastmi/demo"
	"github.com/zintix-labs/fastmi/errs"
	"github.com/zintix-labs/fastmi/sdk/rtable"
	"github.com/zintix-labs/fastmi/server/logger"
	"github.com/zintix-labs/fastmi/setting"
	"github.com/zintix-labs/fastmi/stats"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var cfg *config = new(config)

type config struct {
	trueFile  string
	predFile  string
	pairsFile string
	demo      bool
	metric    string
	format    string
	setting   string
	seed      int64
	state     string
	goal      float64
	workers   int
	maxSample int
	stopRule  string
	method    string
	conf      float64
	logMode   string
	pprof     string
}

func bindVar() {
	flag.StringVar(&cfg.trueFile, "true", "", "file of true labels, one per line")
	flag.StringVar(&cfg.predFile, "pred", "", "file of predicted labels, one per line")
	flag.StringVar(&cfg.pairsFile, "pairs", "", "two-column csv/tsv of (true, pred) labels")
	flag.BoolVar(&cfg.demo, "demo", false, "use the embedded demo labels")
	flag.StringVar(&cfg.metric, "metric", "ami", "ami | smi | both")
	flag.StringVar(&cfg.format, "format", "table", "table | json | yaml")
	flag.StringVar(&cfg.setting, "setting", "", "setting file (.yaml/.json); empty uses defaults")
	flag.Int64Var(&cfg.seed, "seed", -1, "int64 seed; negative draws one from crypto/rand")
	flag.StringVar(&cfg.state, "state", "", "rng_state from a previous run (overrides -seed)")
	flag.Float64Var(&cfg.goal, "goal", 0, "accuracy goal (ami) / precision goal (smi); 0 uses setting")
	flag.IntVar(&cfg.workers, "workers", 0, "goroutines per estimate; 0 uses setting")
	flag.IntVar(&cfg.maxSample, "max", 0, "max samples; 0 uses setting")
	flag.StringVar(&cfg.stopRule, "stop", "", "smi stop rule: both | either")
	flag.StringVar(&cfg.method, "method", "", "smi table method: auto | boyett | patefield")
	flag.Float64Var(&cfg.conf, "conf", 0, "confidence level of the reported interval; 0 uses setting")
	flag.StringVar(&cfg.logMode, "log", "silence", "log mode: dev | prod | silence (dev prints every iteration)")
	flag.StringVar(&cfg.pprof, "p", "", "pprof: '', cpu, heap, allocs")
	flag.Parse()
}

func execute() error {
	s, err := loadSetting(cfg.setting)
	if err != nil {
		return err
	}
	labelsTrue, labelsPred, err := loadLabels()
	if err != nil {
		return err
	}
	render, err := stats.ParseRenderer(cfg.format)
	if err != nil {
		return err
	}
	mode, err := logger.ParseMode(cfg.logMode)
	if err != nil {
		return err
	}
	log := logger.New(mode)
	conf := cfg.conf
	if conf == 0 {
		conf = s.ConfidenceLevel()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var metrics []string
	switch strings.ToLower(cfg.metric) {
	case "ami", "smi":
		metrics = []string{strings.ToLower(cfg.metric)}
	case "both":
		metrics = []string{"ami", "smi"}
	default:
		return errs.Kindf(errs.KindInvalidParam, "unknown metric %q", cfg.metric)
	}

	green, reset := "\033[1;32m", "\033[0m"
	p := message.NewPrinter(language.English)
	var firstErr error
	for _, m := range metrics {
		base, err := baseOptions(s, m, log)
		if err != nil {
			return err
		}
		if cfg.format == "table" {
			p.Fprintf(os.Stderr, "%s[%s] [LABELS:%d] [WORKERS:%d]%s\n", green, strings.ToUpper(m), len(labelsTrue), max(1, base.Workers), reset)
		}
		res, err := run(ctx, s, m, base, labelsTrue, labelsPred)
		if res == nil {
			return err
		}
		if werr := res.Report(conf).WriteWith(os.Stdout, render); werr != nil {
			return errs.Wrap(werr, "write report")
		}
		fmt.Fprintf(os.Stderr, "rng_state: %s\n", res.State())
		if err != nil && firstErr == nil {
			// 未收斂仍印出報表，最後以非零狀態結束
			firstErr = err
		}
	}
	return firstErr
}

func loadSetting(path string) (*setting.Setting, error) {
	if path == "" {
		return setting.Default(), nil
	}
	return setting.Load(path)
}

func loadLabels() ([]string, []string, error) {
	if cfg.demo {
		return demo.Pairs()
	}
	if cfg.pairsFile != "" {
		return corefmt.ReadPairFile(cfg.pairsFile)
	}
	if cfg.trueFile == "" || cfg.predFile == "" {
		return nil, nil, errs.Kindf(errs.KindInvalidParam, "one of -demo, -pairs or both -true and -pred is required")
	}
	a, err := corefmt.ReadLabelFile(cfg.trueFile)
	if err != nil {
		return nil, nil, err
	}
	b, err := corefmt.ReadLabelFile(cfg.predFile)
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

// baseOptions 由設定檔出發，再套用旗標
func baseOptions(s *setting.Setting, metric string, log *slog.Logger) (fastmi.Options, error) {
	var o fastmi.Options
	if metric == "ami" {
		o = s.AMIOptions().Options
	} else {
		o = s.SMIOptions().Options
	}
	o.Log = log.With(slog.String("estimator", metric))
	if cfg.workers != 0 {
		o.Workers = cfg.workers
	}
	if cfg.maxSample != 0 {
		o.MaxSamples = cfg.maxSample
	}
	if cfg.seed >= 0 {
		o.Seed = fastmi.Seed(cfg.seed)
	}
	if cfg.state != "" {
		c, err := fastmi.RestoreStream(cfg.state)
		if err != nil {
			return o, err
		}
		o.Stream = c
	}
	return o, nil
}

func run(ctx context.Context, s *setting.Setting, metric string, base fastmi.Options, a, b []string) (*fastmi.Result, error) {
	if metric == "ami" {
		opt := s.AMIOptions()
		opt.Options = base
		if cfg.goal != 0 {
			opt.AccuracyGoal = cfg.goal
		}
		return fastmi.EstimateAMI(ctx, a, b, opt)
	}
	opt := s.SMIOptions()
	opt.Options = base
	if cfg.goal != 0 {
		opt.PrecisionGoal = cfg.goal
	}
	var err error
	if cfg.stopRule != "" {
		if opt.StopRule, err = fastmi.ParseStopRule(cfg.stopRule); err != nil {
			return nil, err
		}
	}
	if cfg.method != "" {
		if opt.Method, err = rtable.ParseMethod(cfg.method); err != nil {
			return nil, err
		}
	}
	return fastmi.EstimateSMI(ctx, a, b, opt)
}

// exitCode 1 為輸入或執行錯誤，2 為未收斂，130 為中斷
func exitCode(err error) int {
	switch {
	case errors.Is(err, errs.ErrDidNotConverge):
		return 2
	case errors.Is(err, errs.ErrCanceled):
		return 130
	}
	return 1
}
