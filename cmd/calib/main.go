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

// calib 以不同 seed 重複估計同一組標籤，檢查回報的標準誤是否可信。
//
//	go run ./cmd/calib -demo -metric ami -runs 200 -workers 8
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strings"

	"github.com/zintix-labs/fastmi"
	"github.com/zintix-labs/fastmi/corefmt"
	"github.com/zintix-labs/fastmi/demo"
	"github.com/zintix-labs/fastmi/errs"
	"github.com/zintix-labs/fastmi/setting"
	"github.com/zintix-labs/fastmi/stats"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// refTighten 未給參考值時，以目標誤差的 1/refTighten 估計一次當作參考
const refTighten = 10

type config struct {
	trueFile, predFile, pairsFile string
	metric, format, setting       string
	runs, workers                 int
	seed                          int64
	ref, goal                     float64
	progress, demo                bool
}

func main() {
	cfg := new(config)
	flag.StringVar(&cfg.trueFile, "true", "", "file of true labels, one per line")
	flag.StringVar(&cfg.predFile, "pred", "", "file of predicted labels, one per line")
	flag.StringVar(&cfg.pairsFile, "pairs", "", "two-column csv/tsv of (true, pred) labels")
	flag.BoolVar(&cfg.demo, "demo", false, "use the embedded demo labels")
	flag.StringVar(&cfg.metric, "metric", "ami", "ami | smi")
	flag.StringVar(&cfg.format, "format", "table", "table | json | yaml")
	flag.StringVar(&cfg.setting, "setting", "", "setting file (.yaml/.json)")
	flag.IntVar(&cfg.runs, "runs", fastmi.DefaultCalibrationRuns, "number of seeded estimates")
	flag.IntVar(&cfg.workers, "workers", 1, "concurrent estimates")
	flag.Int64Var(&cfg.seed, "seed", -1, "base seed; negative draws one from crypto/rand")
	flag.Float64Var(&cfg.ref, "ref", math.NaN(), "reference value; NaN estimates one at a tighter goal")
	flag.Float64Var(&cfg.goal, "goal", 0, "goal per estimate; 0 uses setting")
	flag.BoolVar(&cfg.progress, "progress", true, "show progress bar")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := cfg.execute(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (cfg *config) execute(ctx context.Context) error {
	s := setting.Default()
	if cfg.setting != "" {
		var err error
		if s, err = setting.Load(cfg.setting); err != nil {
			return err
		}
	}
	a, b, err := cfg.labels()
	if err != nil {
		return err
	}
	render, err := stats.ParseRenderer(cfg.format)
	if err != nil {
		return err
	}
	cb := &fastmi.Calibrator{Runs: cfg.runs, Workers: cfg.workers, Confidence: s.ConfidenceLevel(), ShowProgress: cfg.progress}
	if cfg.seed >= 0 {
		cb.BaseSeed = fastmi.Seed(cfg.seed)
	}
	p := message.NewPrinter(language.English)

	var cov *stats.Coverage
	switch strings.ToLower(cfg.metric) {
	case "ami":
		opt := s.AMIOptions()
		if cfg.goal != 0 {
			opt.AccuracyGoal = cfg.goal
		}
		if err := opt.Valid(); err != nil {
			return err
		}
		ref := cfg.ref
		if math.IsNaN(ref) {
			tight := *opt
			tight.AccuracyGoal /= refTighten
			res, err := fastmi.EstimateAMI(ctx, a, b, &tight)
			if err != nil {
				return errs.Wrap(err, "reference estimate")
			}
			ref = res.Value
			p.Fprintf(os.Stderr, "reference AMI %.6f ± %.6f (%d samples)\n", res.Value, res.StdErr, res.Samples)
		}
		cov, err = fastmi.CalibrateAMI(ctx, cb, a, b, opt, ref)
	case "smi":
		opt := s.SMIOptions()
		if cfg.goal != 0 {
			opt.PrecisionGoal = cfg.goal
		}
		if err := opt.Valid(); err != nil {
			return err
		}
		ref := cfg.ref
		if math.IsNaN(ref) {
			tight := *opt
			tight.PrecisionGoal /= refTighten
			res, err := fastmi.EstimateSMI(ctx, a, b, &tight)
			if err != nil {
				return errs.Wrap(err, "reference estimate")
			}
			ref = res.Value
			p.Fprintf(os.Stderr, "reference SMI %.6f ± %.6f (%d samples)\n", res.Value, res.StdErr, res.Samples)
		}
		cov, err = fastmi.CalibrateSMI(ctx, cb, a, b, opt, ref)
	default:
		return errs.Kindf(errs.KindInvalidParam, "unknown metric %q", cfg.metric)
	}
	if err != nil {
		return err
	}
	return cov.WriteWith(os.Stdout, render)
}

func (cfg *config) labels() ([]string, []string, error) {
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
