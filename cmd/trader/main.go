package main

import (
	"context"
	"flag"
	"log"
	"os"
	"sync/atomic"
	"time"

	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"

	"main/internal/bus"
	"main/internal/ledger"
	"main/internal/model"
	"main/internal/obs"
	"main/internal/ops"
	"main/internal/quote"
	"main/internal/report"
	"main/internal/runner"
	"main/internal/signal"
	"main/internal/tender"
	"main/internal/venue/sim"
)

// engineSet is the reload unit: signal and quoting tuning can change at
// runtime, so the engines built from them swap together. Instruments, risk
// limits and tender settings are fixed for the session.
type engineSet struct {
	runner *runner.Runner
}

type runtimeEngines struct {
	v atomic.Value
}

func (r *runtimeEngines) Load() *engineSet {
	return r.v.Load().(*engineSet)
}

func (r *runtimeEngines) Update(set *engineSet) {
	r.v.Store(set)
}

func main() {
	configPath := flag.String("config", "", "Path to JSON config (empty=defaults)")
	configReload := flag.Duration("config-reload-interval", 2*time.Second, "Config reload interval (0=disable)")
	cycleInterval := flag.Duration("cycle-interval", 250*time.Millisecond, "Decision cycle interval")
	queueSize := flag.Int("queue-size", 1024, "Report event queue capacity")
	simStep := flag.Duration("sim-step-interval", 250*time.Millisecond, "Simulated venue tick interval")
	simSeed := flag.Int64("sim-seed", 1, "Simulated venue random seed")
	simTenderEvery := flag.Int("sim-tender-every", 20, "Ticks between simulated tender offers (0=disable)")
	profileAddr := flag.String("pyroscope-addr", "", "Pyroscope server address (empty=disable)")
	flag.Parse()

	loaded, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	if *profileAddr != "" {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: "trader",
			ServerAddress:   *profileAddr,
			Logger:          noopLogger{},
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileInuseObjects,
				pyroscope.ProfileInuseSpace,
			},
		})
		if err != nil {
			log.Fatalf("pyroscope start failed: %v", err)
		}
		defer func() {
			_ = profiler.Stop()
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	venueSim := sim.New(sim.Config{
		Instruments: instrumentList(loaded.Instruments),
		Seed:        *simSeed,
		TotalTicks:  loaded.Tender.TotalTicks,
		TenderEvery: *simTenderEvery,
	})
	lg := ledger.New(loaded.Instruments, loaded.Limits)
	queue := bus.NewQueue(*queueSize)
	metrics := obs.NewMetrics()
	seq := obs.NewSeqGenerator(0)
	reporter := report.New(lg)
	tenders := tender.NewEvaluator(loaded.Tender, lg, loaded.Instruments)

	engines := &runtimeEngines{}
	engines.Update(buildEngines(loaded, venueSim, lg, tenders, queue, metrics, seq))

	if *configPath != "" && *configReload > 0 {
		go watchConfig(ctx, *configPath, *configReload, func(next ops.Loaded) {
			engines.Update(buildEngines(next, venueSim, lg, tenders, queue, metrics, seq))
			logs.Info("signal and quoting engines rebuilt from config")
		})
	}

	reporterDone := make(chan struct{})
	go func() {
		defer close(reporterDone)
		queue.Run(ctx, reporter.Handle)
	}()

	sessionDone := make(chan struct{})
	go stepVenue(ctx, venueSim, *simStep, loaded.Tender.TotalTicks, sessionDone)

	logs.Infof("trader started: %d instruments, %d ticks", len(loaded.Instruments), loaded.Tender.TotalTicks)

	cycle := time.NewTicker(*cycleInterval)
	defer cycle.Stop()
loop:
	for {
		select {
		case <-sys.Shutdown():
			logs.Info("shutdown signal received")
			break loop
		case <-sessionDone:
			logs.Info("session complete")
			break loop
		case <-cycle.C:
			engines.Load().runner.Cycle(ctx)
		}
	}

	queue.Close()
	<-reporterDone
	reporter.LogSummary()
	logMetrics(metrics.Snapshot())
}

// buildEngines wires a runner from the reloadable config sections. The
// ledger and tender evaluator persist across rebuilds so positions and
// decided offers survive.
func buildEngines(loaded ops.Loaded, client *sim.Venue, lg *ledger.Ledger, tenders *tender.Evaluator, queue *bus.Queue, metrics *obs.Metrics, seq *obs.SeqGenerator) *engineSet {
	signals := signal.NewEngine(loaded.Signal)
	quotes := quote.NewEngine(loaded.Quote, lg, signals)
	return &engineSet{
		runner: runner.New(runner.Deps{
			Venue:       client,
			Signals:     signals,
			Quotes:      quotes,
			Ledger:      lg,
			Tenders:     tenders,
			Queue:       queue,
			Metrics:     metrics,
			Seq:         seq,
			Instruments: loaded.Instruments,
		}),
	}
}

// stepVenue advances the simulated session clock until it runs out.
func stepVenue(ctx context.Context, v *sim.Venue, interval time.Duration, totalTicks int, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for tick := 0; tick < totalTicks; tick++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			v.Step()
		}
	}
}

func loadConfig(path string) (ops.Loaded, error) {
	if path == "" {
		return ops.Resolve(ops.FileConfig{
			Instruments: []ops.InstrumentConfig{
				{Ticker: "ALGO", VolatilityTier: "medium", PositionLimit: 25000, MaxOrderSize: 5000},
			},
		})
	}
	return ops.Load(path)
}

func watchConfig(ctx context.Context, path string, interval time.Duration, update func(ops.Loaded)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastMod time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			info, err := os.Stat(path)
			if err != nil {
				logs.Errorf("config stat failed: %v", err)
				continue
			}
			if !info.ModTime().After(lastMod) {
				continue
			}
			loaded, err := ops.Load(path)
			if err != nil {
				logs.Errorf("config reload failed: %v", err)
				continue
			}
			update(loaded)
			lastMod = info.ModTime()
			logs.Infof("config reloaded: %s", path)
		}
	}
}

func instrumentList(instruments map[string]model.Instrument) []model.Instrument {
	out := make([]model.Instrument, 0, len(instruments))
	for _, inst := range instruments {
		out = append(out, inst)
	}
	return out
}

func logMetrics(s obs.Snapshot) {
	logs.Infof("metrics: %d cycles, %d quotes placed, %d skipped, %d fills applied, %d rejected",
		s.Cycles, s.QuotesPlaced, s.QuotesSkipped, s.FillsApplied, s.FillsRejected)
	logs.Infof("metrics: tenders %d accepted, %d rejected, %d repeated; %d venue errors, %d event drops",
		s.TendersAccepted, s.TendersRejected, s.TendersRepeated, s.VenueErrors, s.EventDrops)
	if s.CycleLatency.Count > 0 {
		logs.Infof("metrics: cycle latency min %v avg %v max %v",
			s.CycleLatency.Min, s.CycleLatency.Avg, s.CycleLatency.Max)
	}
}

// noopLogger silences the pyroscope client.
type noopLogger struct{}

func (noopLogger) Infof(string, ...interface{})  {}
func (noopLogger) Debugf(string, ...interface{}) {}
func (noopLogger) Errorf(string, ...interface{}) {}
