// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package diagnostics

import (
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
	"strings"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"
)

var (
	DiagnosticsFlag = cli.IntFlag{
		Name:  "diagnostic-port",
		Usage: "enable hosting of a realtime diagnostic server by providing a port",
		Value: 0,
	}
	CpuProfileFlag = cli.StringFlag{
		Name:  "cpuprofile",
		Usage: "sets the target file for storing CPU profiles to, disabled if empty",
		Value: "",
	}
	TraceFlag = cli.StringFlag{
		Name:  "tracefile",
		Usage: "sets the target file for traces to, disabled if empty",
		Value: "",
	}
)

// Flags lists the flags evaluated by AddPerformanceDiagnostics.
var Flags = []cli.Flag{&DiagnosticsFlag, &CpuProfileFlag, &TraceFlag}

// AddPerformanceDiagnostics wraps an action such that, depending on the
// diagnostic flags, a pprof server is started and CPU profiles and execution
// traces are recorded while the action runs.
func AddPerformanceDiagnostics(action cli.ActionFunc) cli.ActionFunc {
	return AddPerformanceDiagnosticsAction(action, &DiagnosticsFlag, &CpuProfileFlag, &TraceFlag)
}

// AddPerformanceDiagnosticsAction is like AddPerformanceDiagnostics but reads
// the given flags instead of the package defaults.
func AddPerformanceDiagnosticsAction(action cli.ActionFunc, diagnosticsFlag *cli.IntFlag, cpuProfileFlag, traceFlag *cli.StringFlag) cli.ActionFunc {
	return func(context *cli.Context) error {
		startDiagnosticServer(context.Int(diagnosticsFlag.Name))

		if file := strings.TrimSpace(context.String(cpuProfileFlag.Name)); file != "" {
			stop, err := startCpuProfiler(file)
			if err != nil {
				return err
			}
			defer stop()
		}

		if file := strings.TrimSpace(context.String(traceFlag.Name)); file != "" {
			stop, err := startTracer(file)
			if err != nil {
				return err
			}
			defer stop()
		}

		return action(context)
	}
}

func startDiagnosticServer(port int) {
	if port <= 0 || port >= (1<<16) {
		return
	}
	addr := fmt.Sprintf("localhost:%d", port)
	log.Info("Starting diagnostic server", "url", "http://"+addr+"/debug/pprof/")
	log.Warn("Block and mutex sampling enabled for diagnostics, performance may degrade")
	go func() {
		if err := http.ListenAndServe(addr, nil); err != nil {
			log.Error("Diagnostic server failed", "err", err)
		}
	}()
	runtime.SetBlockProfileRate(1)
	runtime.SetMutexProfileFraction(1)
}

func startCpuProfiler(filename string) (func(), error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("could not create CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		return nil, fmt.Errorf("could not start CPU profile: %w", err)
	}
	log.Debug("Recording CPU profile", "file", filename)
	return func() {
		pprof.StopCPUProfile()
		if err := f.Close(); err != nil {
			log.Warn("Failed to close CPU profile", "file", filename, "err", err)
		}
	}, nil
}

func startTracer(filename string) (func(), error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace file: %w", err)
	}
	if err := trace.Start(f); err != nil {
		return nil, fmt.Errorf("failed to start trace: %w", err)
	}
	log.Debug("Recording execution trace", "file", filename)
	return func() {
		trace.Stop()
		if err := f.Close(); err != nil {
			log.Warn("Failed to close trace file", "file", filename, "err", err)
		}
	}, nil
}
