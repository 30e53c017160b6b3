// Command staticlint runs the vet-style checks used on this repository:
// a fixed set of toolchain analyzers, ineffassign, nilerr, nopkglock and
// whichever staticcheck analyzers config.json enables.
//
// config.json is read from the directory of the binary, for example
//
//	{"Staticcheck": ["SA1000", "SA4006", "SA5000"]}
package main

import (
	// Standard analyzers from the Go toolchain.
	"golang.org/x/tools/go/analysis/passes/copylock"
	"golang.org/x/tools/go/analysis/passes/loopclosure"
	"golang.org/x/tools/go/analysis/passes/lostcancel"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/structtag"
	"golang.org/x/tools/go/analysis/passes/unmarshal"
	"golang.org/x/tools/go/analysis/passes/unreachable"

	// Third-party analyzers.
	"github.com/gordonklaus/ineffassign/pkg/ineffassign"
	"github.com/gostaticanalysis/nilerr"

	"github.com/patric-chuzhbe/usrlinks/cmd/staticlint/nopkglock"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/multichecker"
	"honnef.co/go/tools/staticcheck"

	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// Config is the file listing the enabled staticcheck analyzers.
const Config = `config.json`

// ConfigData is the content of Config.
type ConfigData struct {
	Staticcheck []string
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		panic(err)
	}

	myChecks := []*analysis.Analyzer{
		copylock.Analyzer,    // Checks for copying of locks by value.
		loopclosure.Analyzer, // Detects references to loop variables inside closures.
		lostcancel.Analyzer,  // Finds contexts that are not canceled.
		printf.Analyzer,      // Verifies format strings.
		structtag.Analyzer,   // Checks for incorrect struct field tags.
		unmarshal.Analyzer,   // Detects unused fields in JSON unmarshal targets.
		unreachable.Analyzer, // Detects unreachable code.

		ineffassign.Analyzer, // Detects ineffective assignments.
		nilerr.Analyzer,      // Flags returning nil after an error was created.

		nopkglock.Analyzer, // Locks live in the struct they guard.
	}

	multichecker.Main(append(myChecks, enabledStaticchecks(cfg)...)...)
}

// loadConfig reads config.json next to the binary. A missing file enables
// no staticcheck analyzers.
func loadConfig() (ConfigData, error) {
	var cfg ConfigData

	appfile, err := os.Executable()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(filepath.Join(filepath.Dir(appfile), Config))
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	err = json.Unmarshal(data, &cfg)

	return cfg, err
}

func enabledStaticchecks(cfg ConfigData) []*analysis.Analyzer {
	checks := make(map[string]bool, len(cfg.Staticcheck))
	for _, name := range cfg.Staticcheck {
		checks[name] = true
	}

	var result []*analysis.Analyzer
	for _, v := range staticcheck.Analyzers {
		if checks[v.Analyzer.Name] {
			result = append(result, v.Analyzer)
		}
	}
	return result
}
