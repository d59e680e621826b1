package smoketest

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"time"

	"github.com/removethebg/rtbg/internal/logger"
)

// Scenario is one named smoke test.
type Scenario struct {
	Name string
	Run  func(ctx context.Context) error
}

// Result is the outcome of one scenario.
type Result struct {
	Name     string
	Err      error
	Duration time.Duration
}

// Passed reports whether the scenario succeeded.
func (r Result) Passed() bool { return r.Err == nil }

// Summary collects scenario results in run order.
type Summary struct {
	Results []Result
}

// PassedCount returns how many scenarios succeeded.
func (s Summary) PassedCount() int {
	n := 0
	for _, r := range s.Results {
		if r.Passed() {
			n++
		}
	}
	return n
}

// Passed is true only when every scenario passed.
func (s Summary) Passed() bool {
	return len(s.Results) > 0 && s.PassedCount() == len(s.Results)
}

// Suite exercises a Remover the way a user of the packaged library would.
type Suite struct {
	remover  Remover
	log      logger.Logger
	tempRoot string
	suffix   string
}

// NewSuite creates a suite. suffix is the marker process_folder appends to
// output names, e.g. "_no_bg".
func NewSuite(r Remover, log logger.Logger, tempRoot, suffix string) *Suite {
	if log == nil {
		log = logger.Nop()
	}
	if suffix == "" {
		suffix = "_no_bg"
	}
	return &Suite{remover: r, log: log, tempRoot: tempRoot, suffix: suffix}
}

// Scenarios returns the scenarios in run order.
func (s *Suite) Scenarios() []Scenario {
	return []Scenario{
		{Name: "Core Functionality", Run: s.coreFunctionality},
		{Name: "CLI Functionality", Run: s.cliFunctionality},
		{Name: "Edge Cases", Run: s.edgeCases},
	}
}

// Run executes every scenario; a failing or panicking scenario does not stop
// the ones after it.
func (s *Suite) Run(ctx context.Context) Summary {
	s.log.Log("🚀 Remove-the-BG Package Tests")
	s.log.Log("========================================")

	var summary Summary
	for _, sc := range s.Scenarios() {
		s.log.Logf("\n📋 %s\n", sc.Name)
		start := time.Now()
		err := runScenario(ctx, sc)
		res := Result{Name: sc.Name, Err: err, Duration: time.Since(start)}
		summary.Results = append(summary.Results, res)
		if err != nil {
			s.log.Logf("   [ERROR] %v\n", err)
			s.log.Logf("[FAIL] %s: FAILED\n", sc.Name)
		} else {
			s.log.Logf("[PASS] %s: PASSED\n", sc.Name)
		}
	}

	s.log.Logf("\n📊 Test Results: %d/%d passed\n", summary.PassedCount(), len(summary.Results))
	if summary.Passed() {
		s.log.Log("🎉 All tests passed!")
	} else {
		s.log.Log("[FAIL] Some tests failed")
	}
	return summary
}

func runScenario(ctx context.Context, sc Scenario) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	if err := ctx.Err(); err != nil {
		return err
	}
	return sc.Run(ctx)
}

func (s *Suite) scratch() (string, func(), error) {
	dir, err := os.MkdirTemp(s.tempRoot, "rtbg-smoke-")
	if err != nil {
		return "", nil, err
	}
	return dir, func() { os.RemoveAll(dir) }, nil
}

func (s *Suite) coreFunctionality(ctx context.Context) error {
	s.log.Log("🧪 Testing core functionality...")
	dir, cleanup, err := s.scratch()
	if err != nil {
		return err
	}
	defer cleanup()

	input := filepath.Join(dir, "test.jpg")
	if err := WriteTestImage(input, Red, image.Point{X: canvasSize, Y: canvasSize}); err != nil {
		return err
	}
	s.log.Logf("   Created test image: %s\n", input)

	output, err := s.remover.RemoveBackground(ctx, input)
	if err != nil {
		return fmt.Errorf("error during background removal: %w", err)
	}
	if _, err := os.Stat(output); err != nil {
		return fmt.Errorf("output file not created: %s", output)
	}
	s.log.Log("   [SUCCESS] Background removal succeeded")
	return nil
}

func (s *Suite) cliFunctionality(ctx context.Context) error {
	s.log.Log("🧪 Testing CLI functionality...")
	dir, cleanup, err := s.scratch()
	if err != nil {
		return err
	}
	defer cleanup()

	colors := []color.Color{Red, Green, Blue}
	for i, c := range colors {
		p := filepath.Join(dir, fmt.Sprintf("test_%d.png", i))
		if err := WriteTestImage(p, c, image.Point{X: canvasSize, Y: canvasSize}); err != nil {
			return err
		}
	}
	s.log.Logf("   Created %d test images\n", len(colors))

	if err := s.remover.ProcessFolder(ctx, dir); err != nil {
		return fmt.Errorf("CLI folder processing failed: %w", err)
	}

	outputs, err := filepath.Glob(filepath.Join(dir, "*"+s.suffix+".png"))
	if err != nil {
		return err
	}
	if len(outputs) < len(colors) {
		return fmt.Errorf("expected %d output files, got %d", len(colors), len(outputs))
	}
	s.log.Log("   [SUCCESS] CLI folder processing succeeded")
	return nil
}

func (s *Suite) edgeCases(ctx context.Context) error {
	s.log.Log("🧪 Testing edge cases...")

	_, err := s.remover.RemoveBackground(ctx, filepath.FromSlash("/non/existent/file.jpg"))
	switch {
	case err == nil:
		return errors.New("should have failed with a file-not-found error")
	case !errors.Is(err, ErrInputNotFound):
		return fmt.Errorf("unexpected error for non-existent file: %w", err)
	}
	s.log.Log("   [SUCCESS] Correctly handled non-existent file")

	f, err := os.CreateTemp(s.tempRoot, "rtbg-smoke-*.txt")
	if err != nil {
		return err
	}
	name := f.Name()
	defer os.Remove(name)
	if _, err := f.WriteString("not an image"); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	_, err = s.remover.RemoveBackground(ctx, name)
	switch {
	case err == nil:
		return errors.New("should have failed with an unsupported-format error")
	case !errors.Is(err, ErrUnsupportedFormat):
		return fmt.Errorf("unexpected error for unsupported format: %w", err)
	}
	s.log.Log("   [SUCCESS] Correctly handled unsupported file format")
	return nil
}
