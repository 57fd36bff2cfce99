// Package build runs the front-end toolchain that produces the deploy output directory.
package build

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/arencloud/sitedeploy/internal/logging"
)

// Step is one toolchain invocation, e.g. {"install"} or {"run", "build"}.
type Step []string

// DefaultSteps installs dependencies and then builds.
var DefaultSteps = []Step{{"install"}, {"run", "build"}}

type Runner struct {
	Bin    string // resolved through PATH
	Dir    string
	Steps  []Step
	Stdout io.Writer
	Stderr io.Writer
	logger logging.Logger
}

func NewRunner(bin, dir string, logger logging.Logger) *Runner {
	return &Runner{
		Bin:    bin,
		Dir:    dir,
		Steps:  DefaultSteps,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		logger: logger,
	}
}

// Build runs every step in order and stops at the first one that fails or exits non-zero.
func (r *Runner) Build(ctx context.Context) error {
	path, err := exec.LookPath(r.Bin)
	if err != nil {
		return fmt.Errorf("%s not found in PATH: %w", r.Bin, err)
	}
	for _, step := range r.Steps {
		name := r.Bin + " " + strings.Join(step, " ")
		r.logger.Info("build step", "cmd", name, "dir", r.Dir)
		cmd := exec.CommandContext(ctx, path, step...)
		cmd.Dir = r.Dir
		cmd.Stdout = r.Stdout
		cmd.Stderr = r.Stderr
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}
