// Package runner executes a list of CI steps in order, stopping at the
// first one that fails.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/hkdywg/toolfetch/internal/output"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

type Step struct {
	Name string            `yaml:"name"`
	Run  string            `yaml:"run"`
	Dir  string            `yaml:"dir,omitempty"`
	Env  map[string]string `yaml:"env,omitempty"`
}

type Plan struct {
	Steps []Step `yaml:"steps"`
}

// Argv splits Run on whitespace. No shell is involved, so quoting and
// expansion are not supported.
func (s Step) Argv() []string {
	return strings.Fields(s.Run)
}

func (s Step) label() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Run
}

func ParsePlan(data []byte) (*Plan, error) {
	var plan Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("error parsing steps: %w", err)
	}
	if len(plan.Steps) == 0 {
		return nil, errors.New("no steps defined")
	}
	for i, step := range plan.Steps {
		if len(step.Argv()) == 0 {
			return nil, fmt.Errorf("step %d (%s) has no command", i+1, step.Name)
		}
	}
	return &plan, nil
}

func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading steps file: %w", err)
	}
	return ParsePlan(data)
}

type Runner struct {
	Stdout  io.Writer
	Stderr  io.Writer
	Manager *output.Manager
}

func New(stdout, stderr io.Writer, manager *output.Manager) *Runner {
	return &Runner{Stdout: stdout, Stderr: stderr, Manager: manager}
}

// RunStep runs a single step with its output attached to the runner's
// writers.
func (r *Runner) RunStep(ctx context.Context, step Step) error {
	argv := step.Argv()
	if len(argv) == 0 {
		return fmt.Errorf("step %s has no command", step.label())
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = step.Dir
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	if len(step.Env) > 0 {
		keys := lo.Keys(step.Env)
		sort.Strings(keys)
		cmd.Env = os.Environ()
		for _, k := range keys {
			cmd.Env = append(cmd.Env, k+"="+step.Env[k])
		}
	}
	log.Debug().Str("op", "runner/runner").Strs("argv", argv).Str("dir", step.Dir).Msgf("Running %s", step.label())
	return cmd.Run()
}

// Run executes plan.Steps sequentially and returns the first failure.
// Later steps are not started once one fails.
func (r *Runner) Run(ctx context.Context, plan *Plan) error {
	for i, step := range plan.Steps {
		id := 0
		if r.Manager != nil {
			id = r.Manager.Register(step.label())
		}
		if err := r.RunStep(ctx, step); err != nil {
			err = fmt.Errorf("step %d (%s) failed: %w", i+1, step.label(), err)
			log.Error().Str("op", "runner/runner").Err(err).Msg("Step failed")
			if r.Manager != nil {
				r.Manager.ReportError(id, err)
			}
			return err
		}
		if r.Manager != nil {
			r.Manager.Complete(id, "")
		}
	}
	return nil
}
