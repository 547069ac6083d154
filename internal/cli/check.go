package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/gitrdm/gokanprop/internal/model"
	"github.com/gitrdm/gokanprop/internal/parallel"
	"github.com/gitrdm/gokanprop/pkg/engine"
)

// Check statuses.
const (
	StatusConsistent = "consistent"
	StatusInfeasible = "infeasible"
	StatusInvalid    = "invalid"
)

// CheckResult is the outcome of posting one model file.
type CheckResult struct {
	File        string      `json:"file"`
	Model       string      `json:"model,omitempty"`
	Status      string      `json:"status"`
	Propagators int         `json:"propagators"`
	Domains     []VarDomain `json:"domains,omitempty"`
	Reason      string      `json:"reason,omitempty"`
}

// VarDomain is a variable and its domain after root propagation.
type VarDomain struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <model.yaml>...",
		Short: "Post models and report their root-level domains",
		Long: `Post every constraint of each model file on a fresh engine and
print the domains left by root-level propagation.

Files are checked concurrently. The command exits 1 when a model is
infeasible and 2 when a file cannot be read or is not a valid model.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), rootOpts, args, cmd)
		},
	}
	return cmd
}

func runCheck(ctx context.Context, opts *RootOptions, paths []string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}

	results, err := parallel.Map(ctx, opts.Config.Workers, paths, func(ctx context.Context, path string) (CheckResult, error) {
		return opts.checkFile(path), nil
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "check interrupted", err)
	}

	code := ExitSuccess
	for _, r := range results {
		switch r.Status {
		case StatusInvalid:
			code = ExitCommandError
		case StatusInfeasible:
			if code == ExitSuccess {
				code = ExitFailure
			}
		}
	}

	out := cmd.OutOrStdout()
	if opts.Format == "json" {
		status := "ok"
		if code != ExitSuccess {
			status = "error"
		}
		err = writeJSON(out, status, results)
	} else {
		err = writeCheckText(out, results)
	}
	if err != nil {
		return err
	}
	if err := opts.finish(cmd); err != nil {
		return err
	}

	switch code {
	case ExitCommandError:
		return NewExitError(code, "one or more models are invalid")
	case ExitFailure:
		return NewExitError(code, "one or more models are infeasible")
	}
	return nil
}

// checkFile never fails: problems are reported in the result so that one
// bad file does not stop the others.
func (o *RootOptions) checkFile(path string) CheckResult {
	res := CheckResult{File: path}
	log := o.Logger.With("file", path)

	f, err := model.Load(path)
	if err != nil {
		log.Debug("model rejected", "error", err)
		res.Status = StatusInvalid
		res.Reason = err.Error()
		return res
	}
	res.Model = f.Name

	e := o.newEngine()
	m, err := model.Build(e, f)
	res.Propagators = e.NumPropagators()
	switch {
	case err == nil:
		res.Status = StatusConsistent
	case engine.IsRootConflict(err):
		res.Status = StatusInfeasible
		res.Reason = err.Error()
	default:
		res.Status = StatusInvalid
		res.Reason = err.Error()
		if errors.Is(err, model.ErrInvalidModel) {
			log.Debug("model rejected", "error", err)
		}
		return res
	}

	if res.Status == StatusConsistent {
		res.Domains = make([]VarDomain, len(m.Vars))
		for i, v := range m.Vars {
			res.Domains[i] = VarDomain{Name: e.Name(v), Domain: e.Domain(v).String()}
		}
	}
	log.Info("model checked", "model", res.Model, "status", res.Status, "propagators", res.Propagators)
	return res
}

func writeCheckText(w io.Writer, results []CheckResult) error {
	for _, r := range results {
		if _, err := fmt.Fprintf(w, "== %s\n", r.File); err != nil {
			return err
		}
		if r.Model != "" {
			fmt.Fprintf(w, "model: %s\n", r.Model)
		}
		fmt.Fprintf(w, "status: %s\n", r.Status)
		if r.Status != StatusInvalid {
			fmt.Fprintf(w, "propagators: %d\n", r.Propagators)
		}
		for _, d := range r.Domains {
			fmt.Fprintf(w, "  %s = %s\n", d.Name, d.Domain)
		}
		if r.Reason != "" {
			fmt.Fprintf(w, "reason: %s\n", r.Reason)
		}
	}
	return nil
}
