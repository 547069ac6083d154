package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gitrdm/gokanprop/internal/model"
	"github.com/gitrdm/gokanprop/pkg/engine"
	"github.com/gitrdm/gokanprop/pkg/search"
)

// SolveOptions holds solve-specific flags.
type SolveOptions struct {
	*RootOptions
	Limit     int
	Heuristic string
}

// SolveResult lists the solutions found for one model.
type SolveResult struct {
	Model     string           `json:"model"`
	Heuristic string           `json:"heuristic"`
	Variables []string         `json:"variables"`
	Solutions []map[string]int `json:"solutions"`
	Nodes     int              `json:"nodes"`

	values [][]int
}

// NewSolveCommand creates the solve command.
func NewSolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SolveOptions{RootOptions: rootOpts, Limit: -1}

	cmd := &cobra.Command{
		Use:   "solve <model.yaml>",
		Short: "Enumerate the solutions of a model",
		Long: `Post a model and enumerate its solutions by depth-first search.

--limit 0 enumerates every solution. Without --limit the search.limit
setting applies. An infeasible model has no solutions and exits 1.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", -1, "maximum number of solutions (0 = all, default from config)")
	cmd.Flags().StringVar(&opts.Heuristic, "heuristic", "", "variable selection: dom or lex (default from config)")

	return cmd
}

func runSolve(ctx context.Context, opts *SolveOptions, path string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}

	limit := opts.Config.Search.Limit
	if opts.Limit >= 0 {
		limit = opts.Limit
	}
	name := opts.Config.Search.Heuristic
	if opts.Heuristic != "" {
		name = opts.Heuristic
	}
	heuristic, err := search.ParseHeuristic(name)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid flags", err)
	}

	f, err := model.Load(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load model", err)
	}

	e := opts.newEngine()
	m, err := model.Build(e, f)
	infeasible := false
	switch {
	case err == nil:
	case engine.IsRootConflict(err):
		infeasible = true
		opts.Logger.Info("model is infeasible", "model", f.Name, "error", err)
	case errors.Is(err, model.ErrInvalidModel):
		return WrapExitError(ExitCommandError, "invalid model", err)
	default:
		return WrapExitError(ExitCommandError, "failed to post model", err)
	}

	solver := search.New(e, m.Vars, search.WithHeuristic(heuristic), search.WithLogger(opts.Logger))
	values, err := solver.Solve(ctx, limit)
	if err != nil {
		return WrapExitError(ExitFailure, "search failed", err)
	}

	res := SolveResult{
		Model:     m.Name,
		Heuristic: heuristic.String(),
		Variables: make([]string, len(m.Vars)),
		Solutions: make([]map[string]int, len(values)),
		Nodes:     solver.Nodes(),
		values:    values,
	}
	for i, v := range m.Vars {
		res.Variables[i] = e.Name(v)
	}
	for i, sol := range values {
		res.Solutions[i] = make(map[string]int, len(sol))
		for j, val := range sol {
			res.Solutions[i][res.Variables[j]] = val
		}
	}
	opts.Logger.Debug("search finished", "model", m.Name, "stats", e.Stats().String())

	out := cmd.OutOrStdout()
	if opts.Format == "json" {
		status := "ok"
		if infeasible {
			status = "error"
		}
		err = writeJSON(out, status, res)
	} else {
		err = writeSolveText(out, res)
	}
	if err != nil {
		return err
	}
	if err := opts.finish(cmd); err != nil {
		return err
	}

	if infeasible {
		return NewExitError(ExitFailure, "model is infeasible")
	}
	return nil
}

func writeSolveText(w io.Writer, res SolveResult) error {
	if _, err := fmt.Fprintf(w, "model: %s\n", res.Model); err != nil {
		return err
	}
	fmt.Fprintf(w, "solutions: %d\n", len(res.values))
	for _, sol := range res.values {
		parts := make([]string, len(sol))
		for j, val := range sol {
			parts[j] = fmt.Sprintf("%s=%d", res.Variables[j], val)
		}
		fmt.Fprintf(w, "  %s\n", strings.Join(parts, " "))
	}
	return nil
}
