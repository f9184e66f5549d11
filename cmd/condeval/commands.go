package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/outpost-build/condeval/internal/ifexpr"
	"github.com/outpost-build/condeval/internal/style"
)

func parseStatus(s string) ifexpr.PolicyStatus {
	switch s {
	case "OLD":
		return ifexpr.PolicyOld
	case "WARN":
		return ifexpr.PolicyWarn
	case "REQUIRED_IF_USED":
		return ifexpr.PolicyRequiredIfUsed
	case "REQUIRED_ALWAYS":
		return ifexpr.PolicyRequiredAlways
	default:
		return ifexpr.PolicyNew
	}
}

func toArgs(values []string) []ifexpr.Arg {
	args := make([]ifexpr.Arg, len(values))
	for i, v := range values {
		args[i] = ifexpr.Arg{Value: v}
	}
	return args
}

var evalCmd = &cobra.Command{
	Use:   "eval -- <if-expression tokens...>",
	Short: "Evaluate a single if() condition against a variable fixture",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newCollaborators(varsPath, cfg.Policy.FactsPath, policyDefaults())
		if err != nil {
			return err
		}
		r := ifexpr.Evaluate(toArgs(args), "eval", c.vars, c.policy, c.fs, c.reg)
		fmt.Print(style.Result(r))
		fmt.Printf("%t\n", r.Value)
		if r.Fatal != nil {
			os.Exit(1)
		}
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run <script>",
	Short: "Run a script of invocations through the block-control machine",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		invs, err := parseScript(f)
		if err != nil {
			return err
		}
		c, err := newCollaborators(varsPath, cfg.Policy.FactsPath, policyDefaults())
		if err != nil {
			return err
		}
		res := run(invs, c)
		for _, w := range res.Warnings {
			fmt.Fprintln(os.Stderr, style.Diagnostic(w))
		}
		if res.Fatal != nil {
			fmt.Fprintln(os.Stderr, style.Diagnostic(*res.Fatal))
			os.Exit(1)
		}
		return nil
	},
}

var checkCmd = &cobra.Command{
	Use:   "check <script...>",
	Short: "Run many scripts concurrently, reporting which ones hit a fatal diagnostic",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runID := uuid.New().String()
		results := make([]runResult, len(args))
		g := new(errgroup.Group)
		g.SetLimit(cfg.Check.Concurrency)

		for i, path := range args {
			i, path := i, path
			g.Go(func() error {
				f, err := os.Open(path)
				if err != nil {
					results[i] = runResult{Fatal: &ifexpr.Diagnostic{Severity: ifexpr.SeverityFatal, Message: err.Error()}}
					return nil
				}
				defer f.Close()

				invs, err := parseScript(f)
				if err != nil {
					results[i] = runResult{Fatal: &ifexpr.Diagnostic{Severity: ifexpr.SeverityFatal, Message: err.Error()}}
					return nil
				}
				c, err := newCollaborators(varsPath, cfg.Policy.FactsPath, policyDefaults())
				if err != nil {
					results[i] = runResult{Fatal: &ifexpr.Diagnostic{Severity: ifexpr.SeverityFatal, Message: err.Error()}}
					return nil
				}
				results[i] = run(invs, c)
				return nil
			})
		}
		_ = g.Wait()

		failed := 0
		for i, path := range args {
			if results[i].Fatal != nil {
				failed++
				fmt.Printf("[%s] FAIL %s: %s\n", runID, path, results[i].Fatal.Message)
			} else {
				fmt.Printf("[%s] ok   %s\n", runID, path)
			}
		}
		if failed > 0 {
			os.Exit(1)
		}
		return nil
	},
}

var explainCmd = &cobra.Command{
	Use:   "explain -- <if-expression tokens...>",
	Short: "Evaluate an expression, printing the governing policy statuses and the five-pass reduction trace",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newCollaborators(varsPath, cfg.Policy.FactsPath, policyDefaults())
		if err != nil {
			return err
		}
		fmt.Printf("policy-auto-deref:    %s\n", c.policy.Status("policy-auto-deref"))
		fmt.Printf("policy-quoted-demote: %s\n", c.policy.Status("policy-quoted-demote"))

		r, trace := ifexpr.EvaluateTraced(toArgs(args), "explain", c.vars, c.policy, c.fs, c.reg)
		fmt.Print(style.Trace(trace))
		fmt.Print(style.Result(r))
		fmt.Printf("result: %t\n", r.Value)
		return nil
	},
}
