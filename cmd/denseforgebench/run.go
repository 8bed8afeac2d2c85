package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/denseforge/denseforge/engine"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <scenario>",
		Short: "Build and execute one of the engine's validated end-to-end scenarios",
		Args:  cobra.ExactArgs(1),
		RunE:  runRun,
	}
	addEngineFlags(cmd)
	cmd.Flags().Bool("list", false, "list available scenario names and exit")
	return cmd
}

func runRun(cmd *cobra.Command, args []string) error {
	if list, _ := cmd.Flags().GetBool("list"); list {
		return listScenarios(cmd)
	}

	s, err := findScenario(args[0])
	if err != nil {
		return err
	}

	policy, mode, err := enginePolicyMode(cmd)
	if err != nil {
		return err
	}

	if s.name == "determinism" {
		return runDeterminism(cmd, s, policy, mode)
	}

	e := engine.New(policy, mode)
	defer e.Close()

	out, err := s.build(e)
	if err != nil {
		return fmt.Errorf("building scenario %q: %w", s.name, err)
	}
	if err := e.Execute(); err != nil {
		return fmt.Errorf("executing scenario %q: %w", s.name, err)
	}

	values, err := e.ReadFloats(out)
	if err != nil {
		return err
	}
	cmd.Printf("%s: %s\n", s.name, s.description)
	cmd.Printf("output (node %d): %s\n", out, formatFloats(values))
	return nil
}

func runDeterminism(cmd *cobra.Command, s scenario, policy engine.KernelPolicy, mode engine.ExecutionMode) error {
	e := engine.New(policy, mode)
	defer e.Close()

	out, err := s.build(e)
	if err != nil {
		return err
	}

	var first []float32
	firstPerCall := -1
	for i := 0; i < 50; i++ {
		before := e.Tracer().Len()
		if err := e.Execute(); err != nil {
			return fmt.Errorf("execute %d: %w", i, err)
		}
		perCall := e.Tracer().Len() - before
		values, err := e.ReadFloats(out)
		if err != nil {
			return err
		}
		if i == 0 {
			first = values
			firstPerCall = perCall
			continue
		}
		if perCall != firstPerCall {
			return fmt.Errorf("execute %d appended %d trace events, execute 0 appended %d", i, perCall, firstPerCall)
		}
		for j, v := range values {
			if v != first[j] {
				return fmt.Errorf("execute %d diverged from execute 0 at element %d: %v != %v", i, j, v, first[j])
			}
		}
	}

	cmd.Printf("determinism: 50 executes, output stable at %s\n", formatFloats(first))
	cmd.Printf("trace-event count is constant per call at %d events\n", firstPerCall)
	return nil
}

func listScenarios(cmd *cobra.Command) error {
	for _, s := range scenarios {
		cmd.Printf("%-20s %s\n", s.name, s.description)
	}
	return nil
}

func formatFloats(values []float32) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%g", v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
