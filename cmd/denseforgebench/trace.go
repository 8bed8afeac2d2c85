package main

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/denseforge/denseforge/engine"
)

func newTraceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trace <scenario>",
		Short: "Execute a scenario and dump its trace as a table",
		Args:  cobra.ExactArgs(1),
		RunE:  runTrace,
	}
	addEngineFlags(cmd)
	return cmd
}

func runTrace(cmd *cobra.Command, args []string) error {
	s, err := findScenario(args[0])
	if err != nil {
		return err
	}
	policy, mode, err := enginePolicyMode(cmd)
	if err != nil {
		return err
	}

	e := engine.New(policy, mode)
	defer e.Close()

	if _, err := s.build(e); err != nil {
		return fmt.Errorf("building scenario %q: %w", s.name, err)
	}
	if err := e.Execute(); err != nil {
		return fmt.Errorf("executing scenario %q: %w", s.name, err)
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"#", "KIND", "NODE", "DETAIL"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")

	tracer := e.Tracer()
	for i := 0; i < tracer.Len(); i++ {
		ev := tracer.Event(i)
		node := "-"
		if ev.Node >= 0 {
			node = strconv.Itoa(ev.Node)
		}
		table.Append([]string{strconv.Itoa(i), ev.Kind.String(), node, ev.Detail})
	}
	table.Render()
	return nil
}
