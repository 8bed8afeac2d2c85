package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/denseforge/denseforge/engine"
)

func addEngineFlags(cmd *cobra.Command) {
	cmd.Flags().String("policy", "reference", "kernel policy: reference|vector")
	cmd.Flags().String("mode", "research", "execution mode: research|deployment")
}

func enginePolicyMode(cmd *cobra.Command) (engine.KernelPolicy, engine.ExecutionMode, error) {
	policyStr, _ := cmd.Flags().GetString("policy")
	modeStr, _ := cmd.Flags().GetString("mode")

	var policy engine.KernelPolicy
	switch strings.ToLower(policyStr) {
	case "reference":
		policy = engine.Reference
	case "vector":
		policy = engine.Vector
	default:
		return 0, 0, fmt.Errorf("unknown --policy %q, want reference|vector", policyStr)
	}

	var mode engine.ExecutionMode
	switch strings.ToLower(modeStr) {
	case "research":
		mode = engine.Research
	case "deployment":
		mode = engine.Deployment
	default:
		return 0, 0, fmt.Errorf("unknown --mode %q, want research|deployment", modeStr)
	}

	return policy, mode, nil
}
