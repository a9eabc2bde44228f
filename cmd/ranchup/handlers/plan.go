package handlers

import (
	"encoding/json"
	"fmt"

	"github.com/imamik/ranchup/internal/platform/rancher"
)

// printPlan writes the upgrade request a dry run would have sent.
func printPlan(plan *rancher.ServiceUpgrade) {
	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		fmt.Fprintf(stderr, "could not render plan: %v\n", err)
		return
	}
	fmt.Fprintf(stdout, "Upgrade request (dry run):\n%s\n", data)
}
