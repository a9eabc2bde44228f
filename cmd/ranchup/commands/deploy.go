package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/ranchup/cmd/ranchup/handlers"
)

// Deploy returns the command that upgrades a service to a new image.
//
// Settings are resolved in order: defaults, the --config file, environment
// variables, flags. Later sources win.
//
// Environment variables:
//
//	RANCHER_URL, RANCHER_KEY, RANCHER_SECRET: cluster API and credentials
//	RANCHER_SERVICE, RANCHER_IMAGE: what to deploy
//	MSTEAMS_DEPLOY_CHANNEL: Teams webhook for deploy notifications
func Deploy() *cobra.Command {
	var opts handlers.DeployOptions

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Upgrade a Rancher service to a new image",
		Long: `Upgrade a Rancher service to a new image without downtime.

The deploy process:
1. Looks up the service and checks that it is active
2. Starts an in-service upgrade with the new image
3. Polls the service until Rancher reports it as upgraded
4. Finishes the upgrade, or rolls it back if it failed

Use --dry-run to print the upgrade request without sending it.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Deploy(cmd.Context(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file")
	f.StringVarP(&opts.Service, "service", "s", "", "Service to upgrade, as stack/service")
	f.StringVarP(&opts.Image, "image", "i", "", "Image to deploy, with or without the docker: prefix")
	f.BoolVar(&opts.DryRun, "dry-run", false, "Show the upgrade request without executing it")
	f.BoolVar(&opts.NoConfirm, "no-confirm", false, "Start the upgrade without waiting for it or finishing it")
	f.DurationVar(&opts.Timeout, "timeout", 0, "Roll back if the upgrade is not done within this time (0 waits forever)")
	f.DurationVar(&opts.PollInterval, "poll-interval", 0, "Delay between status polls (default 1s)")
	f.Int64Var(&opts.BatchSize, "batch-size", 0, "Containers upgraded at once")
	f.Int64Var(&opts.IntervalMillis, "interval-millis", 0, "Delay between batches in milliseconds")
	f.BoolVar(&opts.StartFirst, "start-first", false, "Start new containers before stopping old ones")
	f.StringVar(&opts.LogFormat, "log-format", "", "Log format: text or json")

	return cmd
}
