package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var webhooksCmd = &cobra.Command{
	Use:   "webhooks",
	Short: "Webhook subscription commands",
}

var webhooksVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check the callback url is subscribed",
	RunE:  runWebhooksVerify,
}

var webhooksUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Subscribe the callback url and remove stale subscriptions",
	RunE:  runWebhooksUpdate,
}

func init() {
	webhooksCmd.AddCommand(webhooksVerifyCmd)
	webhooksCmd.AddCommand(webhooksUpdateCmd)
}

func runWebhooksVerify(cmd *cobra.Command, args []string) error {
	cfg, err := loadFileConfig(configFile)
	if err != nil {
		return err
	}
	rt, err := newRuntime(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	ok, err := rt.connector.VerifyWebHooks(cmd.Context())
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("callback url %s is not subscribed", rt.connector.Config().WebHooks.CallbackURL)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Callback url %s is subscribed\n", rt.connector.Config().WebHooks.CallbackURL)
	return nil
}

func runWebhooksUpdate(cmd *cobra.Command, args []string) error {
	cfg, err := loadFileConfig(configFile)
	if err != nil {
		return err
	}
	rt, err := newRuntime(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	report, err := rt.connector.UpdateWebHooks(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, id := range report.Deleted {
		fmt.Fprintf(out, "Deleted stale subscription %d\n", id)
	}
	switch {
	case report.Created != nil:
		fmt.Fprintf(out, "Created subscription %d on %s\n", report.Created.ID, report.Created.URL)
	case report.Kept != nil:
		fmt.Fprintf(out, "Kept subscription %d on %s\n", report.Kept.ID, report.Kept.URL)
	}
	return nil
}
