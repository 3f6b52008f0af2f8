package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/goliatone/go-brevo/adapters/gocommand"
	"github.com/goliatone/go-brevo/core"
	brevoquery "github.com/goliatone/go-brevo/query"
	"github.com/spf13/cobra"
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Check the credentials and persist mailing lists and attributes",
	RunE:  runConnect,
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print the connector and account informations",
	RunE:  runInfo,
}

func runConnect(cmd *cobra.Command, args []string) error {
	cfg, err := loadFileConfig(configFile)
	if err != nil {
		return err
	}
	rt, err := newRuntime(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	report, err := rt.connector.Connect(cmd.Context())
	if err != nil {
		return fmt.Errorf("connect failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Connected to %s (%s)\n", report.Account.CompanyName, report.Account.Email)
	fmt.Fprintf(out, "  Mailing lists: %d\n", len(report.Lists))
	lists := append([]core.MailingList(nil), report.Lists...)
	sort.Slice(lists, func(i, j int) bool { return lists[i].ID < lists[j].ID })
	for _, list := range lists {
		marker := " "
		if strconv.FormatInt(list.ID, 10) == rt.connector.Config().API.ListID {
			marker = "*"
		}
		fmt.Fprintf(out, "   %s %d %s (%d subscribers)\n", marker, list.ID, list.Name, list.TotalSubscribers)
	}
	fmt.Fprintf(out, "  Contact attributes: %d\n", len(report.Attributes))
	return nil
}

func runInfo(cmd *cobra.Command, args []string) error {
	cfg, err := loadFileConfig(configFile)
	if err != nil {
		return err
	}
	rt, err := newRuntime(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	info, err := gocommand.Query[brevoquery.InformationsMessage, core.Informations](cmd.Context(), brevoquery.InformationsMessage{})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %s\n", info.ShortDescription, info.LongDescription)
	fmt.Fprintf(out, "  Server: %s (%s)\n", info.ServerType, info.ServerURL)
	if info.Company != "" {
		fmt.Fprintf(out, "  Company: %s\n", info.Company)
		fmt.Fprintf(out, "  Address: %s, %s %s, %s\n", info.Address, info.ZipCode, info.Town, info.Country)
		fmt.Fprintf(out, "  Email: %s\n", info.Email)
	}
	return nil
}
