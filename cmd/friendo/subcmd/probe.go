package subcmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/friendo-bot/friendo/kernel/probe"
	"github.com/oliveagle/jsonpath"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(NewProbeCommand())
}

func NewProbeCommand() *cobra.Command {
	probeCmd := &ProbeCommand{}

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Ping the game server directly and dump its status",
		RunE:  probeCmd.run,
	}

	cmd.Flags().StringVar(&probeCmd.Host, "host", "", "host to probe (default: the managed instance's public IP)")
	cmd.Flags().IntVar(&probeCmd.Port, "port", 0, "port to probe (default: probe_port from config)")
	cmd.Flags().DurationVar(&probeCmd.Timeout, "timeout", 0, "probe timeout (default: probe_timeout from config)")
	cmd.Flags().StringVarP(&probeCmd.Query, "query", "q", "", "jsonpath expression to extract from the status JSON, e.g. '$.players.max'")

	return cmd
}

type ProbeCommand struct {
	Host    string
	Port    int
	Timeout time.Duration
	Query   string
}

func (p *ProbeCommand) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, client, mgr, err := bootstrap(ctx)
	if err != nil {
		return err
	}

	host := p.Host
	if host == "" {
		addr, ok, err := client.Address(ctx, mgr.InstanceId())
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("instance has no public address, pass --host explicitly")
		}
		host = addr
	}

	port := p.Port
	if port == 0 {
		port = cfg.ProbePort
	}
	timeout := p.Timeout
	if timeout == 0 {
		timeout = cfg.ProbeTimeout.Get()
	}

	result, err := probe.NewSLPProber(timeout).Ping(ctx, host, port)
	if err != nil {
		return err
	}
	if !result.Online {
		fmt.Fprintf(cmd.OutOrStdout(), "%s:%d is unreachable\n", host, port)
		return nil
	}

	if p.Query != "" {
		var doc interface{}
		if err := json.Unmarshal(result.Raw, &doc); err != nil {
			return errors.Wrap(err, "unable to parse status JSON")
		}
		value, err := jsonpath.JsonPathLookup(doc, p.Query)
		if err != nil {
			return errors.Wrapf(err, "jsonpath lookup '%s' failed", p.Query)
		}
		fmt.Fprintln(cmd.OutOrStdout(), value)
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s:%d online, %d/%d players\n", host, port, result.OnlineCount, result.MaxPlayers)
	if len(result.Players) > 0 {
		for _, name := range result.Players {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", name)
		}
	}
	return nil
}
