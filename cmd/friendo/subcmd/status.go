/*
	(c) Copyright NetFoundry Inc. Inc.

	Licensed under the Apache License, Version 2.0 (the "License");
	you may not use this file except in compliance with the License.
	You may obtain a copy of the License at

	https://www.apache.org/licenses/LICENSE-2.0

	Unless required by applicable law or agreed to in writing, software
	distributed under the License is distributed on an "AS IS" BASIS,
	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
	See the License for the specific language governing permissions and
	limitations under the License.
*/

package subcmd

import (
	"strings"

	"github.com/friendo-bot/friendo/kernel/model"
	"github.com/friendo-bot/friendo/kernel/probe"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(NewStatusCommand())
}

func NewStatusCommand() *cobra.Command {
	statusCmd := &StatusCommand{}

	return &cobra.Command{
		Use:   "status",
		Short: "Show instance and game-server status",
		RunE:  statusCmd.run,
	}
}

type StatusCommand struct{}

func (s *StatusCommand) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, client, mgr, err := bootstrap(ctx)
	if err != nil {
		return err
	}

	state, err := client.State(ctx, mgr.InstanceId())
	if err != nil {
		return err
	}

	address := "-"
	service := model.StatusUnreachable
	players := "-"

	if state == model.StateRunning {
		service = model.StatusUnknown
		if addr, ok, err := client.Address(ctx, mgr.InstanceId()); err == nil && ok {
			address = addr

			prober := probe.NewSLPProber(cfg.ProbeTimeout.Get())
			if result, err := prober.Ping(ctx, addr, cfg.ProbePort); err == nil && result.Online {
				service = model.StatusOnline
				players = strings.Join(result.Players, ", ")
				if players == "" {
					players = "none"
				}
			}
		}
	} else if !state.Halted() {
		service = model.StatusUnknown
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"Instance", "State", "Address", "Service", "Players"})
	t.AppendRow(table.Row{mgr.InstanceId(), state.String(), address, service.String(), players})
	t.Render()

	return nil
}
