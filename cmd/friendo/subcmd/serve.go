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
	"context"
	"os/signal"
	"syscall"

	"github.com/friendo-bot/friendo/kernel/command"
	"github.com/friendo-bot/friendo/kernel/engine"
	"github.com/friendo-bot/friendo/kernel/mcp"
	"github.com/friendo-bot/friendo/kernel/metrics"
	"github.com/friendo-bot/friendo/kernel/probe"
	"github.com/friendo-bot/friendo/kernel/publish"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func init() {
	RootCmd.AddCommand(NewServeCommand())
}

func NewServeCommand() *cobra.Command {
	serveCmd := &ServeCommand{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reconcile loop, keeping the channel topic in sync with the server",
		RunE:  serveCmd.run,
	}

	cmd.Flags().BoolVar(&serveCmd.Chat, "chat", false, "also expose the command surface as an MCP server on stdio")

	return cmd
}

type ServeCommand struct {
	Chat bool
}

func (s *ServeCommand) run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, client, mgr, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	logrus.Infof("managing instance [%s]", mgr.InstanceId())

	var sinks []publish.Sink
	if cfg.BotToken != "" {
		sinks = append(sinks, publish.NewDiscordSink(cfg.ChannelId, cfg.BotToken))
	} else {
		logrus.Warn("no bot_token configured, topic updates will only be logged")
		sinks = append(sinks, &publish.LogSink{})
	}
	publisher := publish.NewPublisher(sinks...)

	reconciler := engine.NewReconciler(mgr, client, probe.NewSLPProber(cfg.ProbeTimeout.Get()), publisher)
	reconciler.Interval = cfg.PollInterval.Get()
	reconciler.ProbePort = cfg.ProbePort
	reconciler.ProbeTimeout = cfg.ProbeTimeout.Get()

	if cfg.Influx.Enabled() {
		reporter := metrics.NewInfluxReporter(cfg.Influx, mgr.InstanceId())
		defer reporter.Close()
		reconciler.Reporter = reporter
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return reconciler.Run(gctx)
	})

	if s.Chat {
		srv := mcp.NewFriendoMCPServer(command.NewHandlers(mgr, client), mgr)
		g.Go(func() error {
			logrus.Info("chat surface listening on stdio")
			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.ServeStdio()
			}()
			select {
			case <-gctx.Done():
				return gctx.Err()
			case err := <-errCh:
				return err
			}
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
