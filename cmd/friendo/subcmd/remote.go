package subcmd

import (
	"context"
	"fmt"
	"time"

	"github.com/friendo-bot/friendo/kernel/model"
	"github.com/friendo-bot/friendo/kernel/remote"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(NewLogsCommand(), NewBackupCommand())
}

func NewLogsCommand() *cobra.Command {
	logsCmd := &LogsCommand{}

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Tail the game server log over SSH",
		RunE:  logsCmd.run,
	}

	cmd.Flags().IntVarP(&logsCmd.Lines, "lines", "n", 50, "number of log lines to show")

	return cmd
}

type LogsCommand struct {
	Lines int
}

func (l *LogsCommand) run(cmd *cobra.Command, args []string) error {
	executor, err := buildExecutor(cmd.Context())
	if err != nil {
		return err
	}

	output, err := executor.TailLog(cmd.Context(), l.Lines)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), output)
	return nil
}

func NewBackupCommand() *cobra.Command {
	backupCmd := &BackupCommand{}

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Fetch the world backup from the game host",
		RunE:  backupCmd.run,
	}

	cmd.Flags().StringVarP(&backupCmd.Out, "out", "o", "", "local path for the backup (default backup-<date>.tgz)")

	return cmd
}

type BackupCommand struct {
	Out string
}

func (b *BackupCommand) run(cmd *cobra.Command, args []string) error {
	executor, err := buildExecutor(cmd.Context())
	if err != nil {
		return err
	}

	out := b.Out
	if out == "" {
		out = fmt.Sprintf("backup-%s.tgz", time.Now().Format("2006-01-02"))
	}

	if err := executor.FetchBackup(cmd.Context(), out); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "backup written to %s\n", out)
	return nil
}

// buildExecutor resolves the instance's public address and opens the SSH
// config for it. Remote operations only make sense while the host is up.
func buildExecutor(ctx context.Context) (*remote.Executor, error) {
	cfg, client, mgr, err := bootstrap(ctx)
	if err != nil {
		return nil, err
	}
	if cfg.Remote == nil {
		return nil, errors.New("no remote section configured")
	}

	state, err := client.State(ctx, mgr.InstanceId())
	if err != nil {
		return nil, err
	}
	if state != model.StateRunning {
		return nil, errors.Errorf("instance is %s, remote access needs it running", state)
	}

	addr, ok, err := client.Address(ctx, mgr.InstanceId())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New("instance has no public address")
	}

	return remote.NewExecutor(addr, cfg.Remote)
}
