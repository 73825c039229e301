package subcmd

import (
	"context"

	"github.com/friendo-bot/friendo/kernel/command"
	"github.com/friendo-bot/friendo/kernel/instance"
	"github.com/friendo-bot/friendo/kernel/model"
)

// bootstrap loads the config, builds the instance client and resolves the
// instance id. Every subcommand that talks to the provider starts here.
func bootstrap(ctx context.Context) (*model.Config, *instance.AWSClient, *model.Manager, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	client, err := instance.NewAWSClient(cfg.Region)
	if err != nil {
		return nil, nil, nil, err
	}

	id, err := client.Resolve(ctx, cfg.InstanceId)
	if err != nil {
		return nil, nil, nil, err
	}

	return cfg, client, model.NewManager(id), nil
}

func newHandlers(ctx context.Context) (*command.Handlers, error) {
	_, client, mgr, err := bootstrap(ctx)
	if err != nil {
		return nil, err
	}
	return command.NewHandlers(mgr, client), nil
}
