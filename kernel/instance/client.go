package instance

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/aws/aws-sdk-go/service/ec2/ec2iface"
	"github.com/friendo-bot/friendo/kernel/model"
	"github.com/pkg/errors"
)

// dryRunSentinel is the awserr code EC2 raises when a dry-run request would
// have succeeded. Any other dry-run failure is a real rejection.
const dryRunSentinel = "DryRunOperation"

// Client is the boundary to the cloud provider's instance lifecycle API.
type Client interface {
	// State returns the instance's lifecycle state. Failures surface as
	// *ProviderError.
	State(ctx context.Context, id string) (model.InstanceState, error)

	// Address returns the instance's public address. Absence (no address
	// allocated) is a normal value, reported via ok=false, not an error.
	Address(ctx context.Context, id string) (addr string, ok bool, err error)

	// SetPower starts or stops the instance using a validate-then-commit
	// pair of calls. It mutates real infrastructure and must only be
	// invoked on explicit user intent, never from the reconcile loop.
	SetPower(ctx context.Context, id string, on bool) error

	// Resolve returns the configured instance id, or, when empty, the id
	// of the first instance the provider lists. One-time startup call.
	Resolve(ctx context.Context, configured string) (string, error)
}

// AWSClient implements Client against EC2.
type AWSClient struct {
	api ec2iface.EC2API
}

var _ Client = (*AWSClient)(nil)

func NewAWSClient(region string) (*AWSClient, error) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
	if err != nil {
		return nil, errors.Wrap(err, "unable to create AWS session")
	}
	return &AWSClient{api: ec2.New(sess)}, nil
}

// NewAWSClientWithAPI is for tests injecting a fake EC2 API.
func NewAWSClientWithAPI(api ec2iface.EC2API) *AWSClient {
	return &AWSClient{api: api}
}

func (c *AWSClient) State(ctx context.Context, id string) (model.InstanceState, error) {
	inst, err := c.describe(ctx, id)
	if err != nil {
		return model.StateUnknown, &ProviderError{Op: "describe-state", Err: err}
	}
	if inst.State == nil || inst.State.Code == nil {
		return model.StateUnknown, &ProviderError{Op: "describe-state", Err: errors.New("response missing instance state")}
	}
	return model.StateFromCode(*inst.State.Code), nil
}

func (c *AWSClient) Address(ctx context.Context, id string) (string, bool, error) {
	inst, err := c.describe(ctx, id)
	if err != nil {
		return "", false, &ProviderError{Op: "describe-address", Err: err}
	}
	if inst.PublicIpAddress == nil || *inst.PublicIpAddress == "" {
		return "", false, nil
	}
	return *inst.PublicIpAddress, true, nil
}

func (c *AWSClient) SetPower(ctx context.Context, id string, on bool) error {
	op := "stop"
	if on {
		op = "start"
	}

	// Dry-run first. A success comes back as the sentinel error code; any
	// other failure means the real call would be rejected, so don't make it.
	if err := c.power(ctx, id, on, true); err != nil {
		if aerr, ok := err.(awserr.Error); !ok || aerr.Code() != dryRunSentinel {
			return &ValidationError{Op: op, Err: err}
		}
	}

	if err := c.power(ctx, id, on, false); err != nil {
		return &OperationError{Op: op, Err: err}
	}
	return nil
}

func (c *AWSClient) Resolve(ctx context.Context, configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}

	out, err := c.api.DescribeInstancesWithContext(ctx, &ec2.DescribeInstancesInput{})
	if err != nil {
		return "", &ProviderError{Op: "list-instances", Err: err}
	}
	for _, res := range out.Reservations {
		for _, inst := range res.Instances {
			if inst.InstanceId != nil {
				return *inst.InstanceId, nil
			}
		}
	}
	return "", &ProviderError{Op: "list-instances", Err: errors.New("no instances found")}
}

func (c *AWSClient) power(ctx context.Context, id string, on bool, dryRun bool) error {
	if on {
		_, err := c.api.StartInstancesWithContext(ctx, &ec2.StartInstancesInput{
			InstanceIds: []*string{aws.String(id)},
			DryRun:      aws.Bool(dryRun),
		})
		return err
	}
	_, err := c.api.StopInstancesWithContext(ctx, &ec2.StopInstancesInput{
		InstanceIds: []*string{aws.String(id)},
		DryRun:      aws.Bool(dryRun),
	})
	return err
}

func (c *AWSClient) describe(ctx context.Context, id string) (*ec2.Instance, error) {
	out, err := c.api.DescribeInstancesWithContext(ctx, &ec2.DescribeInstancesInput{
		InstanceIds: []*string{aws.String(id)},
	})
	if err != nil {
		return nil, err
	}
	if len(out.Reservations) == 0 || len(out.Reservations[0].Instances) == 0 {
		return nil, errors.Errorf("instance '%s' not found", id)
	}
	return out.Reservations[0].Instances[0], nil
}
