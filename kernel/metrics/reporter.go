package metrics

import (
	"time"

	"github.com/friendo-bot/friendo/kernel/model"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/sirupsen/logrus"
)

// InfluxReporter writes one point per reconcile tick. Writes go through the
// non-blocking API so a slow or absent InfluxDB never stalls the loop; write
// failures are logged and dropped.
type InfluxReporter struct {
	client     influxdb2.Client
	write      api.WriteAPI
	instanceId string
}

func NewInfluxReporter(cfg *model.InfluxConfig, instanceId string) *InfluxReporter {
	client := influxdb2.NewClient(cfg.Url, cfg.Token)
	write := client.WriteAPI(cfg.Org, cfg.Bucket)

	go func() {
		for err := range write.Errors() {
			logrus.WithError(err).Warn("influx write failed")
		}
	}()

	return &InfluxReporter{
		client:     client,
		write:      write,
		instanceId: instanceId,
	}
}

func (r *InfluxReporter) Report(state model.InstanceState, status model.ServiceStatus) {
	point := influxdb2.NewPoint("server_status",
		map[string]string{
			"instance_id": r.instanceId,
			"state":       state.String(),
		},
		map[string]interface{}{
			"status":       status.Kind.String(),
			"online":       status.Kind == model.StatusOnline,
			"player_count": len(status.Players),
		},
		time.Now())
	r.write.WritePoint(point)
}

func (r *InfluxReporter) Close() {
	r.write.Flush()
	r.client.Close()
}

// NopReporter is used when no telemetry endpoint is configured.
type NopReporter struct{}

func (NopReporter) Report(model.InstanceState, model.ServiceStatus) {}

func (NopReporter) Close() {}
