package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const discordAPIBase = "https://discord.com/api/v10"

// DiscordSink updates a channel topic through the Discord REST API. The
// display surface takes a single short string, so this is one PATCH per
// change, authenticated with the bot token.
type DiscordSink struct {
	channelId string
	token     string
	baseURL   string
	client    *http.Client
}

func NewDiscordSink(channelId, token string) *DiscordSink {
	return &DiscordSink{
		channelId: channelId,
		token:     token,
		baseURL:   discordAPIBase,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *DiscordSink) Target() string {
	return s.channelId
}

func (s *DiscordSink) SetTopic(ctx context.Context, topic string) error {
	body, err := json.Marshal(map[string]string{"topic": topic})
	if err != nil {
		return errors.Wrap(err, "unable to encode topic payload")
	}

	url := fmt.Sprintf("%s/channels/%s", s.baseURL, s.channelId)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "unable to build topic request")
	}
	req.Header.Set("Authorization", "Bot "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "topic update request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.Errorf("topic update rejected with status %d: %s", resp.StatusCode, detail)
	}
	return nil
}

// LogSink is the fallback display surface when no bot token is configured:
// topic changes just go to the log.
type LogSink struct {
	Name string
}

func (s *LogSink) Target() string {
	if s.Name != "" {
		return s.Name
	}
	return "log"
}

func (s *LogSink) SetTopic(_ context.Context, topic string) error {
	logrus.Infof("topic: %s", topic)
	return nil
}
