package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

const (
	streamMaxAge          = 7 * 24 * time.Hour
	streamDuplicateWindow = 2 * time.Minute
	publishAckTimeout     = 5 * time.Second
)

// NATSClient publishes envelopes to JetStream. It only produces; nothing in
// this service consumes its own stream.
type NATSClient struct {
	servers string
	nc      *nats.Conn
	js      nats.JetStreamContext
}

// NewNATSClient creates a client for a comma-separated server list
func NewNATSClient(servers string) *NATSClient {
	return &NATSClient{servers: servers}
}

// Connect dials NATS, retrying on reconnect forever once the first connection succeeds
func (c *NATSClient) Connect(ctx context.Context) error {
	nc, err := nats.Connect(c.servers,
		nats.Name("challenge-service"),
		nats.RetryOnFailedConnect(false),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.WithError(err).Warn("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.WithField("url", nc.ConnectedUrl()).Info("NATS reconnected")
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS at %s: %w", c.servers, err)
	}

	js, err := nc.JetStream(nats.Context(ctx))
	if err != nil {
		nc.Close()
		return fmt.Errorf("failed to open JetStream: %w", err)
	}

	c.nc, c.js = nc, js
	log.WithField("url", nc.ConnectedUrl()).Info("Connected to NATS")
	return nil
}

// Close flushes pending publishes and closes the connection
func (c *NATSClient) Close() error {
	if c.nc == nil {
		return nil
	}
	if err := c.nc.Drain(); err != nil {
		c.nc.Close()
		return fmt.Errorf("failed to drain NATS connection: %w", err)
	}
	return nil
}

// IsConnected returns true if the client currently holds a live connection
func (c *NATSClient) IsConnected() bool {
	return c.nc != nil && c.nc.IsConnected()
}

// EnsureStream creates the stream or widens an existing one to cover the subjects
func (c *NATSClient) EnsureStream(streamName string, subjects []string) error {
	if c.js == nil {
		return errNotConnected
	}

	info, err := c.js.StreamInfo(streamName)
	switch {
	case errors.Is(err, nats.ErrStreamNotFound):
		_, err = c.js.AddStream(&nats.StreamConfig{
			Name:        streamName,
			Description: "Challenge lifecycle and wallet events",
			Subjects:    subjects,
			Retention:   nats.LimitsPolicy,
			Storage:     nats.FileStorage,
			MaxAge:      streamMaxAge,
			Duplicates:  streamDuplicateWindow,
			Replicas:    1,
		})
		if err != nil {
			return fmt.Errorf("failed to create stream %s: %w", streamName, err)
		}
		log.WithFields(log.Fields{
			"stream":   streamName,
			"subjects": subjects,
		}).Info("Created JetStream stream")
		return nil
	case err != nil:
		return fmt.Errorf("failed to look up stream %s: %w", streamName, err)
	}

	missing := false
	merged := slices.Clone(info.Config.Subjects)
	for _, subject := range subjects {
		if !slices.Contains(merged, subject) {
			merged = append(merged, subject)
			missing = true
		}
	}
	if !missing {
		return nil
	}

	updated := info.Config
	updated.Subjects = merged
	if _, err := c.js.UpdateStream(&updated); err != nil {
		return fmt.Errorf("failed to add subjects to stream %s: %w", streamName, err)
	}
	log.WithFields(log.Fields{
		"stream":   streamName,
		"subjects": merged,
	}).Info("Updated JetStream stream subjects")
	return nil
}

// Publish sends data to a subject and waits for the stream to acknowledge it.
// msgID lets JetStream drop a retried publish inside the duplicate window.
func (c *NATSClient) Publish(ctx context.Context, subject string, data []byte, msgID string) error {
	if c.js == nil {
		return errNotConnected
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, publishAckTimeout)
		defer cancel()
	}

	opts := []nats.PubOpt{nats.Context(ctx)}
	if msgID != "" {
		opts = append(opts, nats.MsgId(msgID))
	}

	ack, err := c.js.Publish(subject, data, opts...)
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	if ack.Duplicate {
		log.WithFields(log.Fields{
			"subject": subject,
			"msgID":   msgID,
		}).Debug("JetStream dropped duplicate publish")
	}
	return nil
}

var errNotConnected = errors.New("not connected to NATS JetStream")
