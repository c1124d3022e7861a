package pubsub

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/velora-market/velora-backend/pkg/config"
	"github.com/velora-market/velora-backend/pkg/logger"
)

var (
	errProjectIDRequired = errors.New("gcp project id is required")
	errNoSubscriptions   = errors.New("pubsub subscription name is required")
)

// Client wraps the Pub/Sub v2 SDK. Topic and subscription names may be given
// as bare IDs or full resource names; bare IDs are qualified with the project.
type Client struct {
	client    *pubsub.Client
	projectID string
	cfg       config.PubSubConfig
}

// NewClient creates a Pub/Sub client and verifies that every configured
// subscription exists. Subscriptions are provisioned by infra, not here.
func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.PubSubConfig, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(gcp.ProjectID) == "" {
		return nil, errProjectIDRequired
	}

	psClient, err := pubsub.NewClient(ctx, gcp.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	c := &Client{client: psClient, projectID: gcp.ProjectID, cfg: cfg}
	if err := c.checkSubscriptions(ctx); err != nil {
		_ = psClient.Close()
		return nil, err
	}
	if logg != nil {
		logg.Info(ctx, "pubsub client initialized")
	}
	return c, nil
}

func (c *Client) checkSubscriptions(ctx context.Context) error {
	var names []string
	for _, name := range []string{
		c.cfg.DashboardSubscription,
		c.cfg.NotificationSubscription,
		c.cfg.AnalyticsSubscription,
	} {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			names = append(names, trimmed)
		}
	}
	if len(names) == 0 {
		return errNoSubscriptions
	}

	for _, name := range names {
		fullName := c.resourceName("subscriptions", name)
		if fullName == "" {
			return fmt.Errorf("subscription %q not configured", name)
		}
		_, err := c.client.SubscriptionAdminClient.GetSubscription(
			ctx,
			&pubsubpb.GetSubscriptionRequest{Subscription: fullName},
		)
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("subscription %q does not exist", name)
		}
		if err != nil {
			return fmt.Errorf("checking subscription %q: %w", name, err)
		}
	}
	return nil
}

// Subscription returns a Subscriber handle for the named subscription.
func (c *Client) Subscription(name string) *pubsub.Subscriber {
	if c == nil || c.client == nil {
		return nil
	}
	fullName := c.resourceName("subscriptions", name)
	if fullName == "" {
		return nil
	}
	return c.client.Subscriber(fullName)
}

// DashboardSubscription returns the subscriber feeding dashboard projections.
func (c *Client) DashboardSubscription() *pubsub.Subscriber {
	return c.Subscription(c.cfg.DashboardSubscription)
}

// NotificationSubscription returns the subscriber feeding supplier notifications.
func (c *Client) NotificationSubscription() *pubsub.Subscriber {
	return c.Subscription(c.cfg.NotificationSubscription)
}

// AnalyticsSubscription returns the subscriber feeding the analytics sink.
func (c *Client) AnalyticsSubscription() *pubsub.Subscriber {
	return c.Subscription(c.cfg.AnalyticsSubscription)
}

// Publisher returns a publisher handle for the named topic.
func (c *Client) Publisher(name string) *pubsub.Publisher {
	if c == nil || c.client == nil {
		return nil
	}
	fullName := c.resourceName("topics", name)
	if fullName == "" {
		return nil
	}
	return c.client.Publisher(fullName)
}

// BookingsPublisher returns the configured booking event publisher.
func (c *Client) BookingsPublisher() *pubsub.Publisher {
	return c.Publisher(c.cfg.BookingsTopic)
}

// Ping verifies connectivity by re-checking the configured subscriptions.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil {
		return errors.New("pubsub client not initialized")
	}
	return c.checkSubscriptions(ctx)
}

// Close releases the Pub/Sub client resources.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *Client) resourceName(kind, name string) string {
	if c == nil {
		return ""
	}
	n := strings.TrimSpace(name)
	if n == "" {
		return ""
	}
	if strings.HasPrefix(n, "projects/") && strings.Contains(n, "/"+kind+"/") {
		return n
	}
	p := strings.TrimSpace(c.projectID)
	if p == "" {
		return ""
	}
	return fmt.Sprintf("projects/%s/%s/%s", p, kind, n)
}
