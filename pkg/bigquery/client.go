package bigquery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/velora-market/velora-backend/pkg/config"
	"github.com/velora-market/velora-backend/pkg/logger"
)

const metadataCheckTimeout = 10 * time.Second

var (
	errProjectIDRequired    = errors.New("gcp project id is required")
	errDatasetRequired      = errors.New("bigquery dataset is required")
	errTableNameRequired    = errors.New("bigquery table name is required")
	errClientNotInitialized = errors.New("bigquery client not initialized")
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(context.Context) error
}

// Client wraps the BigQuery SDK with dataset/table existence checks. Tables
// are never created here; schema lives with the infra tooling.
type Client struct {
	client    *bigquery.Client
	dataset   *bigquery.Dataset
	projectID string
	tables    []string
	cfg       config.BigQueryConfig
}

// NewClient creates a BigQuery client and verifies the configured dataset and
// tables exist before returning.
func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.BigQueryConfig, logg *logger.Logger) (*Client, error) {
	projectID := strings.TrimSpace(gcp.ProjectID)
	datasetID := strings.TrimSpace(cfg.Dataset)
	tables := configuredTables(cfg)
	switch {
	case projectID == "":
		return nil, errProjectIDRequired
	case datasetID == "":
		return nil, errDatasetRequired
	case len(tables) == 0:
		return nil, errTableNameRequired
	}

	bqClient, err := bigquery.NewClient(ctx, projectID, credentialOptions(gcp)...)
	if err != nil {
		return nil, fmt.Errorf("creating bigquery client: %w", err)
	}

	client := &Client{
		client:    bqClient,
		dataset:   bqClient.Dataset(datasetID),
		projectID: projectID,
		tables:    tables,
		cfg:       cfg,
	}
	if err := client.verifySchema(ctx); err != nil {
		_ = bqClient.Close()
		return nil, err
	}

	if logg != nil {
		logg.Info(ctx, "bigquery client initialized")
	}
	return client, nil
}

func configuredTables(cfg config.BigQueryConfig) []string {
	var tables []string
	if t := strings.TrimSpace(cfg.BookingEventsTable); t != "" {
		tables = append(tables, t)
	}
	return tables
}

func credentialOptions(gcp config.GCPConfig) []option.ClientOption {
	if json := strings.TrimSpace(gcp.CredentialsJSON); json != "" {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(json))}
	}
	if file := strings.TrimSpace(gcp.ApplicationCredentials); file != "" {
		return []option.ClientOption{option.WithCredentialsFile(file)}
	}
	return nil
}

func (c *Client) ready() error {
	if c == nil || c.client == nil || c.dataset == nil {
		return errClientNotInitialized
	}
	return nil
}

func (c *Client) verifySchema(ctx context.Context) error {
	if err := c.ready(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, metadataCheckTimeout)
	defer cancel()

	if _, err := c.dataset.Metadata(ctx); err != nil {
		return describeMetadataErr("dataset", c.dataset.DatasetID, err)
	}
	for _, name := range c.tables {
		if _, err := c.dataset.Table(name).Metadata(ctx); err != nil {
			return describeMetadataErr("table", name, err)
		}
	}
	return nil
}

func describeMetadataErr(kind, name string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr != nil && apiErr.Code == http.StatusNotFound {
		return fmt.Errorf("%s %q does not exist", kind, name)
	}
	return fmt.Errorf("checking %s %q: %w", kind, name, err)
}

// Ping verifies the dataset and tables are accessible.
func (c *Client) Ping(ctx context.Context) error {
	return c.verifySchema(ctx)
}

// InsertRows streams rows into the given table in the configured dataset.
func (c *Client) InsertRows(ctx context.Context, table string, rows []any) error {
	if err := c.ready(); err != nil {
		return err
	}
	table = strings.TrimSpace(table)
	if table == "" {
		return errTableNameRequired
	}
	if len(rows) == 0 {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return c.dataset.Table(table).Inserter().Put(ctx, rows)
}

// Query executes SQL against BigQuery and returns the row iterator.
func (c *Client) Query(ctx context.Context, sql string, params []bigquery.QueryParameter) (*bigquery.RowIterator, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(sql) == "" {
		return nil, errors.New("sql query is required")
	}
	q := c.client.Query(sql)
	q.Parameters = params
	return q.Read(ctx)
}

// Close releases the BigQuery client.
func (c *Client) Close() error {
	if c.ready() != nil {
		return nil
	}
	return c.client.Close()
}
