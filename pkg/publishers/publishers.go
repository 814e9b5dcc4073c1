package publishers

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// Supported publisher types.
	TypeSQS    = "sqs"
	TypeSNS    = "sns"
	TypePubSub = "pubsub"
	TypeHTTP   = "http"

	httpDefaultMethod         = "POST"
	httpDefaultTimeoutSeconds = 5
)

// configFile is the publishers file. It is read as YAML, which also accepts JSON.
type configFile struct {
	Publishers []PublisherConfig `yaml:"publishers"`
}

// PublisherConfig is a single sink declared in the publishers file.
type PublisherConfig struct {
	ID      string                 `yaml:"id"`
	Type    string                 `yaml:"type"`
	Enabled *bool                  `yaml:"enabled"`
	SQS     *SQSPublisherConfig    `yaml:"sqs"`
	SNS     *SNSPublisherConfig    `yaml:"sns"`
	PubSub  *PubSubPublisherConfig `yaml:"pubsub"`
	HTTP    *HTTPPublisherConfig   `yaml:"http"`
}

// AWSAuth holds the region and optional static credentials shared by AWS sinks.
// Without keys the default credential chain is used.
type AWSAuth struct {
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

type SQSPublisherConfig struct {
	QueueURL string `yaml:"uri"`
	AWSAuth  `yaml:",inline"`
}

type SNSPublisherConfig struct {
	TopicARN string `yaml:"topic_arn"`
	AWSAuth  `yaml:",inline"`
}

// PubSubPublisherConfig names a GCP topic. CredentialsFile is optional;
// application default credentials apply without it.
type PubSubPublisherConfig struct {
	ProjectID       string `yaml:"project_id"`
	Topic           string `yaml:"topic"`
	CredentialsFile string `yaml:"credentials_file"`
}

// HTTPPublisherConfig is a webhook receiving events as JSON.
type HTTPPublisherConfig struct {
	URL            string            `yaml:"url"`
	Method         string            `yaml:"method"`
	Headers        map[string]string `yaml:"headers"`
	TimeoutSeconds int               `yaml:"timeout_seconds"`
}

// ConfigRegistry holds the validated entries of a publishers file.
type ConfigRegistry struct {
	publishers []PublisherConfig
}

// LoadRegistry reads and validates the publishers file at path.
func LoadRegistry(path string) (*ConfigRegistry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("publishers file path is empty")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read publishers file: %w", err)
	}
	return parseRegistry(raw)
}

func parseRegistry(raw []byte) (*ConfigRegistry, error) {
	var file configFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode publishers file: %w", err)
	}
	if len(file.Publishers) == 0 {
		return nil, errors.New("publishers file contains no publishers entries")
	}

	reg := &ConfigRegistry{publishers: make([]PublisherConfig, 0, len(file.Publishers))}
	seen := make(map[string]struct{}, len(file.Publishers))
	for i, cfg := range file.Publishers {
		cfg.normalize()
		if err := cfg.validate(); err != nil {
			return nil, fmt.Errorf("publishers[%d]: %w", i, err)
		}
		if _, dup := seen[cfg.ID]; dup {
			return nil, fmt.Errorf("duplicate publisher id %q", cfg.ID)
		}
		seen[cfg.ID] = struct{}{}
		reg.publishers = append(reg.publishers, cfg)
	}
	return reg, nil
}

// Enabled returns the entries not switched off with enabled: false.
func (r *ConfigRegistry) Enabled() []PublisherConfig {
	if r == nil {
		return nil
	}
	out := make([]PublisherConfig, 0, len(r.publishers))
	for _, cfg := range r.publishers {
		if cfg.Enabled == nil || *cfg.Enabled {
			out = append(out, cfg)
		}
	}
	return out
}

func (cfg *PublisherConfig) normalize() {
	cfg.ID = strings.TrimSpace(cfg.ID)
	cfg.Type = strings.ToLower(strings.TrimSpace(cfg.Type))

	if c := cfg.SQS; c != nil {
		c.QueueURL = strings.TrimSpace(c.QueueURL)
		c.AWSAuth.trim()
	}
	if c := cfg.SNS; c != nil {
		c.TopicARN = strings.TrimSpace(c.TopicARN)
		c.AWSAuth.trim()
	}
	if c := cfg.PubSub; c != nil {
		c.ProjectID = strings.TrimSpace(c.ProjectID)
		c.Topic = strings.TrimSpace(c.Topic)
		c.CredentialsFile = strings.TrimSpace(c.CredentialsFile)
	}
	if c := cfg.HTTP; c != nil {
		c.URL = strings.TrimSpace(c.URL)
		c.Method = strings.ToUpper(strings.TrimSpace(c.Method))
		if c.Method == "" {
			c.Method = httpDefaultMethod
		}
		if c.TimeoutSeconds <= 0 {
			c.TimeoutSeconds = httpDefaultTimeoutSeconds
		}
		headers := make(map[string]string, len(c.Headers))
		for k, v := range c.Headers {
			if k, v = strings.TrimSpace(k), strings.TrimSpace(v); k != "" && v != "" {
				headers[k] = v
			}
		}
		c.Headers = headers
	}
}

func (a *AWSAuth) trim() {
	a.Region = strings.TrimSpace(a.Region)
	a.AccessKeyID = strings.TrimSpace(a.AccessKeyID)
	a.SecretAccessKey = strings.TrimSpace(a.SecretAccessKey)
}

// validate checks the block matching Type is present and complete. Types
// unknown here are left for the builder registry to accept or reject.
func (cfg PublisherConfig) validate() error {
	if cfg.ID == "" {
		return errors.New("id is required")
	}

	var missing []string
	switch cfg.Type {
	case "":
		return fmt.Errorf("type is required for publisher %q", cfg.ID)
	case TypeSQS:
		if cfg.SQS == nil {
			return fmt.Errorf("sqs config required for publisher %q", cfg.ID)
		}
		missing = emptyFields("sqs.uri", cfg.SQS.QueueURL, "sqs.region", cfg.SQS.Region)
	case TypeSNS:
		if cfg.SNS == nil {
			return fmt.Errorf("sns config required for publisher %q", cfg.ID)
		}
		missing = emptyFields("sns.topic_arn", cfg.SNS.TopicARN, "sns.region", cfg.SNS.Region)
	case TypePubSub:
		if cfg.PubSub == nil {
			return fmt.Errorf("pubsub config required for publisher %q", cfg.ID)
		}
		missing = emptyFields("pubsub.project_id", cfg.PubSub.ProjectID, "pubsub.topic", cfg.PubSub.Topic)
	case TypeHTTP:
		if cfg.HTTP == nil {
			return fmt.Errorf("http config required for publisher %q", cfg.ID)
		}
		missing = emptyFields("http.url", cfg.HTTP.URL)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s required for publisher %q", strings.Join(missing, ", "), cfg.ID)
	}
	return nil
}

// emptyFields takes name, value pairs and returns the names whose value is empty.
func emptyFields(pairs ...string) []string {
	var names []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			names = append(names, pairs[i])
		}
	}
	return names
}
