package publishers

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadRegistryEnabledFilter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "publishers.yaml")
	raw := `
publishers:
  - id: http1
    type: http
    enabled: false
    http:
      url: https://example.com
  - id: http2
    type: http
    enabled: true
    http:
      url: https://example.com/2
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	enabled := reg.Enabled()
	if len(enabled) != 1 || enabled[0].ID != "http2" {
		t.Fatalf("expected only http2 enabled, got %#v", enabled)
	}
}

func TestValidatePublisherConfigRejectsMissingHTTP(t *testing.T) {
	err := PublisherConfig{ID: "h1", Type: TypeHTTP}.validate()
	if err == nil {
		t.Fatalf("expected validation error for missing http block")
	}
}

func TestLoadRegistryAWSAndPubSub(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "publishers.yaml")
	raw := `
publishers:
  - id: queue
    type: SQS
    sqs:
      uri: " https://sqs.eu-west-1.amazonaws.com/1/sms "
      region: eu-west-1
      access_key_id: AKIA
      secret_access_key: s3cr3t
  - id: topic
    type: sns
    sns:
      topic_arn: arn:aws:sns:eu-west-1:1:sms
      region: eu-west-1
  - id: gcp
    type: pubsub
    pubsub:
      project_id: proj
      topic: sms-sent
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	byID := make(map[string]PublisherConfig)
	for _, cfg := range reg.Enabled() {
		byID[cfg.ID] = cfg
	}
	queue, ok := byID["queue"]
	if !ok || queue.Type != TypeSQS {
		t.Fatalf("expected sqs publisher, got %#v", queue)
	}
	if queue.SQS.QueueURL != "https://sqs.eu-west-1.amazonaws.com/1/sms" || queue.SQS.Region != "eu-west-1" || queue.SQS.AccessKeyID != "AKIA" {
		t.Fatalf("unexpected sqs config %#v", queue.SQS)
	}
	topic := byID["topic"]
	if topic.SNS == nil || topic.SNS.Region != "eu-west-1" {
		t.Fatalf("unexpected sns config %#v", topic.SNS)
	}
	if len(reg.Enabled()) != 3 {
		t.Fatalf("expected all publishers enabled by default")
	}
}

func TestValidatePublisherConfigRejectsIncompleteQueues(t *testing.T) {
	cases := []PublisherConfig{
		{ID: "s", Type: TypeSNS, SNS: &SNSPublisherConfig{TopicARN: "arn"}},
		{ID: "p", Type: TypePubSub, PubSub: &PubSubPublisherConfig{ProjectID: "proj"}},
		{ID: "q", Type: TypeSQS, SQS: &SQSPublisherConfig{QueueURL: "https://q"}},
	}
	for _, cfg := range cases {
		if err := cfg.validate(); err == nil {
			t.Errorf("%s: expected validation error", cfg.ID)
		}
	}
}

func TestParseRegistryAcceptsJSONAndNormalizes(t *testing.T) {
	raw := `{"publishers":[{"id":" hook ","type":"HTTP","http":{"url":" https://crm.local/h ","headers":{" X-Key ":" v ","empty":" "}}}]}`
	reg, err := parseRegistry([]byte(raw))
	if err != nil {
		t.Fatalf("parseRegistry: %v", err)
	}
	enabled := reg.Enabled()
	if len(enabled) != 1 {
		t.Fatalf("expected one publisher, got %d", len(enabled))
	}
	hook := enabled[0]
	if hook.ID != "hook" || hook.Type != TypeHTTP || hook.HTTP.URL != "https://crm.local/h" {
		t.Fatalf("unexpected config %#v", hook)
	}
	if hook.HTTP.Method != httpDefaultMethod || hook.HTTP.TimeoutSeconds != httpDefaultTimeoutSeconds {
		t.Fatalf("defaults not applied: %#v", hook.HTTP)
	}
	if len(hook.HTTP.Headers) != 1 || hook.HTTP.Headers["X-Key"] != "v" {
		t.Fatalf("unexpected headers %v", hook.HTTP.Headers)
	}
}

func TestParseRegistryRejectsDuplicatesAndEmpty(t *testing.T) {
	dup := `
publishers:
  - {id: a, type: http, http: {url: "https://x"}}
  - {id: a, type: http, http: {url: "https://y"}}
`
	if _, err := parseRegistry([]byte(dup)); err == nil {
		t.Fatalf("expected duplicate id error")
	}
	if _, err := parseRegistry([]byte("publishers: []")); err == nil {
		t.Fatalf("expected error for empty publishers list")
	}
}

func TestValidateReportsMissingFields(t *testing.T) {
	err := PublisherConfig{ID: "q", Type: TypeSQS, SQS: &SQSPublisherConfig{}}.validate()
	if err == nil || !strings.Contains(err.Error(), "sqs.uri, sqs.region") {
		t.Fatalf("unexpected error %v", err)
	}
}
