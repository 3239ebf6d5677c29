package events

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"storefront-service/models"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"go.uber.org/zap"
)

// SNSAPI is the subset of the SNS client used here.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// LoadAWSConfig loads the default AWS config. AWS_ENDPOINT points every client
// at a single endpoint such as LocalStack.
func LoadAWSConfig(ctx context.Context) (sdkaws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if endpoint := os.Getenv("AWS_ENDPOINT"); endpoint != "" {
		opts = append(opts, awsconfig.WithBaseEndpoint(endpoint))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return cfg, fmt.Errorf("failed to load aws config: %w", err)
	}
	return cfg, nil
}

type SNSPublisher struct {
	client   SNSAPI
	topicArn string
	log      *zap.Logger
}

func NewSNSPublisher(client SNSAPI, topicArn string, log *zap.Logger) (*SNSPublisher, error) {
	if topicArn == "" {
		return nil, fmt.Errorf("empty topicArn")
	}
	return &SNSPublisher{client: client, topicArn: topicArn, log: log}, nil
}

// NewSNSPublisherFromConfig builds an SNS client from the default AWS config.
func NewSNSPublisherFromConfig(ctx context.Context, topicArn string, log *zap.Logger) (*SNSPublisher, error) {
	cfg, err := LoadAWSConfig(ctx)
	if err != nil {
		return nil, err
	}
	return NewSNSPublisher(sns.NewFromConfig(cfg), topicArn, log)
}

func (p *SNSPublisher) PublishOrder(ctx context.Context, event models.OrderEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	p.log.Debug("publishing order event",
		zap.String("topic_arn", p.topicArn),
		zap.String("order_id", event.OrderID),
		zap.Int("message_len", len(data)),
	)

	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: sdkaws.String(p.topicArn),
		Message:  sdkaws.String(string(data)),
	})
	if err != nil {
		return fmt.Errorf("sns publish failed for topic %s: %w", p.topicArn, err)
	}
	return nil
}

func (p *SNSPublisher) Close() error { return nil }
