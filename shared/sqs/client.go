package sqs

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/hqminh/image-resize-worker/internal/worker/domain"
)

// Config holds SQS queue configuration. Credentials and region come
// from the SDK's default chain (environment, shared config, IMDS).
type Config struct {
	QueueURL           string
	DeadLetterQueueURL string
	MaxMessages        int32
	WaitTime           time.Duration
	VisibilityTimeout  time.Duration
	RequestTimeout     time.Duration
}

// Client wraps the AWS SQS client with the receive/delete/dead-letter
// surface the worker consumes.
type Client struct {
	config *Config
	sqs    *awssqs.Client
	logger *slog.Logger
}

// NewClient creates an SQS client and verifies that the source queue is
// reachable. An unreachable queue is a fatal startup condition, so the
// probe failure is returned rather than retried.
func NewClient(ctx context.Context, config *Config, logger *slog.Logger) (*Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := &Client{
		config: config,
		sqs:    awssqs.NewFromConfig(awsCfg),
		logger: logger,
	}

	probeCtx, cancel := context.WithTimeout(ctx, client.requestTimeout())
	defer cancel()

	_, err = client.sqs.GetQueueAttributes(probeCtx, &awssqs.GetQueueAttributesInput{
		QueueUrl:       aws.String(config.QueueURL),
		AttributeNames: []types.QueueAttributeName{types.QueueAttributeNameApproximateNumberOfMessages},
	})
	if err != nil {
		return nil, fmt.Errorf("source queue is not reachable: %w", err)
	}

	logger.Info("SQS client initialized",
		slog.String("queue_url", config.QueueURL),
		slog.String("dead_letter_queue_url", config.DeadLetterQueueURL),
	)

	return client, nil
}

// Receive long-polls the source queue for up to MaxMessages messages,
// requesting the ApproximateReceiveCount attribute on each.
func (c *Client) Receive(ctx context.Context) ([]domain.Message, error) {
	maxMessages := c.config.MaxMessages
	if maxMessages <= 0 {
		maxMessages = 1
	}

	out, err := c.sqs.ReceiveMessage(ctx, &awssqs.ReceiveMessageInput{
		QueueUrl:            aws.String(c.config.QueueURL),
		MaxNumberOfMessages: maxMessages,
		WaitTimeSeconds:     int32(c.config.WaitTime / time.Second),
		VisibilityTimeout:   int32(c.config.VisibilityTimeout / time.Second),
		MessageSystemAttributeNames: []types.MessageSystemAttributeName{
			types.MessageSystemAttributeNameApproximateReceiveCount,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to receive messages: %w", err)
	}

	messages := make([]domain.Message, 0, len(out.Messages))
	for _, m := range out.Messages {
		msg := domain.Message{
			MessageID:     aws.ToString(m.MessageId),
			Body:          []byte(aws.ToString(m.Body)),
			ReceiptHandle: aws.ToString(m.ReceiptHandle),
			ReceiveCount:  1,
		}
		if raw, ok := m.Attributes[string(types.MessageSystemAttributeNameApproximateReceiveCount)]; ok {
			if count, err := strconv.Atoi(raw); err == nil && count > 0 {
				msg.ReceiveCount = count
			}
		}
		messages = append(messages, msg)
	}

	return messages, nil
}

// Delete removes a processed message from the source queue.
func (c *Client) Delete(ctx context.Context, receiptHandle string) error {
	reqCtx, cancel := context.WithTimeout(ctx, c.requestTimeout())
	defer cancel()

	_, err := c.sqs.DeleteMessage(reqCtx, &awssqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.config.QueueURL),
		ReceiptHandle: aws.String(receiptHandle),
	})
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}

	return nil
}

// PublishToDeadLetter sends the original message body verbatim to the
// dead-letter queue.
func (c *Client) PublishToDeadLetter(ctx context.Context, body []byte) error {
	reqCtx, cancel := context.WithTimeout(ctx, c.requestTimeout())
	defer cancel()

	_, err := c.sqs.SendMessage(reqCtx, &awssqs.SendMessageInput{
		QueueUrl:    aws.String(c.config.DeadLetterQueueURL),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("failed to publish to dead-letter queue: %w", err)
	}

	c.logger.Debug("Message published to dead-letter queue",
		slog.Int("body_size", len(body)),
	)

	return nil
}

func (c *Client) requestTimeout() time.Duration {
	if c.config.RequestTimeout > 0 {
		return c.config.RequestTimeout
	}
	return 10 * time.Second
}
