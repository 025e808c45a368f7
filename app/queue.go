package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/rs/zerolog/log"

	"github.com/Kunal-047/Chess-engine/app/config"
	"github.com/Kunal-047/Chess-engine/app/models"
)

// MessageSender is the part of *sqs.Client the upload handler needs.
type MessageSender interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// QueueClient is the part of *sqs.Client the worker loop needs.
type QueueClient interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// NewSQSClient builds a client from the default AWS credential chain.
func NewSQSClient(ctx context.Context) (*sqs.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return sqs.NewFromConfig(awsCfg), nil
}

// EnqueueBatches sends one message per batch, copying msg with the batch
// index filled in. It returns how many messages were accepted.
func EnqueueBatches(ctx context.Context, sender MessageSender, queueURL string, msg models.JobMessage, totalBatches int) int {
	sent := 0
	for batchIndex := 0; batchIndex < totalBatches; batchIndex++ {
		msg.BatchIndex = batchIndex

		body, err := json.Marshal(msg)
		if err != nil {
			log.Error().Err(err).Str("user", msg.User).Int("batch_index", batchIndex).Msg("failed to marshal JobMessage")
			continue
		}

		_, err = sender.SendMessage(ctx, &sqs.SendMessageInput{
			QueueUrl:    aws.String(queueURL),
			MessageBody: aws.String(string(body)),
		})
		if err != nil {
			log.Error().Err(err).Str("user", msg.User).Int("batch_index", batchIndex).Msg("failed to send SQS message")
			continue
		}
		sent++
	}
	return sent
}

// BatchFunc processes one decoded job message.
type BatchFunc func(ctx context.Context, cfg *config.Config, job models.JobMessage) error

// Worker long-polls a queue and hands each message to Process.
type Worker struct {
	Client   QueueClient
	QueueURL string
	Config   *config.Config
	Process  BatchFunc

	JobTimeout time.Duration // per message, default 2 minutes
	ErrorSleep time.Duration // after a failed receive, default 5 seconds
	IdleSleep  time.Duration // after an empty receive, default 2 seconds
}

// NewWorker returns a Worker running ProcessBatch.
func NewWorker(client QueueClient, cfg *config.Config) *Worker {
	return &Worker{
		Client:     client,
		QueueURL:   cfg.QueueURL,
		Config:     cfg,
		Process:    ProcessBatch,
		JobTimeout: 2 * time.Minute,
		ErrorSleep: 5 * time.Second,
		IdleSleep:  2 * time.Second,
	}
}

// Run polls until ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	log.Info().Str("queue", w.QueueURL).Msg("worker started")
	for {
		if err := ctx.Err(); err != nil {
			log.Info().Msg("worker stopping")
			return nil
		}
		w.poll(ctx)
	}
}

// poll does one long-poll round trip and handles whatever arrived.
func (w *Worker) poll(ctx context.Context) {
	recvCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	resp, err := w.Client.ReceiveMessage(recvCtx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(w.QueueURL),
		MaxNumberOfMessages: 5,
		WaitTimeSeconds:     20,
		VisibilityTimeout:   180, // must exceed the batch processing time
	})
	cancel()

	if err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Error().Err(err).Msg("ReceiveMessage error")
		sleep(ctx, w.ErrorSleep)
		return
	}

	if len(resp.Messages) == 0 {
		sleep(ctx, w.IdleSleep)
		return
	}

	for _, m := range resp.Messages {
		w.handle(ctx, m)
	}
}

func (w *Worker) handle(ctx context.Context, m sqstypes.Message) {
	if m.Body == nil {
		log.Warn().Str("message_id", aws.ToString(m.MessageId)).Msg("received message with empty body, skipping")
		return
	}

	var job models.JobMessage
	if err := json.Unmarshal([]byte(*m.Body), &job); err != nil {
		log.Error().Err(err).Str("body", *m.Body).Msg("failed to unmarshal job message")
		// Poison message: delete so it is not redelivered forever.
		w.delete(ctx, m)
		return
	}

	logger := log.With().
		Str("job_id", job.JobID).
		Str("user", job.User).
		Int("batch_index", job.BatchIndex).
		Logger()
	logger.Info().Int("num_games", job.NumGames).Msg("received job")

	jobCtx, jobCancel := context.WithTimeout(ctx, w.JobTimeout)
	err := w.Process(jobCtx, w.Config, job)
	jobCancel()

	if err != nil {
		// Left on the queue; SQS redelivers after the visibility timeout.
		logger.Error().Err(err).Msg("error processing job")
		return
	}

	w.delete(ctx, m)
}

func (w *Worker) delete(ctx context.Context, m sqstypes.Message) {
	if m.ReceiptHandle == nil {
		return
	}
	_, err := w.Client.DeleteMessage(context.WithoutCancel(ctx), &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(w.QueueURL),
		ReceiptHandle: m.ReceiptHandle,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to delete SQS message")
	}
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
