package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/Kunal-047/Chess-engine/app/config"
	"github.com/Kunal-047/Chess-engine/app/models"
)

type fakeQueue struct {
	mu       sync.Mutex
	batches  [][]sqstypes.Message
	recvErr  error
	receives int
	deleted  []string
	input    *sqs.ReceiveMessageInput
}

func (f *fakeQueue) ReceiveMessage(ctx context.Context, in *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.receives++
	f.input = in
	if f.recvErr != nil {
		return nil, f.recvErr
	}
	if len(f.batches) == 0 {
		return &sqs.ReceiveMessageOutput{}, nil
	}
	msgs := f.batches[0]
	f.batches = f.batches[1:]
	return &sqs.ReceiveMessageOutput{Messages: msgs}, nil
}

func (f *fakeQueue) DeleteMessage(ctx context.Context, in *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, aws.ToString(in.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

func message(handle, body string) sqstypes.Message {
	return sqstypes.Message{ReceiptHandle: aws.String(handle), Body: aws.String(body), MessageId: aws.String(handle)}
}

func newTestWorker(q *fakeQueue, process BatchFunc) *Worker {
	cfg := testConfig()
	cfg.QueueURL = "https://sqs.test/queue"
	w := NewWorker(q, cfg)
	w.Process = process
	w.ErrorSleep = time.Millisecond
	w.IdleSleep = time.Millisecond
	return w
}

func TestWorkerPollHandlesMessages(t *testing.T) {
	q := &fakeQueue{batches: [][]sqstypes.Message{{
		message("ok", `{"user":"alice","batch_index":1,"num_games":25,"job_id":"j1"}`),
		message("poison", `{not json`),
		message("fails", `{"user":"bob","batch_index":0,"num_games":25,"job_id":"j2"}`),
		{ReceiptHandle: aws.String("empty")},
	}}}

	var processed []models.JobMessage
	w := newTestWorker(q, func(ctx context.Context, cfg *config.Config, job models.JobMessage) error {
		if _, ok := ctx.Deadline(); !ok {
			t.Errorf("job context has no deadline")
		}
		processed = append(processed, job)
		if job.User == "bob" {
			return errors.New("db down")
		}
		return nil
	})

	w.poll(context.Background())

	if len(processed) != 2 || processed[0].User != "alice" || processed[0].BatchIndex != 1 || processed[0].JobID != "j1" {
		t.Fatalf("processed = %+v", processed)
	}
	// Successful and undecodable messages are deleted; failures and
	// empty bodies stay for redelivery.
	if len(q.deleted) != 2 || q.deleted[0] != "ok" || q.deleted[1] != "poison" {
		t.Fatalf("deleted = %v", q.deleted)
	}
	if q.input.MaxNumberOfMessages != 5 || q.input.WaitTimeSeconds != 20 || aws.ToString(q.input.QueueUrl) != "https://sqs.test/queue" {
		t.Fatalf("unexpected receive input %+v", q.input)
	}
}

func TestWorkerRunStopsOnCancel(t *testing.T) {
	q := &fakeQueue{recvErr: errors.New("network")}
	w := newTestWorker(q, func(context.Context, *config.Config, models.JobMessage) error { return nil })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for {
		q.mu.Lock()
		n := q.receives
		q.mu.Unlock()
		if n >= 2 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("worker did not retry after receive errors")
		case <-time.After(time.Millisecond):
		}
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not stop after cancel")
	}
}
