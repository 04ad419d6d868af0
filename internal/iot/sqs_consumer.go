package iot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"gate_access/internal/anpr"
	"gate_access/internal/config"
	"gate_access/internal/domain"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// RemotePlateEvent is a plate reading produced by an edge ANPR device and
// delivered over SQS. It carries no image; the recorder skips the crop save.
type RemotePlateEvent struct {
	EventID     string `json:"event_id"`
	DeviceID    string `json:"device_id"`
	PlateNumber string `json:"plate_number"`
	CameraRole  string `json:"camera_role"`
	CapturedAt  string `json:"captured_at"`
}

// errUnprocessableEvent marks a message that can never succeed (malformed
// JSON, unknown role, empty plate). Leaving it on the queue would redeliver it
// after every visibility timeout forever, so it is deleted instead of retried.
var errUnprocessableEvent = errors.New("unprocessable plate event")

// SQSConsumer feeds remote plate events into the same access recorder the
// local camera pipelines use, so edge-detected vehicles join the same session
// correlation.
type SQSConsumer struct {
	sqsClient *sqs.Client
	queueURL  string
	recorder  *anpr.AccessRecorder
}

func NewSQSConsumer(client *sqs.Client, cfg *config.Config, recorder *anpr.AccessRecorder) *SQSConsumer {
	return &SQSConsumer{
		sqsClient: client,
		queueURL:  cfg.SQSPlateEventQueueURL,
		recorder:  recorder,
	}
}

func (c *SQSConsumer) Start(ctx context.Context) {
	log.Printf("SQS Consumer: listening on queue %s", c.queueURL)
	for {
		select {
		case <-ctx.Done():
			log.Println("SQS Consumer: context cancelled, stopping.")
			return
		default:
			receiveInput := &sqs.ReceiveMessageInput{
				QueueUrl:            &c.queueURL,
				MaxNumberOfMessages: 10,
				WaitTimeSeconds:     20,
				VisibilityTimeout:   60,
			}

			result, err := c.sqsClient.ReceiveMessage(ctx, receiveInput)
			if err != nil {
				log.Printf("SQS Consumer: receive error: %v", err)
				select {
				case <-time.After(5 * time.Second):
				case <-ctx.Done():
					return
				}
				continue
			}

			for _, message := range result.Messages {
				if message.Body == nil {
					c.deleteMessage(ctx, message.ReceiptHandle)
					continue
				}

				if err := c.handleMessage(ctx, *message.Body); err != nil {
					if errors.Is(err, errUnprocessableEvent) {
						log.Printf("SQS Consumer: dropping message: %v", err)
						c.deleteMessage(ctx, message.ReceiptHandle)
						continue
					}
					log.Printf("SQS Consumer: processing message failed: %v. It will reappear after the visibility timeout.", err)
					continue
				}
				c.deleteMessage(ctx, message.ReceiptHandle)
			}
		}
	}
}

func (c *SQSConsumer) handleMessage(ctx context.Context, body string) error {
	var event RemotePlateEvent
	if err := json.Unmarshal([]byte(body), &event); err != nil {
		return fmt.Errorf("%w: parsing: %v", errUnprocessableEvent, err)
	}

	role := domain.CameraRole(event.CameraRole)
	if !role.Valid() {
		return fmt.Errorf("%w: event %s has unknown camera role %q", errUnprocessableEvent, event.EventID, event.CameraRole)
	}

	plate := anpr.NormalizePlate(event.PlateNumber)
	if plate == "" {
		return fmt.Errorf("%w: event %s has no plate text", errUnprocessableEvent, event.EventID)
	}

	capturedAt, err := time.Parse(time.RFC3339Nano, event.CapturedAt)
	if err != nil {
		log.Printf("SQS Consumer: event %s has unparseable timestamp %q, using now", event.EventID, event.CapturedAt)
		capturedAt = time.Now().UTC()
	}

	reading := domain.PlateReading{
		Text:       plate,
		CapturedAt: capturedAt,
		CameraRole: role,
	}
	log.Printf("SQS Consumer: remote %s reading %s from device %s", role, reading.Text, event.DeviceID)
	return c.recorder.Record(ctx, reading)
}

func (c *SQSConsumer) deleteMessage(ctx context.Context, receiptHandle *string) {
	if receiptHandle == nil {
		return
	}
	_, err := c.sqsClient.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      &c.queueURL,
		ReceiptHandle: receiptHandle,
	})
	if err != nil {
		log.Printf("SQS Consumer: deleting message failed: %v", err)
	}
}
