package iot

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"gate_access/internal/domain"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iotdataplane"
	"github.com/google/uuid"
)

// GateController publishes open commands to the physical barrier controllers
// over AWS IoT. The admission decision itself stays at the device; the command
// only reports what was recorded.
type GateController struct {
	iotDataClient *iotdataplane.Client
}

func NewGateController(client *iotdataplane.Client) *GateController {
	return &GateController{iotDataClient: client}
}

type barrierCommand struct {
	Command     string `json:"command"`
	RequestID   string `json:"request_id"`
	PlateNumber string `json:"plate_number"`
	IssuedAt    string `json:"issued_at"`
}

// RequestOpen implements anpr.GateOpener.
func (g *GateController) RequestOpen(ctx context.Context, role domain.CameraRole, plateNumber string) error {
	requestID := uuid.NewString()
	payload, err := json.Marshal(barrierCommand{
		Command:     "open",
		RequestID:   requestID,
		PlateNumber: plateNumber,
		IssuedAt:    time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("GateController: marshaling command: %w", err)
	}

	topic := fmt.Sprintf("gate/%s/commands", role)
	_, err = g.iotDataClient.Publish(ctx, &iotdataplane.PublishInput{
		Topic:   aws.String(topic),
		Qos:     1,
		Payload: payload,
	})
	if err != nil {
		return fmt.Errorf("GateController: publishing to %s: %w", topic, err)
	}

	log.Printf("GateController: open command %s sent to %s for %s", requestID, topic, plateNumber)
	return nil
}
