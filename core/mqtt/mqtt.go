// Package mqtt defines the recorder's MQTT message shapes, topic layout and
// the interfaces implemented by the transport in infra/mqtt.
package mqtt

import (
	"errors"
	"strings"
	"time"

	"github.com/kilianp07/tacho/core/compliance"
	"github.com/kilianp07/tacho/core/model"
)

// ErrInvalidTopic is returned when a topic does not follow <prefix>/<vehicle>/<kind>.
var ErrInvalidTopic = errors.New("invalid topic")

const (
	KindActivity   = "activity"
	KindBoundary   = "boundary"
	KindCompliance = "compliance"
)

// BoundaryMessage is a start or end country entry sent by a vehicle unit.
type BoundaryMessage struct {
	Slot     model.Slot         `json:"slot"`
	Activity model.BoundaryKind `json:"activity"`
	At       time.Time          `json:"at"`
}

// ReportMessage wraps a compliance report published for a vehicle.
type ReportMessage struct {
	MessageID string            `json:"message_id"`
	VehicleID string            `json:"vehicle_id"`
	SentAt    time.Time         `json:"sent_at"`
	Report    compliance.Report `json:"report"`
}

// Handler receives decoded inbound messages.
type Handler interface {
	HandleActivity(vehicleID string, rec model.ActivityRecord) error
	HandleBoundary(vehicleID string, msg BoundaryMessage) error
}

// Publisher sends compliance reports for a vehicle and returns the message ID.
type Publisher interface {
	PublishReport(vehicleID string, rep compliance.Report) (string, error)
}

// Topic builds <prefix>/<vehicle>/<kind>.
func Topic(prefix, vehicleID, kind string) string {
	return strings.TrimSuffix(prefix, "/") + "/" + vehicleID + "/" + kind
}

// Wildcard builds the subscription filter <prefix>/+/<kind>.
func Wildcard(prefix, kind string) string {
	return Topic(prefix, "+", kind)
}

// ParseTopic extracts the vehicle and kind from a topic under prefix.
func ParseTopic(prefix, topic string) (vehicleID, kind string, err error) {
	p := strings.TrimSuffix(prefix, "/") + "/"
	if !strings.HasPrefix(topic, p) {
		return "", "", ErrInvalidTopic
	}
	parts := strings.Split(strings.TrimPrefix(topic, p), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", ErrInvalidTopic
	}
	return parts[0], parts[1], nil
}
