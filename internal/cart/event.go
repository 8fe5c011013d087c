package cart

import "time"

// DeliveryStatus is the per-subscriber or overall status of a published event.
type DeliveryStatus string

const (
	DeliveryPending            DeliveryStatus = "pending"
	DeliveryDelivered          DeliveryStatus = "delivered"
	DeliveryPartiallyDelivered DeliveryStatus = "partially_delivered"
	DeliveryFailed             DeliveryStatus = "failed"
)

// EventDelivery tracks one published event across every subscriber until
// each has acknowledged it (spec §3, C8/C9).
type EventDelivery struct {
	EventID       string                 `json:"eventId"`
	TenantID      string                 `json:"tenantId"`
	PublishedAt   time.Time              `json:"publishedAt"`
	OverallStatus DeliveryStatus         `json:"overallStatus"`
	Payload       map[string]interface{} `json:"payload"`
	Services      []ServiceDelivery      `json:"services"`
}

// ServiceDelivery is one subscriber's delivery record within an EventDelivery.
type ServiceDelivery struct {
	ServiceName  string         `json:"serviceName"`
	Status       DeliveryStatus `json:"status"`
	DeliveredAt  *time.Time     `json:"deliveredAt,omitempty"`
	ErrorMessage string         `json:"errorMessage,omitempty"`
}

// Recompute derives OverallStatus from the per-service statuses.
func (e *EventDelivery) Recompute() {
	if len(e.Services) == 0 {
		e.OverallStatus = DeliveryPending
		return
	}
	delivered, failed, pending := 0, 0, 0
	for _, s := range e.Services {
		switch s.Status {
		case DeliveryDelivered:
			delivered++
		case DeliveryFailed:
			failed++
		default:
			pending++
		}
	}
	switch {
	case delivered == len(e.Services):
		e.OverallStatus = DeliveryDelivered
	case delivered > 0:
		e.OverallStatus = DeliveryPartiallyDelivered
	case pending == 0 && failed == len(e.Services):
		e.OverallStatus = DeliveryFailed
	default:
		e.OverallStatus = DeliveryPending
	}
}
