package domain

import "time"

// TimelineEvent is a single entry in the derived order timeline.
type TimelineEvent struct {
	// Status is the lifecycle state the event describes.
	Status OrderStatus `json:"status"`
	// Timestamp is when the event is considered to have occurred.
	Timestamp time.Time `json:"timestamp"`
	// Note is the human-readable description of the event.
	Note string `json:"note"`
}

// Timeline derives an ordered, human-auditable sequence of lifecycle events
// from the order's persisted status and timestamps. It is read-only: it
// interprets whatever status is persisted and never prevents illegal writes.
//
// Because intermediate transition timestamps are not separately persisted,
// the processing and shipped events share the order's single UpdatedAt, so
// the displayed timeline is an approximation rather than an exact audit trail.
func Timeline(o *Order) []TimelineEvent {
	events := []TimelineEvent{{
		Status:    OrderStatusPending,
		Timestamp: o.CreatedAt,
		Note:      "Order placed",
	}}

	switch o.Status {
	case OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered:
		events = append(events, TimelineEvent{
			Status:    OrderStatusProcessing,
			Timestamp: o.UpdatedAt,
			Note:      "Order is being prepared",
		})
	}

	switch o.Status {
	case OrderStatusShipped, OrderStatusDelivered:
		events = append(events, TimelineEvent{
			Status:    OrderStatusShipped,
			Timestamp: o.UpdatedAt,
			Note:      "Order handed to carrier",
		})
	}

	if o.Status == OrderStatusDelivered && o.CompletedAt != nil {
		events = append(events, TimelineEvent{
			Status:    OrderStatusDelivered,
			Timestamp: *o.CompletedAt,
			Note:      "Order delivered",
		})
	}

	if o.Status == OrderStatusCancelled {
		events = append(events, TimelineEvent{
			Status:    OrderStatusCancelled,
			Timestamp: o.UpdatedAt,
			Note:      "Order cancelled",
		})
	}

	if o.Status == OrderStatusRefunded {
		events = append(events, TimelineEvent{
			Status:    OrderStatusRefunded,
			Timestamp: o.UpdatedAt,
			Note:      "Payment refunded",
		})
	}

	return events
}
