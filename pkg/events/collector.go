package events

// EventCollector is embedded in aggregates that record events during state
// transitions. The zero value is ready to use.
type EventCollector struct {
	events []DomainEvent
}

// Record appends an event.
func (c *EventCollector) Record(event DomainEvent) {
	c.events = append(c.events, event)
}

// Events returns the pending events without clearing them.
func (c *EventCollector) Events() []DomainEvent {
	return c.events
}

// ClearEvents returns the pending events and resets the collector.
func (c *EventCollector) ClearEvents() []DomainEvent {
	collected := c.events
	c.events = nil
	return collected
}
