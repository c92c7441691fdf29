package infrastructure

import (
	"fmt"

	"medals/events"
)

// SubjectPrefix roots every subject the service publishes on
const SubjectPrefix = "medals.events"

// MapEventToSubject converts a domain event type to its NATS subject
func MapEventToSubject(eventType events.EventType) string {
	return fmt.Sprintf("%s.%s", SubjectPrefix, eventType)
}

// AllSubjects lists the subjects a stream must capture
func AllSubjects() []string {
	types := events.AllEventTypes()
	subjects := make([]string, 0, len(types))
	for _, t := range types {
		subjects = append(subjects, MapEventToSubject(t))
	}
	return subjects
}
