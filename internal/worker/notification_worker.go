// Package worker attaches the in-process event consumers at startup.
package worker

import (
	"github.com/helpdeskhq/helpdesk-service/internal/events"
	"github.com/helpdeskhq/helpdesk-service/internal/service"
)

// StartEventWorkers registers every event consumer on the dispatcher:
// the notification fan-out and the Redis push publisher. Called once
// from main before the first request can publish an event.
func StartEventWorkers(dispatcher events.Dispatcher, notifications *service.NotificationService, publisher *events.RedisPublisher) {
	if notifications != nil {
		notifications.RegisterHandlers()
	}
	if publisher != nil && dispatcher != nil {
		publisher.RegisterAll(dispatcher)
	}
}
