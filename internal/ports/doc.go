// Package ports defines the interfaces that connect the layers of the
// application following the ports and adapters pattern.
//
// Service ports (TaskService, EventService, DashboardService) are implemented
// by the application layer and called by inbound adapters (HTTP handlers).
// Repository ports (TaskRepository, EventRepository) are implemented by
// storage adapters and called by the application layer. Because both sides
// depend on this package rather than each other, adapters can be swapped
// without touching the core.
package ports
