// Package http provides HTTP handlers and middleware for the booking API.
//
// The router exposes the following endpoints:
//   - GET /appointments, POST /appointments, GET /appointments/{id},
//     PATCH /appointments/{id}, DELETE /appointments/{id}: appointment
//     management endpoints exchanging the `appointmentDTO` payload defined in
//     appointment_handler.go. Creation runs a conflict check first and answers
//     409 with the colliding appointments unless the body sets
//     "allow_conflicts": true.
//   - PUT /appointments/{id}/status: replaces an appointment's status. Body:
//     {"status"}. Unknown values answer 422.
//   - GET /appointments/reference/{code}: looks an appointment up by its
//     human-facing reference code.
//   - GET /appointments/conflicts?start&end[&exclude_id&resource_ids]:
//     dry-run conflict detection for a candidate time range.
//   - GET /recurrence/preview?first&pattern&end: expands a recurrence pattern
//     into its occurrence dates without creating anything.
//   - GET /resources/available?start&end: resources whose weekly
//     unavailability windows leave the given slot clear.
//   - GET/POST /users, /services, /resources plus GET/DELETE on /{id}:
//     catalog management endpoints defined in catalog_handler.go.
//   - PUT/GET/DELETE /resources/{id}/unavailability and
//     POST /resources/{id}/deactivate: weekly blocking windows and soft
//     retirement for resources.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
