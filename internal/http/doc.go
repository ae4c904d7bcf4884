// Package http provides HTTP handlers and middleware for the roster API.
//
// The router exposes the following endpoints:
//   - GET /schedule/days/{date}: one resolved schedule day. Query parameters
//     `team`, `user`, and `include_pending` narrow the perspective; a date
//     with no applicable data answers with error code "no_schedule".
//   - GET /schedule/range: every day between `start` and `end` inclusive,
//     with per-day failures reported alongside the days that resolved.
//   - GET /teams/{id}/working: whether the team works on `date`.
//   - GET /cycle: the cycle position and days-from-scheme-start of `date`.
//   - POST /cache/invalidations: flips the schedule cache generation.
//   - GET/POST /teams, /shifts, /rules, /assignments, /exceptions: the
//     administrative surface used to load roster data, exchanging the DTOs
//     defined in admin_handler.go.
//   - GET /healthz: liveness plus a database ping.
//   - GET /metrics: Prometheus metrics.
//
// Request/response DTOs live alongside their respective handlers so tests
// and documentation share the same ground truth.
package http
