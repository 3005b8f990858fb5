// Package core provides the application logic for the classification
// workflow.
//
// The package sits between the HTTP layer and the leaf packages. It owns no
// state of its own beyond concurrency control: every session lives in a
// [session.Store] and every change goes through the session reducer.
//
// # Workflow
//
//  1. [Service.Upload] validates and parses a CSV file and makes it the
//     session's current file.
//  2. [Service.Classify] sends the raw file to the classification service,
//     stores the per-row results, then asks the service for metrics. A
//     metrics failure keeps the results.
//  3. [Service.Search], [Service.Sort] and [Service.Page] adjust the table
//     view; [NewSnapshot] derives what to render.
//  4. [Service.Export] encodes the results as CSV.
//
// # Concurrency
//
// Repeated classify requests for the same upload join the request already
// in flight. Across sessions a [ClassifyLimiter] caps how many classify
// calls reach the remote service at once; [Service.Drain] waits for them
// during shutdown. Completions for an upload that has since been replaced
// or cleared are discarded by the reducer.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - CLS001-CLS004: Classification service errors
//   - FILE001-FILE005: File errors (size, extension, empty)
//   - SES001-SES002: Session errors (no upload, expired)
//   - EXP001: Export errors
//   - UPL004-UPL005: Request cancelled or timed out
//
// # Maintenance
//
// [Service.StartSessionJanitor] removes idle sessions in the background.
package core
