// Package errs provides the typed errors shared by the fulfillment backend.
//
// Each error type pairs a sentinel (for errors.Is) with a struct carrying the
// offending parameter and an optional cause:
//   - ObjectNotFoundError: a batch, result or account lookup matched nothing
//   - ValueIsInvalidError: a value broke a domain rule (rows rejected before enqueue)
//   - ValueIsRequiredError: a mandatory value was empty
//   - ValueIsOutOfRangeError: a numeric value fell outside its bounds
//   - VersionIsInvalidError: a rate version is not configured
//
// Messages never leave the process: the HTTP adapter maps them to generic
// responses and only status enums are surfaced to callers.
package errs
