// Package batch provides the Batch aggregate: one submitted job of shipment
// rows together with its pricing and lifecycle.
//
// Lifecycle:
//
//	QUEUED -> PROCESSING -> COMPLETED | PARTIAL | FAILED
//	COMPLETED | PARTIAL | CONFIRMED | AUTH_ERROR | CONFIRM_FAILED -> CONFIRMING
//	CONFIRMING -> CONFIRMED | AUTH_ERROR | CONFIRM_FAILED
//
// Finalize and Abandon return the refund owed for rows that produced no label,
// so that success count plus refunded units equals the requested count.
package batch
