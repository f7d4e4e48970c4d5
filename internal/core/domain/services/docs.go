// Package services provides domain services of the fulfillment backend that
// do not belong to a single aggregate.
//
// The package includes:
//   - BatchSelector: per-owner FIFO candidates and weighted random choice of the next batch to claim
//   - TrackingSynthesizer: tracking numbers for one batch of one rate family
//   - ZoneEstimator: coarse shipping zone, transit days and carrier route
//   - LabelComposer: the printable content of one label
//   - OrderIDResolver: marketplace order id detection with swapped-column compensation
//   - FailFastBreaker: early abort when no marketplace lookup ever succeeds
//
// Every service that needs randomness takes a kernel.Rand so tests can fix a seed.
package services
