// Package kernel holds the primitives shared by every aggregate of the
// fulfillment domain: identifiers, money in cents and the injectable
// randomness source used by tracking synthesis and batch selection.
package kernel
