// Package billing provides domain models for credit gating and usage metering.
//
// The billing bounded context is responsible for:
//   - Checking whether a customer has credits available for a feature
//   - Reporting consumed usage to the external metering provider
//   - Keeping a local audit log of usage events
//
// Balances and entitlements live in the external provider; this package only
// defines the call shapes (Provider) and the local audit entities (UsageEvent).
package billing
