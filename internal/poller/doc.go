// Package poller implements the catalog refresher.
//
// The Poller:
//   - Fetches the function catalog on start and then every Interval
//   - Bounds each fetch with Timeout
//   - Calls the handler only when the catalog differs from the last one seen
//   - Logs fetch failures and keeps the previous catalog
package poller
