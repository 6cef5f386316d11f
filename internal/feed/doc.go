// Package feed turns raw live-feed payloads into identified, timestamped
// messages for display.
//
// Log is registered as a connection consumer; it assigns each payload a uuid
// and receipt time, keeps the newest entries and optionally forwards them to
// a Queue so slow rendering never holds up dispatch.
package feed
