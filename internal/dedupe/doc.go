// Package dedupe provides a time-windowed suppression cache used to stop
// repeated mesh events from flooding the control channel.
package dedupe
