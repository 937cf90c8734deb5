// Package relay owns live connections and the single event loop that applies
// every participant action to the session registry and photo feed.
//
// Each connection gets a Client with a read pump and a write pump. The read
// pump hands frames to the Hub; the Hub mutates state and fans the result out
// through the Broadcaster, which enqueues onto each client's send queue
// without blocking. Because only the Hub goroutine mutates state and
// broadcasts, every client sees broadcasts in the order they were produced.
package relay
