// Package ws implements the live observer hub for vitaltrace-server.
//
// Hub manages a set of connected WebSocket clients and pushes every
// classified reading to all of them as it is ingested. Clients send nothing
// meaningful after subscribing; the connection exists only to receive
// events.
//
// NewHub() creates a Hub.
// Hub.Run(ctx) blocks until ctx is cancelled, then closes all connections.
// Hub.ServeHTTP upgrades an HTTP connection to WebSocket and streams events
// until the client disconnects.
// Hub.Publish delivers one event to every connected client.
//
// Message format sent to clients:
//
//	{
//	  "data":   { "timestamp": ..., "hr": ..., "spo2": ..., "temp": ..., "cause": null },
//	  "status": "normal"
//	}
//
// Delivery is best-effort: a client whose outgoing buffer is full or whose
// connection has failed is silently dropped, and its failure never affects
// delivery to the remaining clients or the publisher. Publish calls
// serialize on the hub lock, so every client observes events in the order
// they were published. The upgrader accepts all origins; apply CORS
// restrictions at the reverse proxy level. The endpoint is mounted at /ws
// by the server.
package ws
