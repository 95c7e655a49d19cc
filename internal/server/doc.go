// Package server exposes the catalogue over HTTP and plays sorting sessions
// over websockets.
//
// Each websocket connection owns one engine.Engine. The connection's reader
// goroutine only enqueues gesture events; every message to the client is
// written from the engine loop, so a connection never has two writers.
package server
