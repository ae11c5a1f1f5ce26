// Package websocket carries recognition sessions over a browser WebSocket.
//
// The browser owns the microphone and speech engine; the server owns the
// session state machine. Each connection is one session: client frames feed
// the session, and the session drives the browser's recognizer, panes and
// speech synthesis through server frames.
package websocket
