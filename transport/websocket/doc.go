// Package websocket pushes live board updates to browsers watching a session.
//
// A single Hub goroutine owns the set of connected clients, grouped by session
// ID. HTTP handlers call BroadcastToSession after every accepted action and
// BroadcastEvent for named events such as a victory; both only queue a message,
// so a slow watcher never blocks a game request. Clients that fall behind are
// dropped.
//
// Frames are JSON:
//
//	{"session_id":"a1b2","event":"state_update","state":{...view...}}
//	{"session_id":"a1b2","event":"victory","data":{...}}
//
// The socket is one-way. Anything a client sends is read and discarded so that
// ping and close frames are handled.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//	r.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
package websocket
