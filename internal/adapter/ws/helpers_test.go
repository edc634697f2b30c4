package ws_test

import (
	"net/http"

	"github.com/iho/propledger/internal/adapter/ws"
)

func hubHandler(hub *ws.Hub) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/chat/ws", hub.ServeWS)
	return mux
}
