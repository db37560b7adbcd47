package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// startServer runs a websocket endpoint that hands the accepted
// connection to serve.
func startServer(t *testing.T, serve func(conn *websocket.Conn)) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		serve(conn)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestClientDeliversTypedEvents(t *testing.T) {
	frames := []Envelope{
		{Type: "auctionAdded", Payload: json.RawMessage(`{"message":"ok"}`)},
		{Type: "auctionsList", Payload: json.RawMessage(`[]`)},
		{Type: "mystery", Payload: json.RawMessage(`{}`)},
	}
	hold := make(chan struct{})
	url := startServer(t, func(conn *websocket.Conn) {
		for _, frame := range frames {
			if err := conn.WriteJSON(frame); err != nil {
				t.Errorf("write: %v", err)
				return
			}
		}
		<-hold
	})
	defer close(hold)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := Dial(ctx, url, nil, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	go client.Run(ctx)

	for i, frame := range frames {
		select {
		case ev := <-client.Events():
			if string(ev.Kind) != frame.Type {
				t.Fatalf("event %d: got kind %q, want %q", i, ev.Kind, frame.Type)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for event %d", i)
		}
	}
}

func TestClientEmitWritesEnvelope(t *testing.T) {
	received := make(chan Envelope, 1)
	url := startServer(t, func(conn *websocket.Conn) {
		var env Envelope
		if err := conn.ReadJSON(&env); err != nil {
			t.Errorf("read: %v", err)
			return
		}
		received <- env
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := Dial(ctx, url, nil, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	go client.Run(ctx)

	if err := client.Emit(EmitAddAuction, map[string]string{"title": "clock"}); err != nil {
		t.Fatal(err)
	}

	select {
	case env := <-received:
		if env.Type != EmitAddAuction {
			t.Fatalf("got type %q, want %q", env.Type, EmitAddAuction)
		}
		var body map[string]string
		if err := json.Unmarshal(env.Payload, &body); err != nil {
			t.Fatal(err)
		}
		if body["title"] != "clock" {
			t.Fatalf("payload lost: %v", body)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for emitted frame")
	}
}
