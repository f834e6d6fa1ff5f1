package handler

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"golfcam/internal/events"
	"golfcam/internal/model"
)

func TestClientSendAfterClose(t *testing.T) {
	c := &Client{ID: "c1", Send: make(chan []byte, 1)}
	if !c.trySend([]byte("a")) {
		t.Fatal("send to open client failed")
	}
	if c.trySend([]byte("b")) {
		t.Fatal("send to full buffer reported success")
	}
	c.close()
	c.close()
	if c.trySend([]byte(`{"type":"pong"}`)) {
		t.Fatal("send after close reported success")
	}
}

func TestClientConcurrentSendAndClose(t *testing.T) {
	for i := 0; i < 50; i++ {
		c := &Client{ID: "c1", Send: make(chan []byte, 4)}
		var wg sync.WaitGroup
		for j := 0; j < 8; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for k := 0; k < 20; k++ {
					c.trySend([]byte(`{"type":"pong"}`))
				}
			}()
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.close()
		}()
		wg.Wait()
	}
}

func TestHubDeliversByKindAndStops(t *testing.T) {
	hub := NewWSHub(nil)
	go hub.Run()

	all := &Client{ID: "all", Send: make(chan []byte, 8), Hub: hub}
	cams := &Client{ID: "cams", Send: make(chan []byte, 8), Hub: hub, kind: model.KindCamera}
	hub.register <- all
	hub.register <- cams

	ctx := context.Background()
	hub.Publish(ctx, events.New(model.KindWorker, events.ActionUpdated, "W1", nil))
	hub.Publish(ctx, events.New(model.KindCamera, events.ActionUpdated, "C1", nil))

	recv := func(c *Client) string {
		select {
		case msg := <-c.Send:
			return string(msg)
		case <-time.After(2 * time.Second):
			t.Fatalf("client %s got nothing", c.ID)
			return ""
		}
	}
	if got := recv(all); !strings.Contains(got, `"W1"`) {
		t.Fatalf("all got %s first", got)
	}
	if got := recv(all); !strings.Contains(got, `"C1"`) {
		t.Fatalf("all got %s second", got)
	}
	if got := recv(cams); !strings.Contains(got, `"C1"`) {
		t.Fatalf("camera subscriber got %s", got)
	}
	if hub.GetClientCount() != 2 {
		t.Fatalf("clients = %d", hub.GetClientCount())
	}

	hub.Stop()
	if all.trySend([]byte(`{"type":"pong"}`)) {
		t.Fatal("send after Stop reported success")
	}
	if _, ok := <-cams.Send; ok {
		t.Fatal("camera subscriber channel still open after Stop")
	}
}
