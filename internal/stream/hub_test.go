package stream

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(nil)
	client := hub.Register("ride-1")
	defer hub.Unregister(client)

	payload := []byte("hello")
	hub.Broadcast("ride-1", payload)

	select {
	case msg := <-client.Send:
		if string(msg) != "hello" {
			t.Fatalf("unexpected message")
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatalf("timeout waiting for message")
	}
}

func TestHubHelpers(t *testing.T) {
	ch := redisChannel("abc")
	if ch == "" {
		t.Fatalf("expected channel")
	}
	if rideIDFromChannel(ch) != "abc" {
		t.Fatalf("unexpected ride id")
	}
	if rideIDFromChannel("bad") != "" {
		t.Fatalf("expected empty ride id")
	}
}

func TestUnregisterCloses(t *testing.T) {
	hub := NewHub(nil)
	client := hub.Register("ride-2")
	hub.Unregister(client)
	_, ok := <-client.Send
	if ok {
		t.Fatalf("expected channel closed")
	}
}

func TestHubRedisBroadcastAndSubscribe(t *testing.T) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer client.Close()

	hub := NewHub(client)
	ws := hub.Register("ride-redis")
	defer hub.Unregister(ws)

	hub.Broadcast("ride-redis", []byte("ping"))

	select {
	case msg := <-ws.Send:
		if string(msg) != "ping" {
			t.Fatalf("unexpected message")
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatalf("timeout waiting for broadcast")
	}

	// a publish from another instance reaches local subscribers
	otherClient := hub.Register("ride-other")
	defer hub.Unregister(otherClient)

	time.Sleep(20 * time.Millisecond)
	if err := client.Publish(context.Background(), "ride:ride-other:snapshot", "pong").Err(); err != nil {
		t.Fatalf("publish error: %v", err)
	}

	select {
	case msg := <-otherClient.Send:
		if string(msg) != "pong" {
			t.Fatalf("unexpected message from redis")
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatalf("timeout waiting for redis message")
	}
}

func TestHubRedisPublishError(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	server.Close()
	defer client.Close()

	hub := NewHub(client)
	clientNode := hub.Register("ride-bad")
	defer hub.Unregister(clientNode)

	hub.Broadcast("ride-bad", []byte("ping"))
}

func TestHubBroadcastDuringUnregister(t *testing.T) {
	hub := NewHub(nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 5000; i++ {
			hub.Broadcast("ride-churn", []byte("tick"))
		}
	}()

	// churn clients while the broadcaster runs; a send on a closed
	// Send channel would panic
	for i := 0; i < 500; i++ {
		client := hub.Register("ride-churn")
		hub.Unregister(client)
	}
	<-done
}
