package events

import (
	"sync"
	"testing"

	"go.uber.org/goleak"

	"github.com/kljl6773-hub/SafetyNevi/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func zone(id int64, disasterType string) *models.DisasterZone {
	return &models.DisasterZone{ID: id, DisasterType: disasterType}
}

func TestSubscribeAndBroadcast(t *testing.T) {
	b := NewBroadcaster()
	defer b.Close()

	id, ch := b.Subscribe()
	defer b.Unsubscribe(id)

	if got := b.SubscriberCount(); got != 1 {
		t.Fatalf("SubscriberCount() = %d, want 1", got)
	}

	b.Broadcast(zone(1, "지진"))

	got := <-ch
	if got.ID != 1 || got.DisasterType != "지진" {
		t.Errorf("received zone %+v, want ID=1 type=지진", got)
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := NewBroadcaster()
	defer b.Close()

	id, ch := b.Subscribe()
	b.Unsubscribe(id)

	if _, open := <-ch; open {
		t.Error("channel still open after Unsubscribe")
	}
	if got := b.SubscriberCount(); got != 0 {
		t.Errorf("SubscriberCount() = %d, want 0", got)
	}

	// Second unsubscribe of the same id must not panic.
	b.Unsubscribe(id)
}

func TestBroadcastReachesAllSubscribers(t *testing.T) {
	b := NewBroadcaster()
	defer b.Close()

	const n = 5
	channels := make([]chan *models.DisasterZone, n)
	for i := range channels {
		_, channels[i] = b.Subscribe()
	}

	b.Broadcast(zone(7, "호우"))

	for i, ch := range channels {
		got := <-ch
		if got.ID != 7 {
			t.Errorf("subscriber %d got zone ID %d, want 7", i, got.ID)
		}
	}
}

func TestSlowSubscriberIsSkipped(t *testing.T) {
	b := NewBroadcaster()
	defer b.Close()

	_, ch := b.Subscribe()

	// Fill the buffer and then one more; the overflow must be dropped
	// rather than blocking the broadcast.
	for i := 0; i < 17; i++ {
		b.Broadcast(zone(int64(i), "태풍"))
	}

	if got := len(ch); got != 16 {
		t.Errorf("buffered events = %d, want 16", got)
	}
}

func TestCloseShutsDownAllSubscribers(t *testing.T) {
	b := NewBroadcaster()

	_, ch1 := b.Subscribe()
	_, ch2 := b.Subscribe()

	b.Close()

	if _, open := <-ch1; open {
		t.Error("first channel still open after Close")
	}
	if _, open := <-ch2; open {
		t.Error("second channel still open after Close")
	}
	if got := b.SubscriberCount(); got != 0 {
		t.Errorf("SubscriberCount() = %d, want 0", got)
	}
}

func TestConcurrentSubscribeBroadcast(t *testing.T) {
	b := NewBroadcaster()
	defer b.Close()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			id, _ := b.Subscribe()
			b.Unsubscribe(id)
		}()
		go func(n int64) {
			defer wg.Done()
			b.Broadcast(zone(n, "산불"))
		}(int64(i))
	}
	wg.Wait()
}
