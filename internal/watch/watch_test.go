package watch

import (
	"errors"
	"sync"
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestHubTopicFiltering(t *testing.T) {
	hub := NewHub()
	var got []Topic
	cancel := hub.Subscribe(func(ev Event) { got = append(got, ev.Topic) }, TopicRecords, TopicTags)

	hub.Publish(Event{Topic: TopicHabits})
	hub.Publish(Event{Topic: TopicRecords})
	hub.Publish(Event{Topic: TopicTags})

	if len(got) != 2 || got[0] != TopicRecords || got[1] != TopicTags {
		t.Errorf("received %v, want [records tags]", got)
	}

	cancel()
	cancel()
	hub.Publish(Event{Topic: TopicRecords})
	if len(got) != 2 {
		t.Errorf("handler ran after cancel: %v", got)
	}
	if hub.Subscribers() != 0 {
		t.Errorf("Subscribers() = %d, want 0", hub.Subscribers())
	}
}

func TestHubAllTopics(t *testing.T) {
	hub := NewHub()
	count := 0
	defer hub.Subscribe(func(Event) { count++ })()

	for _, topic := range []Topic{TopicHabits, TopicRecords, TopicTags, TopicSettings} {
		hub.Publish(Event{Topic: topic})
	}
	if count != 4 {
		t.Errorf("count = %d, want 4", count)
	}
}

func TestHubReentrantPublish(t *testing.T) {
	hub := NewHub()
	var seen []Topic
	hub.Subscribe(func(ev Event) {
		seen = append(seen, ev.Topic)
		if ev.Topic == TopicRecords {
			hub.Publish(Event{Topic: TopicHabits})
		}
	})
	hub.Publish(Event{Topic: TopicRecords})
	if len(seen) != 2 {
		t.Errorf("seen = %v, want two events", seen)
	}
}

func TestLiveReloadsOnTopic(t *testing.T) {
	hub := NewHub()
	n := 0
	live := NewLive(hub, func() (int, error) {
		n++
		return n, nil
	}, TopicRecords)
	defer live.Close()

	if v, _ := live.Get(); v != 1 {
		t.Fatalf("initial value = %d, want 1", v)
	}

	var notified []int
	live.OnChange(func(v int, err error) { notified = append(notified, v) })

	hub.Publish(Event{Topic: TopicHabits})
	hub.Publish(Event{Topic: TopicRecords})

	if v, _ := live.Get(); v != 2 {
		t.Errorf("value = %d, want 2", v)
	}
	if len(notified) != 1 || notified[0] != 2 {
		t.Errorf("notified = %v, want [2]", notified)
	}

	live.Close()
	hub.Publish(Event{Topic: TopicRecords})
	if v, _ := live.Get(); v != 2 {
		t.Errorf("value after Close = %d, want 2", v)
	}
}

func TestLiveKeepsValueOnError(t *testing.T) {
	hub := NewHub()
	fail := false
	boom := errors.New("boom")
	live := NewLive(hub, func() (string, error) {
		if fail {
			return "", boom
		}
		return "ok", nil
	})
	defer live.Close()

	fail = true
	live.Refresh()
	v, err := live.Get()
	if v != "ok" || !errors.Is(err, boom) {
		t.Errorf("Get() = %q, %v; want ok, boom", v, err)
	}
}

func TestLiveConcurrentRefresh(t *testing.T) {
	hub := NewHub()
	var mu sync.Mutex
	loads := 0
	live := NewLive(hub, func() (int, error) {
		mu.Lock()
		defer mu.Unlock()
		loads++
		return loads, nil
	}, TopicRecords)
	defer live.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hub.Publish(Event{Topic: TopicRecords})
		}()
	}
	wg.Wait()

	if _, err := live.Get(); err != nil {
		t.Fatal(err)
	}
	mu.Lock()
	defer mu.Unlock()
	if loads != 9 {
		t.Errorf("loads = %d, want 9", loads)
	}
}

func TestLiveDiscardsOutOfOrderLoad(t *testing.T) {
	hub := NewHub()
	var mu sync.Mutex
	calls := 0
	entered := make(chan struct{})
	release := make(chan struct{})
	live := NewLive(hub, func() (int, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 2 {
			close(entered)
			<-release
		}
		return n, nil
	})
	defer live.Close()

	var seen []int
	live.OnChange(func(v int, _ error) {
		mu.Lock()
		seen = append(seen, v)
		mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		live.Refresh()
		close(done)
	}()
	<-entered
	live.Refresh()
	close(release)
	<-done

	if v, _ := live.Get(); v != 3 {
		t.Errorf("Get() = %d, want 3 from the newer load", v)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 1 || seen[0] != 3 {
		t.Errorf("listeners saw %v, want [3]", seen)
	}
}
