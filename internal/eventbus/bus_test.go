package eventbus

import (
	"testing"
	"time"
)

func TestPublishFanout(t *testing.T) {
	b := New()
	ch1, unsub1 := b.Subscribe(1)
	ch2, unsub2 := b.Subscribe(1)
	defer unsub1()
	defer unsub2()

	b.Publish(Event{Topic: TopicBroadcastSent, Data: DeliveryEvent{Group: "alerts", Alias: "a"}})

	for _, ch := range []<-chan Event{ch1, ch2} {
		select {
		case e := <-ch:
			if e.Topic != TopicBroadcastSent {
				t.Fatalf("topic = %q, want %q", e.Topic, TopicBroadcastSent)
			}
			if e.Time.IsZero() {
				t.Fatalf("publish did not stamp the event time")
			}
			d, ok := e.Data.(DeliveryEvent)
			if !ok || d.Group != "alerts" || d.Alias != "a" {
				t.Fatalf("data = %+v", e.Data)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber never received the event")
		}
	}
}

func TestPublishDropsWhenSubscriberFull(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe(1)
	defer unsub()

	b.Publish(Event{Topic: "one"})
	b.Publish(Event{Topic: "two"}) // buffer full; must not block

	if e := <-ch; e.Topic != "one" {
		t.Fatalf("topic = %q, want one", e.Topic)
	}
	select {
	case e := <-ch:
		t.Fatalf("unexpected second event %+v", e)
	default:
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe(4)
	unsub()
	unsub() // idempotent

	b.Publish(Event{Topic: "after"})

	if _, open := <-ch; open {
		t.Fatalf("channel still open after unsubscribe")
	}
}
