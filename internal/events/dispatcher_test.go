package events

import (
	"context"
	"errors"
	"testing"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var got []string
	dispatcher.Subscribe(EventReportCreated, func(_ context.Context, event Event) error {
		got = append(got, "first:"+event.ReportID)
		return nil
	})
	dispatcher.Subscribe(EventReportCreated, func(_ context.Context, event Event) error {
		got = append(got, "second:"+event.ReportID)
		return nil
	})
	dispatcher.Subscribe(EventReportAssigned, func(_ context.Context, _ Event) error {
		got = append(got, "wrong-type")
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{Type: EventReportCreated, ReportID: "report-1"})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(got) != 2 || got[0] != "first:report-1" || got[1] != "second:report-1" {
		t.Errorf("deliveries = %v", got)
	}
}

func TestDispatcherHandlerErrorDoesNotStopDelivery(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	delivered := false
	dispatcher.Subscribe(EventReportStatusChanged, func(_ context.Context, _ Event) error {
		return errors.New("handler failure")
	})
	dispatcher.Subscribe(EventReportStatusChanged, func(_ context.Context, _ Event) error {
		delivered = true
		return nil
	})

	if err := dispatcher.Publish(context.Background(), Event{Type: EventReportStatusChanged}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if !delivered {
		t.Error("second handler not invoked after first errored")
	}
}

func TestDispatcherNoSubscribers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()
	if err := dispatcher.Publish(context.Background(), Event{Type: EventReportMLProcessed}); err != nil {
		t.Fatalf("Publish without subscribers: %v", err)
	}
}
