package clock_test

import (
	"strings"
	"testing"
	"time"

	"github.com/jrazmi/todolist/client/clock"
)

var epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFakeFiresInDeadlineOrder(t *testing.T) {
	c := clock.NewFake(epoch)

	var got []string
	c.AfterFunc(3*time.Second, func() { got = append(got, "c") })
	c.AfterFunc(1*time.Second, func() { got = append(got, "a") })
	c.AfterFunc(2*time.Second, func() {
		got = append(got, "b")
		c.AfterFunc(500*time.Millisecond, func() { got = append(got, "b2") })
	})

	c.Advance(2 * time.Second)
	if want := "a,b"; strings.Join(got, ",") != want {
		t.Fatalf("after 2s fired %v, want %s", got, want)
	}

	c.Advance(time.Second)
	if want := "a,b,b2,c"; strings.Join(got, ",") != want {
		t.Fatalf("after 3s fired %v, want %s", got, want)
	}
	if !c.Now().Equal(epoch.Add(3 * time.Second)) {
		t.Errorf("now = %v", c.Now())
	}
}

func TestFakeStop(t *testing.T) {
	c := clock.NewFake(epoch)

	fired := false
	timer := c.AfterFunc(time.Second, func() { fired = true })
	if !timer.Stop() {
		t.Fatal("first stop should report true")
	}
	if timer.Stop() {
		t.Fatal("second stop should report false")
	}

	c.Advance(time.Minute)
	if fired {
		t.Error("stopped timer fired")
	}
	if c.Pending() != 0 {
		t.Errorf("pending = %d", c.Pending())
	}
}

func TestSleep(t *testing.T) {
	c := clock.NewFake(epoch)

	done := make(chan bool)
	go func() { done <- clock.Sleep(c, time.Second, nil) }()

	c.BlockUntil(1)
	c.Advance(time.Second)
	if !<-done {
		t.Error("sleep should report the full duration elapsed")
	}

	cancel := make(chan struct{})
	go func() { done <- clock.Sleep(c, time.Second, cancel) }()
	c.BlockUntil(1)
	close(cancel)
	if <-done {
		t.Error("cancelled sleep should report false")
	}
}
