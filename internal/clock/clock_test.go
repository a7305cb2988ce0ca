package clock

import (
	"testing"
	"time"
)

var epoch = time.Unix(1_700_000_000, 0)

func TestFakeClockNow(t *testing.T) {
	clock := Fake(epoch)
	if got := clock.Now(); !got.Equal(epoch) {
		t.Fatalf("Now() = %v, want %v", got, epoch)
	}
	clock.Advance(5 * time.Second)
	if got, want := clock.Now(), epoch.Add(5*time.Second); !got.Equal(want) {
		t.Fatalf("Now() after Advance = %v, want %v", got, want)
	}
	clock.Set(epoch)
	if got := clock.Now(); !got.Equal(epoch) {
		t.Fatalf("Now() after Set = %v, want %v", got, epoch)
	}
}

func TestOr(t *testing.T) {
	if _, ok := Or(nil).(realClock); !ok {
		t.Fatal("Or(nil) is not the real clock")
	}
	fake := Fake(epoch)
	if Or(fake) != Clock(fake) {
		t.Fatal("Or(fake) did not return fake")
	}
}
