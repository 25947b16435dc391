package core

import (
	"testing"
	"time"
)

func TestInputQueueOrder(t *testing.T) {
	var q InputQueue

	q.Push(ActionLeft)
	q.Push(ActionNone)
	q.Push(ActionFire)

	if q.Len() != 2 {
		t.Fatalf("Len() = %d, expected 2 (ActionNone is dropped)", q.Len())
	}
	if a := q.Pop(); a != ActionLeft {
		t.Errorf("first Pop() = %v, expected Left", a)
	}
	if a := q.Pop(); a != ActionFire {
		t.Errorf("second Pop() = %v, expected Fire", a)
	}
	if a := q.Pop(); a != ActionNone {
		t.Errorf("Pop() on empty queue = %v, expected None", a)
	}
}

func TestActionString(t *testing.T) {
	if ActionRight.String() != "Right" {
		t.Errorf("ActionRight.String() = %q", ActionRight.String())
	}
	if Action(99).String() != "Unknown" {
		t.Errorf("Action(99).String() = %q", Action(99).String())
	}
}

func TestFrameTiming(t *testing.T) {
	tests := []struct {
		name        string
		cfg         RuntimeConfig
		frame, tick time.Duration
		backlog     time.Duration
	}{
		{
			"invaders defaults",
			RuntimeConfig{TickRate: 60, Step: 50 * time.Microsecond, MaxStepsPerFrame: 2000},
			16666666, 50 * time.Microsecond, 100 * time.Millisecond,
		},
		{
			"backlog at least one frame",
			RuntimeConfig{TickRate: 10, Step: time.Millisecond, MaxStepsPerFrame: 5},
			100 * time.Millisecond, time.Millisecond, 100 * time.Millisecond,
		},
		{
			"no cap",
			RuntimeConfig{TickRate: 50, Step: time.Millisecond},
			20 * time.Millisecond, time.Millisecond, time.Second,
		},
		{
			"no step",
			RuntimeConfig{TickRate: 50, MaxStepsPerFrame: 3},
			20 * time.Millisecond, 20 * time.Millisecond, 60 * time.Millisecond,
		},
		{
			"zero rate",
			RuntimeConfig{},
			16666666, 16666666, time.Second,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.cfg.FrameInterval(); got != tc.frame {
				t.Errorf("FrameInterval() = %v, expected %v", got, tc.frame)
			}
			if got := tc.cfg.TickDuration(); got != tc.tick {
				t.Errorf("TickDuration() = %v, expected %v", got, tc.tick)
			}
			if got := tc.cfg.MaxBacklog(); got != tc.backlog {
				t.Errorf("MaxBacklog() = %v, expected %v", got, tc.backlog)
			}
		})
	}
}
