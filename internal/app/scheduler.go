package app

import "time"

// Timer is a handle to a scheduled function.
type Timer interface {
    Stop() bool
}

// Scheduler runs f once after d.
type Scheduler interface {
    AfterFunc(d time.Duration, f func()) Timer
}

type clockScheduler struct{}

func (clockScheduler) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// ClockScheduler schedules on real timers.
var ClockScheduler Scheduler = clockScheduler{}
