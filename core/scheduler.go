package core

// Timer is a scheduled event. The handler runs when the clock reaches
// WakeTime and returns TimerDone or TimerReschedule; in the latter case
// it must have set a new WakeTime before returning.
type Timer struct {
	WakeTime uint32
	Handler  func(*Timer) uint8
	next     *Timer
}

const (
	TimerDone       = 0
	TimerReschedule = 1
)

// Scheduler keeps a list of pending timers sorted by wake time and
// fires the due ones each tick. It is driven entirely from the control
// loop, so no locking is needed.
type Scheduler struct {
	clock *Clock
	head  *Timer
}

func NewScheduler(clock *Clock) *Scheduler {
	return &Scheduler{clock: clock}
}

// Schedule inserts a timer in sorted order by WakeTime. Scheduling an
// already-pending timer is a bug; Cancel it first.
func (s *Scheduler) Schedule(t *Timer) {
	if s.head == nil || t.WakeTime < s.head.WakeTime {
		t.next = s.head
		s.head = t
		return
	}
	cur := s.head
	for cur.next != nil && cur.next.WakeTime < t.WakeTime {
		cur = cur.next
	}
	t.next = cur.next
	cur.next = t
}

// Cancel unlinks a pending timer. Cancelling a timer that is not
// pending is a no-op.
func (s *Scheduler) Cancel(t *Timer) {
	if s.head == nil {
		return
	}
	if s.head == t {
		s.head = t.next
		t.next = nil
		return
	}
	for cur := s.head; cur.next != nil; cur = cur.next {
		if cur.next == t {
			cur.next = t.next
			t.next = nil
			return
		}
	}
}

// Dispatch fires every timer whose wake time has passed. Handlers that
// return TimerReschedule are re-inserted with their updated WakeTime.
func (s *Scheduler) Dispatch() {
	now := s.clock.Now()
	for s.head != nil && int32(now-s.head.WakeTime) >= 0 {
		t := s.head
		s.head = t.next
		t.next = nil

		if t.Handler(t) == TimerReschedule {
			s.Schedule(t)
		}
	}
}
