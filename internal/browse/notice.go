package browse

import (
	"sync"
	"time"
)

// NoticeDuration is how long a notice stays up.
const NoticeDuration = 3 * time.Second

const (
	MsgPhotoSaved                = "Photo saved to collection!"
	MsgCollectionCreated         = "Collection created successfully!"
	MsgCollectionCreatedAndSaved = "Collection created and photo saved!"
)

// Notice is a transient message. Show sets it and schedules its removal;
// observers see both transitions through OnChange.
type Notice struct {
	mu       sync.Mutex
	ttl      time.Duration
	message  string
	timer    *time.Timer
	gen      uint64
	onChange func(message string)
}

func NewNotice(ttl time.Duration) *Notice {
	return &Notice{ttl: ttl}
}

// OnChange sets the callback run when the message is shown or cleared. A
// cleared notice reports "".
func (n *Notice) OnChange(fn func(message string)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.onChange = fn
}

// Show replaces the current message and restarts the timer.
func (n *Notice) Show(message string) {
	n.mu.Lock()
	if n.timer != nil {
		n.timer.Stop()
	}
	n.gen++
	gen := n.gen
	n.message = message
	n.timer = time.AfterFunc(n.ttl, func() { n.expire(gen) })
	fn := n.onChange
	n.mu.Unlock()

	if fn != nil {
		fn(message)
	}
}

func (n *Notice) Message() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.message
}

// Stop cancels a pending clear without notifying.
func (n *Notice) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.gen++
}

func (n *Notice) expire(gen uint64) {
	n.mu.Lock()
	if gen != n.gen {
		n.mu.Unlock()
		return
	}
	n.message = ""
	n.timer = nil
	fn := n.onChange
	n.mu.Unlock()

	if fn != nil {
		fn("")
	}
}
