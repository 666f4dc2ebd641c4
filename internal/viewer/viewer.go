// Package viewer holds the full-screen photo viewer: an index into an ordered
// photo list that wraps at both ends and follows arrow and escape keys while
// it is open.
package viewer

import (
	"sync"

	"github.com/vbonduro/pingallery/internal/domain"
)

// State is a snapshot of the viewer. Index and Photo are only meaningful when
// Open is true.
type State struct {
	Open  bool          `json:"open"`
	Index int           `json:"index"`
	Count int           `json:"count"`
	Photo *domain.Photo `json:"photo,omitempty"`
}

type Viewer struct {
	mu       sync.Mutex
	photos   []domain.Photo
	open     bool
	index    int
	keyboard Keyboard
	detach   func()
	onChange func(State)
}

// New returns a closed viewer. keyboard may be nil, in which case the viewer
// is driven only by direct calls.
func New(keyboard Keyboard) *Viewer {
	return &Viewer{keyboard: keyboard}
}

// OnChange sets the callback run after every transition.
func (v *Viewer) OnChange(fn func(State)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.onChange = fn
}

// SetPhotos replaces the list the viewer indexes into. If the viewer is open
// and the list shrinks past the current index, the index moves to the last
// photo; an empty list closes the viewer.
func (v *Viewer) SetPhotos(photos []domain.Photo) {
	v.mu.Lock()
	v.photos = photos
	changed := false
	if v.open {
		changed = true
		switch {
		case len(photos) == 0:
			v.closeLocked()
		case v.index >= len(photos):
			v.index = len(photos) - 1
		}
	}
	v.mu.Unlock()

	if changed {
		v.notify()
	}
}

// Open shows the photo at index. An out-of-range index opens the first photo.
// Opening an empty list does nothing.
func (v *Viewer) Open(index int) {
	v.mu.Lock()
	if len(v.photos) == 0 {
		v.mu.Unlock()
		return
	}
	if index < 0 || index >= len(v.photos) {
		index = 0
	}
	v.index = index
	v.open = true
	if v.detach == nil && v.keyboard != nil {
		v.detach = v.keyboard.Listen(v.handleKey)
	}
	v.mu.Unlock()

	v.notify()
}

func (v *Viewer) Next() {
	v.step(1)
}

func (v *Viewer) Previous() {
	v.step(-1)
}

func (v *Viewer) step(delta int) {
	v.mu.Lock()
	if !v.open {
		v.mu.Unlock()
		return
	}
	n := len(v.photos)
	v.index = ((v.index+delta)%n + n) % n
	v.mu.Unlock()

	v.notify()
}

// Close hides the viewer, forgets the index, and releases the keyboard.
func (v *Viewer) Close() {
	v.mu.Lock()
	if !v.open {
		v.mu.Unlock()
		return
	}
	v.closeLocked()
	v.mu.Unlock()

	v.notify()
}

// Detach releases the keyboard and closes the viewer without notifying. Call
// it when the owner of the viewer goes away.
func (v *Viewer) Detach() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closeLocked()
}

func (v *Viewer) closeLocked() {
	v.open = false
	v.index = 0
	if v.detach != nil {
		v.detach()
		v.detach = nil
	}
}

// Current returns the photo being shown.
func (v *Viewer) Current() (domain.Photo, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.open {
		return domain.Photo{}, false
	}
	return v.photos[v.index], true
}

func (v *Viewer) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stateLocked()
}

func (v *Viewer) stateLocked() State {
	s := State{Open: v.open, Count: len(v.photos)}
	if v.open {
		p := v.photos[v.index]
		s.Index = v.index
		s.Photo = &p
	}
	return s
}

func (v *Viewer) handleKey(key string) {
	switch key {
	case KeyArrowLeft:
		v.Previous()
	case KeyArrowRight:
		v.Next()
	case KeyEscape:
		v.Close()
	}
}

func (v *Viewer) notify() {
	v.mu.Lock()
	fn := v.onChange
	s := v.stateLocked()
	v.mu.Unlock()

	if fn != nil {
		fn(s)
	}
}
