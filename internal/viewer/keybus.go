package viewer

import "sync"

// Key names understood by the viewer. They match KeyboardEvent.key values.
const (
	KeyArrowLeft  = "ArrowLeft"
	KeyArrowRight = "ArrowRight"
	KeyEscape     = "Escape"
)

// Keyboard is a source of key presses. Listen registers fn and returns a func
// that removes it again.
type Keyboard interface {
	Listen(fn func(key string)) (detach func())
}

// KeyBus is an in-process Keyboard. A live session feeds it the keys its
// client reports.
type KeyBus struct {
	mu        sync.Mutex
	listeners map[int]func(string)
	next      int
}

func NewKeyBus() *KeyBus {
	return &KeyBus{listeners: make(map[int]func(string))}
}

func (b *KeyBus) Listen(fn func(key string)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	b.listeners[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.listeners, id)
		})
	}
}

// Press delivers key to every current listener. Listeners may detach
// themselves while handling it.
func (b *KeyBus) Press(key string) {
	b.mu.Lock()
	fns := make([]func(string), 0, len(b.listeners))
	for _, fn := range b.listeners {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(key)
	}
}

// Listeners reports how many listeners are attached.
func (b *KeyBus) Listeners() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}
