package snapshot

import (
	"sync"

	"github.com/dtnitsch/actionsense/models"
)

// Update is the notification sent after every successful merge.
type Update struct {
	TabID    int             `json:"tabId"`
	Category models.Category `json:"category"`
}

const subscriberBuffer = 16

// Broadcaster fans updates out to subscribers. Delivery is best effort: a
// subscriber whose buffer is full misses the update.
type Broadcaster struct {
	mu   sync.Mutex
	next int
	subs map[int]chan Update
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]chan Update)}
}

// Subscribe returns a channel of updates and a function that closes it.
func (b *Broadcaster) Subscribe() (<-chan Update, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan Update, subscriberBuffer)
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Publish delivers u to every subscriber that has room and reports how
// many received it.
func (b *Broadcaster) Publish(u Update) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	delivered := 0
	for _, ch := range b.subs {
		select {
		case ch <- u:
			delivered++
		default:
		}
	}
	return delivered
}
