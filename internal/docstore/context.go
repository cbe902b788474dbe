package docstore

import (
	"context"
	"sync"
)

// DefaultConversation is the conversation ID used when the caller supplies
// none.
const DefaultConversation = "default"

// Contexts owns one Store per conversation. Stores are created lazily on
// first access and live for the process lifetime; nothing is persisted
// across restarts. Stores for different conversations share no state.
type Contexts struct {
	mu     sync.Mutex
	stores map[string]*Store
}

// NewContexts creates an empty conversation registry.
func NewContexts() *Contexts {
	return &Contexts{stores: make(map[string]*Store)}
}

// ForConversation returns the store owned by the given conversation,
// creating it on first access.
func (c *Contexts) ForConversation(id string) *Store {
	if id == "" {
		id = DefaultConversation
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	store, ok := c.stores[id]
	if !ok {
		store = NewStore()
		c.stores[id] = store
	}
	return store
}

type conversationKey struct{}

// WithConversation tags a context with a conversation ID so tools can
// resolve the right store.
func WithConversation(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, conversationKey{}, id)
}

// ConversationID extracts the conversation ID from a context, falling back
// to DefaultConversation.
func ConversationID(ctx context.Context) string {
	if id, ok := ctx.Value(conversationKey{}).(string); ok && id != "" {
		return id
	}
	return DefaultConversation
}
