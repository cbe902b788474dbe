// Package docstore holds fetched documents per conversation, keyed by
// caller-chosen names.
//
// The agent consuming these tools has no side channel to list storage
// contents, so every status and error message must carry the current key
// set. That discoverability is a contract, not cosmetics.
package docstore

import (
	"fmt"
	"sort"
	"strings"
)

// Store maps document keys to raw text content for one conversation.
//
// A store is only touched by one in-flight tool call at a time; the owning
// agent loop serializes tool invocations within a conversation, so no
// internal locking is needed here.
type Store struct {
	docs map[string]string
}

// NewStore creates an empty document store.
func NewStore() *Store {
	return &Store{docs: make(map[string]string)}
}

// Save stores content under key, overwriting any existing document. The
// returned status string warns when the key pre-existed (the overwrite is
// destructive) and lists all current keys so the agent can discover what it
// has already fetched.
func (s *Store) Save(key, content string) string {
	var b strings.Builder
	if _, exists := s.docs[key]; exists {
		b.WriteString("WARNING: the key already exists in the data storage; the new result overwrites the old one.\n")
	}
	s.docs[key] = content
	fmt.Fprintf(&b, "SUCCESS: the result has been saved to the data storage under the key: %s.\n", key)
	b.WriteString("The data storage currently contains the following keys:\n")
	b.WriteString(strings.Join(s.Keys(), "\n"))
	return b.String()
}

// Get returns the document stored under key. A miss returns a
// KeyNotFoundError listing the available key set.
func (s *Store) Get(key string) (string, error) {
	content, ok := s.docs[key]
	if !ok {
		return "", &KeyNotFoundError{Key: key, Available: s.Keys()}
	}
	return content, nil
}

// Has reports whether key is present.
func (s *Store) Has(key string) bool {
	_, ok := s.docs[key]
	return ok
}

// Keys returns the current key set in sorted order.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.docs))
	for k := range s.docs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of stored documents.
func (s *Store) Len() int { return len(s.docs) }

// KeyNotFoundError reports a lookup for an unknown document key, carrying
// the available key set for the calling agent.
type KeyNotFoundError struct {
	Key       string
	Available []string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("the key %q was not found in the data storage; available keys are: %s",
		e.Key, strings.Join(e.Available, ", "))
}
