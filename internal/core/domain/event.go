package domain

type ConnectionID string

type EventKind string

const EventKindPost EventKind = "post"

// FeedEvent is the immutable unit broadcast to all live viewers at the
// moment a post is committed. Events are never stored; a viewer that
// connects later never sees past events.
type FeedEvent struct {
	Kind    EventKind `json:"kind"`
	Author  string    `json:"author"`
	Content string    `json:"content"`
}

func NewPostEvent(author, content string) FeedEvent {
	return FeedEvent{
		Kind:    EventKindPost,
		Author:  author,
		Content: content,
	}
}
