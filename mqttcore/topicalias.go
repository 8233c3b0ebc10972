package mqttcore

import (
	"container/list"
	"log/slog"

	"github.com/mqttkit/core/packet"
)

// aliasSend is the send-side topic-alias bimap (spec §4.6): a topic may
// be reachable through more than one alias at once, but an alias maps
// to exactly one topic. get_lru_alias hands back the first unused
// alias while any remain, then the least-recently-used alias once the
// whole 1..max range is occupied. Recency is updated by Get, not by
// FindByTopic or Peek.
type aliasSend struct {
	max          uint16
	aliasTopic   map[uint16]string
	topicAliases map[string]map[uint16]struct{}
	order        *list.List
	elems        map[uint16]*list.Element
	logger       *slog.Logger // nil unless wired by a Connection; see Connection.newLoggedAliasSend
}

func newAliasSend(max uint16) *aliasSend {
	return &aliasSend{
		max:          max,
		aliasTopic:   make(map[uint16]string),
		topicAliases: make(map[string]map[uint16]struct{}),
		order:        list.New(),
		elems:        make(map[uint16]*list.Element),
	}
}

func (a *aliasSend) Max() uint16 { return a.max }

// Get returns the topic mapped to alias and marks it most recently used.
func (a *aliasSend) Get(alias uint16) (string, bool) {
	topic, ok := a.peekLocked(alias)
	if ok {
		a.touch(alias)
	}
	return topic, ok
}

// Peek returns the topic mapped to alias without affecting recency.
func (a *aliasSend) Peek(alias uint16) (string, bool) { return a.peekLocked(alias) }

func (a *aliasSend) peekLocked(alias uint16) (string, bool) {
	if alias < 1 || alias > a.max {
		return "", false
	}
	t, ok := a.aliasTopic[alias]
	return t, ok
}

// FindByTopic returns one of the aliases currently mapped to topic, if
// any. When a topic has been assigned more than one alias, the lowest
// is returned for determinism; the protocol only requires that some
// valid alias come back.
func (a *aliasSend) FindByTopic(topic string) (uint16, bool) {
	aliases := a.topicAliases[topic]
	if len(aliases) == 0 {
		return 0, false
	}
	var best uint16
	for alias := range aliases {
		if best == 0 || alias < best {
			best = alias
		}
	}
	return best, true
}

// GetLRUAlias returns the first never-used alias while the 1..max
// range still has room, or the least-recently-used alias once it's
// full. Returns 0 if max is 0 (the caller has no alias space to work
// with at all).
func (a *aliasSend) GetLRUAlias() uint16 {
	if a.max == 0 {
		return 0
	}
	if uint16(len(a.aliasTopic)) < a.max {
		for alias := uint16(1); alias <= a.max; alias++ {
			if _, used := a.aliasTopic[alias]; !used {
				return alias
			}
		}
	}
	if back := a.order.Back(); back != nil {
		return back.Value.(uint16)
	}
	return 1
}

// InsertOrUpdate assigns topic to alias, touching recency. If alias
// previously pointed at a different topic, that topic's reverse
// mapping for alias is removed; other aliases for that topic (or this
// one) are left untouched, since a topic may legitimately have several
// aliases simultaneously.
func (a *aliasSend) InsertOrUpdate(topic string, alias uint16) error {
	if topic == "" {
		return newDriverError(packet.KindMalformedPacket, "topic alias: topic must not be empty")
	}
	if alias < 1 || alias > a.max {
		return newDriverError(packet.KindTopicAliasInvalid, "topic alias: alias out of range")
	}
	if oldTopic, ok := a.aliasTopic[alias]; ok && oldTopic != topic {
		if set := a.topicAliases[oldTopic]; set != nil {
			delete(set, alias)
			if len(set) == 0 {
				delete(a.topicAliases, oldTopic)
			}
		}
		if a.logger != nil {
			a.logger.Debug("topic alias evicted", "alias", alias, "old_topic", oldTopic, "new_topic", topic)
		}
	}
	a.aliasTopic[alias] = topic
	if a.topicAliases[topic] == nil {
		a.topicAliases[topic] = make(map[uint16]struct{})
	}
	a.topicAliases[topic][alias] = struct{}{}
	a.touch(alias)
	return nil
}

func (a *aliasSend) touch(alias uint16) {
	if el, ok := a.elems[alias]; ok {
		a.order.MoveToFront(el)
		return
	}
	a.elems[alias] = a.order.PushFront(alias)
}

func (a *aliasSend) Clear() {
	a.aliasTopic = make(map[uint16]string)
	a.topicAliases = make(map[string]map[uint16]struct{})
	a.order = list.New()
	a.elems = make(map[uint16]*list.Element)
}

// aliasRecv is the receive-side topic-alias map (spec §4.6, §4.4): a
// strictly one-directional alias-to-topic lookup, populated whenever
// an inbound PUBLISH carries both an alias and a topic name.
type aliasRecv struct {
	max uint16
	m   map[uint16]string
}

func newAliasRecv(max uint16) *aliasRecv {
	return &aliasRecv{max: max, m: make(map[uint16]string)}
}

func (a *aliasRecv) Set(alias uint16, topic string) error {
	if alias < 1 || alias > a.max {
		return newDriverError(packet.KindTopicAliasInvalid, "topic alias: alias out of range")
	}
	a.m[alias] = topic
	return nil
}

func (a *aliasRecv) Get(alias uint16) (string, bool) {
	t, ok := a.m[alias]
	return t, ok
}

func (a *aliasRecv) Clear() { a.m = make(map[uint16]string) }
