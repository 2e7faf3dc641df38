package ecs

import (
	"encoding/binary"

	"github.com/google/uuid"
)

// IDGen hands out entity identifiers.
type IDGen interface {
	NextID() uuid.UUID
}

// RandomIDs generates random (version 4) UUIDs.
type RandomIDs struct{}

func (RandomIDs) NextID() uuid.UUID {
	return uuid.New()
}

// SequentialIDs generates 00000000-0000-0000-0000-000000000001,
// 00000000-0000-0000-0000-000000000002 and so on.  Handy when output must be
// reproducible.
type SequentialIDs struct {
	counter uint64
}

func (s *SequentialIDs) NextID() (id uuid.UUID) {
	s.counter += 1
	binary.BigEndian.PutUint64(id[8:], s.counter)
	return
}
