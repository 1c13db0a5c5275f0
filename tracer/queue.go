// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package tracer

import (
	"fmt"
	"sync"
)

// Block is one completed translated block, as reported by the engine.
type Block struct {
	Address          uint64 // Starting address of the block.
	InstructionCount uint64 // Instructions retired in the block.
}

// QueuePolicy selects how the trace queue behaves when full.
type QueuePolicy int

const (
	QUEUE_UNBOUNDED   = QueuePolicy(iota) // unbounded
	QUEUE_BOUND                           // bound
	QUEUE_DROP_OLDEST                     // drop-oldest
)

const DEFAULT_QUEUE_CAPACITY = 4096 // Blocks, for the bounded policies.

var policyNames = map[QueuePolicy]string{
	QUEUE_UNBOUNDED:   "unbounded",
	QUEUE_BOUND:       "bound",
	QUEUE_DROP_OLDEST: "drop-oldest",
}

// String returns the policy name.
func (policy QueuePolicy) String() string {
	name, ok := policyNames[policy]
	if !ok {
		return fmt.Sprintf("policy(%d)", int(policy))
	}

	return name
}

// ParseQueuePolicy converts a policy name to a QueuePolicy.
func ParseQueuePolicy(name string) (policy QueuePolicy, err error) {
	for policy, pname := range policyNames {
		if pname == name {
			return policy, nil
		}
	}

	err = ErrPolicyUnknown(name)
	return
}

// Queue is a closeable FIFO of completed blocks between the execution
// goroutine and the trace worker.
type Queue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	blocks []Block

	policy   QueuePolicy
	capacity int
	closed   bool
}

// NewQueue creates a queue with the given overflow policy. The capacity
// applies to the bounded policies; zero or negative selects the default.
func NewQueue(policy QueuePolicy, capacity int) (queue *Queue) {
	if capacity <= 0 {
		capacity = DEFAULT_QUEUE_CAPACITY
	}

	queue = &Queue{
		policy:   policy,
		capacity: capacity,
	}
	queue.cond = sync.NewCond(&queue.mu)
	return
}

// Push appends a block to the queue, and reports whether the queue
// accepted it. A closed queue drops the block and returns false. Under
// the bound policy a full queue blocks the caller until space opens or
// the queue closes; under drop-oldest the oldest queued block is
// evicted instead.
func (queue *Queue) Push(block Block) (ok bool) {
	queue.mu.Lock()
	defer queue.mu.Unlock()

	if queue.closed {
		return false
	}

	switch queue.policy {
	case QUEUE_BOUND:
		for len(queue.blocks) >= queue.capacity && !queue.closed {
			queue.cond.Wait()
		}
		if queue.closed {
			return false
		}
	case QUEUE_DROP_OLDEST:
		if len(queue.blocks) >= queue.capacity {
			queue.blocks = queue.blocks[1:]
		}
	}

	queue.blocks = append(queue.blocks, block)
	queue.cond.Broadcast()
	return true
}

// Pop removes the oldest queued block, blocking until one is available.
// Once the queue is closed and drained, Pop returns false.
func (queue *Queue) Pop() (block Block, ok bool) {
	queue.mu.Lock()
	defer queue.mu.Unlock()

	for len(queue.blocks) == 0 && !queue.closed {
		queue.cond.Wait()
	}

	if len(queue.blocks) == 0 {
		return
	}

	block = queue.blocks[0]
	queue.blocks = queue.blocks[1:]
	ok = true

	queue.cond.Broadcast()
	return
}

// Close marks the queue closed. Queued blocks remain poppable; further
// pushes are dropped. Close is idempotent.
func (queue *Queue) Close() {
	queue.mu.Lock()
	defer queue.mu.Unlock()

	queue.closed = true
	queue.cond.Broadcast()
}

// Len returns the count of queued blocks.
func (queue *Queue) Len() int {
	queue.mu.Lock()
	defer queue.mu.Unlock()

	return len(queue.blocks)
}
