package cache

// Memory is the terminal level of the chain. It has unbounded capacity, so
// every request hits.
type Memory struct {
	node
}

// NewMemory creates the backing memory level.
func NewMemory(id int, name string) *Memory {
	if name == "" {
		name = "memory"
	}

	return &Memory{node: newNode(id, name)}
}

// Send resolves req.
func (m *Memory) Send(req *Request) {
	m.countAccess(req)
	m.hit(m, req)
}

// SetNextLevel is a no-op; nothing sits below memory.
func (m *Memory) SetNextLevel(next MemObject) {}

// Reset does nothing; memory holds no blocks.
func (m *Memory) Reset() {}
