package bind_group_provider

import "fmt"

// writeAlignment is the queue write granularity for offsets and sizes.
const writeAlignment = 4

// BufferWrite is one queued upload into the buffer at Binding of Provider, starting at Offset bytes.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}

// Validate checks that the write targets a provider and is aligned for a queue write.
func (w BufferWrite) Validate() error {
	if w.Provider == nil {
		return fmt.Errorf("write to binding %d: nil provider", w.Binding)
	}
	if w.Offset%writeAlignment != 0 || len(w.Data)%writeAlignment != 0 {
		return fmt.Errorf("write %s[%d]: offset %d and size %d must be multiples of %d",
			w.Provider.Label(), w.Binding, w.Offset, len(w.Data), writeAlignment)
	}
	return nil
}
