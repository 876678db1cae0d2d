package storage

// Persistence

type WriteResult struct {
	path        string
	sizeByte    uint64
	contentHash string
}

func NewWriteResult(
	path string,
	sizeByte uint64,
	contentHash string,
) WriteResult {
	return WriteResult{
		path:        path,
		sizeByte:    sizeByte,
		contentHash: contentHash,
	}
}

func (w *WriteResult) Path() string {
	return w.path
}

func (w *WriteResult) SizeByte() uint64 {
	return w.sizeByte
}

func (w *WriteResult) ContentHash() string {
	return w.contentHash
}
