package client

import "sync"

// PendingFile is a file selected for upload but not yet submitted.
type PendingFile struct {
	Path     string
	Filename string
	Size     int64
}

// PendingStore hands a selected file from the picking step to the upload
// step. Take consumes the entry, so a file can be submitted at most once;
// a second Take returns false until a new file is put.
type PendingStore struct {
	mu   sync.Mutex
	file *PendingFile
}

// NewPendingStore returns an empty store.
func NewPendingStore() *PendingStore {
	return &PendingStore{}
}

// Put stages a file, replacing any previous one.
func (p *PendingStore) Put(f PendingFile) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.file = &f
}

// Take removes and returns the staged file.
func (p *PendingStore) Take() (PendingFile, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.file == nil {
		return PendingFile{}, false
	}
	f := *p.file
	p.file = nil
	return f, true
}

// Peek returns the staged file without consuming it.
func (p *PendingStore) Peek() (PendingFile, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.file == nil {
		return PendingFile{}, false
	}
	return *p.file, true
}

// Clear drops any staged file.
func (p *PendingStore) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.file = nil
}
