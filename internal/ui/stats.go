package ui

import "sync/atomic"

type Stats struct {
	TotalChapters atomic.Int64
	TotalFailed   atomic.Int64
	TotalBytes    atomic.Int64
	TotalChars    atomic.Int64
}

// AddBytes matches the byte callback of the site client.
func (s *Stats) AddBytes(n int64) {
	s.TotalBytes.Add(n)
}
