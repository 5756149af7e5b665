// Package ratelimit は(prefix, クライアントIP)単位の固定ウィンドウ型レートリミッターを提供する。
//
// カウンターはプロセス内に保持され、複数インスタンス間では共有されない。
// 各インスタンスがそれぞれ独立した予算を強制する。
package ratelimit

import (
	"sync"
	"time"
)

// Entry は1つのキーに対するウィンドウの状態。
// [ResetAt - Window, ResetAt) の間にCountがMaxRequestsを超えることはない。
type Entry struct {
	Count   int
	ResetAt time.Time
}

// Key はエントリの識別子。prefixとIPを文字列連結しないため、
// IPv6アドレスの":"を含んでも別のキーと衝突しない。
type Key struct {
	Prefix   string
	ClientIP string
}

// Store はレート制限エントリの保存先を抽象化する。
// テストごとに独立したインスタンスを生成できるよう、Limiterへコンストラクタ注入する。
type Store interface {
	// Update はキーのエントリを読み取り、fnの戻り値で置き換える。
	// 読み取りから書き込みまでは他のUpdateと交錯しない。
	Update(key Key, fn func(entry Entry, exists bool) Entry)

	// Sweep はResetAtがnow以前のエントリをすべて削除し、削除件数を返す。
	Sweep(now time.Time) int

	// Len は保持しているエントリ数を返す。
	Len() int
}

// MemoryStore はmapによるStoreの実装。
// Sweepが呼ばれるまでエントリ数に上限はない。
type MemoryStore struct {
	mu      sync.Mutex
	entries map[Key]Entry
}

// NewMemoryStore は空のMemoryStoreを生成する。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[Key]Entry),
	}
}

// Update はキーのエントリをミューテックス下で更新する。
func (s *MemoryStore) Update(key Key, fn func(entry Entry, exists bool) Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.entries[key]
	s.entries[key] = fn(entry, exists)
}

// Sweep はウィンドウが経過したエントリを削除する。
func (s *MemoryStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, entry := range s.entries {
		if !now.Before(entry.ResetAt) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// Len は保持しているエントリ数を返す。
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

var _ Store = (*MemoryStore)(nil)
