// Package session 保存登录凭证与用户资料，并在凭证失效时统一清理。
package session

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/partshub/internal/cart"
	"github.com/partshub/internal/logger"
	"github.com/partshub/internal/models"
)

// Persister 会话快照存储，与购物车共用同一套键值存储
type Persister = cart.Persister

type snapshot struct {
	Token   string       `json:"token"`
	User    *models.User `json:"user"`
	SavedAt time.Time    `json:"saved_at"`
}

// Store 会话存储，并发安全
type Store struct {
	mu        sync.RWMutex
	key       string
	token     string
	user      *models.User
	persister Persister
	listeners []func()
}

// New 创建会话存储
func New(key string, persister Persister) *Store {
	return &Store{key: key, persister: persister}
}

// Load 从存储恢复会话；快照缺失或损坏时保持未登录状态
func (s *Store) Load(ctx context.Context) {
	if s.persister == nil {
		return
	}
	raw, err := s.persister.Load(ctx, s.key)
	if err != nil {
		if !errors.Is(err, cart.ErrSnapshotNotFound) {
			logger.Warnw("session_load_failed", "key", s.key, "error", err)
		}
		return
	}
	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil || strings.TrimSpace(snap.Token) == "" {
		logger.Warnw("session_snapshot_invalid", "key", s.key, "error", err)
		return
	}
	s.mu.Lock()
	s.token = snap.Token
	s.user = snap.User
	s.mu.Unlock()
}

// Set 登录成功后保存凭证与资料
func (s *Store) Set(ctx context.Context, token string, user *models.User) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("token is empty")
	}
	var copied *models.User
	if user != nil {
		u := *user
		copied = &u
	}
	s.mu.Lock()
	s.token = token
	s.user = copied
	s.mu.Unlock()

	if s.persister == nil {
		return nil
	}
	payload, err := json.Marshal(snapshot{Token: token, User: copied, SavedAt: time.Now()})
	if err != nil {
		return err
	}
	if err := s.persister.Save(ctx, s.key, payload); err != nil {
		logger.Warnw("session_persist_failed", "key", s.key, "error", err)
		return err
	}
	return nil
}

// Token 当前凭证，未登录时为空
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User 当前用户资料副本
func (s *Store) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Authenticated 是否已登录
func (s *Store) Authenticated() bool {
	return s.Token() != ""
}

// OnTeardown 注册会话失效回调（停止轮询、跳转登录等）
func (s *Store) OnTeardown(fn func()) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Teardown 清空内存与存储中的会话并触发回调；未登录时不重复触发
func (s *Store) Teardown(ctx context.Context) {
	s.mu.Lock()
	hadSession := s.token != ""
	s.token = ""
	s.user = nil
	listeners := append([]func(){}, s.listeners...)
	s.mu.Unlock()

	if s.persister != nil {
		if err := s.persister.Delete(ctx, s.key); err != nil {
			logger.Warnw("session_delete_failed", "key", s.key, "error", err)
		}
	}
	if !hadSession {
		return
	}
	logger.Infow("session_teardown", "key", s.key, "listeners", len(listeners))
	for _, fn := range listeners {
		fn()
	}
}
