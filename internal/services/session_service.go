// Package services 提供聊天业务服务
package services

import (
	"strings"
	"sync"
	"time"

	"ai_chat_web/internal/models"
)

// Session 会话状态
type Session struct {
	ID           string           // 会话令牌
	History      []models.Message // 完整对话历史，只追加
	DerivedName  string           // 从消息中推断出的用户称呼
	LastActivity time.Time        // 最后活动时间
	mu           sync.Mutex
}

// SessionService 进程级会话存储，按令牌隔离
type SessionService struct {
	sessions map[string]*Session
	mu       sync.RWMutex
}

// NewSessionService 创建新的会话存储
func NewSessionService() *SessionService {
	return &SessionService{
		sessions: make(map[string]*Session),
	}
}

// getOrCreate 获取或创建会话
func (s *SessionService) getOrCreate(sessionID string) *Session {
	s.mu.RLock()
	sess, exists := s.sessions[sessionID]
	s.mu.RUnlock()
	if exists {
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, exists := s.sessions[sessionID]; exists {
		return sess
	}

	sess = &Session{
		ID:           sessionID,
		History:      make([]models.Message, 0),
		LastActivity: time.Now(),
	}
	s.sessions[sessionID] = sess
	return sess
}

// Append 追加一条消息到会话历史
func (s *SessionService) Append(sessionID string, msg models.Message) {
	sess := s.getOrCreate(sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.History = append(sess.History, msg)
	sess.LastActivity = time.Now()
}

// Recent 获取最近limit条历史消息，按时间顺序排列
func (s *SessionService) Recent(sessionID string, limit int) []models.Message {
	sess := s.getOrCreate(sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	start := 0
	if len(sess.History) > limit {
		start = len(sess.History) - limit
	}

	recent := make([]models.Message, len(sess.History)-start)
	copy(recent, sess.History[start:])
	return recent
}

// HistoryLen 获取会话历史消息数量
func (s *SessionService) HistoryLen(sessionID string) int {
	sess := s.getOrCreate(sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	return len(sess.History)
}

// SetDerivedName 设置推断出的用户称呼，后写覆盖先写
func (s *SessionService) SetDerivedName(sessionID, name string) {
	sess := s.getOrCreate(sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.DerivedName = name
}

// DerivedName 获取推断出的用户称呼
func (s *SessionService) DerivedName(sessionID string) string {
	sess := s.getOrCreate(sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	return sess.DerivedName
}

// 用户自报称呼的引导短语
var namePhrases = []string{"my name is ", "call me ", "i'm called "}

// DeriveName 从消息文本中推断用户称呼，未匹配时返回空字符串。
// 匹配和切片都在原始文本上进行，避免大小写转换改变字节长度导致偏移错位。
func DeriveName(text string) string {
	for _, phrase := range namePhrases {
		idx := indexFold(text, phrase)
		if idx < 0 {
			continue
		}

		fields := strings.Fields(text[idx+len(phrase):])
		if len(fields) == 0 {
			continue
		}

		name := strings.Trim(fields[0], ".,!?;:\"'")
		if name != "" {
			return name
		}
	}
	return ""
}

// indexFold 大小写不敏感地查找ASCII短语，返回在text中的字节偏移
func indexFold(text, phrase string) int {
	for i := 0; i+len(phrase) <= len(text); i++ {
		if strings.EqualFold(text[i:i+len(phrase)], phrase) {
			return i
		}
	}
	return -1
}
