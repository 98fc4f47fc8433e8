// Package inmem 提供内存版存储实现，供单元测试在不依赖数据库的情况下
// 驱动服务层。与 repository 包的 gorm 实现满足同一套接口契约，
// 尤其是进度 upsert 的原子性与 completed 终态不可回退。
package inmem

import (
	"context"
	"sync"
	"time"

	"student_dashboard_backend/internal/model"
	"student_dashboard_backend/internal/util"

	"gorm.io/gorm"
)

type progressKey struct {
	userID    uint
	sessionID uint
}

// Store 持有全部内存数据，按实体暴露视图以匹配服务层的各个接口
type Store struct {
	mu sync.Mutex

	users    map[uint]*model.User
	sessions map[uint]*model.Session
	progress map[progressKey]*model.Progress

	nextUserID     uint
	nextSessionID  uint
	nextProgressID uint

	// Now 可在测试中替换以固定时间
	Now func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:    make(map[uint]*model.User),
		sessions: make(map[uint]*model.Session),
		progress: make(map[progressKey]*model.Progress),
		Now:      time.Now,
	}
}

func (s *Store) Users() *UserRepo          { return &UserRepo{s} }
func (s *Store) Sessions() *SessionRepo    { return &SessionRepo{s} }
func (s *Store) Progress() *ProgressRepo   { return &ProgressRepo{s} }
func (s *Store) Dashboard() *DashboardRepo { return &DashboardRepo{s} }

type UserRepo struct{ s *Store }

func (r *UserRepo) Create(user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return util.ErrEmailRegistered
		}
	}
	r.s.nextUserID++
	user.ID = r.s.nextUserID
	user.CreatedAt = r.s.Now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r *UserRepo) FindByID(id uint) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepo) FindByEmail(email string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *UserRepo) FindStudentByID(id uint) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok || u.Role != model.Student {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepo) Update(user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	user.UpdatedAt = r.s.Now()
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

type SessionRepo struct{ s *Store }

func (r *SessionRepo) Exists(id uint) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.sessions[id]
	return ok, nil
}

func (r *SessionRepo) FindByID(id uint) (*model.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sess, ok := r.s.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *sess
	return &cp, nil
}

func (r *SessionRepo) List() ([]model.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.sessionsByID(), nil
}

func (r *SessionRepo) Create(session *model.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextSessionID++
	session.ID = r.s.nextSessionID
	session.CreatedAt = r.s.Now()
	cp := *session
	r.s.sessions[session.ID] = &cp
	return nil
}

type ProgressRepo struct{ s *Store }

func (r *ProgressRepo) StartOrResume(userID, sessionID uint) (*model.Progress, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := progressKey{userID: userID, sessionID: sessionID}
	now := r.s.Now()
	p, ok := r.s.progress[key]
	if !ok {
		r.s.nextProgressID++
		p = &model.Progress{
			ID:           r.s.nextProgressID,
			UserID:       userID,
			SessionID:    sessionID,
			Status:       model.StatusInProgress,
			LastAccessed: now,
		}
		r.s.progress[key] = p
	} else {
		p.LastAccessed = now
		if p.Status != model.StatusCompleted {
			p.Status = model.StatusInProgress
		}
	}
	cp := *p
	return &cp, nil
}

func (r *ProgressRepo) Complete(userID, sessionID uint, reflection string) (*model.Progress, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := progressKey{userID: userID, sessionID: sessionID}
	now := r.s.Now()
	p, ok := r.s.progress[key]
	if !ok {
		r.s.nextProgressID++
		p = &model.Progress{
			ID:        r.s.nextProgressID,
			UserID:    userID,
			SessionID: sessionID,
		}
		r.s.progress[key] = p
	}
	p.Status = model.StatusCompleted
	p.ReflectionText = &reflection
	p.LastAccessed = now
	p.CompletedAt = &now
	cp := *p
	return &cp, nil
}

type DashboardRepo struct{ s *Store }

func (r *DashboardRepo) LoadSnapshot() (*model.Snapshot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	snap := &model.Snapshot{Sessions: r.s.sessionsByID()}
	for id := uint(1); id <= r.s.nextUserID; id++ {
		if u, ok := r.s.users[id]; ok && u.Role == model.Student {
			snap.Students = append(snap.Students, *u)
		}
	}
	for _, p := range r.s.progressByID() {
		snap.Progress = append(snap.Progress, *p)
	}
	return snap, nil
}

func (r *DashboardRepo) LoadUserSnapshot(userID uint) ([]model.Session, []model.Progress, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var rows []model.Progress
	for _, p := range r.s.progressByID() {
		if p.UserID == userID {
			rows = append(rows, *p)
		}
	}
	return r.s.sessionsByID(), rows, nil
}

// sessionsByID 按ID升序返回，保持与SQL默认排序一致。调用方需已持锁
func (s *Store) sessionsByID() []model.Session {
	out := make([]model.Session, 0, len(s.sessions))
	for id := uint(1); id <= s.nextSessionID; id++ {
		if sess, ok := s.sessions[id]; ok {
			out = append(out, *sess)
		}
	}
	return out
}

func (s *Store) progressByID() []*model.Progress {
	out := make([]*model.Progress, 0, len(s.progress))
	for id := uint(1); id <= s.nextProgressID; id++ {
		for _, p := range s.progress {
			if p.ID == id {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

// Denylist 内存版令牌吊销表，实现 service.TokenRevoker
type Denylist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewDenylist() *Denylist {
	return &Denylist{revoked: make(map[string]time.Time)}
}

func (d *Denylist) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.revoked[jti] = time.Now().Add(ttl)
	return nil
}

func (d *Denylist) IsRevoked(_ context.Context, jti string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	exp, ok := d.revoked[jti]
	return ok && time.Now().Before(exp), nil
}
