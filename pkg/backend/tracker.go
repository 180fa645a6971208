package backend

import (
	"container/heap"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/peter992013/bro/pkg/openflow"
	"github.com/peter992013/bro/pkg/types"
)

// pendingKey 待决操作的关联键
// 同一个键同一时刻至多存在一个活跃条目，重复注册覆盖旧条目并重置定时器，
// 即同一规则+命令产生多次提交时只有最后一次被跟踪到完成（last-write-wins）
type pendingKey struct {
	RuleID  uint32
	Command openflow.FlowModCommand
}

// pendingEntry 一条待决操作
type pendingEntry struct {
	key      pendingKey
	rule     *types.Rule
	deadline time.Time
}

// PendingInfo 待决操作的只读视图，供管理接口查询
type PendingInfo struct {
	RuleID   uint32    `json:"rule_id"`
	Command  string    `json:"command"`
	Deadline time.Time `json:"deadline"`
}

// tracker 有时限的操作关联表
// 把生成的关联键映射到待决的规则，超时未被resolve的条目由到期协程
// 移除并通过onExpire上报。到期调度用最小堆加单个协程，堆中的过期
// 副本靠与映射表比对惰性剔除
type tracker struct {
	mu        sync.Mutex
	ttl       time.Duration
	entries   map[pendingKey]*pendingEntry
	deadlines deadlineHeap
	onExpire  func(rule *types.Rule)

	wake     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func newTracker(ttl time.Duration, onExpire func(rule *types.Rule)) *tracker {
	return &tracker{
		ttl:      ttl,
		entries:  make(map[pendingKey]*pendingEntry),
		onExpire: onExpire,
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// start 启动到期协程
func (t *tracker) start() {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		t.expireLoop()
	}()
}

// stop 停止到期协程，未完成的条目不再产生超时通知
// 可以安全地重复调用
func (t *tracker) stop() {
	t.stopOnce.Do(func() {
		close(t.done)
	})
	t.wg.Wait()
}

// register 登记或覆盖一条待决操作，并（重新）启动它的定时器
func (t *tracker) register(key pendingKey, rule *types.Rule) {
	t.mu.Lock()
	entry := &pendingEntry{
		key:      key,
		rule:     rule,
		deadline: time.Now().Add(t.ttl),
	}
	t.entries[key] = entry
	heap.Push(&t.deadlines, entry)
	t.mu.Unlock()

	t.kick()
}

// resolve 查找并移除待决操作
// 条目不存在时返回false，调用方应当视为"不属于本后端"并忽略
func (t *tracker) resolve(key pendingKey) (*types.Rule, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.entries[key]
	if !ok {
		return nil, false
	}
	delete(t.entries, key)
	return entry.rule, true
}

// len 返回当前待决操作数
func (t *tracker) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// snapshot 返回所有待决操作的只读视图
func (t *tracker) snapshot() []PendingInfo {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]PendingInfo, 0, len(t.entries))
	for key, entry := range t.entries {
		out = append(out, PendingInfo{
			RuleID:   key.RuleID,
			Command:  key.Command.String(),
			Deadline: entry.deadline,
		})
	}
	return out
}

// kick 唤醒到期协程重新计算最近的到期时间
func (t *tracker) kick() {
	select {
	case t.wake <- struct{}{}:
	default:
	}
}

// expireLoop 到期协程主循环
func (t *tracker) expireLoop() {
	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		expired, next := t.collectExpired()

		// 超时通知在锁外发出，每个过期条目恰好上报一次
		for _, entry := range expired {
			logrus.Warnf("Pending flow_mod for rule %d (%s) timed out", entry.key.RuleID, entry.key.Command)
			t.onExpire(entry.rule)
		}

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		if next > 0 {
			timer.Reset(next)
			select {
			case <-timer.C:
			case <-t.wake:
			case <-t.done:
				return
			}
		} else {
			// 没有待决条目，等下一次register唤醒
			select {
			case <-t.wake:
			case <-t.done:
				return
			}
		}
	}
}

// collectExpired 摘除所有已到期的条目，返回它们和距下一个到期点的时长
func (t *tracker) collectExpired() (expired []*pendingEntry, next time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	for t.deadlines.Len() > 0 {
		head := t.deadlines[0]
		// 被resolve或被覆盖的条目在堆里留下过期副本，这里剔除
		if current, ok := t.entries[head.key]; !ok || current != head {
			heap.Pop(&t.deadlines)
			continue
		}
		if head.deadline.After(now) {
			return expired, head.deadline.Sub(now)
		}
		heap.Pop(&t.deadlines)
		delete(t.entries, head.key)
		expired = append(expired, head)
	}
	return expired, 0
}

// deadlineHeap 按到期时间排序的最小堆
type deadlineHeap []*pendingEntry

func (h deadlineHeap) Len() int            { return len(h) }
func (h deadlineHeap) Less(i, j int) bool  { return h[i].deadline.Before(h[j].deadline) }
func (h deadlineHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *deadlineHeap) Push(x interface{}) { *h = append(*h, x.(*pendingEntry)) }

func (h *deadlineHeap) Pop() interface{} {
	old := *h
	n := len(old)
	entry := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return entry
}
