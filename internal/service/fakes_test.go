package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bw-isys-53203/Module3/internal/domain"
	"github.com/bw-isys-53203/Module3/internal/repository"
)

// countingRepo 统计读写次数，并可注入失败
type countingRepo struct {
	repository.SleepRecordsRepository

	mu       sync.Mutex
	gets     int
	puts     int
	failGet  bool
	failPut  bool
	failPuts int           // >0 时前 N 次 put 成功，之后失败
	getDelay time.Duration // 放大 读取->写回 之间的窗口
}

var errInjected = errors.New("injected failure")

func (r *countingRepo) GetRecord(ctx context.Context, date string) (*domain.SleepRecord, error) {
	r.mu.Lock()
	r.gets++
	fail, delay := r.failGet, r.getDelay
	r.mu.Unlock()
	if fail {
		return nil, errInjected
	}
	rec, err := r.SleepRecordsRepository.GetRecord(ctx, date)
	if delay > 0 {
		time.Sleep(delay)
	}
	return rec, err
}

func (r *countingRepo) PutRecord(ctx context.Context, rec *domain.SleepRecord) error {
	r.mu.Lock()
	r.puts++
	fail := r.failPut || (r.failPuts > 0 && r.puts > r.failPuts)
	r.mu.Unlock()
	if fail {
		return errInjected
	}
	return r.SleepRecordsRepository.PutRecord(ctx, rec)
}

func (r *countingRepo) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gets, r.puts
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []RefreshEvent
	err    error
}

func (n *recordingNotifier) NotifyRefresh(_ context.Context, ev RefreshEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
	return n.err
}

func (n *recordingNotifier) all() []RefreshEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]RefreshEvent, len(n.events))
	copy(out, n.events)
	return out
}

type fakePublisher struct {
	topic   string
	qos     byte
	payload []byte
}

func (p *fakePublisher) Publish(topic string, qos byte, _ bool, payload []byte) error {
	p.topic, p.qos, p.payload = topic, qos, payload
	return nil
}
