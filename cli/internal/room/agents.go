package room

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/opsx/collab/shared/logger"
	"github.com/opsx/collab/shared/wire"
)

// DefaultPollInterval matches the refresh period of the web dashboard.
const DefaultPollInterval = 10 * time.Second

// AgentBoard tracks the agents of one project: seeded from the REST API,
// then updated by live status events and, optionally, periodic refetches.
type AgentBoard struct {
	ch      Channel
	api     AgentAPI
	project string

	unsub  func()
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// BoardConfig configures an AgentBoard.
type BoardConfig struct {
	Project string
	// PollInterval enables periodic refetches when positive. A refetch
	// replaces each record with the REST copy, so a response that was in
	// flight while a newer agent:status event landed shows the older status
	// until the next event.
	PollInterval time.Duration
}

// OpenAgentBoard seeds the presence table, joins the project room and starts
// polling if configured. onChange is called with each live status record.
func OpenAgentBoard(ctx context.Context, ch Channel, api AgentAPI, cfg BoardConfig, onChange func(wire.Agent)) (*AgentBoard, error) {
	if cfg.Project == "" {
		return nil, fmt.Errorf("project is required")
	}

	b := &AgentBoard{ch: ch, api: api, project: cfg.Project}
	if err := b.refresh(ctx); err != nil {
		return nil, err
	}

	b.unsub = ch.OnAgentStatus(func(a wire.Agent) {
		if !b.owns(a) || onChange == nil {
			return
		}
		onChange(a)
	})
	if err := ch.JoinRoom(ctx, cfg.Project); err != nil {
		b.unsub()
		return nil, fmt.Errorf("join %s: %w", cfg.Project, err)
	}

	pollCtx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	if cfg.PollInterval > 0 {
		b.wg.Add(1)
		go b.poll(pollCtx, cfg.PollInterval)
	}
	return b, nil
}

func (b *AgentBoard) owns(a wire.Agent) bool {
	return a.ProjectID == "" || a.ProjectID.String() == b.project
}

func (b *AgentBoard) refresh(ctx context.Context) error {
	agents, err := b.api.GetAgents(ctx, b.project)
	if err != nil {
		return fmt.Errorf("fetch agents: %w", err)
	}
	for _, a := range agents {
		if a.ProjectID == "" {
			a.ProjectID = wire.ID(b.project)
		}
		b.ch.ApplyStatus(a.ID.String(), a)
	}
	return nil
}

func (b *AgentBoard) poll(ctx context.Context, every time.Duration) {
	defer b.wg.Done()
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := b.refresh(ctx); err != nil && ctx.Err() == nil {
				logger.Warnf("Agent refresh for %s failed: %v", b.project, err)
			}
		}
	}
}

// Agents returns the known agents of the project, sorted by id.
func (b *AgentBoard) Agents() []wire.Agent {
	all := b.ch.Presence()
	out := all[:0]
	for _, a := range all {
		if b.owns(a) {
			out = append(out, a)
		}
	}
	return out
}

// Close stops polling, unsubscribes and leaves the project room.
func (b *AgentBoard) Close(ctx context.Context) error {
	var err error
	b.once.Do(func() {
		b.cancel()
		b.wg.Wait()
		b.unsub()
		err = b.ch.LeaveRoom(ctx, b.project)
	})
	return err
}
