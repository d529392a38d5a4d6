package repository

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"hybe/bookinghub/internal/model"
)

// fileSubscriptionBackend reads a markdown roster (SUBSCRIPTION_IDS.md) as a
// last-resort snapshot when both databases are down. The file groups ids
// under "## Premium", "## Elite" and "## Standard" headings with
// "- `ID` - Name" bullets. The parse is cached and refreshed when the file's
// mtime moves; usage counts live only in memory.
type fileSubscriptionBackend struct {
	path string

	mu        sync.Mutex
	records   map[string]*model.Subscription
	lastMtime time.Time
}

var rosterLine = regexp.MustCompile("-\\s*`([A-Za-z0-9]+)`\\s*-\\s*(.+)$")

func NewFileSubscriptionBackend(path string) SubscriptionBackend {
	return &fileSubscriptionBackend{path: path}
}

func (r *fileSubscriptionBackend) Name() string { return "file" }

func (r *fileSubscriptionBackend) load() (map[string]*model.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	info, err := os.Stat(r.path)
	if err != nil {
		// A stale snapshot beats no answer at all.
		if r.records != nil {
			return r.records, nil
		}
		return nil, fmt.Errorf("%w: file: %v", ErrBackendUnavailable, err)
	}
	if r.records != nil && !info.ModTime().After(r.lastMtime) {
		return r.records, nil
	}

	f, err := os.Open(r.path)
	if err != nil {
		if r.records != nil {
			return r.records, nil
		}
		return nil, fmt.Errorf("%w: file: %v", ErrBackendUnavailable, err)
	}
	defer f.Close()

	now := time.Now()
	records := make(map[string]*model.Subscription)
	var currentTier model.SubscriptionTier

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		switch heading := strings.ToLower(strings.TrimSpace(line)); {
		case strings.HasPrefix(heading, "## premium"):
			currentTier = model.TierPremium
		case strings.HasPrefix(heading, "## elite"):
			currentTier = model.TierElite
		case strings.HasPrefix(heading, "## standard"):
			currentTier = model.TierStandard
		}

		m := rosterLine.FindStringSubmatch(line)
		if m == nil || currentTier == "" {
			continue
		}
		id := strings.ToUpper(m[1])
		sub := &model.Subscription{
			SubscriptionID: id,
			UserName:       strings.TrimSpace(m[2]),
			Type:           currentTier,
			IsActive:       true,
		}
		switch currentTier {
		case model.TierPremium:
			t := now.AddDate(1, 0, 0)
			sub.ExpiresAt = &t
		case model.TierElite:
			t := now.AddDate(0, 0, 180)
			sub.ExpiresAt = &t
		}
		records[id] = sub
	}
	if err := scanner.Err(); err != nil {
		if r.records != nil {
			return r.records, nil
		}
		return nil, fmt.Errorf("%w: file: %v", ErrBackendUnavailable, err)
	}

	r.records = records
	r.lastMtime = info.ModTime()
	return records, nil
}

func (r *fileSubscriptionBackend) Lookup(_ context.Context, id string) (*model.Subscription, error) {
	records, err := r.load()
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := records[id]
	if !ok {
		return nil, nil
	}
	copied := *sub
	return &copied, nil
}

func (r *fileSubscriptionBackend) RecordUsage(_ context.Context, id string) error {
	records, err := r.load()
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if sub, ok := records[id]; ok {
		sub.UsageCount++
		now := time.Now()
		sub.LastUsedAt = &now
	}
	return nil
}

func (r *fileSubscriptionBackend) TypeCounts(_ context.Context) ([]TypeCount, error) {
	records, err := r.load()
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	byTier := make(map[string]int64)
	for _, sub := range records {
		if sub.IsActive {
			byTier[string(sub.Type)]++
		}
	}
	counts := make([]TypeCount, 0, len(byTier))
	for _, tier := range []model.SubscriptionTier{model.TierElite, model.TierPremium, model.TierStandard} {
		if n, ok := byTier[string(tier)]; ok {
			counts = append(counts, TypeCount{SubscriptionType: string(tier), Count: n})
		}
	}
	return counts, nil
}

func (r *fileSubscriptionBackend) Ping(_ context.Context) error {
	_, err := os.Stat(r.path)
	return err
}
