// Package dedup suppresses re-delivery of jobs that were already synced,
// backed by Redis with a TTL so long-gone postings age out.
package dedup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zachatkinson/drivehr-netlify-sync-sub000/internal/jobs"
)

type Deduplicator struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func New(client *redis.Client, prefix string, ttl time.Duration) *Deduplicator {
	if prefix == "" {
		prefix = "jobs:seen"
	}
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &Deduplicator{client: client, prefix: prefix, ttl: ttl}
}

// FilterNew returns only the jobs not seen before and marks them seen. A
// nil receiver passes everything through, so wiring Redis stays optional.
func (d *Deduplicator) FilterNew(ctx context.Context, source string, in []jobs.Job) ([]jobs.Job, error) {
	if d == nil || d.client == nil {
		return in, nil
	}
	out := make([]jobs.Job, 0, len(in))
	for _, job := range in {
		key := d.makeKey(source, job.ID)
		set, err := d.client.SetNX(ctx, key, fingerprint(job), d.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("dedup setnx: %w", err)
		}
		if set {
			out = append(out, job)
			continue
		}
		// Seen before: re-deliver only when the content changed.
		stored, err := d.client.Get(ctx, key).Result()
		if err != nil && err != redis.Nil {
			return nil, fmt.Errorf("dedup get: %w", err)
		}
		if stored != fingerprint(job) {
			if err := d.client.Set(ctx, key, fingerprint(job), d.ttl).Err(); err != nil {
				return nil, fmt.Errorf("dedup update: %w", err)
			}
			out = append(out, job)
		}
	}
	return out, nil
}

func (d *Deduplicator) makeKey(source, jobID string) string {
	return fmt.Sprintf("%s:%s:%s", d.prefix, source, jobID)
}

func fingerprint(job jobs.Job) string {
	h := sha256.Sum256([]byte(job.Title + "\x00" + job.Location + "\x00" + job.Description + "\x00" + job.ApplyURL))
	return hex.EncodeToString(h[:])
}
