package ghost

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"
)

// OfflineClient answers without any network call. It is the fallback when
// no provider key is configured, and keeps the ghost flow playable offline.
type OfflineClient struct {
	mu  sync.Mutex
	rng *rand.Rand
}

var cannedAnswers = []string{
	"honestly no idea",
	"that's what they want you to think",
	"my mom says this every christmas",
	"ok but why is this even a question",
	"depends who's asking",
	"i plead the fifth",
	"not me googling this rn",
	"the answer is always pizza",
	"10/10 would do again",
	"ask me again tomorrow",
}

// NewOffline creates an offline client
func NewOffline(seed int64) *OfflineClient {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &OfflineClient{rng: rand.New(rand.NewSource(seed))}
}

// Complete returns three canned answers encoded the way a model would
func (c *OfflineClient) Complete(ctx context.Context, _ string, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c.mu.Lock()
	idx := c.rng.Perm(len(cannedAnswers))[:MaxVariants]
	c.mu.Unlock()

	picked := make([]string, 0, MaxVariants)
	for _, i := range idx {
		picked = append(picked, cannedAnswers[i])
	}
	b, err := json.Marshal(picked)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
