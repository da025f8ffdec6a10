package poller

import (
	"time"

	"github.com/cenkalti/backoff"
)

// newRetryPolicy 网络失败后的有界重试：固定等待 grace，最多 maxRetries 次，
// 之后 NextBackOff 返回 backoff.Stop。成功一次后调用 Reset 重新计数。
func newRetryPolicy(grace time.Duration, maxRetries uint64) backoff.BackOff {
	return backoff.WithMaxRetries(backoff.NewConstantBackOff(grace), maxRetries)
}
