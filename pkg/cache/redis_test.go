package cache

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		unavailable bool
	}{
		{"nil", nil, false},
		{"miss", redis.Nil, false},
		{"pool timeout", redis.ErrPoolTimeout, true},
		{"dial", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, true},
		{"server error", errors.New("WRONGTYPE Operation against a key"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)
			if errors.Is(got, ErrUnavailable) != tt.unavailable {
				t.Errorf("classify(%v) = %v, unavailable want %v", tt.err, got, tt.unavailable)
			}
		})
	}
}

func TestNewRedisCacheBadURL(t *testing.T) {
	if _, err := NewRedisCache(context.Background(), "not-a-url"); err == nil {
		t.Error("NewRedisCache should reject a malformed url")
	}
}

func TestNewRedisCacheUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// Port 1 is reserved and never has a Redis server behind it.
	_, err := NewRedisCache(ctx, "redis://127.0.0.1:1/0")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("NewRedisCache error = %v, want ErrUnavailable", err)
	}
}

func TestRedisOptionsDisableRetries(t *testing.T) {
	opts, err := redisOptions("redis://localhost:6379/0")
	if err != nil {
		t.Fatal(err)
	}
	if opts.MaxRetries != -1 {
		t.Errorf("MaxRetries = %d, want -1", opts.MaxRetries)
	}
}

// dialCounter counts connection attempts made by a client.
type dialCounter struct{ n atomic.Int32 }

func (d *dialCounter) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		d.n.Add(1)
		return next(ctx, network, addr)
	}
}

func (d *dialCounter) ProcessHook(next redis.ProcessHook) redis.ProcessHook { return next }

func (d *dialCounter) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func TestRedisCacheFailsWithoutRetry(t *testing.T) {
	opts, err := redisOptions("redis://127.0.0.1:1/0")
	if err != nil {
		t.Fatal(err)
	}
	opts.DialTimeout = time.Second
	client := redis.NewClient(opts)
	var dials dialCounter
	client.AddHook(&dials)

	c := NewRedisCacheFromClient(client)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, _, err := c.Get(ctx, "key"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Get error = %v, want ErrUnavailable", err)
	}
	if n := dials.n.Load(); n != 1 {
		t.Errorf("dial attempts = %d, want 1", n)
	}
	if err := c.Set(ctx, "key", []byte("v"), time.Minute); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Set error = %v, want ErrUnavailable", err)
	}
}
