package ratelimit

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/tutorbot/internal/domain/model"
)

func redisClient(t *testing.T) *redis.Client {
	t.Helper()
	url := os.Getenv("TUTORBOT_TEST_REDIS_URL")
	if url == "" {
		t.Skip("TUTORBOT_TEST_REDIS_URL not set")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		t.Fatalf("parse redis url: %v", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisLimiter(t *testing.T) {
	client := redisClient(t)
	ctx := context.Background()

	Convey("Given a redis limiter with a fake clock", t, func() {
		clock := newFakeClock()
		prefix := "tutorbot:test:" + uuid.NewString() + ":"
		lim := NewRedis(client, WithClock(clock.Now), WithCap(3), WithWindow(time.Minute), WithKeyPrefix(prefix))
		const user = model.UserID(99)

		Reset(func() {
			client.Del(ctx, prefix+user.String())
		})

		Convey("It admits up to the cap and then rejects", func() {
			for i := 0; i < 3; i++ {
				d, err := lim.Admit(ctx, user)
				So(err, ShouldBeNil)
				So(d.Allowed, ShouldBeTrue)
				clock.Advance(time.Second)
			}
			d, err := lim.Admit(ctx, user)
			So(err, ShouldBeNil)
			So(d.Allowed, ShouldBeFalse)
			So(d.RetryAfter, ShouldEqual, 57*time.Second)

			rem, err := lim.Remaining(ctx, user)
			So(err, ShouldBeNil)
			So(rem, ShouldEqual, 0)

			reset, err := lim.TimeUntilReset(ctx, user)
			So(err, ShouldBeNil)
			So(reset, ShouldEqual, 57*time.Second)

			Convey("And restores quota after the window", func() {
				clock.Advance(time.Minute)
				rem, _ := lim.Remaining(ctx, user)
				So(rem, ShouldEqual, 3)
			})
		})

		Convey("An unseen user has full quota", func() {
			rem, err := lim.Remaining(ctx, user)
			So(err, ShouldBeNil)
			So(rem, ShouldEqual, 3)
			reset, _ := lim.TimeUntilReset(ctx, user)
			So(reset, ShouldEqual, 0)
		})
	})
}
