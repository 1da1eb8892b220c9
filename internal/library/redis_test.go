package library

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
	. "github.com/smartystreets/goconvey/convey"
)

// REDIS_TEST_ADDR points at a disposable redis server, for example
// "localhost:6379". The tests use a random owner and clean up after
// themselves.
func testRedisClient(t *testing.T) *redislib.Client {
	t.Helper()

	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	client := redislib.NewClient(&redislib.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skipf("redis at %s unavailable: %v", addr, err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisStorePrunesTrackBodies(t *testing.T) {
	client := testRedisClient(t)

	Convey("Given a library over a redis store", t, func() {
		ctx := context.Background()
		owner := "test-" + uuid.NewString()
		tracksKey := tracksKeyPrefix + owner
		lib := New(NewRedisStore(client), 2)

		Reset(func() {
			client.Del(ctx, favoritesKeyPrefix+owner, historyKeyPrefix+owner, tracksKey)
		})

		Convey("When history is trimmed", func() {
			for _, id := range []string{"A", "B", "C"} {
				So(lib.AddHistory(ctx, owner, track(id)), ShouldBeNil)
			}

			Convey("Then the oldest body is dropped", func() {
				got, err := lib.History(ctx, owner, 0)
				So(err, ShouldBeNil)
				So(ids(got), ShouldResemble, []string{"C", "B"})

				n, err := client.HLen(ctx, tracksKey).Result()
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 2)
				So(client.HExists(ctx, tracksKey, track("A").Key()).Val(), ShouldBeFalse)
			})
		})

		Convey("When a favorite falls out of history", func() {
			_, err := lib.ToggleFavorite(ctx, owner, track("A"))
			So(err, ShouldBeNil)
			for _, id := range []string{"A", "B", "C"} {
				So(lib.AddHistory(ctx, owner, track(id)), ShouldBeNil)
			}

			Convey("Then its body is kept for the favorites list", func() {
				favs, err := lib.Favorites(ctx, owner)
				So(err, ShouldBeNil)
				So(ids(favs), ShouldResemble, []string{"A"})
			})

			Convey("And removing the favorite drops the body", func() {
				added, err := lib.ToggleFavorite(ctx, owner, track("A"))
				So(err, ShouldBeNil)
				So(added, ShouldBeFalse)
				So(client.HExists(ctx, tracksKey, track("A").Key()).Val(), ShouldBeFalse)
			})
		})

		Convey("Removing a favorite still in history keeps the body", func() {
			So(lib.AddHistory(ctx, owner, track("A")), ShouldBeNil)
			_, err := lib.ToggleFavorite(ctx, owner, track("A"))
			So(err, ShouldBeNil)
			_, err = lib.ToggleFavorite(ctx, owner, track("A"))
			So(err, ShouldBeNil)

			got, err := lib.History(ctx, owner, 0)
			So(err, ShouldBeNil)
			So(ids(got), ShouldResemble, []string{"A"})
		})
	})
}

func TestRedisStoreClientLookup(t *testing.T) {
	Convey("Given a redis store built before the client exists", t, func() {
		store := &RedisStore{}

		Convey("Concurrent lookups all report the missing client", func() {
			var wg sync.WaitGroup
			errs := make([]error, 8)
			for i := range errs {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					errs[i] = store.ensureClient()
				}(i)
			}
			wg.Wait()

			for _, err := range errs {
				So(err, ShouldNotBeNil)
			}
		})

		Convey("A client set once is kept", func() {
			client := redislib.NewClient(&redislib.Options{Addr: "127.0.0.1:0"})
			defer client.Close()
			store.client = client

			So(store.ensureClient(), ShouldBeNil)
			So(store.client, ShouldEqual, client)
		})
	})
}
