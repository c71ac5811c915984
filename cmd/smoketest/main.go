// Command smoketest checks a deployment's external dependencies: Redis,
// the soils and flood ArcGIS endpoints, and the survey-refresh Kafka
// topic. Intended for use after standing up a new environment.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/redis/go-redis/v9"

	"github.com/kmurflow98/landsage-app/internal/config"
	"github.com/kmurflow98/landsage-app/internal/invalidation"
)

func testRedis(ctx context.Context, addr string) error {
	fmt.Println("Redis test")
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 2 * time.Second,
	})
	defer func() { _ = client.Close() }()

	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	if err := client.Set(ctx, "smoketest", "ok", 30*time.Second).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	val, err := client.Get(ctx, "smoketest").Result()
	if err != nil {
		return fmt.Errorf("redis get: %w", err)
	}
	fmt.Println("redis GET smoketest:", val)
	return nil
}

// testFeatureService issues a returnCountOnly query, the cheapest request
// an ArcGIS layer answers.
func testFeatureService(ctx context.Context, name, queryURL string) error {
	fmt.Printf("%s feature service test\n", name)

	u, err := url.Parse(queryURL)
	if err != nil {
		return fmt.Errorf("bad query URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	q := u.Query()
	q.Set("f", "json")
	q.Set("where", "1=1")
	q.Set("returnCountOnly", "true")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}
	fmt.Printf("%s count response: %s\n", name, string(body))
	return nil
}

func testKafka(brokers []string, topic string) error {
	fmt.Println("Kafka test")

	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Version = sarama.V2_1_0_0
	prod, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return fmt.Errorf("producer create: %w", err)
	}
	defer func() { _ = prod.Close() }()

	ev := invalidation.Event{
		Version: 1,
		Layer:   "smoketest",
		TS:      time.Now().UTC(),
		Source:  "smoketest",
	}
	msgBytes, _ := json.Marshal(ev)
	_, _, err = prod.SendMessage(&sarama.ProducerMessage{
		Topic: topic, Value: sarama.ByteEncoder(msgBytes),
	})
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	fmt.Println("produced one survey-refresh event")

	consumer, err := sarama.NewConsumer(brokers, cfg)
	if err != nil {
		return fmt.Errorf("consumer create: %w", err)
	}
	defer func() { _ = consumer.Close() }()

	pc, err := consumer.ConsumePartition(topic, 0, sarama.OffsetNewest)
	if err != nil {
		pc, err = consumer.ConsumePartition(topic, 0, sarama.OffsetOldest)
		if err != nil {
			return fmt.Errorf("consume partition: %w", err)
		}
	}
	defer func() { _ = pc.Close() }()

	select {
	case m := <-pc.Messages():
		fmt.Println("consumed:", string(m.Value))
	case <-time.After(5 * time.Second):
		fmt.Println("no message consumed (timeout)")
	}
	return nil
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := config.FromEnv()
	brokers := strings.Split(cfg.Invalidation.Brokers, ",")

	if cfg.RedisAddr != "" {
		if err := testRedis(ctx, cfg.RedisAddr); err != nil {
			fmt.Println("Redis error:", err)
			return
		}
	} else {
		fmt.Println("REDIS_ADDR not set; skipping redis test")
	}

	if err := testFeatureService(ctx, "soils", cfg.SoilsURL); err != nil {
		fmt.Println("Soils upstream error:", err)
		return
	}
	if err := testFeatureService(ctx, "flood", cfg.FloodURL); err != nil {
		fmt.Println("Flood upstream error:", err)
		return
	}

	if cfg.Invalidation.Enabled {
		if err := testKafka(brokers, cfg.Invalidation.Topic); err != nil {
			fmt.Println("Kafka error:", err)
			return
		}
	} else {
		fmt.Println("INVALIDATION_ENABLED not set; skipping kafka test")
	}

	fmt.Println("All checks completed")
}
