package integration_test

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	adaptconfig "github.com/rafaelleal24/shoplist/internal/adapters/config"
	"github.com/rafaelleal24/shoplist/internal/adapters/jsonfile"
	adaptrabbitmq "github.com/rafaelleal24/shoplist/internal/adapters/rabbitmq"
	adaptredis "github.com/rafaelleal24/shoplist/internal/adapters/redis"
	"github.com/rafaelleal24/shoplist/internal/core/domain"
	"github.com/rafaelleal24/shoplist/internal/core/dto"
	"github.com/rafaelleal24/shoplist/internal/core/service"
	"github.com/rafaelleal24/shoplist/internal/core/serviceerrors"
	tcrabbit "github.com/testcontainers/testcontainers-go/modules/rabbitmq"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

var (
	redisClient  *adaptredis.Client
	broker       *adaptrabbitmq.RabbitMQAdapter
	amqpEndpoint string
)

func TestMain(m *testing.M) {
	ctx := context.Background()

	redisContainer, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		log.Fatalf("redis container: %v", err)
	}
	redisEndpoint, err := redisContainer.ConnectionString(ctx)
	if err != nil {
		log.Fatalf("redis connection string: %v", err)
	}
	redisClient, err = adaptredis.NewConnection(adaptconfig.RedisConfig{URL: redisEndpoint})
	if err != nil {
		log.Fatalf("redis connect: %v", err)
	}

	rabbitContainer, err := tcrabbit.Run(ctx, "rabbitmq:3-management-alpine")
	if err != nil {
		log.Fatalf("rabbitmq container: %v", err)
	}
	amqpEndpoint, err = rabbitContainer.AmqpURL(ctx)
	if err != nil {
		log.Fatalf("rabbitmq amqp url: %v", err)
	}
	broker, err = adaptrabbitmq.NewRabbitMQAdapter(adaptconfig.RabbitMQConfig{
		URL:        amqpEndpoint,
		MaxRetries: 2,
		RetryDelay: 100 * time.Millisecond,
		ExchangeConfigs: []adaptconfig.ExchangeConfig{
			{Name: "exchange.product", Type: "direct", Durable: true, AutoDelete: false},
		},
	})
	if err != nil {
		log.Fatalf("rabbitmq adapter: %v", err)
	}

	code := m.Run()

	_ = broker.Close()
	_ = redisClient.Close()
	_ = redisContainer.Terminate(ctx)
	_ = rabbitContainer.Terminate(ctx)

	os.Exit(code)
}

func setupConsumer(t *testing.T, routingKey string) <-chan amqp.Delivery {
	t.Helper()

	conn, err := amqp.Dial(amqpEndpoint)
	if err != nil {
		t.Fatalf("consumer dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	ch, err := conn.Channel()
	if err != nil {
		t.Fatalf("consumer channel: %v", err)
	}
	t.Cleanup(func() { ch.Close() })

	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		t.Fatalf("queue declare: %v", err)
	}
	if err := ch.QueueBind(q.Name, routingKey, "exchange.product", false, nil); err != nil {
		t.Fatalf("queue bind: %v", err)
	}

	msgs, err := ch.Consume(q.Name, "", true, false, false, false, nil)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	return msgs
}

// buildService wires the full stack the way cmd/http does: file-backed
// repository, redis cache, rabbitmq broker, name normalizer.
func buildService(t *testing.T, cachePrefix string) (*service.ProductService, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "products.json")
	repo, err := jsonfile.NewProductRepository(context.Background(), path)
	if err != nil {
		t.Fatalf("jsonfile repository: %v", err)
	}

	cache := adaptredis.NewCache[domain.Product](redisClient, cachePrefix)
	svc := service.NewProductService(repo, cache, broker, service.NewNameNormalizer())
	return svc, path
}

func waitForEvent(t *testing.T, msgs <-chan amqp.Delivery, wantName string) domain.ProductEvent {
	t.Helper()

	select {
	case msg := <-msgs:
		var event domain.ProductEvent
		if err := json.Unmarshal(msg.Body, &event); err != nil {
			t.Fatalf("unmarshal event: %v", err)
		}
		if event.Name != wantName {
			t.Fatalf("expected event %q, got %q", wantName, event.Name)
		}
		return event
	case <-time.After(10 * time.Second):
		t.Fatalf("timed out waiting for %s event", wantName)
		return domain.ProductEvent{}
	}
}

func TestIntegration_ProductLifecycle(t *testing.T) {
	created := setupConsumer(t, domain.EventProductCreated)
	purchased := setupConsumer(t, domain.EventProductPurchased)
	removed := setupConsumer(t, domain.EventProductRemoved)

	svc, path := buildService(t, "int_lifecycle")
	ctx := context.Background()

	product, err := svc.AddProduct(ctx, &dto.CreateProductRequest{Name: "milk", Quantity: 2})
	if err != nil {
		t.Fatalf("add product: %v", err)
	}
	if product.Name != "Milk" {
		t.Fatalf("expected normalized name Milk, got %q", product.Name)
	}

	event := waitForEvent(t, created, domain.EventProductCreated)
	if event.ProductID != product.ID {
		t.Fatalf("event product_id: expected %s, got %s", product.ID, event.ProductID)
	}

	// the write must be durable: reopen the file independently
	reopened, err := jsonfile.NewProductRepository(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	stored, err := reopened.GetByID(ctx, product.ID)
	if err != nil || stored == nil {
		t.Fatalf("expected product on disk, got (%+v, %v)", stored, err)
	}

	marked, err := svc.MarkPurchased(ctx, product.ID, true)
	if err != nil {
		t.Fatalf("mark purchased: %v", err)
	}
	if marked.Status() != domain.StatusPurchased {
		t.Fatalf("expected purchased status, got %q", marked.Status())
	}

	event = waitForEvent(t, purchased, domain.EventProductPurchased)
	if event.Product == nil || !event.Product.Purchased {
		t.Fatal("purchased event should carry the purchased product")
	}

	if err := svc.RemoveProduct(ctx, product.ID); err != nil {
		t.Fatalf("remove product: %v", err)
	}

	event = waitForEvent(t, removed, domain.EventProductRemoved)
	if event.ProductID != product.ID {
		t.Fatalf("removal event product_id: expected %s, got %s", product.ID, event.ProductID)
	}

	_, err = svc.GetByID(ctx, product.ID)
	if !serviceerrors.IsOfKind(err, serviceerrors.KindNotFound) {
		t.Fatalf("expected not found after removal, got %v", err)
	}
}

func TestIntegration_CacheServesRepeatedReads(t *testing.T) {
	svc, _ := buildService(t, "int_cache")
	ctx := context.Background()

	product, err := svc.AddProduct(ctx, &dto.CreateProductRequest{Name: "Bread", Quantity: 1})
	if err != nil {
		t.Fatalf("add product: %v", err)
	}

	first, err := svc.GetByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("first get: %v", err)
	}

	// second fetch is a cache hit
	second, err := svc.GetByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if first.ID != second.ID || first.Name != second.Name || first.Quantity != second.Quantity {
		t.Fatal("cached product should match the original")
	}
}

func TestIntegration_UpdateInvalidatesStaleCache(t *testing.T) {
	svc, _ := buildService(t, "int_update")
	ctx := context.Background()

	product, err := svc.AddProduct(ctx, &dto.CreateProductRequest{Name: "Eggs", Quantity: 6})
	if err != nil {
		t.Fatalf("add product: %v", err)
	}

	// warm the cache
	if _, err := svc.GetByID(ctx, product.ID); err != nil {
		t.Fatalf("warm get: %v", err)
	}

	updated, err := svc.UpdateProduct(ctx, product.ID, &dto.UpdateProductRequest{
		Name: "Eggs", Quantity: 12,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Quantity != 12 {
		t.Fatalf("expected quantity 12, got %d", updated.Quantity)
	}

	fetched, err := svc.GetByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if fetched.Quantity != 12 {
		t.Fatalf("cache served a stale quantity: got %d", fetched.Quantity)
	}
}

func TestIntegration_DuplicateIDRejected(t *testing.T) {
	svc, _ := buildService(t, "int_duplicate")
	ctx := context.Background()

	if _, err := svc.AddProduct(ctx, &dto.CreateProductRequest{ID: "fixed-id", Name: "Sugar", Quantity: 1}); err != nil {
		t.Fatalf("first add: %v", err)
	}

	_, err := svc.AddProduct(ctx, &dto.CreateProductRequest{ID: "fixed-id", Name: "Coffee", Quantity: 1})
	if !serviceerrors.IsOfKind(err, serviceerrors.KindDuplicateKey) {
		t.Fatalf("expected duplicate key error, got %v", err)
	}

	count, err := svc.Count(ctx)
	if err != nil || count != 1 {
		t.Fatalf("expected (1, nil), got (%d, %v)", count, err)
	}
}

func TestIntegration_StatsAndHealth(t *testing.T) {
	svc, _ := buildService(t, "int_stats")
	ctx := context.Background()

	for _, name := range []string{"Milk", "Bread", "Butter"} {
		if _, err := svc.AddProduct(ctx, &dto.CreateProductRequest{Name: name, Quantity: 1}); err != nil {
			t.Fatalf("add %s: %v", name, err)
		}
	}

	count, err := svc.Count(ctx)
	if err != nil || count != 3 {
		t.Fatalf("expected (3, nil), got (%d, %v)", count, err)
	}

	if err := svc.HealthCheck(ctx); err != nil {
		t.Fatalf("expected healthy, got %v", err)
	}
}
